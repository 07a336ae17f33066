package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ericfisherdev/iconbot/internal/config"
)

const defaultPort = 8080

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	os.Exit(check())
}

func check() int {
	path := config.DefaultPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	port := resolvePort(path)

	client := &http.Client{Timeout: 2 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL(port), nil)
	if err != nil {
		return 1
	}

	resp, err := client.Do(req)
	if err != nil {
		return 1
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 1
	}

	return 0
}

// resolvePort reads the webhook port the server would use from the config
// file at path and the environment. It falls back to the default port when
// the configuration cannot be loaded.
func resolvePort(path string) int {
	cfg, err := config.Load(path)
	if err != nil {
		return defaultPort
	}
	return cfg.WebhookPort
}

// healthURL targets loopback: the server binds all interfaces and the probe
// runs inside the same container.
func healthURL(port int) string {
	return fmt.Sprintf("http://127.0.0.1:%d/healthz", port)
}
