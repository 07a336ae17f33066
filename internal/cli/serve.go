package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httphandler "github.com/ericfisherdev/iconbot/internal/adapter/driving/http"
	"github.com/ericfisherdev/iconbot/internal/application"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Listen for GitHub pull request webhooks",
	Long: `Start the webhook listener. Verified pull_request deliveries for opened and
synchronize actions are queued and diffed in the background; the sender gets
an immediate plain-text acknowledgement.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateForServer(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, debugMode)
	if err != nil {
		return err
	}
	defer a.Close()

	pipeline, err := a.postingPipeline()
	if err != nil {
		return err
	}

	dispatcher := application.NewDispatcher(pipeline, cfg.Workers, cfg.QueueSize, cfg.JobTimeout)
	dispatcher.Start()

	handler := httphandler.NewHandler(
		[]byte(cfg.GitHub.Secret),
		application.NewIgnoreSet(cfg.Ignore),
		dispatcher,
		slog.Default(),
	)

	addr := fmt.Sprintf(":%d", cfg.WebhookPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           httphandler.NewServeMux(handler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("listening for requests", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serveErr:
		_ = dispatcher.Shutdown(context.Background())
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		slog.Error("dispatcher shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
