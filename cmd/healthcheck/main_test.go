package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolvePort_FromConfigFile(t *testing.T) {
	t.Setenv("ICONBOT_WEBHOOK_PORT", "")

	assert.Equal(t, 9443, resolvePort(writeConfig(t, `{"webhook_port": 9443}`)))
}

func TestResolvePort_EnvironmentWins(t *testing.T) {
	t.Setenv("ICONBOT_WEBHOOK_PORT", "7000")

	assert.Equal(t, 7000, resolvePort(writeConfig(t, `{"webhook_port": 9443}`)))
}

func TestResolvePort_Fallbacks(t *testing.T) {
	t.Setenv("ICONBOT_WEBHOOK_PORT", "")

	assert.Equal(t, 8080, resolvePort(filepath.Join(t.TempDir(), "missing.json")))
	assert.Equal(t, 8080, resolvePort(writeConfig(t, `{"webhook_port": 70000}`)))
	assert.Equal(t, 8080, resolvePort(writeConfig(t, `{not json`)))
}

func TestHealthURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:9443/healthz", healthURL(9443))
}
