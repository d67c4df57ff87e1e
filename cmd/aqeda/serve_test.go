package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/air-quality-eda/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	t.Setenv("OUTPUT_DIR", dir)
	t.Setenv("REPORT_FORMAT", "json")
	t.Setenv("CHARTS_ENABLED", "false")
	t.Setenv("SEED", "21")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func statusOf(url string) int {
	resp, err := http.Get(url) //nolint:gosec,noctx // test-local URL
	if err != nil {
		return 0
	}
	resp.Body.Close() //nolint:errcheck // status only
	return resp.StatusCode
}

func TestServe_ReadyThenGracefulShutdown(t *testing.T) {
	dir := t.TempDir()
	cfg := serveConfig(t, dir)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, discardLogger(), ln) }()

	require.Eventually(t, func() bool {
		return statusOf(base+"/readyz") == http.StatusOK
	}, 10*time.Second, 20*time.Millisecond)
	assert.Equal(t, http.StatusOK, statusOf(base+"/healthz"))
	assert.Equal(t, http.StatusNotFound, statusOf(base+"/charts/panel.png"))

	resp, err := http.Get(base + "/api/summary") //nolint:noctx // test-local URL
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.InDelta(t, 21, summary["seed"], 0)
	assert.InDelta(t, 360, summary["records"], 0)

	// The filesystem sink runs after readiness; let it finish before stopping.
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "measurements.csv"))
		return err == nil
	}, 10*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}

	_, err = os.Stat(filepath.Join(dir, "summary.json"))
	assert.NoError(t, err)
}

func TestServe_ListenerFailureStops(t *testing.T) {
	cfg := serveConfig(t, t.TempDir())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	done := make(chan error, 1)
	go func() { done <- serve(context.Background(), cfg, discardLogger(), ln) }()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after the listener failed")
	}
}

func TestServe_InvalidAddr(t *testing.T) {
	t.Setenv("HTTP_ADDR", "127.0.0.1:-1")
	_, err := execute(t, "serve", "--output-dir", t.TempDir())
	require.Error(t, err)
}
