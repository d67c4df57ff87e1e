package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/air-quality-eda/internal/adapter/httpadapter"
	"github.com/couchcryptid/air-quality-eda/internal/config"
	"github.com/spf13/cobra"
)

func newServeCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis once, then serve it over HTTP until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f, true)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())

			ln, err := net.Listen("tcp", cfg.HTTPAddr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger, ln)
		},
	}
	addOutputFlags(cmd, f)
	return cmd
}

// serve runs the pipeline once in the background and serves HTTP on ln until
// ctx is cancelled or the server fails.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, ln net.Listener) error {
	p, closeSinks, err := buildPipeline(cfg, logger)
	if err != nil {
		ln.Close() //nolint:errcheck // setup error takes precedence
		return err
	}
	defer closeSinks()

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, httpadapter.ChartOptions{
		WidthIn:   cfg.ChartWidthIn,
		HeightIn:  cfg.ChartHeightIn,
		CacheSize: cfg.ChartCacheSize,
	}, logger)

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	// Start HTTP server.
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			serveErr <- err
			stop()
		}
	}()

	// Run the pipeline once; /readyz flips once a result exists.
	pipelineDone := make(chan struct{})
	go func() {
		defer close(pipelineDone)
		if _, err := p.Run(ctx); err != nil && !isShutdown(err) {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-pipelineDone:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline still running at shutdown deadline")
	}
	logger.Info("shutdown complete")

	select {
	case err := <-serveErr:
		return err
	default:
		return nil
	}
}
