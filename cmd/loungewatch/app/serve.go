package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/loungewatch/loungewatch/internal/api"
	"github.com/loungewatch/loungewatch/internal/config"
	"github.com/loungewatch/loungewatch/internal/scheduler"
	"github.com/loungewatch/loungewatch/internal/sink"
	"github.com/loungewatch/loungewatch/internal/ws"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the refresh loop and the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runServe(ctx, opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	c, err := build(cfg)
	if err != nil {
		return err
	}

	slog.Info("loungewatch starting",
		"sources", len(cfg.Monitor.Sources),
		"refresh_interval", cfg.Monitor.RefreshInterval,
		"staleness_threshold", cfg.Monitor.StalenessThreshold,
		"http_port", cfg.Server.HTTPPort,
		"sink", cfg.Sink.Type,
	)

	logSink, closeSink, err := sink.New(ctx, cfg.Sink)
	if err != nil {
		return err
	}
	defer closeSink()

	sched := scheduler.New(c.svc, cfg.Monitor.RefreshInterval,
		scheduler.WithSink(logSink, sink.GateFor(cfg.Sink)),
		scheduler.WithMetrics(c.metrics),
	)
	go sched.Run(ctx)

	hub := ws.New(c.svc, cfg.Server.BroadcastInterval)
	go hub.Run(ctx)

	if opts.configPath != "" {
		go func() {
			err := config.Watch(ctx, opts.configPath, func(next *config.Config) {
				if opts.logLevel != "" {
					return
				}
				if err := opts.applyLevel(next.LogLevel); err != nil {
					slog.Warn("config: ignoring log level", "err", err)
					return
				}
				slog.Info("config: log level applied", "level", next.LogLevel)
			})
			if err != nil {
				slog.Error("config: watch stopped", "err", err)
			}
		}()
	}

	mux := http.NewServeMux()
	apiHandler := api.New(c.svc, c.metrics, c.certFunc())
	mux.Handle("/api/", apiHandler)
	mux.Handle("/metrics", apiHandler)
	mux.Handle("/ws/stream", hub)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	slog.Info("loungewatch shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
