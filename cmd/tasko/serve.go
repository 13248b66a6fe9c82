package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rezkam/tasko/internal/application/tasks"
	"github.com/rezkam/tasko/internal/application/worker"
	"github.com/rezkam/tasko/internal/config"
	httpserver "github.com/rezkam/tasko/internal/infrastructure/http"
	"github.com/rezkam/tasko/internal/infrastructure/http/handler"
	"github.com/rezkam/tasko/internal/infrastructure/observability"
	"github.com/rezkam/tasko/internal/notify"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run the automatic-start sweep",
		Long: `Serve the task API until SIGINT or SIGTERM.

Configuration comes from TASKO_* environment variables. Set TASKO_FILE to
connect a snapshot file at startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Root context for normal operation; cancelled on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	providers, err := observability.Init(ctx, observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Starting tasko", "version", Version, "timezone", cfg.Location().String())

	store, backends, err := provideStore(ctx, cfg)
	if err != nil {
		return errors.Join(err, providers.Shutdown(context.Background()))
	}

	hub := notify.NewHub(0)
	sinks := notify.Fanout{notify.Log{}, hub}
	if cfg.Notify.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhook(cfg.Notify.WebhookURL, nil))
	}
	dispatcher := notify.NewDispatcher(sinks, notify.Config{
		QueueSize:       cfg.Notify.QueueSize,
		DeliveryTimeout: cfg.Notify.Timeout,
	})

	engine := tasks.New(store,
		tasks.WithNotifier(dispatcher),
		tasks.WithLocation(cfg.Location()),
		tasks.WithPersistTimeout(cfg.Engine.PersistTimeout),
	)

	sweeper := worker.New(engine,
		worker.WithSweepInterval(cfg.Engine.SweepInterval),
		worker.WithOperationTimeout(cfg.Engine.SweepTimeout),
	)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan error, 1)
	go func() {
		workerDone <- sweeper.Start(workerCtx)
	}()

	server := httpserver.NewAPIServer(handler.New(engine, store, hub).Routes(), httpserver.ServerConfig{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
	})

	errResult := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "Shutting down")
	case serveErr = <-errResult:
		slog.ErrorContext(ctx, "HTTP server failed", "error", serveErr)
	}

	// A fresh context: ctx is already cancelled.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	cleanup := newCleanup(shutdownCtx,
		shutdownStep{name: "http server", stop: server.Shutdown},
		shutdownStep{name: "sweep worker", stop: func(ctx context.Context) error {
			stopWorker()
			select {
			case err := <-workerDone:
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
		}},
		shutdownStep{name: "task engine", stop: func(ctx context.Context) error {
			if err := engine.Flush(ctx); err != nil {
				return err
			}
			return engine.Shutdown(ctx)
		}},
		shutdownStep{name: "notification dispatcher", stop: dispatcher.Shutdown},
		closeStep("storage", backends),
		shutdownStep{name: "telemetry", stop: providers.Shutdown},
	)
	cleanup()

	return serveErr
}
