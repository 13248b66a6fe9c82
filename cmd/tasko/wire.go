package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rezkam/tasko/internal/application/snapshot"
	"github.com/rezkam/tasko/internal/config"
	"github.com/rezkam/tasko/internal/storage"
	"github.com/rezkam/tasko/internal/storage/fs"
	"github.com/rezkam/tasko/internal/storage/gcs"
	"github.com/rezkam/tasko/internal/storage/memory"
	"github.com/rezkam/tasko/internal/storage/postgres"
	"github.com/rezkam/tasko/internal/storage/sqlite"
)

// closerFunc adapts backends whose Close has no error.
type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// backends holds what provideStore opened, in opening order.
type backends struct {
	closers []closer
}

type closer interface {
	Close() error
}

// Close closes in reverse opening order.
func (b *backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i].Close())
	}
	return errors.Join(errs...)
}

func provideFallback(ctx context.Context, cfg config.StorageConfig, b *backends) (storage.KeyValue, error) {
	switch cfg.Fallback {
	case config.FallbackSQLite:
		s, err := sqlite.NewStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, s)
		return s, nil
	case config.FallbackPostgres:
		s, err := postgres.NewStore(ctx, postgres.DBConfig{DSN: cfg.PostgresDSN})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, closerFunc(func() error { s.Close(); return nil }))
		return s, nil
	case config.FallbackMemory:
		slog.WarnContext(ctx, "Using in-memory fallback; data is lost on exit")
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("%w, got %q", config.ErrUnknownFallback, cfg.Fallback)
	}
}

// provideFileSystem returns nil when no file backend is configured.
func provideFileSystem(ctx context.Context, cfg config.StorageConfig, b *backends) (storage.FileSystem, error) {
	switch cfg.Primary {
	case config.PrimaryFS:
		dir, err := fs.NewDir(cfg.FileDir)
		if err != nil {
			return nil, err
		}
		return dir, nil
	case config.PrimaryGCS:
		bucket, err := gcs.NewBucket(ctx, gcs.Config{
			Bucket:   cfg.GCSBucket,
			Prefix:   cfg.GCSPrefix,
			Endpoint: cfg.GCSEndpoint,
		})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, bucket)
		return bucket, nil
	case config.PrimaryNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w, got %q", config.ErrUnknownPrimary, cfg.Primary)
	}
}

// provideStore opens the configured backends, loads the fallback and, when
// TASKO_FILE is set, connects that file. The returned backends must be
// closed after the store is no longer written to.
func provideStore(ctx context.Context, cfg *config.Config) (*snapshot.Store, *backends, error) {
	b := &backends{}

	fallback, err := provideFallback(ctx, cfg.Storage, b)
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("failed to open fallback storage: %w", err), b.Close())
	}

	fsys, err := provideFileSystem(ctx, cfg.Storage, b)
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("failed to open file storage: %w", err), b.Close())
	}

	opts := []snapshot.Option{
		snapshot.WithNamespace(cfg.Storage.Namespace),
		snapshot.WithLocation(cfg.Location()),
		snapshot.WithOperationTimeout(cfg.Storage.Timeout),
	}
	if fsys != nil {
		opts = append(opts, snapshot.WithFileSystem(fsys))
	}

	store := snapshot.New(fallback, opts...)
	store.Load(ctx)

	if cfg.Storage.File != "" {
		if !store.IsSupported() {
			slog.WarnContext(ctx, "TASKO_FILE ignored without a file backend", "file", cfg.Storage.File)
		} else if !store.OpenFile(ctx, cfg.Storage.File) {
			slog.WarnContext(ctx, "Could not open TASKO_FILE, using fallback", "file", cfg.Storage.File)
		}
	}

	slog.InfoContext(ctx, "Storage initialized",
		"primary", cfg.Storage.Primary,
		"fallback", cfg.Storage.Fallback,
		"file", store.FileName())

	return store, b, nil
}
