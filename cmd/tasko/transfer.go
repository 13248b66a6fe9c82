package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rezkam/tasko/internal/application/snapshot"
	"github.com/rezkam/tasko/internal/config"
	"github.com/rezkam/tasko/internal/infrastructure/observability"
)

func exportCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup of the stored tasks and settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *snapshot.Store) error {
				export, err := store.Export(ctx)
				if err != nil {
					return err
				}

				path := filepath.Join(outDir, export.Name)
				if err := os.WriteFile(path, export.Data, 0644); err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write the backup into")

	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored tasks and settings with a backup",
		Long: `Replace the stored tasks and settings with a backup file.

Run this while the server is stopped; a running server keeps its own copy
and would overwrite the import on its next change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			return withStore(cmd.Context(), func(ctx context.Context, store *snapshot.Store) error {
				if err := store.Import(ctx, filepath.Base(args[0]), "", data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d tasks into %s\n", len(store.Data().Tasks), store.FileName())
				return nil
			})
		},
	}
}

// withStore opens the configured storage for a one-off command.
func withStore(ctx context.Context, fn func(context.Context, *snapshot.Store) error) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	providers, err := observability.Init(ctx, observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, providers.Shutdown(context.Background()))
	}()

	store, backends, err := provideStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, backends.Close())
	}()

	return fn(ctx, store)
}
