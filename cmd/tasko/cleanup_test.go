package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type ctxKey string

func TestNewCleanup_RunsStepsInOrder(t *testing.T) {
	ctx := context.WithValue(context.Background(), ctxKey("test"), "marker")
	var callOrder []string
	var received []any

	step := func(name string, err error) shutdownStep {
		return shutdownStep{name: name, stop: func(ctx context.Context) error {
			callOrder = append(callOrder, name)
			received = append(received, ctx.Value(ctxKey("test")))
			return err
		}}
	}

	cleanup := newCleanup(ctx,
		step("http server", nil),
		step("sweep worker", nil),
		step("task engine", errors.New("flush timed out")),
		step("notification dispatcher", nil),
		closeStep("storage", closerFunc(func() error {
			callOrder = append(callOrder, "storage")
			return nil
		})),
	)

	cleanup()

	require.Equal(t, []string{"http server", "sweep worker", "task engine", "notification dispatcher", "storage"}, callOrder)
	require.Equal(t, []any{"marker", "marker", "marker", "marker"}, received)
}

func TestBackends_CloseInReverseOrder(t *testing.T) {
	var closed []string
	b := &backends{closers: []closer{
		closerFunc(func() error { closed = append(closed, "fallback"); return nil }),
		closerFunc(func() error { closed = append(closed, "bucket"); return errors.New("bucket gone") }),
	}}

	err := b.Close()

	require.EqualError(t, err, "bucket gone")
	require.Equal(t, []string{"bucket", "fallback"}, closed)
}
