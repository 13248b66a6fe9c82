package compliance

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/tasko/internal/storage"
)

// RunKeyValueComplianceTest runs a standard set of tests against a fallback backend.
// setup returns a fresh (clean) backend and a cleanup function.
func RunKeyValueComplianceTest(t *testing.T, setup func() (storage.KeyValue, func())) {
	t.Run("PutAndGet", func(t *testing.T) {
		kv, teardown := setup()
		defer teardown()
		ctx := context.Background()

		key := "tasko-" + uuid.NewString()
		value := []byte(`{"tasks":[],"theme":"dark"}`)

		require.NoError(t, kv.Put(ctx, key, value))

		got, err := kv.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, string(value), string(got))
	})

	t.Run("PutReplaces", func(t *testing.T) {
		kv, teardown := setup()
		defer teardown()
		ctx := context.Background()

		key := "tasko-" + uuid.NewString()
		require.NoError(t, kv.Put(ctx, key, []byte(`{"theme":"dark"}`)))
		require.NoError(t, kv.Put(ctx, key, []byte(`{"theme":"light"}`)))

		got, err := kv.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `{"theme":"light"}`, string(got))
	})

	t.Run("KeysAreIsolated", func(t *testing.T) {
		kv, teardown := setup()
		defer teardown()
		ctx := context.Background()

		a, b := "tasko-"+uuid.NewString(), "tasko-"+uuid.NewString()
		require.NoError(t, kv.Put(ctx, a, []byte(`{"n":1}`)))
		require.NoError(t, kv.Put(ctx, b, []byte(`{"n":2}`)))

		got, err := kv.Get(ctx, a)
		require.NoError(t, err)
		assert.JSONEq(t, `{"n":1}`, string(got))
	})

	t.Run("GetMissingKey", func(t *testing.T) {
		kv, teardown := setup()
		defer teardown()

		_, err := kv.Get(context.Background(), "missing-"+uuid.NewString())
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

// RunFileSystemComplianceTest runs a standard set of tests against a file-handle backend.
func RunFileSystemComplianceTest(t *testing.T, setup func() (storage.FileSystem, func())) {
	t.Run("CreateWriteRead", func(t *testing.T) {
		fsys, teardown := setup()
		defer teardown()
		ctx := context.Background()

		name := "tasko-" + uuid.NewString() + ".json"
		f, err := fsys.Create(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, name, f.Name())

		require.NoError(t, f.Write(ctx, []byte(`{"tasks":[]}`)))

		got, err := f.Read(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, `{"tasks":[]}`, string(got))
	})

	t.Run("OpenSeesCreatedFile", func(t *testing.T) {
		fsys, teardown := setup()
		defer teardown()
		ctx := context.Background()

		name := "tasko-" + uuid.NewString() + ".json"
		f, err := fsys.Create(ctx, name)
		require.NoError(t, err)
		require.NoError(t, f.Write(ctx, []byte(`{"theme":"light"}`)))

		opened, err := fsys.Open(ctx, name)
		require.NoError(t, err)

		got, err := opened.Read(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, `{"theme":"light"}`, string(got))
	})

	t.Run("WriteOverwrites", func(t *testing.T) {
		fsys, teardown := setup()
		defer teardown()
		ctx := context.Background()

		f, err := fsys.Create(ctx, "tasko-"+uuid.NewString()+".json")
		require.NoError(t, err)
		require.NoError(t, f.Write(ctx, []byte(`{"tasks":[{"id":"1"},{"id":"2"}]}`)))
		require.NoError(t, f.Write(ctx, []byte(`{"tasks":[]}`)))

		got, err := f.Read(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, `{"tasks":[]}`, string(got))
	})

	t.Run("OpenMissingFile", func(t *testing.T) {
		fsys, teardown := setup()
		defer teardown()

		_, err := fsys.Open(context.Background(), "missing-"+uuid.NewString()+".json")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("CancelledPicker", func(t *testing.T) {
		fsys, teardown := setup()
		defer teardown()
		ctx := context.Background()

		_, err := fsys.Create(ctx, "")
		assert.ErrorIs(t, err, storage.ErrCancelled)
		_, err = fsys.Open(ctx, "")
		assert.ErrorIs(t, err, storage.ErrCancelled)
	})

	t.Run("RejectsPathNames", func(t *testing.T) {
		fsys, teardown := setup()
		defer teardown()

		_, err := fsys.Create(context.Background(), "../escape.json")
		assert.ErrorIs(t, err, storage.ErrInvalidName)
	})
}
