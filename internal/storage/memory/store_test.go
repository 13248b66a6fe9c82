package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/tasko/internal/storage"
	"github.com/rezkam/tasko/internal/storage/compliance"
)

func TestStore_Compliance(t *testing.T) {
	compliance.RunKeyValueComplianceTest(t, func() (storage.KeyValue, func()) {
		return NewStore(), func() {}
	})
}

func TestStore_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	value := []byte(`{"n":1}`)
	require.NoError(t, s.Put(ctx, "k", value))
	value[5] = '9'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"n":1}`, string(got))

	got[5] = '7'
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"n":1}`, string(again))
}

func TestStore_PutHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewStore().Put(ctx, "k", []byte(`{}`))
	assert.ErrorIs(t, err, context.Canceled)
}
