package pebble_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/photoshare/core/kv"
	"github.com/dmitrymomot/photoshare/integration/kv/pebble"
)

func TestStore_InMemoryFS(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := pebble.Open("state", pebble.WithFS(vfs.NewMem()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.Get(ctx, "photoshare:session:token")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, s.Set(ctx, "photoshare:session:token", []byte("tok")))
	got, err := s.Get(ctx, "photoshare:session:token")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok"), got)

	require.NoError(t, s.Delete(ctx, "photoshare:session:token"))
	_, err = s.Get(ctx, "photoshare:session:token")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestStore_SurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db")

	s, err := pebble.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = pebble.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestOpen_EmptyPath(t *testing.T) {
	t.Parallel()
	_, err := pebble.Open("")
	assert.ErrorIs(t, err, pebble.ErrEmptyPath)
}
