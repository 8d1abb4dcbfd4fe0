package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the contract every Store implementation must satisfy.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "a", "1"))
	require.NoError(t, s.Set(ctx, "b", `{"x":2}`))
	require.NoError(t, s.Set(ctx, "a", "0"))

	v, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "0", v)

	v, err = s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, `{"x":2}`, v)

	require.NoError(t, s.Clear(ctx, "a"))
	require.NoError(t, s.Clear(ctx, "a"))
	_, err = s.Get(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore(t *testing.T) {
	exerciseStore(t, NewMemStore())
}

func TestMemStore_FailWith(t *testing.T) {
	s := NewMemStore()
	boom := errors.New("quota exceeded")
	s.FailWith(boom)

	require.ErrorIs(t, s.Set(context.Background(), "k", "v"), boom)
	_, err := s.Get(context.Background(), "k")
	require.ErrorIs(t, err, boom)
}

func TestFileStore(t *testing.T) {
	exerciseStore(t, NewFileStore(filepath.Join(t.TempDir(), "nested", "store.json")))
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	first := NewFileStore(path)
	require.NoError(t, first.Set(ctx, "mindmaze_bgm_muted", "1"))
	require.NoError(t, first.Close())

	second := NewFileStore(path)
	v, err := second.Get(ctx, "mindmaze_bgm_muted")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files cleaned up")
}

func TestFileStore_CorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

	s := NewFileStore(path)
	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	require.Error(t, s.Set(context.Background(), "k", "v"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{nope", string(data), "corrupt file left for inspection")
}

func TestFileStore_ClosedRejectsCalls(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, s.Close())
	_, err := s.Get(context.Background(), "k")
	require.ErrorIs(t, err, ErrClosed)
}

func TestSQLStore(t *testing.T) {
	dsn := os.Getenv("MINDMAZE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("MINDMAZE_TEST_DATABASE_URL not set")
	}
	s, err := OpenPostgres(dsn)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	for _, k := range []string{"a", "b", "missing"} {
		require.NoError(t, s.Clear(ctx, k))
	}
	exerciseStore(t, s)
}
