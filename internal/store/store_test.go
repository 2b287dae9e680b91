package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s, err := New(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening must re-run the schema without error and without
	// duplicating seed rows.
	s, err = New(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer s.Close()

	models, err := s.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 4)

	chars, err := s.ListCharacters(context.Background())
	require.NoError(t, err)
	require.Len(t, chars, 4)
}

func TestSeededActiveModel(t *testing.T) {
	s := newTestStore(t)

	m, err := s.ActiveModel(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, m.ID)
	require.True(t, m.Active)
}
