package store

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNoteDeduplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddNote(ctx, 1, "buy milk")
	require.NoError(t, err)
	require.NotZero(t, id)

	// Same (user, text) pair is silently ignored, no id produced.
	dup, err := s.AddNote(ctx, 1, "buy milk")
	require.NoError(t, err)
	assert.Zero(t, dup)

	total, err := s.CountNotes(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	// A different user may store the same text.
	other, err := s.AddNote(ctx, 2, "buy milk")
	require.NoError(t, err)
	assert.NotZero(t, other)
}

func TestAddNoteRejectsEmptyAndOverlength(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddNote(ctx, 1, "   ")
	require.NoError(t, err)
	assert.Zero(t, id)

	id, err = s.AddNote(ctx, 1, strings.Repeat("x", 501))
	require.NoError(t, err)
	assert.Zero(t, id)

	// Exactly the limit is fine.
	id, err = s.AddNote(ctx, 1, strings.Repeat("x", 500))
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestListNotesClampsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		_, err := s.AddNote(ctx, 1, fmt.Sprintf("note %02d", i))
		require.NoError(t, err)
	}

	rows, err := s.ListNotes(ctx, 1, 500)
	require.NoError(t, err)
	assert.Len(t, rows, 50)

	rows, err = s.ListNotes(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	// Newest first.
	rows, err = s.ListNotes(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Greater(t, rows[0].ID, rows[1].ID)
}

func TestSearchNotesCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddNote(ctx, 1, "Buy MILK tomorrow")
	require.NoError(t, err)
	_, err = s.AddNote(ctx, 1, "call mom")
	require.NoError(t, err)

	rows, err := s.SearchNotes(ctx, 1, "milk", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Buy MILK tomorrow", rows[0].Text)

	rows, err = s.SearchNotes(ctx, 1, "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpdateAndDeleteNote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddNote(ctx, 1, "draft")
	require.NoError(t, err)

	changed, err := s.UpdateNote(ctx, 1, id, "final")
	require.NoError(t, err)
	assert.True(t, changed)

	// Wrong owner, wrong id, empty text all change nothing.
	changed, err = s.UpdateNote(ctx, 2, id, "hijack")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.UpdateNote(ctx, 1, id+100, "nope")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.UpdateNote(ctx, 1, id, " ")
	require.NoError(t, err)
	assert.False(t, changed)

	deleted, err := s.DeleteNote(ctx, 2, id)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = s.DeleteNote(ctx, 1, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	total, err := s.CountNotes(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestNoteStatsByDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Seed notes across three distinct days directly, created_at is
	// normally DEFAULT CURRENT_TIMESTAMP.
	for i, day := range []string{"2025-03-01", "2025-03-01", "2025-03-02", "2025-03-05"} {
		_, err := s.db.Exec(
			"INSERT INTO notes(user_id, text, created_at) VALUES (1, ?, ?)",
			fmt.Sprintf("n%d", i), day+" 10:00:00")
		require.NoError(t, err)
	}

	stats, err := s.NoteStatsByDate(ctx, 1, 7)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	// Most recent date first.
	assert.Equal(t, "2025-03-05", stats[0].Date)
	assert.Equal(t, 1, stats[0].Total)
	assert.Equal(t, "2025-03-02", stats[1].Date)
	assert.Equal(t, "2025-03-01", stats[2].Date)
	assert.Equal(t, 2, stats[2].Total)

	// Days clamp: asking for one bucket returns only the newest.
	stats, err = s.NoteStatsByDate(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "2025-03-05", stats[0].Date)
}

func TestAllNotesOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.AddNote(ctx, 1, fmt.Sprintf("note %d", i))
		require.NoError(t, err)
	}

	rows, err := s.AllNotes(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Less(t, rows[0].ID, rows[2].ID)
}
