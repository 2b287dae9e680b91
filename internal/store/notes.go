package store

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxNoteLen = 500

// clampLimit forces a row limit into [1, max].
func clampLimit(n, max int) int {
	if n < 1 {
		return 1
	}
	if n > max {
		return max
	}
	return n
}

// AddNote inserts a note and returns its id. A zero id with a nil error
// means nothing was inserted: empty text, over-length text, or a
// duplicate (user_id, text) pair. Callers must not treat that as a
// hard failure.
func (s *SQLiteStore) AddNote(ctx context.Context, userID int64, text string) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > maxNoteLen {
		return 0, nil
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO notes(user_id, text) VALUES (?, ?)", userID, text)
	if err != nil {
		return 0, mapErr(fmt.Errorf("add note: %w", err))
	}

	// The UNIQUE(user_id, text) conflict is silently ignored by the
	// schema; it shows up here as zero affected rows.
	n, err := res.RowsAffected()
	if err != nil || n == 0 {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add note id: %w", err)
	}
	return id, nil
}

// ListNotes returns the user's latest notes by id descending.
// The limit is clamped to [1, 50].
func (s *SQLiteStore) ListNotes(ctx context.Context, userID int64, limit int) ([]Note, error) {
	var notes []Note
	err := s.db.SelectContext(ctx, &notes, `
		SELECT id, user_id, text, created_at
		FROM notes
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, userID, clampLimit(limit, 50))
	if err != nil {
		return nil, mapErr(fmt.Errorf("list notes: %w", err))
	}
	return notes, nil
}

// SearchNotes finds notes containing needle, case-insensitively.
func (s *SQLiteStore) SearchNotes(ctx context.Context, userID int64, needle string, limit int) ([]Note, error) {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return nil, nil
	}

	var notes []Note
	err := s.db.SelectContext(ctx, &notes, `
		SELECT id, user_id, text, created_at
		FROM notes
		WHERE user_id = ?
		  AND text LIKE '%' || ? || '%' COLLATE NOCASE
		ORDER BY id DESC
		LIMIT ?
	`, userID, needle, clampLimit(limit, 50))
	if err != nil {
		return nil, mapErr(fmt.Errorf("search notes: %w", err))
	}
	return notes, nil
}

// AllNotes returns every note the user has, oldest first. Used for the
// export file, so no limit clamp applies.
func (s *SQLiteStore) AllNotes(ctx context.Context, userID int64) ([]Note, error) {
	var notes []Note
	err := s.db.SelectContext(ctx, &notes, `
		SELECT id, user_id, text, created_at
		FROM notes
		WHERE user_id = ?
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, mapErr(fmt.Errorf("export notes: %w", err))
	}
	return notes, nil
}

// UpdateNote changes the text of a note owned by the user. Returns false
// when no such note exists or the new text is empty.
func (s *SQLiteStore) UpdateNote(ctx context.Context, userID, noteID int64, text string) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > maxNoteLen {
		return false, nil
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE notes SET text = ? WHERE user_id = ? AND id = ?", text, userID, noteID)
	if err != nil {
		return false, mapErr(fmt.Errorf("update note %d: %w", noteID, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteNote removes a note owned by the user. Returns false when no such
// note exists.
func (s *SQLiteStore) DeleteNote(ctx context.Context, userID, noteID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM notes WHERE user_id = ? AND id = ?", userID, noteID)
	if err != nil {
		return false, mapErr(fmt.Errorf("delete note %d: %w", noteID, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountNotes returns how many notes the user has.
func (s *SQLiteStore) CountNotes(ctx context.Context, userID int64) (int, error) {
	var total int
	err := s.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM notes WHERE user_id = ?", userID)
	if err != nil {
		return 0, mapErr(fmt.Errorf("count notes: %w", err))
	}
	return total, nil
}

// NoteStatsByDate returns note counts grouped by calendar date of
// creation, most recent date first. Days is clamped to [1, 30].
func (s *SQLiteStore) NoteStatsByDate(ctx context.Context, userID int64, days int) ([]DateCount, error) {
	var stats []DateCount
	err := s.db.SelectContext(ctx, &stats, `
		SELECT date(created_at) AS d, COUNT(*) AS total
		FROM notes
		WHERE user_id = ?
		GROUP BY date(created_at)
		ORDER BY d DESC
		LIMIT ?
	`, userID, clampLimit(days, 30))
	if err != nil {
		return nil, mapErr(fmt.Errorf("note stats: %w", err))
	}
	return stats, nil
}
