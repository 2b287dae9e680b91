package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// defaultCharacterID is the catalog entry used when a user has no
// persona assignment.
const defaultCharacterID = 1

// ListCharacters returns the persona catalog by id ascending.
func (s *SQLiteStore) ListCharacters(ctx context.Context) ([]Character, error) {
	var chars []Character
	err := s.db.SelectContext(ctx, &chars,
		"SELECT id, name, prompt FROM characters ORDER BY id")
	if err != nil {
		return nil, mapErr(fmt.Errorf("list characters: %w", err))
	}
	return chars, nil
}

// CharacterForUser resolves the user's persona: their assignment if one
// exists, otherwise the default catalog entry, otherwise the lowest-id
// entry. Fails with ErrEmptyCatalog only when the catalog has no rows.
func (s *SQLiteStore) CharacterForUser(ctx context.Context, userID int64) (*Character, error) {
	var c Character
	err := s.db.GetContext(ctx, &c, `
		SELECT c.id, c.name, c.prompt
		FROM user_characters uc
		JOIN characters c ON c.id = uc.character_id
		WHERE uc.user_id = ?
	`, userID)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, mapErr(fmt.Errorf("user character %d: %w", userID, err))
	}

	err = s.db.GetContext(ctx, &c,
		"SELECT id, name, prompt FROM characters WHERE id = ?", defaultCharacterID)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, mapErr(fmt.Errorf("default character: %w", err))
	}

	err = s.db.GetContext(ctx, &c,
		"SELECT id, name, prompt FROM characters ORDER BY id LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmptyCatalog
	}
	if err != nil {
		return nil, mapErr(fmt.Errorf("lowest character: %w", err))
	}
	return &c, nil
}

// SetCharacterForUser upserts the user's persona assignment. Fails with
// ErrUnknownCharacter, leaving any prior assignment untouched, when the
// id is not in the catalog.
func (s *SQLiteStore) SetCharacterForUser(ctx context.Context, userID, characterID int64) (*Character, error) {
	var c Character
	err := s.db.GetContext(ctx, &c,
		"SELECT id, name, prompt FROM characters WHERE id = ?", characterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownCharacter
	}
	if err != nil {
		return nil, mapErr(fmt.Errorf("find character %d: %w", characterID, err))
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_characters(user_id, character_id) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET character_id = excluded.character_id
	`, userID, characterID)
	if err != nil {
		return nil, mapErr(fmt.Errorf("assign character: %w", err))
	}
	return &c, nil
}

// RandomCharacter uniformly samples one catalog entry without touching
// any assignment.
func (s *SQLiteStore) RandomCharacter(ctx context.Context) (*Character, error) {
	var c Character
	err := s.db.GetContext(ctx, &c,
		"SELECT id, name, prompt FROM characters ORDER BY RANDOM() LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmptyCatalog
	}
	if err != nil {
		return nil, mapErr(fmt.Errorf("random character: %w", err))
	}
	return &c, nil
}
