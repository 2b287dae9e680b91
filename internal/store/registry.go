package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ListModels returns the whole registry by id ascending, active flag
// included for display.
func (s *SQLiteStore) ListModels(ctx context.Context) ([]Model, error) {
	var models []Model
	err := s.db.SelectContext(ctx, &models,
		"SELECT id, key, label, active FROM models ORDER BY id")
	if err != nil {
		return nil, mapErr(fmt.Errorf("list models: %w", err))
	}
	return models, nil
}

// ActiveModel returns the registry row with active=1. If the registry is
// non-empty but no row is active, the lowest-id row is activated and
// returned; that state should be unreachable under correct transaction
// discipline, so it is logged when it happens.
func (s *SQLiteStore) ActiveModel(ctx context.Context) (*Model, error) {
	var m Model
	err := s.db.GetContext(ctx, &m,
		"SELECT id, key, label, active FROM models WHERE active = 1")
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, mapErr(fmt.Errorf("get active model: %w", err))
	}
	return s.activateLowest(ctx)
}

func (s *SQLiteStore) activateLowest(ctx context.Context) (*Model, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, mapErr(fmt.Errorf("begin activate: %w", err))
	}
	defer tx.Rollback()

	// Take the write lock before re-checking, so a concurrent switch
	// cannot slip between the read and the update.
	if _, err := tx.ExecContext(ctx, "UPDATE models SET active = 0 WHERE active = 1"); err != nil {
		return nil, mapErr(fmt.Errorf("clear active: %w", err))
	}

	var m Model
	err = tx.GetContext(ctx, &m,
		"SELECT id, key, label, active FROM models ORDER BY id LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmptyRegistry
	}
	if err != nil {
		return nil, mapErr(fmt.Errorf("lowest model: %w", err))
	}

	if _, err := tx.ExecContext(ctx, "UPDATE models SET active = 1 WHERE id = ?", m.ID); err != nil {
		return nil, mapErr(fmt.Errorf("activate model %d: %w", m.ID, err))
	}
	if err := tx.Commit(); err != nil {
		return nil, mapErr(fmt.Errorf("commit activate: %w", err))
	}

	m.Active = true
	s.log.Warn("model registry had no active row, activated lowest id",
		zap.Int64("model_id", m.ID))
	return &m, nil
}

// SetActiveModel switches the single active row to the given id inside
// one transaction: clear every active flag, then set the target. The
// partial unique index on models(active) is the backstop if this
// discipline is ever broken.
func (s *SQLiteStore) SetActiveModel(ctx context.Context, id int64) (*Model, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, mapErr(fmt.Errorf("begin switch: %w", err))
	}
	defer tx.Rollback()

	// Write first so the transaction owns the write lock for its whole
	// lifetime, same effect as BEGIN IMMEDIATE.
	if _, err := tx.ExecContext(ctx, "UPDATE models SET active = 0 WHERE active = 1"); err != nil {
		return nil, mapErr(fmt.Errorf("clear active: %w", err))
	}

	var m Model
	err = tx.GetContext(ctx, &m, "SELECT id, key, label, active FROM models WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownModel
	}
	if err != nil {
		return nil, mapErr(fmt.Errorf("find model %d: %w", id, err))
	}

	if _, err := tx.ExecContext(ctx, "UPDATE models SET active = 1 WHERE id = ?", id); err != nil {
		return nil, mapErr(fmt.Errorf("set active %d: %w", id, err))
	}
	if err := tx.Commit(); err != nil {
		return nil, mapErr(fmt.Errorf("commit switch: %w", err))
	}

	m.Active = true
	return &m, nil
}
