package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// clampHour forces a notification hour into [0, 23].
func clampHour(h int) int {
	if h < 0 {
		return 0
	}
	if h > 23 {
		return 23
	}
	return h
}

// EnsureUser creates the user row with defaults if it does not exist.
func (s *SQLiteStore) EnsureUser(ctx context.Context, userID int64, notifyHour int) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO users(user_id, notify_hour, subscribed) VALUES (?, ?, 1)",
		userID, clampHour(notifyHour))
	if err != nil {
		return mapErr(fmt.Errorf("ensure user %d: %w", userID, err))
	}
	return nil
}

// GetUser returns the user row, or nil when the user is unknown.
func (s *SQLiteStore) GetUser(ctx context.Context, userID int64) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u,
		"SELECT user_id, sign, notify_hour, subscribed, last_sent_date FROM users WHERE user_id = ?",
		userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapErr(fmt.Errorf("get user %d: %w", userID, err))
	}
	return &u, nil
}

// SetSign stores the user's zodiac sign.
func (s *SQLiteStore) SetSign(ctx context.Context, userID int64, sign string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET sign = ? WHERE user_id = ?", sign, userID)
	if err != nil {
		return mapErr(fmt.Errorf("set sign: %w", err))
	}
	return nil
}

// SetNotifyHour stores the user's delivery hour, clamped to [0, 23].
func (s *SQLiteStore) SetNotifyHour(ctx context.Context, userID int64, hour int) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET notify_hour = ? WHERE user_id = ?", clampHour(hour), userID)
	if err != nil {
		return mapErr(fmt.Errorf("set notify hour: %w", err))
	}
	return nil
}

// SetSubscribed toggles the user's subscription flag.
func (s *SQLiteStore) SetSubscribed(ctx context.Context, userID int64, on bool) error {
	val := 0
	if on {
		val = 1
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET subscribed = ? WHERE user_id = ?", val, userID)
	if err != nil {
		return mapErr(fmt.Errorf("set subscribed: %w", err))
	}
	return nil
}

// ListDueUsers returns subscribed users with a sign set whose delivery
// hour matches and who have not been sent today's push yet. Pure query,
// no mutation; today and hour come from the caller so the selection is
// clock-independent.
func (s *SQLiteStore) ListDueUsers(ctx context.Context, today string, hour int) ([]DueUser, error) {
	var due []DueUser
	err := s.db.SelectContext(ctx, &due, `
		SELECT user_id, sign
		FROM users
		WHERE subscribed = 1
		  AND sign IS NOT NULL
		  AND notify_hour = ?
		  AND (last_sent_date IS NULL OR last_sent_date <> ?)
	`, hour, today)
	if err != nil {
		return nil, mapErr(fmt.Errorf("list due users: %w", err))
	}
	return due, nil
}

// MarkSent records that today's push reached the user. Idempotent.
func (s *SQLiteStore) MarkSent(ctx context.Context, userID int64, today string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET last_sent_date = ? WHERE user_id = ?", today, userID)
	if err != nil {
		return mapErr(fmt.Errorf("mark sent %d: %w", userID, err))
	}
	return nil
}
