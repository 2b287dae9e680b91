package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Note is a single user note.
type Note struct {
	ID        int64  `db:"id"`
	UserID    int64  `db:"user_id"`
	Text      string `db:"text"`
	CreatedAt string `db:"created_at"`
}

// User is a bot user profile. Sign and LastSentDate are nil until set.
type User struct {
	UserID       int64   `db:"user_id"`
	Sign         *string `db:"sign"`
	NotifyHour   int     `db:"notify_hour"`
	Subscribed   bool    `db:"subscribed"`
	LastSentDate *string `db:"last_sent_date"`
}

// Model is an entry in the LLM model registry. At most one row is active.
type Model struct {
	ID     int64  `db:"id"`
	Key    string `db:"key"`
	Label  string `db:"label"`
	Active bool   `db:"active"`
}

// Character is a persona from the static catalog.
type Character struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	Prompt string `db:"prompt"`
}

// DueUser is a user selected for today's push.
type DueUser struct {
	UserID int64  `db:"user_id"`
	Sign   string `db:"sign"`
}

// DateCount is one bucket of the per-date note histogram.
type DateCount struct {
	Date  string `db:"d"`
	Total int    `db:"total"`
}

// ServiceCall is one audited outbound provider call.
type ServiceCall struct {
	ID         string
	Service    string
	Request    string
	Response   string
	StatusCode int
	Duration   time.Duration
	Err        string
}

// ErrorEntry is one audited failure.
type ErrorEntry struct {
	Level   string
	Source  string
	Message string
	UserID  int64
	Command string
	Details string
}

// Store is the persistence interface.
type Store interface {
	AddNote(ctx context.Context, userID int64, text string) (int64, error)
	ListNotes(ctx context.Context, userID int64, limit int) ([]Note, error)
	SearchNotes(ctx context.Context, userID int64, needle string, limit int) ([]Note, error)
	AllNotes(ctx context.Context, userID int64) ([]Note, error)
	UpdateNote(ctx context.Context, userID, noteID int64, text string) (bool, error)
	DeleteNote(ctx context.Context, userID, noteID int64) (bool, error)
	CountNotes(ctx context.Context, userID int64) (int, error)
	NoteStatsByDate(ctx context.Context, userID int64, days int) ([]DateCount, error)

	ListModels(ctx context.Context) ([]Model, error)
	ActiveModel(ctx context.Context) (*Model, error)
	SetActiveModel(ctx context.Context, id int64) (*Model, error)

	ListCharacters(ctx context.Context) ([]Character, error)
	CharacterForUser(ctx context.Context, userID int64) (*Character, error)
	SetCharacterForUser(ctx context.Context, userID, characterID int64) (*Character, error)
	RandomCharacter(ctx context.Context) (*Character, error)

	EnsureUser(ctx context.Context, userID int64, notifyHour int) error
	GetUser(ctx context.Context, userID int64) (*User, error)
	SetSign(ctx context.Context, userID int64, sign string) error
	SetNotifyHour(ctx context.Context, userID int64, hour int) error
	SetSubscribed(ctx context.Context, userID int64, on bool) error
	ListDueUsers(ctx context.Context, today string, hour int) ([]DueUser, error)
	MarkSent(ctx context.Context, userID int64, today string) error

	RecordServiceCall(ctx context.Context, call ServiceCall)
	RecordError(ctx context.Context, entry ErrorEntry)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  *sqlx.DB
	log *zap.Logger
}

// New opens a SQLite database and runs migrations.
func New(path string, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, log: log.Named("store")}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
