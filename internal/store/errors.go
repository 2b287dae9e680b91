package store

import (
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrEmptyRegistry means the models table has no rows at all.
	ErrEmptyRegistry = errors.New("model registry is empty")
	// ErrEmptyCatalog means the characters table has no rows at all.
	ErrEmptyCatalog = errors.New("character catalog is empty")
	// ErrUnknownModel means the given id is not in the model registry.
	ErrUnknownModel = errors.New("unknown model id")
	// ErrUnknownCharacter means the given id is not in the character catalog.
	ErrUnknownCharacter = errors.New("unknown character id")
	// ErrStoreBusy means the write lock could not be acquired within the
	// busy timeout. The caller may retry the whole operation.
	ErrStoreBusy = errors.New("store is busy")
)

// mapErr converts driver-level lock timeouts into ErrStoreBusy so callers
// can match with errors.Is. Everything else passes through unchanged.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %v", ErrStoreBusy, err)
		}
	}
	return err
}
