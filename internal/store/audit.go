package store

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordServiceCall appends one provider-call row. Fire-and-forget: a
// failed write is logged and swallowed so it never reaches the caller
// of the operation being audited.
func (s *SQLiteStore) RecordServiceCall(ctx context.Context, call ServiceCall) {
	if call.ID == "" {
		call.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO service_call_log(id, service, request, response, status_code, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, call.ID, call.Service, call.Request, call.Response,
		call.StatusCode, call.Duration.Milliseconds(), call.Err)
	if err != nil {
		s.log.Warn("service call audit write failed",
			zap.String("service", call.Service), zap.Error(err))
	}
}

// RecordError appends one error row, same fire-and-forget contract as
// RecordServiceCall.
func (s *SQLiteStore) RecordError(ctx context.Context, entry ErrorEntry) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO error_log(level, source, message, user_id, command, details)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.Level, entry.Source, entry.Message, entry.UserID, entry.Command, entry.Details)
	if err != nil {
		s.log.Warn("error audit write failed",
			zap.String("source", entry.Source), zap.Error(err))
	}
}
