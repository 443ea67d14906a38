package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
)

const uniqueViolation = "23505"

// conflictFields maps unique constraints to the user-facing field they guard.
var conflictFields = map[string]string{
	"users_username_key": "username",
	"users_email_key":    "email",
	"roles_name_key":     "name",
}

// mapWriteErr turns a unique violation into *errs.ConflictError and wraps
// anything else with op.
func mapWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		field, ok := conflictFields[pgErr.ConstraintName]
		if !ok {
			field = pgErr.ConstraintName
		}
		return &errs.ConflictError{Field: field}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// validID reports whether id can be a primary key. Anything else cannot
// match a row, so callers answer ErrNotFound without a round trip.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
