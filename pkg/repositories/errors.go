package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/propertyconnect/engine/pkg/apperrors"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaks.
// Duplicate email/license races between concurrent inserts surface here.
const uniqueViolation = "23505"

// mapError converts pgx errors into the typed outcomes callers branch on.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperrors.ErrConflict
	}
	return err
}
