package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/techbank/banking-backend/internal/apperrors"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint breach.
const uniqueViolation = "23505"

// mapStoreError folds infrastructure-level failures into
// apperrors.ErrStoreUnavailable so callers can distinguish "the store said no"
// from "the store could not be reached". Everything else passes through with
// context attached.
func mapStoreError(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s timed out: %v", apperrors.ErrStoreUnavailable, operation, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 is connection exceptions, class 57 operator intervention
		// (shutdown, crash recovery). Both mean the store, not the data.
		if strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57") {
			return fmt.Errorf("%w: %s: %v", apperrors.ErrStoreUnavailable, operation, err)
		}
		return fmt.Errorf("%s: %w", operation, err)
	}

	if pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %s: %v", apperrors.ErrStoreUnavailable, operation, err)
	}

	return fmt.Errorf("%s: %w", operation, err)
}

// isUniqueViolation reports whether err is a unique constraint breach.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
