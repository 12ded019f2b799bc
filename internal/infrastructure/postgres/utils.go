package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// isQueryCanceled verifica si PostgreSQL canceló la consulta (57014), p. ej. por statement_timeout.
func isQueryCanceled(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "57014" // query_canceled
	}
	return false
}

// wrapQueryErr antepone la operación y traduce la cancelación del servidor a context.DeadlineExceeded.
func wrapQueryErr(op string, err error) error {
	if isQueryCanceled(err) {
		return fmt.Errorf("%s: %w: %v", op, context.DeadlineExceeded, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
