package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/loftable/teamsync/internal/domain"
)

const uniqueViolation = "23505"

// mapErr is the single place where backend-specific error shapes are
// translated onto the domain taxonomy. Nothing above this package inspects
// pgx errors.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	default:
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrUnknown)
	}
}
