package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kisan-sangraha/sangraha-go/internal/repository"
)

// IsRetryable reports serialization failures and deadlocks, which a caller
// may retry as a fresh transaction.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return true
		}
	}

	return false
}

func translateDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		switch {
		// unique_violation
		case pge.Code == "23505":
			return repository.ErrConflict
		// class 08: connection exceptions
		case len(pge.Code) >= 2 && pge.Code[:2] == "08":
			return repository.ErrUnavailable
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return repository.ErrUnavailable
	}

	return err
}
