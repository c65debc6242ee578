package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kisan-sangraha/sangraha-go/internal/repository"
)

// DB is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the same
// repository code runs inside and outside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements repository.Store on Postgres. The zero db means every
// call runs directly against the pool; RunTx hands out a copy bound to an
// open transaction.
type Store struct {
	pool *pgxpool.Pool
	db   DB // non-nil inside RunTx
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) handle() DB {
	if s.db != nil {
		return s.db
	}
	return s.pool
}

func (s *Store) Facilities() repository.Facilities { return &FacilityRepo{db: s.handle()} }
func (s *Store) Bookings() repository.Bookings     { return &BookingRepo{db: s.handle()} }
func (s *Store) Users() repository.Users           { return &UserRepo{db: s.handle()} }
func (s *Store) Insights() repository.Insights     { return &InsightRepo{db: s.handle()} }

// RunTx runs fn inside a serializable transaction. A nested call joins the
// transaction already in progress.
func (s *Store) RunTx(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Store) error,
) error {
	const op = "postgres.Store.RunTx"

	if s.db != nil {
		return fn(ctx, s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer tx.Rollback(ctx)

	if err := fn(ctx, &Store{pool: s.pool, db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: commit: %w", op, translateDBErr(err))
	}

	return nil
}
