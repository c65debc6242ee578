package postgres

import (
	"context"
	"fmt"

	"github.com/kisan-sangraha/sangraha-go/internal/domain"
)

type UserRepo struct {
	db DB
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	const op = "postgres.UserRepo.Create"

	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, username, password, role)
		 VALUES ($1, $2, $3, $4)`,
		u.ID, u.Username, u.PasswordHash, string(u.Role),
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *UserRepo) Get(ctx context.Context, id string) (*domain.User, error) {
	const op = "postgres.UserRepo.Get"

	var u domain.User
	var role string
	err := r.db.QueryRow(ctx,
		`SELECT id, username, password, role FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &role)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	u.Role = domain.Role(role)

	return &u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const op = "postgres.UserRepo.GetByUsername"

	var u domain.User
	var role string
	err := r.db.QueryRow(ctx,
		`SELECT id, username, password, role FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &role)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	u.Role = domain.Role(role)

	return &u, nil
}
