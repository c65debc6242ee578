// Package auth issues the opaque (userID, role) identity the rest of the
// system authorizes against. Passwords are bcrypt-hashed; identities travel
// as short-lived HS256 tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	authn "github.com/kisan-sangraha/sangraha-go/internal/auth"
	"github.com/kisan-sangraha/sangraha-go/internal/domain"
	"github.com/kisan-sangraha/sangraha-go/internal/repository"
)

type Config struct {
	Secret   []byte
	TokenTTL time.Duration
}

type Service struct {
	store repository.Store
	cfg   Config
}

func New(store repository.Store, cfg Config) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}

	return &Service{store: store, cfg: cfg}
}

// Register creates an account and returns the user with a signed token.
// Usernames are trimmed and lowercased so phone/email lookups stay stable.
func (s *Service) Register(ctx context.Context, username, password string, role domain.Role) (*domain.User, string, error) {
	const op = "service.auth.Register"

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || len(password) < 6 || !role.Valid() {
		return nil, "", fmt.Errorf("%s:%w", op, ErrInvalidRequest)
	}

	hash, err := authn.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("%s:%w", op, err)
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, "", fmt.Errorf("%s:%w", op, ErrUsernameTaken)
		}
		return nil, "", fmt.Errorf("%s:%w", op, err)
	}

	token, err := s.token(u)
	if err != nil {
		return nil, "", fmt.Errorf("%s:%w", op, err)
	}

	return u, token, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	const op = "service.auth.Login"

	username = strings.ToLower(strings.TrimSpace(username))

	u, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", fmt.Errorf("%s:%w", op, ErrInvalidCredentials)
		}
		return nil, "", fmt.Errorf("%s:%w", op, err)
	}

	if !authn.CheckPasswordHash(password, u.PasswordHash) {
		return nil, "", fmt.Errorf("%s:%w", op, ErrInvalidCredentials)
	}

	token, err := s.token(u)
	if err != nil {
		return nil, "", fmt.Errorf("%s:%w", op, err)
	}

	return u, token, nil
}

func (s *Service) Me(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	const op = "service.auth.Me"

	u, err := s.store.Users().Get(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return u, nil
}

// Secret exposes the signing key for the transport's token middleware.
func (s *Service) Secret() []byte {
	return s.cfg.Secret
}

func (s *Service) token(u *domain.User) (string, error) {
	return authn.SignToken(s.cfg.Secret, domain.Identity{UserID: u.ID, Role: u.Role}, s.cfg.TokenTTL)
}
