package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authn "github.com/kisan-sangraha/sangraha-go/internal/auth"
	"github.com/kisan-sangraha/sangraha-go/internal/domain"
	"github.com/kisan-sangraha/sangraha-go/internal/repository/memory"
)

func newTestService() *Service {
	return New(memory.NewStore(), Config{
		Secret:   []byte("test-secret"),
		TokenTTL: time.Hour,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	u, token, err := svc.Register(ctx, "  Ramesh ", "secret123", domain.RoleFarmer)
	require.NoError(t, err)
	assert.Equal(t, "ramesh", u.Username)
	assert.Equal(t, domain.RoleFarmer, u.Role)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	identity, err := authn.ParseToken([]byte("test-secret"), token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, identity.UserID)
	assert.Equal(t, domain.RoleFarmer, identity.Role)

	// case-insensitive login
	u2, _, err := svc.Login(ctx, "RAMESH", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, u2.ID)

	_, _, err = svc.Login(ctx, "ramesh", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	cases := map[string]struct {
		username string
		password string
		role     domain.Role
	}{
		"empty username": {"", "secret123", domain.RoleFarmer},
		"short password": {"ramesh", "12345", domain.RoleFarmer},
		"unknown role":   {"ramesh", "secret123", domain.Role("admin")},
	}

	for name, tc := range cases {
		_, _, err := svc.Register(ctx, tc.username, tc.password, tc.role)
		assert.ErrorIs(t, err, ErrInvalidRequest, name)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, _, err := svc.Register(ctx, "suresh", "secret123", domain.RoleProvider)
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "Suresh", "other-pass", domain.RoleFarmer)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	u, _, err := svc.Register(ctx, "geeta", "secret123", domain.RoleProvider)
	require.NoError(t, err)

	got, err := svc.Me(ctx, domain.Identity{UserID: u.ID, Role: u.Role})
	require.NoError(t, err)
	assert.Equal(t, u.Username, got.Username)

	_, err = svc.Me(ctx, domain.Identity{UserID: "missing", Role: domain.RoleFarmer})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestExpiredToken(t *testing.T) {
	token, err := authn.SignToken(
		[]byte("test-secret"),
		domain.Identity{UserID: "u1", Role: domain.RoleFarmer},
		-time.Minute,
	)
	require.NoError(t, err)

	_, err = authn.ParseToken([]byte("test-secret"), token)
	assert.ErrorIs(t, err, authn.ErrInvalidToken)

	// wrong secret
	token, err = authn.SignToken(
		[]byte("other-secret"),
		domain.Identity{UserID: "u1", Role: domain.RoleFarmer},
		time.Hour,
	)
	require.NoError(t, err)

	_, err = authn.ParseToken([]byte("test-secret"), token)
	assert.ErrorIs(t, err, authn.ErrInvalidToken)
}
