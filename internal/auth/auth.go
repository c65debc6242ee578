package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kisan-sangraha/sangraha-go/internal/domain"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload carrying the opaque (userID, role) identity the
// core authorizes against.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func SignToken(secret []byte, identity domain.Identity, ttl time.Duration) (string, error) {
	claims := &Claims{
		Role: string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ParseToken(secret []byte, tokenString string) (domain.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Identity{}, ErrInvalidToken
	}

	identity := domain.Identity{
		UserID: claims.Subject,
		Role:   domain.Role(claims.Role),
	}
	if identity.UserID == "" || !identity.Role.Valid() {
		return domain.Identity{}, ErrInvalidToken
	}

	return identity, nil
}
