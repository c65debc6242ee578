package auth

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid credentials payload")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("unknown username or wrong password")
	ErrUserNotFound       = errors.New("user not found")
)
