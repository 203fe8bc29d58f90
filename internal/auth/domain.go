package auth

import "errors"

// User is an operator account bound to a single firm.
type User struct {
	ID           int64
	FirmID       int64
	Username     string
	PasswordHash string
	IsActive     bool
}

// ErrInvalidCredentials indicates login failure.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ErrTokenInvalid indicates a missing, expired or revoked token.
var ErrTokenInvalid = errors.New("auth: token invalid")
