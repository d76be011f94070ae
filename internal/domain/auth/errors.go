package auth

import "errors"

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrAccountBlocked = errors.New("account is blocked")
)
