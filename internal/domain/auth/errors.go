package auth

import "errors"

var (
	ErrInvalidToken    = errors.New("invalid or missing token")
	ErrTokenExpired    = errors.New("token expired")
	ErrMissingIdentity = errors.New("token is missing employee or company identity")
)
