package jwt

import "errors"

var (
	ErrInvalidToken            = errors.New("jwt: invalid token")
	ErrExpiredToken            = errors.New("jwt: token is expired")
	ErrInvalidSignature        = errors.New("jwt: invalid signature")
	ErrMissingSigningKey       = errors.New("jwt: missing signing key")
	ErrUnexpectedSigningMethod = errors.New("jwt: unexpected signing method")
)
