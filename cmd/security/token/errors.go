package token

import "errors"

// Public, stable errors for callers.
var (
	ErrBearerMissing   = errors.New("bearer token missing")
	ErrBearerMalformed = errors.New("bearer token malformed")
	ErrSecretMissing   = errors.New("client secret missing")
)
