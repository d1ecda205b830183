package services

import "errors"

// Errors returned by the services. Callers match them with errors.Is; the
// wrapped message carries the detail.
var (
	ErrValidation         = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthenticated    = errors.New("login required")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPersistence        = errors.New("database error")
)
