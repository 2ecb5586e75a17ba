package repository

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when the UNIQUE constraint on username rejects an insert.
	ErrUsernameTaken = errors.New("username already taken")
)
