package domain

import "errors"

var (
	// ErrNotFound is returned when something is not found
	ErrNotFound = errors.New("item not found")
	ErrConflict = errors.New("item already exists")
	// ErrAuthMismatch is returned when a submitted password does not match
	// the stored account code. Distinct from ErrNotFound so the login page
	// can report an unknown tenant separately, as the original UI did.
	ErrAuthMismatch = errors.New("wrong password")
	// ErrProtected is returned when deleting the super-admin account.
	ErrProtected = errors.New("account is protected")
)
