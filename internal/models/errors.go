package models

import "errors"

var (
	// ErrNotFound is returned by stores when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a user with the same email already exists.
	ErrDuplicateEmail = errors.New("email already exists")
)
