package userrepo

import "errors"

var (
	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrAlreadyExists indicates a user already exists with the provided ID.
	ErrAlreadyExists = errors.New("user already exists")

	// ErrInsufficientPoints indicates the user has no RSVP points left.
	ErrInsufficientPoints = errors.New("insufficient rsvp points")
)
