package userrepo

import (
	"context"

	"github.com/penguicon/contrax/internal/domain"
)

// User is the stored account record. Points is the number of RSVPs the user may still make.
type User struct {
	ID     domain.UserID
	Name   string
	Staff  bool
	Points int
}

type Repository interface {
	// Create stores a new user. If the ID is taken, ErrAlreadyExists is returned.
	Create(ctx context.Context, u User) error

	// Get returns the user. If it does not exist, ErrNotFound is returned.
	Get(ctx context.Context, id domain.UserID) (User, error)

	// AdjustPoints adds delta to the user's points and returns the new balance. When
	// allowNegative is false and the balance would drop below zero, nothing changes and
	// ErrInsufficientPoints is returned.
	AdjustPoints(ctx context.Context, id domain.UserID, delta int, allowNegative bool) (int, error)
}
