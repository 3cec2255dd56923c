package userrepo

import (
	"context"
	"sync"

	"github.com/penguicon/contrax/internal/domain"
	"github.com/penguicon/contrax/internal/ports/out/userrepo"
)

// Repo is an in-memory implementation of userrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex
	m  map[domain.UserID]userrepo.User
}

func NewRepo() *Repo {
	return &Repo{m: make(map[domain.UserID]userrepo.User)}
}

func (r *Repo) Create(ctx context.Context, u userrepo.User) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[u.ID]; ok {
		return userrepo.ErrAlreadyExists
	}
	r.m[u.ID] = u
	return nil
}

func (r *Repo) Get(ctx context.Context, id domain.UserID) (userrepo.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.m[id]
	if !ok {
		return userrepo.User{}, userrepo.ErrNotFound
	}
	return u, nil
}

func (r *Repo) AdjustPoints(ctx context.Context, id domain.UserID, delta int, allowNegative bool) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.m[id]
	if !ok {
		return 0, userrepo.ErrNotFound
	}
	next := u.Points + delta
	if next < 0 && !allowNegative {
		return u.Points, userrepo.ErrInsufficientPoints
	}
	u.Points = next
	r.m[id] = u
	return next, nil
}
