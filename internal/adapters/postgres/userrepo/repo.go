package userrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/penguicon/contrax/internal/adapters/postgres"
	"github.com/penguicon/contrax/internal/domain"
	"github.com/penguicon/contrax/internal/ports/out/userrepo"
)

// Repo is a Postgres implementation of userrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, u userrepo.User) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, staff, points)
		VALUES ($1, $2, $3, $4)
	`, int(u.ID), u.Name, u.Staff, u.Points)
	if postgres.IsUniqueViolation(err) {
		return userrepo.ErrAlreadyExists
	}
	return err
}

func (r *Repo) Get(ctx context.Context, id domain.UserID) (userrepo.User, error) {
	if r.pool == nil {
		return userrepo.User{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT name, staff, points
		FROM users
		WHERE id = $1
	`, int(id))
	u := userrepo.User{ID: id}
	if err := row.Scan(&u.Name, &u.Staff, &u.Points); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return userrepo.User{}, userrepo.ErrNotFound
		}
		return userrepo.User{}, err
	}
	return u, nil
}

func (r *Repo) AdjustPoints(ctx context.Context, id domain.UserID, delta int, allowNegative bool) (int, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	// Single statement so concurrent adjustments cannot overdraw the balance.
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET points = points + $2
		WHERE id = $1 AND ($3 OR points + $2 >= 0)
		RETURNING points
	`, int(id), delta, allowNegative)
	var n int
	err := row.Scan(&n)
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// No row updated: either the user is missing or the balance is too low.
	cur, getErr := r.Get(ctx, id)
	if getErr != nil {
		return 0, getErr
	}
	return cur.Points, userrepo.ErrInsufficientPoints
}
