package submissionrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/penguicon/contrax/internal/adapters/postgres"
	"github.com/penguicon/contrax/internal/domain"
	"github.com/penguicon/contrax/internal/ports/out/submissionrepo"
)

// Repo is a Postgres implementation of submissionrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, d domain.SubmissionData) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	var submitterID *int
	if d.Submitter != nil {
		id := int(d.Submitter.ID)
		submitterID = &id
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO submissions (id, title, description, submitter_id, duration, follow_up_state)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, int(d.ID), d.Title, d.Description, submitterID, int(d.Duration), int(d.FollowUpState))
		if err != nil {
			return err
		}
		for i, p := range d.Presenters {
			if _, err := tx.Exec(ctx, `
				INSERT INTO submission_presenters (submission_id, position, name)
				VALUES ($1, $2, $3)
			`, int(d.ID), i, p.Name); err != nil {
				return err
			}
		}
		for _, u := range d.RSVPedBy {
			if _, err := tx.Exec(ctx, `
				INSERT INTO submission_rsvps (submission_id, user_id, rsvped_at)
				VALUES ($1, $2, $3)
				ON CONFLICT (submission_id, user_id) DO NOTHING
			`, int(d.ID), int(u.ID), time.Time{}); err != nil {
				return err
			}
		}
		return nil
	})
	if postgres.IsUniqueViolation(err) {
		return submissionrepo.ErrAlreadyExists
	}
	return err
}

func (r *Repo) Get(ctx context.Context, id domain.SubmissionID) (domain.SubmissionData, error) {
	if r.pool == nil {
		return domain.SubmissionData{}, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, selectSubmissions+`WHERE s.id = $1`, int(id))
	if err != nil {
		return domain.SubmissionData{}, err
	}
	out, err := r.collect(ctx, rows)
	if err != nil {
		return domain.SubmissionData{}, err
	}
	if len(out) == 0 {
		return domain.SubmissionData{}, submissionrepo.ErrNotFound
	}
	return out[0], nil
}

func (r *Repo) ListByStates(ctx context.Context, states []domain.FollowUpState) ([]domain.SubmissionData, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	codes := make([]int32, 0, len(states))
	for _, st := range states {
		codes = append(codes, int32(st))
	}
	rows, err := r.pool.Query(ctx, selectSubmissions+`WHERE s.follow_up_state = ANY($1) ORDER BY s.id ASC`, codes)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

func (r *Repo) AddRSVP(ctx context.Context, id domain.SubmissionID, user domain.User, at time.Time) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockSubmission(ctx, tx, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			INSERT INTO submission_rsvps (submission_id, user_id, rsvped_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (submission_id, user_id) DO NOTHING
		`, int(id), int(user.ID), at.UTC())
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return submissionrepo.ErrAlreadyRSVPed
		}
		return nil
	})
}

func (r *Repo) RemoveRSVP(ctx context.Context, id domain.SubmissionID, userID domain.UserID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockSubmission(ctx, tx, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			DELETE FROM submission_rsvps
			WHERE submission_id = $1 AND user_id = $2
		`, int(id), int(userID))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return submissionrepo.ErrNotRSVPed
		}
		return nil
	})
}

func lockSubmission(ctx context.Context, tx pgx.Tx, id domain.SubmissionID) error {
	var one int
	err := tx.QueryRow(ctx, `SELECT 1 FROM submissions WHERE id = $1 FOR UPDATE`, int(id)).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return submissionrepo.ErrNotFound
	}
	return err
}

const selectSubmissions = `
	SELECT s.id, s.title, s.description, s.submitter_id, u.name, s.duration, s.follow_up_state
	FROM submissions s
	LEFT JOIN users u ON u.id = s.submitter_id
`

// collect scans submission rows, then loads presenters and RSVPs for them in two queries.
func (r *Repo) collect(ctx context.Context, rows pgx.Rows) ([]domain.SubmissionData, error) {
	defer rows.Close()

	out := make([]domain.SubmissionData, 0)
	index := make(map[domain.SubmissionID]int)
	ids := make([]int32, 0)
	for rows.Next() {
		var (
			id            int
			d             domain.SubmissionData
			submitterID   *int
			submitterName *string
			duration      int
			state         int
		)
		if err := rows.Scan(&id, &d.Title, &d.Description, &submitterID, &submitterName, &duration, &state); err != nil {
			return nil, err
		}
		d.ID = domain.SubmissionID(id)
		d.Duration = domain.Duration(duration)
		d.FollowUpState = domain.FollowUpState(state)
		if submitterID != nil {
			u := domain.User{ID: domain.UserID(*submitterID)}
			if submitterName != nil {
				u.Name = *submitterName
			}
			d.Submitter = &u
		}
		d.Presenters = []domain.Presenter{}
		d.RSVPedBy = []domain.User{}
		index[d.ID] = len(out)
		ids = append(ids, int32(id))
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	prows, err := r.pool.Query(ctx, `
		SELECT submission_id, name
		FROM submission_presenters
		WHERE submission_id = ANY($1)
		ORDER BY submission_id ASC, position ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var sid int
		var name string
		if err := prows.Scan(&sid, &name); err != nil {
			return nil, err
		}
		i := index[domain.SubmissionID(sid)]
		out[i].Presenters = append(out[i].Presenters, domain.Presenter{Name: name})
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}

	rrows, err := r.pool.Query(ctx, `
		SELECT r.submission_id, r.user_id, u.name
		FROM submission_rsvps r
		JOIN users u ON u.id = r.user_id
		WHERE r.submission_id = ANY($1)
		ORDER BY r.submission_id ASC, r.rsvped_at ASC, r.seq ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rrows.Close()
	for rrows.Next() {
		var sid, uid int
		var name string
		if err := rrows.Scan(&sid, &uid, &name); err != nil {
			return nil, err
		}
		i := index[domain.SubmissionID(sid)]
		out[i].RSVPedBy = append(out[i].RSVPedBy, domain.User{ID: domain.UserID(uid), Name: name})
	}
	if err := rrows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
