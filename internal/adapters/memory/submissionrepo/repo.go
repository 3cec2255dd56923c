package submissionrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/penguicon/contrax/internal/domain"
	"github.com/penguicon/contrax/internal/ports/out/submissionrepo"
)

type rsvp struct {
	user domain.User
	at   time.Time
}

type record struct {
	data  domain.SubmissionData // RSVPedBy is kept empty; see rsvps
	rsvps []rsvp
}

// Repo is an in-memory implementation of submissionrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex
	m  map[domain.SubmissionID]*record
}

func NewRepo() *Repo {
	return &Repo{m: make(map[domain.SubmissionID]*record)}
}

func (r *Repo) Create(ctx context.Context, d domain.SubmissionData) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[d.ID]; ok {
		return submissionrepo.ErrAlreadyExists
	}
	rec := &record{data: cloneData(d)}
	rec.data.RSVPedBy = nil
	seen := make(map[domain.UserID]bool, len(d.RSVPedBy))
	for _, u := range d.RSVPedBy {
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		rec.rsvps = append(rec.rsvps, rsvp{user: u})
	}
	r.m[d.ID] = rec
	return nil
}

func (r *Repo) Get(ctx context.Context, id domain.SubmissionID) (domain.SubmissionData, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.m[id]
	if !ok {
		return domain.SubmissionData{}, submissionrepo.ErrNotFound
	}
	return rec.snapshot(), nil
}

func (r *Repo) ListByStates(ctx context.Context, states []domain.FollowUpState) ([]domain.SubmissionData, error) {
	_ = ctx
	want := make(map[domain.FollowUpState]bool, len(states))
	for _, st := range states {
		want[st] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.SubmissionData, 0)
	for _, rec := range r.m {
		if want[rec.data.FollowUpState] {
			out = append(out, rec.snapshot())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repo) AddRSVP(ctx context.Context, id domain.SubmissionID, user domain.User, at time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.m[id]
	if !ok {
		return submissionrepo.ErrNotFound
	}
	for _, v := range rec.rsvps {
		if v.user.ID == user.ID {
			return submissionrepo.ErrAlreadyRSVPed
		}
	}
	rec.rsvps = append(rec.rsvps, rsvp{user: user, at: at.UTC()})
	return nil
}

func (r *Repo) RemoveRSVP(ctx context.Context, id domain.SubmissionID, userID domain.UserID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.m[id]
	if !ok {
		return submissionrepo.ErrNotFound
	}
	for i, v := range rec.rsvps {
		if v.user.ID == userID {
			rec.rsvps = append(rec.rsvps[:i], rec.rsvps[i+1:]...)
			return nil
		}
	}
	return submissionrepo.ErrNotRSVPed
}

func (rec *record) snapshot() domain.SubmissionData {
	d := cloneData(rec.data)
	d.RSVPedBy = make([]domain.User, 0, len(rec.rsvps))
	for _, v := range rec.rsvps {
		d.RSVPedBy = append(d.RSVPedBy, v.user)
	}
	return d
}

func cloneData(d domain.SubmissionData) domain.SubmissionData {
	out := d
	if d.Submitter != nil {
		u := *d.Submitter
		out.Submitter = &u
	}
	out.Presenters = append([]domain.Presenter{}, d.Presenters...)
	out.RSVPedBy = append([]domain.User(nil), d.RSVPedBy...)
	return out
}
