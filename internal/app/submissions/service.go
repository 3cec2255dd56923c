package submissions

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/penguicon/contrax/internal/domain"
	"github.com/penguicon/contrax/internal/ports/out/clock"
	"github.com/penguicon/contrax/internal/ports/out/submissionrepo"
	"github.com/penguicon/contrax/internal/ports/out/userrepo"
)

type Service struct {
	submissions submissionrepo.Repository
	users       userrepo.Repository
	clock       clock.Clock
	logger      *slog.Logger

	newVersion func() string

	mu      sync.RWMutex
	version string
}

func NewService(submissionsRepo submissionrepo.Repository, usersRepo userrepo.Repository, clk clock.Clock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		submissions: submissionsRepo,
		users:       usersRepo,
		clock:       clk,
		logger:      logger,
		newVersion:  uuid.NewString,
	}
	s.version = s.newVersion()
	return s
}

// SetNewVersionForTest overrides dataset version generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewVersionForTest(fn func() string) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newVersion = fn
	s.version = fn()
}

// DatasetVersion returns the tag that changes whenever any RSVP changes.
// Clients use it as a cache-busting query parameter.
func (s *Service) DatasetVersion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Service) bumpVersion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = s.newVersion()
}

func (s *Service) ListSubmissions(ctx context.Context, states []domain.FollowUpState) ([]domain.SubmissionData, error) {
	if len(states) == 0 {
		return nil, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "at least one state is required", Details: map[string]any{"state": "must be non-empty"}}
	}
	for _, st := range states {
		if !st.Valid() {
			return nil, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid state", Details: map[string]any{"state": int(st)}}
		}
	}
	return s.submissions.ListByStates(ctx, states)
}

// Viewer resolves the profile of a user id. The anonymous id yields an anonymous profile.
func (s *Service) Viewer(ctx context.Context, id domain.UserID) (ViewerProfile, error) {
	if id == domain.AnonymousUserID {
		return ViewerProfile{}, nil
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return ViewerProfile{}, &Error{Status: 401, Code: "UNKNOWN_VIEWER", Message: "unknown viewer"}
		}
		return ViewerProfile{}, err
	}
	return ViewerProfile{
		Viewer: domain.Viewer{ID: u.ID, Name: u.Name, Staff: u.Staff},
		Points: u.Points,
	}, nil
}

// AddRSVP records that the viewer would attend a submission and spends one of their points.
// Staff may RSVP with no points left.
func (s *Service) AddRSVP(ctx context.Context, viewer domain.Viewer, id domain.SubmissionID) error {
	if viewer.Anonymous() {
		return errUnauthorized()
	}
	if _, err := s.submissions.Get(ctx, id); err != nil {
		if errors.Is(err, submissionrepo.ErrNotFound) {
			return errSubmissionNotFound(int(id))
		}
		return err
	}

	if _, err := s.users.AdjustPoints(ctx, viewer.ID, -1, viewer.Staff); err != nil {
		switch {
		case errors.Is(err, userrepo.ErrInsufficientPoints):
			return &Error{Status: 403, Code: "NO_RSVP_POINTS", Message: "no rsvp points left"}
		case errors.Is(err, userrepo.ErrNotFound):
			return errUnauthorized()
		}
		return err
	}

	if err := s.submissions.AddRSVP(ctx, id, viewer.User(), s.clock.Now()); err != nil {
		s.refund(ctx, viewer.ID)
		switch {
		case errors.Is(err, submissionrepo.ErrAlreadyRSVPed):
			return &Error{Status: 409, Code: "ALREADY_RSVPED", Message: "already rsvped to this submission"}
		case errors.Is(err, submissionrepo.ErrNotFound):
			return errSubmissionNotFound(int(id))
		}
		return err
	}

	s.bumpVersion()
	s.logger.Info("rsvp added", "submission_id", int(id), "user_id", int(viewer.ID))
	return nil
}

// RemoveRSVP withdraws the viewer's RSVP and gives the point back.
func (s *Service) RemoveRSVP(ctx context.Context, viewer domain.Viewer, id domain.SubmissionID) error {
	if viewer.Anonymous() {
		return errUnauthorized()
	}
	d, err := s.submissions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, submissionrepo.ErrNotFound) {
			return errSubmissionNotFound(int(id))
		}
		return err
	}
	if !rsvped(d, viewer.ID) {
		return errNotRSVPed()
	}

	// The point goes back first so a failed refund leaves the rsvp in place.
	if _, err := s.users.AdjustPoints(ctx, viewer.ID, 1, true); err != nil {
		return err
	}

	if err := s.submissions.RemoveRSVP(ctx, id, viewer.ID); err != nil {
		s.reclaim(ctx, viewer.ID)
		switch {
		case errors.Is(err, submissionrepo.ErrNotFound):
			return errSubmissionNotFound(int(id))
		case errors.Is(err, submissionrepo.ErrNotRSVPed):
			return errNotRSVPed()
		}
		return err
	}

	s.bumpVersion()
	s.logger.Info("rsvp removed", "submission_id", int(id), "user_id", int(viewer.ID))
	return nil
}

func rsvped(d domain.SubmissionData, id domain.UserID) bool {
	for _, u := range d.RSVPedBy {
		if u.ID == id {
			return true
		}
	}
	return false
}

func errNotRSVPed() *Error {
	return &Error{Status: 409, Code: "NOT_RSVPED", Message: "no rsvp to remove"}
}

// reclaim undoes the refund of a removal that did not happen.
func (s *Service) reclaim(ctx context.Context, id domain.UserID) {
	if _, err := s.users.AdjustPoints(ctx, id, -1, true); err != nil {
		s.logger.Error("reclaim rsvp point failed", "user_id", int(id), "error", err)
	}
}

func (s *Service) refund(ctx context.Context, id domain.UserID) {
	if _, err := s.users.AdjustPoints(ctx, id, 1, true); err != nil {
		s.logger.Error("refund rsvp point failed", "user_id", int(id), "error", err)
	}
}
