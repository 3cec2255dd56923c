// Package rsvptoggle handles the "would attend" toggle on a submission.
//
// The protocol is confirm-then-mutate: the record and the points tally change only after the
// backend accepts the request. At most one request per submission is in flight; gestures that
// arrive while one is pending are ignored.
package rsvptoggle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/penguicon/contrax/internal/domain"
)

// LoginMessage is shown to anonymous viewers who try to vote.
const LoginMessage = `Please log in to indicate you <span class="fa fa-thumbs-o-up"></span> "Wouldattend" an event.`

// Requester sends RSVP changes for the current session to the backend.
type Requester interface {
	AddRSVP(ctx context.Context, id domain.SubmissionID) error
	RemoveRSVP(ctx context.Context, id domain.SubmissionID) error
}

// LoginPrompter asks the viewer to sign in.
type LoginPrompter interface {
	PromptLogin(message string)
}

// ErrorReporter shows a failure to the viewer.
type ErrorReporter interface {
	ReportError(message string)
}

// Outcome is the result of one toggle gesture.
type Outcome int

const (
	OutcomeLoginRequired Outcome = iota + 1
	OutcomeIgnored
	OutcomeAdded
	OutcomeRemoved
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoginRequired:
		return "login-required"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeAdded:
		return "added"
	case OutcomeRemoved:
		return "removed"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

type Options struct {
	Login  LoginPrompter
	Errors ErrorReporter
	Logger *slog.Logger
}

type Controller struct {
	requests Requester
	points   *Points
	login    LoginPrompter
	errs     ErrorReporter
	logger   *slog.Logger
}

func NewController(requests Requester, points *Points, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if points == nil {
		points = NewPoints(0)
	}
	return &Controller{
		requests: requests,
		points:   points,
		login:    opts.Login,
		errs:     opts.Errors,
		logger:   logger,
	}
}

// Points returns the tally the controller adjusts.
func (c *Controller) Points() *Points { return c.points }

// Toggle flips the viewer's vote on s.
//
// It blocks for the duration of the backend request. On failure the record returns to idle,
// the error is reported to the viewer, and OutcomeFailed is returned with the error; neither
// the record nor the tally changes.
func (c *Controller) Toggle(ctx context.Context, s *domain.Submission, v domain.Viewer) (Outcome, error) {
	if v.Anonymous() {
		if c.login != nil {
			c.login.PromptLogin(LoginMessage)
		}
		return OutcomeLoginRequired, nil
	}
	if !s.BeginUpdate() {
		c.logger.Debug("rsvp toggle ignored; request in flight", "submission_id", int(s.ID))
		return OutcomeIgnored, nil
	}

	if s.HasRSVP(v.ID) {
		if err := c.requests.RemoveRSVP(ctx, s.ID); err != nil {
			return c.fail(s, "remove", err)
		}
		s.RemoveRSVP(v.ID)
		s.EndUpdate()
		n := c.points.Add(1)
		c.logger.Debug("rsvp removed", "submission_id", int(s.ID), "viewer_id", int(v.ID), "points", n)
		return OutcomeRemoved, nil
	}

	if err := c.requests.AddRSVP(ctx, s.ID); err != nil {
		return c.fail(s, "add", err)
	}
	s.AddRSVP(v.User())
	s.EndUpdate()
	n := c.points.Add(-1)
	c.logger.Debug("rsvp added", "submission_id", int(s.ID), "viewer_id", int(v.ID), "points", n)
	return OutcomeAdded, nil
}

func (c *Controller) fail(s *domain.Submission, op string, err error) (Outcome, error) {
	s.EndUpdate()
	c.logger.Warn("rsvp request failed", "submission_id", int(s.ID), "op", op, "error", err)
	if c.errs != nil {
		c.errs.ReportError(fmt.Sprintf("Could not update your vote for %q. Please try again.", s.Title))
	}
	return OutcomeFailed, fmt.Errorf("%s rsvp for submission %d: %w", op, s.ID, err)
}
