package submissionrepo

import (
	"context"
	"time"

	"github.com/penguicon/contrax/internal/domain"
)

type Repository interface {
	// Create stores a new submission. RSVPs in d are stored in order. If the ID is taken,
	// ErrAlreadyExists is returned.
	Create(ctx context.Context, d domain.SubmissionData) error

	// Get returns a submission with its presenters and RSVPs. If it does not exist, ErrNotFound is returned.
	Get(ctx context.Context, id domain.SubmissionID) (domain.SubmissionData, error)

	// ListByStates returns submissions in any of the given states, ordered by ID.
	// RSVPs are ordered by the time they were made.
	ListByStates(ctx context.Context, states []domain.FollowUpState) ([]domain.SubmissionData, error)

	// AddRSVP records that user would attend. ErrNotFound if the submission does not exist,
	// ErrAlreadyRSVPed if the user already has an RSVP on it.
	AddRSVP(ctx context.Context, id domain.SubmissionID, user domain.User, at time.Time) error

	// RemoveRSVP withdraws the user's RSVP. ErrNotFound if the submission does not exist,
	// ErrNotRSVPed if the user has no RSVP on it.
	RemoveRSVP(ctx context.Context, id domain.SubmissionID, userID domain.UserID) error
}
