// Package wire defines the JSON bodies of the submissions API, shared by the server and the client.
package wire

import (
	"github.com/oapi-codegen/nullable"

	"github.com/penguicon/contrax/internal/domain"
)

// VersionCookie names the cookie that carries the current dataset version tag.
const VersionCookie = "submission_ver"

type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Presenter struct {
	Name string `json:"name"`
}

// Submission is one record of GET /api/submissions. Submitter is omitted or null for
// submissions without a known submitter.
type Submission struct {
	ID            int                     `json:"id"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description,omitempty"`
	Submitter     nullable.Nullable[User] `json:"submitter,omitempty"`
	Presenters    []Presenter             `json:"presenters"`
	Duration      int                     `json:"duration"`
	FollowUpState int                     `json:"followUpState"`
	RSVPedBy      []User                  `json:"rsvped_by"`
}

// Viewer is the body of GET /api/viewer.
type Viewer struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Staff  bool   `json:"staff"`
	Points int    `json:"points"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestID nullable.Nullable[string]         `json:"requestId,omitempty"`
}

func SubmissionFromDomain(d domain.SubmissionData) Submission {
	out := Submission{
		ID:            int(d.ID),
		Title:         d.Title,
		Description:   d.Description,
		Presenters:    make([]Presenter, 0, len(d.Presenters)),
		Duration:      int(d.Duration),
		FollowUpState: int(d.FollowUpState),
		RSVPedBy:      make([]User, 0, len(d.RSVPedBy)),
	}
	if d.Submitter != nil {
		out.Submitter = nullable.NewNullableWithValue(User{ID: int(d.Submitter.ID), Name: d.Submitter.Name})
	} else {
		out.Submitter = nullable.NewNullNullable[User]()
	}
	for _, p := range d.Presenters {
		out.Presenters = append(out.Presenters, Presenter{Name: p.Name})
	}
	for _, u := range d.RSVPedBy {
		out.RSVPedBy = append(out.RSVPedBy, User{ID: int(u.ID), Name: u.Name})
	}
	return out
}

// ToDomain converts the wire record. An omitted or null submitter becomes nil.
func (s Submission) ToDomain() domain.SubmissionData {
	out := domain.SubmissionData{
		ID:            domain.SubmissionID(s.ID),
		Title:         s.Title,
		Description:   s.Description,
		Presenters:    make([]domain.Presenter, 0, len(s.Presenters)),
		Duration:      domain.Duration(s.Duration),
		FollowUpState: domain.FollowUpState(s.FollowUpState),
		RSVPedBy:      make([]domain.User, 0, len(s.RSVPedBy)),
	}
	if s.Submitter.IsSpecified() && !s.Submitter.IsNull() {
		if u, err := s.Submitter.Get(); err == nil {
			out.Submitter = &domain.User{ID: domain.UserID(u.ID), Name: u.Name}
		}
	}
	for _, p := range s.Presenters {
		out.Presenters = append(out.Presenters, domain.Presenter{Name: p.Name})
	}
	for _, u := range s.RSVPedBy {
		out.RSVPedBy = append(out.RSVPedBy, domain.User{ID: domain.UserID(u.ID), Name: u.Name})
	}
	return out
}
