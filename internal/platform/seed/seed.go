// Package seed loads YAML fixtures of users and submissions into the repositories.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/penguicon/contrax/internal/domain"
	"github.com/penguicon/contrax/internal/ports/out/submissionrepo"
	"github.com/penguicon/contrax/internal/ports/out/userrepo"
)

type File struct {
	Users       []User       `yaml:"users"`
	Submissions []Submission `yaml:"submissions"`
}

type User struct {
	ID     int    `yaml:"id"`
	Name   string `yaml:"name"`
	Staff  bool   `yaml:"staff"`
	Points int    `yaml:"points"`
}

type Submission struct {
	ID            int      `yaml:"id"`
	Title         string   `yaml:"title"`
	Description   string   `yaml:"description"`
	Submitter     int      `yaml:"submitter"`
	Presenters    []string `yaml:"presenters"`
	Duration      int      `yaml:"duration"`
	FollowUpState int      `yaml:"followUpState"`
	// RSVPs lists user ids in the order they RSVPed.
	RSVPs []int `yaml:"rsvps"`
}

func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return &f, nil
}

// Validate checks codes and cross references without touching any store.
func (f *File) Validate() error {
	var errs []error
	users := make(map[int]bool, len(f.Users))
	for _, u := range f.Users {
		if u.ID <= 0 {
			errs = append(errs, fmt.Errorf("user %q: id must be positive", u.Name))
		}
		if users[u.ID] {
			errs = append(errs, fmt.Errorf("user %d: duplicate id", u.ID))
		}
		users[u.ID] = true
	}
	subs := make(map[int]bool, len(f.Submissions))
	for _, s := range f.Submissions {
		if subs[s.ID] {
			errs = append(errs, fmt.Errorf("submission %d: duplicate id", s.ID))
		}
		subs[s.ID] = true
		if !domain.Duration(s.Duration).Valid() {
			errs = append(errs, fmt.Errorf("submission %d: invalid duration %d", s.ID, s.Duration))
		}
		if !domain.FollowUpState(s.FollowUpState).Valid() {
			errs = append(errs, fmt.Errorf("submission %d: invalid followUpState %d", s.ID, s.FollowUpState))
		}
		if s.Submitter != 0 && !users[s.Submitter] {
			errs = append(errs, fmt.Errorf("submission %d: unknown submitter %d", s.ID, s.Submitter))
		}
		for _, id := range s.RSVPs {
			if !users[id] {
				errs = append(errs, fmt.Errorf("submission %d: unknown rsvp user %d", s.ID, id))
			}
		}
	}
	return errors.Join(errs...)
}

// Apply creates every user and submission. Records that already exist are left alone,
// so a persistent store can be seeded on every start.
func (f *File) Apply(ctx context.Context, users userrepo.Repository, subs submissionrepo.Repository, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	byID := make(map[int]domain.User, len(f.Users))
	created, skipped := 0, 0
	for _, u := range f.Users {
		name := domain.NormalizeHumanName(u.Name)
		byID[u.ID] = domain.User{ID: domain.UserID(u.ID), Name: name}
		err := users.Create(ctx, userrepo.User{ID: domain.UserID(u.ID), Name: name, Staff: u.Staff, Points: u.Points})
		switch {
		case errors.Is(err, userrepo.ErrAlreadyExists):
			skipped++
		case err != nil:
			return fmt.Errorf("seed user %d: %w", u.ID, err)
		default:
			created++
		}
	}

	for _, s := range f.Submissions {
		d := domain.SubmissionData{
			ID:            domain.SubmissionID(s.ID),
			Title:         s.Title,
			Description:   s.Description,
			Duration:      domain.Duration(s.Duration),
			FollowUpState: domain.FollowUpState(s.FollowUpState),
		}
		if s.Submitter != 0 {
			u := byID[s.Submitter]
			d.Submitter = &u
		}
		for _, name := range s.Presenters {
			d.Presenters = append(d.Presenters, domain.Presenter{Name: domain.NormalizeHumanName(name)})
		}
		for _, id := range s.RSVPs {
			d.RSVPedBy = append(d.RSVPedBy, byID[id])
		}
		err := subs.Create(ctx, d)
		switch {
		case errors.Is(err, submissionrepo.ErrAlreadyExists):
			skipped++
		case err != nil:
			return fmt.Errorf("seed submission %d: %w", s.ID, err)
		default:
			created++
		}
	}

	logger.Info("seed applied", "created", created, "skipped", skipped)
	return nil
}
