// Package format derives display values for the submission board.
//
// Every function is pure: it reads a submission (and, where noted, the viewer) and never
// mutates either.
package format

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/penguicon/contrax/internal/domain"
)

var (
	ErrInvalidFollowUpState = errors.New("invalid follow-up state")
	ErrInvalidDuration      = errors.New("invalid duration")
)

const (
	IconRSVPed    = "fa-thumbs-up"
	IconNotRSVPed = "fa-thumbs-o-up"
)

var followUpLabels = [...]string{"submitted", "followedup", "accepted", "rejected"}

// FollowUpLabel returns the CSS-friendly label for a review state.
func FollowUpLabel(state domain.FollowUpState) (string, error) {
	if !state.Valid() {
		return "", fmt.Errorf("%w: %d", ErrInvalidFollowUpState, int(state))
	}
	return followUpLabels[state], nil
}

// DurationLabel returns the short slot length label, e.g. "1 hr", "3 hrs", "4+ hrs", "All wknd".
func DurationLabel(d domain.Duration) (string, error) {
	if !d.Valid() {
		return "", fmt.Errorf("%w: %d", ErrInvalidDuration, int(d))
	}
	switch d {
	case domain.DurationFourPlus:
		return "4+ hrs", nil
	case domain.DurationAllWeekend:
		return "All wknd", nil
	}
	suffix := " hr"
	if d > 1 {
		suffix = " hrs"
	}
	return strconv.Itoa(int(d)) + suffix, nil
}

// RSVPCount returns the number of would-attend votes as text.
func RSVPCount(s *domain.Submission) string {
	return strconv.Itoa(s.RSVPCount())
}

// RSVPIconClass returns the icon class showing whether the viewer has voted.
func RSVPIconClass(s *domain.Submission, v domain.Viewer) string {
	if s.HasRSVP(v.ID) {
		return IconRSVPed
	}
	return IconNotRSVPed
}

// CanEdit reports whether v may open the edit form for s: staff, or the original submitter.
func CanEdit(s *domain.Submission, v domain.Viewer) bool {
	if s.Submitter == nil {
		return false
	}
	return v.Staff || v.ID == s.Submitter.ID
}

// SubmissionLink returns the title as markup, linked to the edit form when v may edit s.
// The title is HTML-escaped in both cases, so the unlinked result must not be escaped again.
func SubmissionLink(s *domain.Submission, v domain.Viewer) template.HTML {
	title := template.HTMLEscapeString(s.Title)
	if !CanEdit(s, v) {
		return template.HTML(title)
	}
	return template.HTML(`<a href="/eventform?id=` + strconv.Itoa(int(s.ID)) + `" class="submission-link">` + title + `</a>`)
}

// PresenterByline joins presenter names: "A", "A and B", "A, B, and C".
func PresenterByline(s *domain.Submission) string {
	names := make([]string, 0, len(s.Presenters))
	for _, p := range s.Presenters {
		names = append(names, p.Name)
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	}
	last := len(names) - 1
	names[last] = "and " + names[last]
	return strings.Join(names, ", ")
}

func HasPresenters(s *domain.Submission) bool {
	return len(s.Presenters) > 0
}

// goldmark's default renderer drops raw HTML, so user-supplied descriptions cannot inject markup.
var markdown = goldmark.New()

// DescriptionHTML renders the markdown description.
func DescriptionHTML(s *domain.Submission) (template.HTML, error) {
	if strings.TrimSpace(s.Description) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(s.Description), &buf); err != nil {
		return "", fmt.Errorf("render description of submission %d: %w", s.ID, err)
	}
	return template.HTML(buf.String()), nil
}
