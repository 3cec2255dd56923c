package format

import (
	"errors"
	"strings"
	"testing"

	"github.com/penguicon/contrax/internal/domain"
)

func TestFollowUpLabel(t *testing.T) {
	t.Parallel()

	want := map[domain.FollowUpState]string{
		domain.FollowUpSubmitted:  "submitted",
		domain.FollowUpFollowedUp: "followedup",
		domain.FollowUpAccepted:   "accepted",
		domain.FollowUpRejected:   "rejected",
	}
	for st, label := range want {
		got, err := FollowUpLabel(st)
		if err != nil {
			t.Fatalf("FollowUpLabel(%d) err=%v", st, err)
		}
		if got != label {
			t.Fatalf("FollowUpLabel(%d)=%q, want %q", st, got, label)
		}
	}

	for _, st := range []domain.FollowUpState{-1, 4, 100} {
		if _, err := FollowUpLabel(st); !errors.Is(err, ErrInvalidFollowUpState) {
			t.Fatalf("FollowUpLabel(%d) err=%v, want %v", st, err, ErrInvalidFollowUpState)
		}
	}
}

func TestDurationLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   domain.Duration
		want string
	}{
		{1, "1 hr"},
		{2, "2 hrs"},
		{3, "3 hrs"},
		{4, "4+ hrs"},
		{5, "All wknd"},
	}
	for _, tc := range cases {
		got, err := DurationLabel(tc.in)
		if err != nil {
			t.Fatalf("DurationLabel(%d) err=%v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("DurationLabel(%d)=%q, want %q", tc.in, got, tc.want)
		}
	}

	for _, d := range []domain.Duration{0, -2, 6} {
		if _, err := DurationLabel(d); !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("DurationLabel(%d) err=%v, want %v", d, err, ErrInvalidDuration)
		}
	}
}

func TestPresenterByline(t *testing.T) {
	t.Parallel()

	cases := []struct {
		names []string
		want  string
	}{
		{nil, ""},
		{[]string{"Alice"}, "Alice"},
		{[]string{"Alice", "Bob"}, "Alice and Bob"},
		{[]string{"Alice", "Bob", "Carol"}, "Alice, Bob, and Carol"},
		{[]string{"A", "B", "C", "D"}, "A, B, C, and D"},
	}
	for _, tc := range cases {
		var ps []domain.Presenter
		for _, n := range tc.names {
			ps = append(ps, domain.Presenter{Name: n})
		}
		s := domain.NewSubmission(domain.SubmissionData{ID: 1, Presenters: ps})
		if got := PresenterByline(s); got != tc.want {
			t.Fatalf("PresenterByline(%v)=%q, want %q", tc.names, got, tc.want)
		}
		if got := HasPresenters(s); got != (len(tc.names) > 0) {
			t.Fatalf("HasPresenters(%v)=%v", tc.names, got)
		}
		if len(s.Presenters) != len(tc.names) {
			t.Fatalf("presenters mutated: %v", s.Presenters)
		}
	}
}

func TestSubmissionLink(t *testing.T) {
	t.Parallel()

	own := domain.NewSubmission(domain.SubmissionData{ID: 42, Title: "Intro to Go", Submitter: &domain.User{ID: 5}})
	other := domain.NewSubmission(domain.SubmissionData{ID: 43, Title: "Intro to Go", Submitter: &domain.User{ID: 7}})
	orphan := domain.NewSubmission(domain.SubmissionData{ID: 44, Title: "Intro to Go"})

	viewer := domain.Viewer{ID: 5}
	got := string(SubmissionLink(own, viewer))
	if !strings.Contains(got, `href="/eventform?id=42"`) || !strings.Contains(got, "<a ") {
		t.Fatalf("SubmissionLink(own)=%q, want anchor to /eventform?id=42", got)
	}
	if got := string(SubmissionLink(other, viewer)); got != "Intro to Go" {
		t.Fatalf("SubmissionLink(other)=%q, want plain title", got)
	}

	staff := domain.Viewer{ID: 9, Staff: true}
	if got := string(SubmissionLink(other, staff)); !strings.Contains(got, "/eventform?id=43") {
		t.Fatalf("SubmissionLink(staff)=%q, want anchor", got)
	}
	if got := string(SubmissionLink(orphan, staff)); got != "Intro to Go" {
		t.Fatalf("SubmissionLink(no submitter)=%q, want plain title", got)
	}
}

func TestSubmissionLink_EscapesTitle(t *testing.T) {
	t.Parallel()

	s := domain.NewSubmission(domain.SubmissionData{ID: 1, Title: `<script>alert(1)</script>`, Submitter: &domain.User{ID: 5}})
	for _, v := range []domain.Viewer{{ID: 5}, {ID: 6}} {
		got := string(SubmissionLink(s, v))
		if strings.Contains(got, "<script>") {
			t.Fatalf("SubmissionLink(viewer %d)=%q, title not escaped", v.ID, got)
		}
	}
}

func TestRSVPCountAndIcon(t *testing.T) {
	t.Parallel()

	s := domain.NewSubmission(domain.SubmissionData{ID: 1, RSVPedBy: []domain.User{{ID: 5}, {ID: 8}}})
	if got := RSVPCount(s); got != "2" {
		t.Fatalf("RSVPCount=%q, want %q", got, "2")
	}
	if got := RSVPIconClass(s, domain.Viewer{ID: 5}); got != IconRSVPed {
		t.Fatalf("RSVPIconClass(present)=%q, want %q", got, IconRSVPed)
	}
	if got := RSVPIconClass(s, domain.Viewer{ID: 6}); got != IconNotRSVPed {
		t.Fatalf("RSVPIconClass(absent)=%q, want %q", got, IconNotRSVPed)
	}
}

func TestDescriptionHTML(t *testing.T) {
	t.Parallel()

	s := domain.NewSubmission(domain.SubmissionData{ID: 1, Description: "Bring **dice**.\n\n<script>x()</script>"})
	got, err := DescriptionHTML(s)
	if err != nil {
		t.Fatalf("DescriptionHTML err=%v", err)
	}
	if !strings.Contains(string(got), "<strong>dice</strong>") {
		t.Fatalf("DescriptionHTML=%q, want rendered markdown", got)
	}
	if strings.Contains(string(got), "<script>") {
		t.Fatalf("DescriptionHTML=%q, raw HTML passed through", got)
	}

	empty := domain.NewSubmission(domain.SubmissionData{ID: 2})
	if got, err := DescriptionHTML(empty); err != nil || got != "" {
		t.Fatalf("DescriptionHTML(empty)=%q err=%v", got, err)
	}
}
