package submissionlist

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/penguicon/contrax/internal/app/format"
	"github.com/penguicon/contrax/internal/domain"
)

func testSubmissions() []*domain.Submission {
	return []*domain.Submission{
		domain.NewSubmission(domain.SubmissionData{
			ID:            1,
			Title:         "Lockpicking 101",
			Submitter:     &domain.User{ID: 5, Name: "Alice"},
			Presenters:    []domain.Presenter{{Name: "Alice"}, {Name: "Bob"}},
			Duration:      1,
			FollowUpState: domain.FollowUpAccepted,
			RSVPedBy:      []domain.User{{ID: 8, Name: "Dana"}},
		}),
		domain.NewSubmission(domain.SubmissionData{
			ID:            2,
			Title:         "Board game marathon",
			Duration:      5,
			FollowUpState: domain.FollowUpSubmitted,
		}),
	}
}

func TestNew_RendersWithDefaultTemplates(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Submissions = testSubmissions()
	l, err := New(opts, domain.Viewer{ID: 5, Name: "Alice"}, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	var buf bytes.Buffer
	if err := l.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`id="submission_1"`,
		`class="submission accepted"`,
		`href="/eventform?id=1"`,
		"Alice and Bob",
		"1 hr",
		"All wknd",
		`class="user-link"`,
		`class="presenter-link"`,
		`<span class="user-text">Dana</span>`,
		format.IconNotRSVPed,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, `href="/eventform?id=2"`) {
		t.Fatalf("submission without submitter must not link to the edit form:\n%s", out)
	}
	if strings.Contains(out, `data-login="required"`) {
		t.Fatalf("signed-in viewer rendered with login marker:\n%s", out)
	}
}

func TestNew_AnonymousViewerMarksToggles(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Submissions = testSubmissions()
	l, err := New(opts, domain.Viewer{}, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	var buf bytes.Buffer
	if err := l.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n := strings.Count(buf.String(), `data-login="required"`); n != 2 {
		t.Fatalf("login markers=%d, want 2", n)
	}
}

func TestNew_RegistersNamedPartials(t *testing.T) {
	t.Parallel()

	opts := Options{
		Submissions: testSubmissions()[:1],
		SubmissionsTpl: EncodeTemplate(
			`{{range .Submissions}}[{{with .Submitter}}{{template "user_link" .}}{{end}}|{{range .Presenters}}{{template "presenter_link" .}}{{end}}|{{range .RSVPedBy}}{{template "user_text" .}}{{end}}]{{end}}`,
		),
		UserLinkTpl:      EncodeTemplate(`U{{.ID}}`),
		PresenterLinkTpl: EncodeTemplate(`P({{.Name}})`),
		UserTextTpl:      EncodeTemplate(`T({{.Name}})`),
	}
	l, err := New(opts, domain.Viewer{}, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	var buf bytes.Buffer
	if err := l.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got, want := buf.String(), "[U5|P(Alice)P(Bob)|T(Dana)]"; got != want {
		t.Fatalf("Render=%q, want %q", got, want)
	}
}

func TestNew_RejectsBadInput(t *testing.T) {
	t.Parallel()

	missing := DefaultOptions()
	missing.UserTextTpl = ""
	if _, err := New(missing, domain.Viewer{}, Config{}); err == nil {
		t.Fatalf("New with empty template: expected error")
	}

	notJSON := DefaultOptions()
	notJSON.SubmissionsTpl = "<ul>"
	if _, err := New(notJSON, domain.Viewer{}, Config{}); err == nil {
		t.Fatalf("New with undecodable template: expected error")
	}

	badCode := DefaultOptions()
	badCode.Submissions = []*domain.Submission{domain.NewSubmission(domain.SubmissionData{ID: 1, Duration: 1, FollowUpState: 7})}
	if _, err := New(badCode, domain.Viewer{}, Config{}); !errors.Is(err, format.ErrInvalidFollowUpState) {
		t.Fatalf("New with state 7 err=%v, want %v", err, format.ErrInvalidFollowUpState)
	}

	dup := DefaultOptions()
	subs := testSubmissions()
	dup.Submissions = []*domain.Submission{subs[0], subs[0]}
	if _, err := New(dup, domain.Viewer{}, Config{}); err == nil {
		t.Fatalf("New with duplicate ids: expected error")
	}
}

func TestList_RederivesOnlyChangedRow(t *testing.T) {
	t.Parallel()

	subs := testSubmissions()
	opts := DefaultOptions()
	opts.Submissions = subs
	viewer := domain.Viewer{ID: 5, Name: "Alice"}
	l, err := New(opts, viewer, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	var changed []Row
	l.OnRowChange(func(r Row) { changed = append(changed, r) })

	subs[1].AddRSVP(viewer.User())

	if len(changed) != 1 || changed[0].ID != 2 {
		t.Fatalf("changed rows=%v, want only submission 2", changed)
	}
	row, ok := l.Row(2)
	if !ok {
		t.Fatalf("Row(2) missing")
	}
	if row.RSVPCount != "1" || row.RSVPIcon != format.IconRSVPed {
		t.Fatalf("Row(2) count=%q icon=%q, want 1 %s", row.RSVPCount, row.RSVPIcon, format.IconRSVPed)
	}
	other, _ := l.Row(1)
	if other.RSVPCount != "1" || other.RSVPIcon != format.IconNotRSVPed {
		t.Fatalf("Row(1) changed unexpectedly: %+v", other)
	}

	subs[1].BeginUpdate()
	if row, _ := l.Row(2); !row.Updating {
		t.Fatalf("Row(2).Updating=false while pending")
	}
	subs[1].EndUpdate()

	l.Close()
	subs[1].RemoveRSVP(viewer.ID)
	if row, _ := l.Row(2); row.RSVPCount != "1" {
		t.Fatalf("row updated after Close: %+v", row)
	}
}

func TestJSONDecoder_RoundTrip(t *testing.T) {
	t.Parallel()

	src := "<p class=\"x\">{{.Name}}</p>\n"
	got, err := JSONDecoder{}.Decode(EncodeTemplate(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != src {
		t.Fatalf("Decode=%q, want %q", got, src)
	}
}
