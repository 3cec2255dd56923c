package itest

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/penguicon/contrax/internal/adapters/apiclient"
	"github.com/penguicon/contrax/internal/app/format"
	"github.com/penguicon/contrax/internal/app/rsvptoggle"
	"github.com/penguicon/contrax/internal/app/submissionlist"
	"github.com/penguicon/contrax/internal/domain"
)

type recordingUI struct {
	mu     sync.Mutex
	logins []string
	errs   []string
}

func (r *recordingUI) PromptLogin(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, message)
}

func (r *recordingUI) ReportError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, message)
}

type session struct {
	client *apiclient.Client
	viewer domain.Viewer
	list   *submissionlist.List
	ctrl   *rsvptoggle.Controller
	ui     *recordingUI
}

func openSession(t *testing.T, srv *testServer, viewerID domain.UserID) *session {
	t.Helper()
	ctx := context.Background()

	client, err := apiclient.New(apiclient.Config{BaseURL: srv.baseURL, ViewerID: viewerID, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	profile, err := client.Viewer(ctx)
	if err != nil {
		t.Fatalf("Viewer: %v", err)
	}
	board, err := client.FetchBoard(ctx)
	if err != nil {
		t.Fatalf("FetchBoard: %v", err)
	}

	opts := submissionlist.DefaultOptions()
	for _, d := range board.Active {
		opts.Submissions = append(opts.Submissions, domain.NewSubmission(d))
	}
	list, err := submissionlist.New(opts, profile.Viewer, submissionlist.Config{})
	if err != nil {
		t.Fatalf("submissionlist.New: %v", err)
	}
	t.Cleanup(list.Close)

	ui := &recordingUI{}
	ctrl := rsvptoggle.NewController(client, rsvptoggle.NewPoints(profile.Points), rsvptoggle.Options{Login: ui, Errors: ui})
	return &session{client: client, viewer: profile.Viewer, list: list, ctrl: ctrl, ui: ui}
}

func (s *session) submission(t *testing.T, id domain.SubmissionID) *domain.Submission {
	t.Helper()
	sub, ok := s.list.Submission(id)
	if !ok {
		t.Fatalf("submission %d not on board", id)
	}
	return sub
}

func TestToggle_ITest(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			srv := newTestServer(t, b)
			ctx := context.Background()

			alice := openSession(t, srv, 1)
			sub := alice.submission(t, 10)

			out, err := alice.ctrl.Toggle(ctx, sub, alice.viewer)
			if err != nil || out != rsvptoggle.OutcomeAdded {
				t.Fatalf("add: outcome=%v err=%v", out, err)
			}
			row, _ := alice.list.Row(10)
			if row.RSVPCount != "1" || row.RSVPIcon != format.IconRSVPed || row.Updating {
				t.Fatalf("row after add=%+v", row)
			}
			if got := alice.ctrl.Points().Value(); got != 1 {
				t.Fatalf("client points=%d, want 1", got)
			}
			if got := srv.points(t, 1); got != 1 {
				t.Fatalf("server points=%d, want 1", got)
			}

			// A second viewer sees Alice's RSVP on a fresh load.
			bob := openSession(t, srv, 2)
			if got := bob.submission(t, 10).RSVPCount(); got != 1 {
				t.Fatalf("bob sees count=%d, want 1", got)
			}
			var buf bytes.Buffer
			if err := bob.list.Render(&buf); err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !strings.Contains(buf.String(), "Knot tying") {
				t.Fatalf("rendered board missing title: %s", buf.String())
			}

			out, err = alice.ctrl.Toggle(ctx, sub, alice.viewer)
			if err != nil || out != rsvptoggle.OutcomeRemoved {
				t.Fatalf("remove: outcome=%v err=%v", out, err)
			}
			row, _ = alice.list.Row(10)
			if row.RSVPCount != "0" || row.RSVPIcon != format.IconNotRSVPed {
				t.Fatalf("row after remove=%+v", row)
			}
			if got := alice.ctrl.Points().Value(); got != 2 {
				t.Fatalf("client points=%d, want 2", got)
			}
			if got := srv.points(t, 1); got != 2 {
				t.Fatalf("server points=%d, want 2", got)
			}
		})
	}
}

func TestToggle_ServerRejection_ITest(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			srv := newTestServer(t, b)
			ctx := context.Background()

			bob := openSession(t, srv, 2)
			sub := bob.submission(t, 10)

			out, err := bob.ctrl.Toggle(ctx, sub, bob.viewer)
			if out != rsvptoggle.OutcomeFailed {
				t.Fatalf("outcome=%v, want failed", out)
			}
			var se *apiclient.StatusError
			if !errors.As(err, &se) || se.Code != "NO_RSVP_POINTS" {
				t.Fatalf("err=%v, want NO_RSVP_POINTS", err)
			}
			if sub.Updating() || sub.RSVPCount() != 0 {
				t.Fatalf("record changed: updating=%v count=%d", sub.Updating(), sub.RSVPCount())
			}
			if len(bob.ui.errs) != 1 {
				t.Fatalf("reported errors=%v, want one", bob.ui.errs)
			}
			if got := bob.ctrl.Points().Value(); got != 0 {
				t.Fatalf("points=%d, want 0", got)
			}

			anon := openSession(t, srv, 0)
			out, err = anon.ctrl.Toggle(ctx, anon.submission(t, 10), anon.viewer)
			if err != nil || out != rsvptoggle.OutcomeLoginRequired || len(anon.ui.logins) != 1 {
				t.Fatalf("anonymous: outcome=%v err=%v logins=%v", out, err, anon.ui.logins)
			}
		})
	}
}
