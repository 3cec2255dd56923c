package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/penguicon/contrax/internal/domain"
	idempotencyport "github.com/penguicon/contrax/internal/ports/out/idempotency"
	submissionrepoport "github.com/penguicon/contrax/internal/ports/out/submissionrepo"
	userrepoport "github.com/penguicon/contrax/internal/ports/out/userrepo"
)

type CleanupFunc = func()

type UserRepoFactory func(t *testing.T) (userrepoport.Repository, CleanupFunc)
type SubmissionRepoFactory func(t *testing.T) (submissionrepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:    "k-1",
		Viewer: 21,
		Route:  "POST /api/submission/{id}/rsvp",
		Target: "101",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get(missing) ok=%v err=%v, want false, nil", ok, err)
	}

	rec := idempotencyport.Record{
		StatusCode:  204,
		ContentType: "",
		Body:        []byte{},
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if got.StatusCode != 204 || len(got.Body) != 0 || !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Each fingerprint field separates records.
	for _, other := range []idempotencyport.Fingerprint{
		{Key: "k-2", Viewer: fp.Viewer, Route: fp.Route, Target: fp.Target},
		{Key: fp.Key, Viewer: 22, Route: fp.Route, Target: fp.Target},
		{Key: fp.Key, Viewer: fp.Viewer, Route: "DELETE /api/submission/{id}/rsvp", Target: fp.Target},
		{Key: fp.Key, Viewer: fp.Viewer, Route: fp.Route, Target: "102"},
	} {
		if _, ok, err := store.Get(ctx, other); err != nil || ok {
			t.Fatalf("Get(%+v) ok=%v err=%v, want false, nil", other, ok, err)
		}
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.StatusCode = 409
	rec2.ContentType = "application/json"
	rec2.Body = []byte(`{"error":{"code":"ALREADY_RSVPED"}}`)
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || got.StatusCode != 409 || string(got.Body) != string(rec2.Body) {
		t.Fatalf("expected overwritten record, got ok=%v err=%v rec=%+v", ok, err, got)
	}
}

func RunUserRepo(t *testing.T, newRepo UserRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	if _, err := repo.Get(ctx, 404); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("Get(missing) err=%v, want %v", err, userrepoport.ErrNotFound)
	}

	u := userrepoport.User{ID: 11, Name: "Alice", Points: 1}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, u); !errors.Is(err, userrepoport.ErrAlreadyExists) {
		t.Fatalf("Create(dup) err=%v, want %v", err, userrepoport.ErrAlreadyExists)
	}
	got, err := repo.Get(ctx, 11)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != u {
		t.Fatalf("Get=%+v, want %+v", got, u)
	}

	n, err := repo.AdjustPoints(ctx, 11, -1, false)
	if err != nil || n != 0 {
		t.Fatalf("AdjustPoints(-1)=%d err=%v, want 0", n, err)
	}
	if _, err := repo.AdjustPoints(ctx, 11, -1, false); !errors.Is(err, userrepoport.ErrInsufficientPoints) {
		t.Fatalf("AdjustPoints(below zero) err=%v, want %v", err, userrepoport.ErrInsufficientPoints)
	}
	n, err = repo.AdjustPoints(ctx, 11, -1, true)
	if err != nil || n != -1 {
		t.Fatalf("AdjustPoints(allowNegative)=%d err=%v, want -1", n, err)
	}
	n, err = repo.AdjustPoints(ctx, 11, 2, false)
	if err != nil || n != 1 {
		t.Fatalf("AdjustPoints(+2)=%d err=%v, want 1", n, err)
	}
	if _, err := repo.AdjustPoints(ctx, 404, 1, false); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("AdjustPoints(missing) err=%v, want %v", err, userrepoport.ErrNotFound)
	}
}

func RunSubmissionRepo(t *testing.T, newUsers UserRepoFactory, newRepo SubmissionRepoFactory) {
	t.Helper()
	ctx := context.Background()

	users, cleanupUsers := newUsers(t)
	if cleanupUsers != nil {
		t.Cleanup(cleanupUsers)
	}
	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	for _, u := range []userrepoport.User{
		{ID: 21, Name: "Sam", Points: 5},
		{ID: 22, Name: "Dana", Points: 5},
		{ID: 23, Name: "Eli", Points: 5},
	} {
		if err := users.Create(ctx, u); err != nil {
			t.Fatalf("create user %d: %v", u.ID, err)
		}
	}
	sam := domain.User{ID: 21, Name: "Sam"}
	dana := domain.User{ID: 22, Name: "Dana"}
	eli := domain.User{ID: 23, Name: "Eli"}

	if _, err := repo.Get(ctx, 999); !errors.Is(err, submissionrepoport.ErrNotFound) {
		t.Fatalf("Get(missing) err=%v, want %v", err, submissionrepoport.ErrNotFound)
	}

	seed := []domain.SubmissionData{
		{
			ID:            103,
			Title:         "Rejected talk",
			Duration:      2,
			FollowUpState: domain.FollowUpRejected,
		},
		{
			ID:            101,
			Title:         "Chainmail basics",
			Description:   "Bring pliers.",
			Submitter:     &sam,
			Presenters:    []domain.Presenter{{Name: "Sam"}, {Name: "Guest"}},
			Duration:      3,
			FollowUpState: domain.FollowUpAccepted,
			RSVPedBy:      []domain.User{dana},
		},
		{
			ID:            102,
			Title:         "Open gaming",
			Duration:      5,
			FollowUpState: domain.FollowUpSubmitted,
		},
	}
	for _, d := range seed {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create(%d): %v", d.ID, err)
		}
	}
	if err := repo.Create(ctx, seed[0]); !errors.Is(err, submissionrepoport.ErrAlreadyExists) {
		t.Fatalf("Create(dup) err=%v, want %v", err, submissionrepoport.ErrAlreadyExists)
	}

	got, err := repo.Get(ctx, 101)
	if err != nil {
		t.Fatalf("Get(101): %v", err)
	}
	if got.Title != "Chainmail basics" || got.Description != "Bring pliers." || got.Duration != 3 || got.FollowUpState != domain.FollowUpAccepted {
		t.Fatalf("Get(101)=%+v", got)
	}
	if got.Submitter == nil || *got.Submitter != sam {
		t.Fatalf("Get(101).Submitter=%v, want %v", got.Submitter, sam)
	}
	if len(got.Presenters) != 2 || got.Presenters[0].Name != "Sam" || got.Presenters[1].Name != "Guest" {
		t.Fatalf("Get(101).Presenters=%v, want [Sam Guest] in order", got.Presenters)
	}
	if len(got.RSVPedBy) != 1 || got.RSVPedBy[0] != dana {
		t.Fatalf("Get(101).RSVPedBy=%v, want [%v]", got.RSVPedBy, dana)
	}

	orphan, err := repo.Get(ctx, 102)
	if err != nil {
		t.Fatalf("Get(102): %v", err)
	}
	if orphan.Submitter != nil || len(orphan.Presenters) != 0 || len(orphan.RSVPedBy) != 0 {
		t.Fatalf("Get(102)=%+v, want no submitter, presenters or rsvps", orphan)
	}

	active, err := repo.ListByStates(ctx, domain.ActiveStates)
	if err != nil {
		t.Fatalf("ListByStates(active): %v", err)
	}
	if len(active) != 2 || active[0].ID != 101 || active[1].ID != 102 {
		t.Fatalf("ListByStates(active) ids=%v, want [101 102]", ids(active))
	}
	rejected, err := repo.ListByStates(ctx, domain.RejectedStates)
	if err != nil {
		t.Fatalf("ListByStates(rejected): %v", err)
	}
	if len(rejected) != 1 || rejected[0].ID != 103 {
		t.Fatalf("ListByStates(rejected) ids=%v, want [103]", ids(rejected))
	}

	t0 := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.AddRSVP(ctx, 101, eli, t0.Add(time.Minute)); err != nil {
		t.Fatalf("AddRSVP(eli): %v", err)
	}
	if err := repo.AddRSVP(ctx, 101, eli, t0.Add(2*time.Minute)); !errors.Is(err, submissionrepoport.ErrAlreadyRSVPed) {
		t.Fatalf("AddRSVP(dup) err=%v, want %v", err, submissionrepoport.ErrAlreadyRSVPed)
	}
	if err := repo.AddRSVP(ctx, 999, eli, t0); !errors.Is(err, submissionrepoport.ErrNotFound) {
		t.Fatalf("AddRSVP(missing) err=%v, want %v", err, submissionrepoport.ErrNotFound)
	}
	if err := repo.AddRSVP(ctx, 101, sam, t0.Add(3*time.Minute)); err != nil {
		t.Fatalf("AddRSVP(sam): %v", err)
	}

	got, err = repo.Get(ctx, 101)
	if err != nil {
		t.Fatalf("Get(101): %v", err)
	}
	if len(got.RSVPedBy) != 3 || got.RSVPedBy[0] != dana || got.RSVPedBy[1] != eli || got.RSVPedBy[2] != sam {
		t.Fatalf("RSVPedBy=%v, want [Dana Eli Sam] in RSVP order", got.RSVPedBy)
	}

	if err := repo.RemoveRSVP(ctx, 101, eli.ID); err != nil {
		t.Fatalf("RemoveRSVP(eli): %v", err)
	}
	if err := repo.RemoveRSVP(ctx, 101, eli.ID); !errors.Is(err, submissionrepoport.ErrNotRSVPed) {
		t.Fatalf("RemoveRSVP(again) err=%v, want %v", err, submissionrepoport.ErrNotRSVPed)
	}
	if err := repo.RemoveRSVP(ctx, 999, eli.ID); !errors.Is(err, submissionrepoport.ErrNotFound) {
		t.Fatalf("RemoveRSVP(missing) err=%v, want %v", err, submissionrepoport.ErrNotFound)
	}
	got, _ = repo.Get(ctx, 101)
	if len(got.RSVPedBy) != 2 || got.RSVPedBy[0] != dana || got.RSVPedBy[1] != sam {
		t.Fatalf("RSVPedBy after remove=%v, want [Dana Sam]", got.RSVPedBy)
	}
}

func ids(ds []domain.SubmissionData) []domain.SubmissionID {
	out := make([]domain.SubmissionID, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.ID)
	}
	return out
}
