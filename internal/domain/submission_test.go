package domain

import "testing"

func TestNewSubmission_DropsDuplicateRSVPs(t *testing.T) {
	t.Parallel()

	s := NewSubmission(SubmissionData{
		ID:       1,
		RSVPedBy: []User{{ID: 5, Name: "Alice"}, {ID: 7, Name: "Bob"}, {ID: 5, Name: "Alice again"}},
	})
	got := s.RSVPedBy()
	if len(got) != 2 || got[0].ID != 5 || got[1].ID != 7 {
		t.Fatalf("RSVPedBy()=%v, want [5 7]", got)
	}
	if got[0].Name != "Alice" {
		t.Fatalf("first entry name=%q, want %q", got[0].Name, "Alice")
	}
}

func TestSubmission_AddRemoveRSVP(t *testing.T) {
	t.Parallel()

	s := NewSubmission(SubmissionData{ID: 1})
	if !s.AddRSVP(User{ID: 5, Name: "Alice"}) {
		t.Fatalf("AddRSVP(5) = false, want true")
	}
	if s.AddRSVP(User{ID: 5, Name: "Alice"}) {
		t.Fatalf("second AddRSVP(5) = true, want false")
	}
	if s.RSVPCount() != 1 || !s.HasRSVP(5) {
		t.Fatalf("count=%d has=%v, want 1 true", s.RSVPCount(), s.HasRSVP(5))
	}
	if s.RemoveRSVP(7) {
		t.Fatalf("RemoveRSVP(7) = true, want false")
	}
	if !s.RemoveRSVP(5) {
		t.Fatalf("RemoveRSVP(5) = false, want true")
	}
	if s.RSVPCount() != 0 {
		t.Fatalf("count=%d, want 0", s.RSVPCount())
	}
}

func TestSubmission_BeginUpdateIsSingleFlight(t *testing.T) {
	t.Parallel()

	s := NewSubmission(SubmissionData{ID: 1})
	if !s.BeginUpdate() {
		t.Fatalf("first BeginUpdate = false")
	}
	if s.BeginUpdate() {
		t.Fatalf("second BeginUpdate = true while pending")
	}
	s.EndUpdate()
	if s.Updating() {
		t.Fatalf("Updating() = true after EndUpdate")
	}
	if !s.BeginUpdate() {
		t.Fatalf("BeginUpdate after EndUpdate = false")
	}
}

func TestSubmission_SubscribeNotifiesUntilUnsubscribed(t *testing.T) {
	t.Parallel()

	s := NewSubmission(SubmissionData{ID: 9})
	var got []Change
	unsubscribe := s.Subscribe(func(c Change) { got = append(got, c) })

	s.BeginUpdate()
	s.AddRSVP(User{ID: 1})
	s.AddRSVP(User{ID: 1}) // no change, no notification
	s.EndUpdate()

	want := []Change{
		{SubmissionID: 9, Kind: ChangeUpdating},
		{SubmissionID: 9, Kind: ChangeRSVP},
		{SubmissionID: 9, Kind: ChangeUpdating},
	}
	if len(got) != len(want) {
		t.Fatalf("changes=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("changes[%d]=%v, want %v", i, got[i], want[i])
		}
	}

	unsubscribe()
	unsubscribe()
	s.RemoveRSVP(1)
	if len(got) != len(want) {
		t.Fatalf("received change after unsubscribe: %v", got)
	}
}

func TestSubmission_SnapshotIsDetached(t *testing.T) {
	t.Parallel()

	s := NewSubmission(SubmissionData{ID: 3, Submitter: &User{ID: 2, Name: "Sam"}})
	s.AddRSVP(User{ID: 4})
	snap := s.Snapshot()
	snap.RSVPedBy[0].ID = 99
	snap.Submitter.Name = "changed"

	if !s.HasRSVP(4) || s.Submitter.Name != "Sam" {
		t.Fatalf("mutating snapshot changed the live record")
	}
}

func TestCodes_Valid(t *testing.T) {
	t.Parallel()

	for _, st := range []FollowUpState{-1, 4} {
		if st.Valid() {
			t.Fatalf("FollowUpState(%d).Valid() = true", st)
		}
	}
	for _, d := range []Duration{0, 6} {
		if d.Valid() {
			t.Fatalf("Duration(%d).Valid() = true", d)
		}
	}
	if !FollowUpRejected.Valid() || !DurationAllWeekend.Valid() {
		t.Fatalf("known codes reported invalid")
	}
}
