package domain

import "sync"

// SubmissionData is a plain snapshot of a submission as stored and sent over the wire.
type SubmissionData struct {
	ID            SubmissionID
	Title         string
	Description   string
	Submitter     *User // nil for anonymous or placeholder submissions
	Presenters    []Presenter
	Duration      Duration
	FollowUpState FollowUpState
	RSVPedBy      []User
}

// ChangeKind says which part of a live submission changed.
type ChangeKind int

const (
	ChangeRSVP ChangeKind = iota + 1
	ChangeUpdating
)

// Change is delivered to subscribers after a live submission is mutated.
type Change struct {
	SubmissionID SubmissionID
	Kind         ChangeKind
}

// Submission is a live record held for the life of a page.
//
// The descriptive fields are set at construction and treated as read-only. The RSVP list and
// the in-flight flag are private and only change through methods, which notify subscribers
// after the lock is released. It is safe for concurrent use.
type Submission struct {
	ID            SubmissionID
	Title         string
	Description   string
	Submitter     *User
	Presenters    []Presenter
	Duration      Duration
	FollowUpState FollowUpState

	mu        sync.Mutex
	rsvpedBy  []User
	updating  bool
	observers map[int]func(Change)
	nextObsID int
}

// NewSubmission builds a live record from a snapshot. Duplicate RSVP entries are dropped.
func NewSubmission(d SubmissionData) *Submission {
	s := &Submission{
		ID:            d.ID,
		Title:         d.Title,
		Description:   d.Description,
		Presenters:    append([]Presenter(nil), d.Presenters...),
		Duration:      d.Duration,
		FollowUpState: d.FollowUpState,
		rsvpedBy:      make([]User, 0, len(d.RSVPedBy)),
	}
	if d.Submitter != nil {
		u := *d.Submitter
		s.Submitter = &u
	}
	for _, u := range d.RSVPedBy {
		if indexOfUser(s.rsvpedBy, u.ID) < 0 {
			s.rsvpedBy = append(s.rsvpedBy, u)
		}
	}
	return s
}

// Snapshot returns the current state as plain data.
func (s *Submission) Snapshot() SubmissionData {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := SubmissionData{
		ID:            s.ID,
		Title:         s.Title,
		Description:   s.Description,
		Presenters:    append([]Presenter(nil), s.Presenters...),
		Duration:      s.Duration,
		FollowUpState: s.FollowUpState,
		RSVPedBy:      append([]User(nil), s.rsvpedBy...),
	}
	if s.Submitter != nil {
		u := *s.Submitter
		d.Submitter = &u
	}
	return d
}

// RSVPedBy returns a copy of the users who would attend, in RSVP order.
func (s *Submission) RSVPedBy() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]User(nil), s.rsvpedBy...)
}

func (s *Submission) RSVPCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rsvpedBy)
}

// HasRSVP reports whether the user with id appears in the RSVP list.
func (s *Submission) HasRSVP(id UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOfUser(s.rsvpedBy, id) >= 0
}

// AddRSVP appends u unless an entry with the same id exists. It reports whether the list changed.
func (s *Submission) AddRSVP(u User) bool {
	s.mu.Lock()
	if indexOfUser(s.rsvpedBy, u.ID) >= 0 {
		s.mu.Unlock()
		return false
	}
	s.rsvpedBy = append(s.rsvpedBy, u)
	obs := s.observersLocked()
	s.mu.Unlock()

	notify(obs, Change{SubmissionID: s.ID, Kind: ChangeRSVP})
	return true
}

// RemoveRSVP removes the entry for id. It reports whether the list changed.
func (s *Submission) RemoveRSVP(id UserID) bool {
	s.mu.Lock()
	i := indexOfUser(s.rsvpedBy, id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.rsvpedBy = append(s.rsvpedBy[:i], s.rsvpedBy[i+1:]...)
	obs := s.observersLocked()
	s.mu.Unlock()

	notify(obs, Change{SubmissionID: s.ID, Kind: ChangeRSVP})
	return true
}

// BeginUpdate moves the record from idle to pending. It returns false, and changes nothing,
// when a request for this record is already in flight.
func (s *Submission) BeginUpdate() bool {
	s.mu.Lock()
	if s.updating {
		s.mu.Unlock()
		return false
	}
	s.updating = true
	obs := s.observersLocked()
	s.mu.Unlock()

	notify(obs, Change{SubmissionID: s.ID, Kind: ChangeUpdating})
	return true
}

// EndUpdate returns the record to idle.
func (s *Submission) EndUpdate() {
	s.mu.Lock()
	if !s.updating {
		s.mu.Unlock()
		return
	}
	s.updating = false
	obs := s.observersLocked()
	s.mu.Unlock()

	notify(obs, Change{SubmissionID: s.ID, Kind: ChangeUpdating})
}

// Updating reports whether a request for this record is in flight.
func (s *Submission) Updating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updating
}

// Subscribe registers fn for change notifications and returns a function that removes it.
// fn runs on the goroutine that made the change and must not block.
func (s *Submission) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.observers == nil {
		s.observers = make(map[int]func(Change))
	}
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.observers, id)
		})
	}
}

func (s *Submission) observersLocked() []func(Change) {
	if len(s.observers) == 0 {
		return nil
	}
	out := make([]func(Change), 0, len(s.observers))
	for _, fn := range s.observers {
		out = append(out, fn)
	}
	return out
}

func notify(obs []func(Change), c Change) {
	for _, fn := range obs {
		fn(c)
	}
}

func indexOfUser(users []User, id UserID) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}
