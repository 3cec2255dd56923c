package domain

// User is a reference to a site user as it appears on a submission (submitter or RSVP entry).
type User struct {
	ID   UserID
	Name string
}

// Presenter is a person named on a submission. Presenters are not necessarily users.
type Presenter struct {
	Name string
}

// Viewer is the identity the page is rendered for.
//
// It is passed explicitly to the formatter and the RSVP controller rather than read from
// ambient state, so any fixture can be used in tests.
type Viewer struct {
	ID    UserID
	Name  string
	Staff bool
}

// Anonymous reports whether the viewer has not signed in.
func (v Viewer) Anonymous() bool { return v.ID == AnonymousUserID }

// User returns the viewer as an RSVP entry.
func (v Viewer) User() User { return User{ID: v.ID, Name: v.Name} }
