package clock

import "time"

// Clock provides time to the application.
// RSVP timestamps come from it so tests can order them deterministically.
type Clock interface {
	Now() time.Time
}
