package clock

import (
	"time"

	portclock "github.com/penguicon/contrax/internal/ports/out/clock"
)

var _ portclock.Clock = SystemClock{}

// SystemClock returns the current wall-clock time in UTC, truncated to the microsecond
// precision postgres keeps for RSVP timestamps.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
