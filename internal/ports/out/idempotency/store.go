package idempotency

import (
	"context"
	"time"

	"github.com/penguicon/contrax/internal/domain"
)

// Key is the caller-provided idempotency key (Idempotency-Key header).
type Key string

// Fingerprint identifies a request for replay purposes: key + viewer + route + target.
// Route is the HTTP method plus the path template (e.g. "POST /api/submission/{id}/rsvp").
type Fingerprint struct {
	Key    Key
	Viewer domain.UserID
	Route  string
	Target string
}

// Record is the stored response replayed for a duplicate request.
type Record struct {
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Store persists idempotency records for replaying responses on retries.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
}
