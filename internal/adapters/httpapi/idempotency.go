package httpapi

import (
	"bytes"
	"net/http"

	"github.com/penguicon/contrax/internal/ports/out/idempotency"
)

const (
	IdempotencyKeyHeader     = "Idempotency-Key"
	idempotentReplayedHeader = "Idempotent-Replayed"
)

// captureWriter tees the status and body written by a handler.
type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(status int) {
	if c.status == 0 {
		c.status = status
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

// withIdempotency replays the stored response when the request carries an Idempotency-Key
// seen before for the same viewer, route and target. Otherwise it runs handle and records
// the response. Server errors are not recorded so a retry can succeed.
func (s *Server) withIdempotency(w http.ResponseWriter, r *http.Request, route, target string, handle func(http.ResponseWriter)) {
	key := r.Header.Get(IdempotencyKeyHeader)
	if s.idem == nil || key == "" {
		handle(w)
		return
	}

	fp := idempotency.Fingerprint{
		Key:    idempotency.Key(key),
		Viewer: ViewerFromContext(r.Context()).ID,
		Route:  route,
		Target: target,
	}
	if rec, ok, err := s.idem.Get(r.Context(), fp); err != nil {
		writeAppError(w, r, s.logger, err)
		return
	} else if ok {
		if rec.ContentType != "" {
			w.Header().Set("Content-Type", rec.ContentType)
		}
		w.Header().Set(idempotentReplayedHeader, "true")
		w.WriteHeader(rec.StatusCode)
		_, _ = w.Write(rec.Body)
		return
	}

	cw := &captureWriter{ResponseWriter: w}
	handle(cw)
	if cw.status == 0 || cw.status >= 500 {
		return
	}
	err := s.idem.Put(r.Context(), fp, idempotency.Record{
		StatusCode:  cw.status,
		ContentType: w.Header().Get("Content-Type"),
		Body:        cw.body.Bytes(),
		CreatedAt:   s.now(),
	})
	if err != nil {
		s.logger.Error("store idempotency record failed", "route", route, "target", target, "error", err)
	}
}
