package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/penguicon/contrax/internal/adapters/httpapi/wire"
	"github.com/penguicon/contrax/internal/app/submissions"
	"github.com/penguicon/contrax/internal/domain"
	"github.com/penguicon/contrax/internal/ports/out/idempotency"
)

type ServerOptions struct {
	// CacheMaxAge is how long a client may reuse a submissions list fetched with the
	// current version tag. Zero disables caching.
	CacheMaxAge time.Duration

	// Idempotency enables replay of RSVP responses for requests carrying an
	// Idempotency-Key header. Nil disables it.
	Idempotency idempotency.Store

	// Now stamps idempotency records. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// Server is the HTTP adapter over the submissions service.
type Server struct {
	Submissions *submissions.Service

	cacheMaxAge time.Duration
	idem        idempotency.Store
	now         func() time.Time
	logger      *slog.Logger
}

func NewServer(svc *submissions.Service, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		Submissions: svc,
		cacheMaxAge: opts.CacheMaxAge,
		idem:        opts.Idempotency,
		now:         now,
		logger:      logger,
	}
}

// ListSubmissions serves GET /api/submissions?state=0,1,2&ver=<tag>.
func (s *Server) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	var states []int
	if err := runtime.BindQueryParameter("form", false, true, "state", r.URL.Query(), &states); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid state parameter", map[string]any{"state": err.Error()})
		return
	}
	codes := make([]domain.FollowUpState, 0, len(states))
	for _, st := range states {
		codes = append(codes, domain.FollowUpState(st))
	}

	// Read the tag before the data so a concurrent change can only make the tag stale, never ahead.
	current := s.Submissions.DatasetVersion()
	list, err := s.Submissions.ListSubmissions(r.Context(), codes)
	if err != nil {
		writeAppError(w, r, s.logger, err)
		return
	}

	out := make([]wire.Submission, 0, len(list))
	for _, d := range list {
		out = append(out, wire.SubmissionFromDomain(d))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     wire.VersionCookie,
		Value:    current,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	if ver := r.URL.Query().Get("ver"); ver != "" && ver == current && s.cacheMaxAge > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", int(s.cacheMaxAge.Seconds())))
	} else {
		w.Header().Set("Cache-Control", "no-cache")
	}
	writeJSON(w, http.StatusOK, out)
}

// GetViewer serves GET /api/viewer.
func (s *Server) GetViewer(w http.ResponseWriter, r *http.Request) {
	v := ViewerFromContext(r.Context())
	p, err := s.Submissions.Viewer(r.Context(), v.ID)
	if err != nil {
		writeAppError(w, r, s.logger, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, wire.Viewer{
		ID:     int(p.Viewer.ID),
		Name:   p.Viewer.Name,
		Staff:  p.Viewer.Staff,
		Points: p.Points,
	})
}

// AddRSVP serves POST /api/submission/{id}/rsvp.
func (s *Server) AddRSVP(w http.ResponseWriter, r *http.Request) {
	id, ok := s.bindSubmissionID(w, r)
	if !ok {
		return
	}
	s.withIdempotency(w, r, "POST /api/submission/{id}/rsvp", strconv.Itoa(int(id)), func(w http.ResponseWriter) {
		if err := s.Submissions.AddRSVP(r.Context(), ViewerFromContext(r.Context()), id); err != nil {
			writeAppError(w, r, s.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// RemoveRSVP serves DELETE /api/submission/{id}/rsvp.
func (s *Server) RemoveRSVP(w http.ResponseWriter, r *http.Request) {
	id, ok := s.bindSubmissionID(w, r)
	if !ok {
		return
	}
	s.withIdempotency(w, r, "DELETE /api/submission/{id}/rsvp", strconv.Itoa(int(id)), func(w http.ResponseWriter) {
		if err := s.Submissions.RemoveRSVP(r.Context(), ViewerFromContext(r.Context()), id); err != nil {
			writeAppError(w, r, s.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) bindSubmissionID(w http.ResponseWriter, r *http.Request) (domain.SubmissionID, bool) {
	var id int
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid submission id", map[string]any{"id": err.Error()})
		return 0, false
	}
	return domain.SubmissionID(id), true
}
