package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	// ViewerMiddleware overrides how the caller is identified. Defaults to
	// NewViewerMiddleware backed by the server's submissions service.
	ViewerMiddleware func(http.Handler) http.Handler
}

// NewRouter constructs the API HTTP router.
func NewRouter(s *Server) http.Handler {
	return NewRouterWithOptions(s, RouterOptions{})
}

func NewRouterWithOptions(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoint is used for infra checks.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	viewerMW := opts.ViewerMiddleware
	if viewerMW == nil {
		viewerMW = NewViewerMiddleware(s.Submissions)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(viewerMW)
		r.Get("/submissions", s.ListSubmissions)
		r.Get("/viewer", s.GetViewer)
		r.Post("/submission/{id}/rsvp", s.AddRSVP)
		r.Delete("/submission/{id}/rsvp", s.RemoveRSVP)
	})
	return r
}
