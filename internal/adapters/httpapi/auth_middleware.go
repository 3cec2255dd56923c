package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/penguicon/contrax/internal/app/submissions"
	"github.com/penguicon/contrax/internal/domain"
)

// ViewerHeader carries the numeric user id of the caller.
const ViewerHeader = "X-Viewer-Id"

type ViewerResolver interface {
	Viewer(ctx context.Context, id domain.UserID) (submissions.ViewerProfile, error)
}

// NewViewerMiddleware is a dev-grade identity shim.
//
// It resolves X-Viewer-Id against the user store and stores the viewer in request context.
// Requests without the header proceed as the anonymous viewer. An id that does not match a
// user is rejected with 401.
//
// Do NOT use this in front of anything that needs real authentication.
func NewViewerMiddleware(resolver ViewerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}

			raw := strings.TrimSpace(r.Header.Get(ViewerHeader))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			var id int
			err := runtime.BindStyledParameterWithOptions("simple", ViewerHeader, raw, &id, runtime.BindStyledParameterOptions{
				ParamLocation: runtime.ParamLocationHeader,
				Explode:       false,
				Required:      true,
			})
			if err != nil || id < 0 {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "malformed "+ViewerHeader+" header", nil)
				return
			}

			p, err := resolver.Viewer(r.Context(), domain.UserID(id))
			if err != nil {
				if ae := (*submissions.Error)(nil); errors.As(err, &ae) {
					writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
					return
				}
				writeError(w, r, http.StatusInternalServerError, "INTERNAL", "viewer lookup failed", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), p.Viewer)))
		})
	}
}
