package httpapi

import (
	"context"

	"github.com/penguicon/contrax/internal/domain"
)

type viewerKey struct{}

func WithViewer(ctx context.Context, v domain.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, v)
}

// ViewerFromContext returns the viewer stored by the viewer middleware, or the anonymous viewer.
func ViewerFromContext(ctx context.Context) domain.Viewer {
	v, _ := ctx.Value(viewerKey{}).(domain.Viewer)
	return v
}
