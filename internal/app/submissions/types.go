package submissions

import "github.com/penguicon/contrax/internal/domain"

// ViewerProfile is what a page needs to know about the person it is rendered for.
type ViewerProfile struct {
	Viewer domain.Viewer
	Points int
}
