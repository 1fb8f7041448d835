// package services defines interface Service for the Forge theme backend
package services

import (
	"context"
	"net/http"

	"themeforge/internal/models"
)

// Doer issues a single HTTP request. Satisfied by [http.Client] and by
// [auth.Gate], which layers credential handling over the request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Service defines the operations the Forge backend exposes to the client.
type Service interface {
	// Generate submits a structured generation request and returns the
	// produced theme. Blocks until the backend finishes or ctx is done.
	Generate(ctx context.Context, req models.GenerationRequest) (*models.Theme, error)

	// ListThemes retrieves every theme belonging to the authenticated shop.
	ListThemes(ctx context.Context) ([]models.Theme, error)

	// GetTheme retrieves a single theme with its full template file set.
	GetTheme(ctx context.Context, themeID string) (*models.Theme, error)

	// UpdateTheme replaces a theme's name and template files.
	UpdateTheme(ctx context.Context, theme *models.Theme) (*models.Theme, error)

	// DeleteTheme removes a theme from the backend.
	DeleteTheme(ctx context.Context, themeID string) error

	// Name returns the backend's display name.
	Name() string
}

// SessionStatus describes the server-side view of a session, as reported by
// the session status endpoint.
type SessionStatus struct {
	Active     bool   `json:"active"`
	ShopDomain string `json:"shop_domain"`
	Plan       string `json:"plan"`
}
