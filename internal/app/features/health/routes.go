// internal/app/features/health/routes.go
package health

import "github.com/go-chi/chi/v5"

// MountRoutes registers the health endpoint on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Serve)
}
