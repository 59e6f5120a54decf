// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/cardfolio/clubhouse/internal/app/system/authn"
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the notification routes on r. The whole subtree is
// caller-scoped, so it all sits behind the identity requirement.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(authn.RequireIdentity)
	r.Get("/", h.List)
	r.Post("/{notificationID}/read", h.MarkRead)
}
