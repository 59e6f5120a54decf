// internal/app/features/groups/routes.go
package groups

import (
	"github.com/cardfolio/clubhouse/internal/app/system/authn"
	"github.com/cardfolio/clubhouse/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// MountRoutes mounts all group routes on the given router. The public
// listing is open; everything else requires a verified caller. Moderation
// actions are additionally rate limited per caller.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)

	r.Group(func(r chi.Router) {
		r.Use(authn.RequireIdentity)

		r.Post("/", h.Create)

		r.Route("/{groupID}", func(r chi.Router) {
			r.Get("/", h.Show)
			r.Patch("/", h.Update)
			r.Get("/members", h.ListMembers)
			r.Post("/join", h.Join)
			r.Post("/leave", h.Leave)

			r.Group(func(r chi.Router) {
				r.Use(ratelimit.Middleware(h.ModLimiter, authn.CallerUID))
				r.Delete("/members/{memberID}", h.Remove)
				r.Post("/members/{memberID}/ban", h.Ban)
				r.Post("/members/{memberID}/unban", h.Unban)
			})
		})
	})
}
