// internal/app/features/groups/create.go
package groups

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/cardfolio/clubhouse/internal/app/system/authn"
	"github.com/cardfolio/clubhouse/internal/app/system/httpapi"
	"github.com/cardfolio/clubhouse/internal/app/system/limits"
	"github.com/cardfolio/clubhouse/internal/app/system/sanitize"
	"github.com/cardfolio/clubhouse/internal/app/system/timeouts"
)

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"isPrivate"`
}

// cleanName sanitizes a user-supplied group name. The second return value is
// a client-facing message, empty when the name is acceptable.
func cleanName(raw string) (string, string) {
	name := sanitize.Text(raw)
	if name == "" {
		return "", "group name is required"
	}
	if utf8.RuneCountInString(name) > limits.MaxGroupNameLen {
		return "", "group name is too long"
	}
	return name, ""
}

// cleanDescription sanitizes a user-supplied description, keeping safe
// formatting markup.
func cleanDescription(raw string) (string, string) {
	desc := sanitize.HTML(raw)
	if utf8.RuneCountInString(desc) > limits.MaxGroupDescriptionLen {
		return "", "group description is too long"
	}
	return desc, ""
}

// Create handles POST /groups. The caller becomes the group's owner.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := authn.CurrentIdentity(r)
	if !ok {
		httpapi.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createRequest
	if err := httpapi.DecodeJSON(w, r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	name, msg := cleanName(req.Name)
	if msg != "" {
		httpapi.Error(w, http.StatusBadRequest, msg)
		return
	}
	desc, msg := cleanDescription(req.Description)
	if msg != "" {
		httpapi.Error(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	g, err := h.Engine.CreateGroup(ctx, id.UID, name, desc, req.IsPrivate)
	if err != nil {
		h.respondEngineError(w, r, "create group", err)
		return
	}

	h.Audit.GroupCreated(ctx, r, id.UID, g.ID, g.Name, g.IsPrivate)

	httpapi.Created(w, "group created successfully", toGroupJSON(g))
}
