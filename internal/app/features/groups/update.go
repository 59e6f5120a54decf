// internal/app/features/groups/update.go
package groups

import (
	"context"
	"net/http"

	"github.com/cardfolio/clubhouse/internal/app/system/authn"
	"github.com/cardfolio/clubhouse/internal/app/system/httpapi"
	"github.com/cardfolio/clubhouse/internal/app/system/timeouts"
)

type updateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPrivate   *bool   `json:"isPrivate"`
}

// Update handles PATCH /groups/{groupID}. Owner only; absent fields are
// left unchanged.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := authn.CurrentIdentity(r)
	if !ok {
		httpapi.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	gid, ok := groupIDParam(r)
	if !ok {
		httpapi.Error(w, http.StatusNotFound, "group not found")
		return
	}

	var req updateRequest
	if err := httpapi.DecodeJSON(w, r, &req); err != nil {
		httpapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == nil && req.Description == nil && req.IsPrivate == nil {
		httpapi.Error(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if req.Name != nil {
		name, msg := cleanName(*req.Name)
		if msg != "" {
			httpapi.Error(w, http.StatusBadRequest, msg)
			return
		}
		req.Name = &name
	}
	if req.Description != nil {
		desc, msg := cleanDescription(*req.Description)
		if msg != "" {
			httpapi.Error(w, http.StatusBadRequest, msg)
			return
		}
		req.Description = &desc
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Engine.UpdateGroupInfo(ctx, id.UID, gid, req.Name, req.Description, req.IsPrivate)
	if err != nil {
		h.respondEngineError(w, r, "update group", err)
		return
	}

	httpapi.OK(w, "group updated successfully", toGroupJSON(g))
}
