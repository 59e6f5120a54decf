// internal/app/features/groups/membership.go
package groups

import (
	"context"
	"net/http"

	"github.com/cardfolio/clubhouse/internal/app/system/authn"
	"github.com/cardfolio/clubhouse/internal/app/system/httpapi"
	"github.com/cardfolio/clubhouse/internal/app/system/timeouts"
)

type membershipDataJSON struct {
	GroupName   string `json:"groupName"`
	MemberCount int    `json:"memberCount"`
}

// Join handles POST /groups/{groupID}/join.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	out, err := h.Engine.JoinGroup(ctx, id.UID, gid)
	if err != nil {
		h.respondEngineError(w, r, "join group", err)
		return
	}

	h.Audit.MemberJoined(ctx, r, id.UID, gid, out.GroupName)

	httpapi.OK(w, "joined group successfully", membershipDataJSON{
		GroupName:   out.GroupName,
		MemberCount: out.MemberCount,
	})
}

// Leave handles POST /groups/{groupID}/leave. The owner cannot leave.
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	out, err := h.Engine.LeaveGroup(ctx, id.UID, gid)
	if err != nil {
		h.respondEngineError(w, r, "leave group", err)
		return
	}

	h.Audit.MemberLeft(ctx, r, id.UID, gid, out.GroupName)

	httpapi.OK(w, "left group successfully", membershipDataJSON{
		GroupName:   out.GroupName,
		MemberCount: out.MemberCount,
	})
}
