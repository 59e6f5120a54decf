// internal/app/features/groups/moderate.go
package groups

import (
	"context"
	"net/http"

	"github.com/cardfolio/clubhouse/internal/app/system/authn"
	"github.com/cardfolio/clubhouse/internal/app/system/httpapi"
	"github.com/cardfolio/clubhouse/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

type removeDataJSON struct {
	RemovedUserID  string `json:"removedUserId"`
	GroupName      string `json:"groupName"`
	NewMemberCount int    `json:"newMemberCount"`
}

// Remove handles DELETE /groups/{groupID}/members/{memberID}. Owner only.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
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
	targetID := chi.URLParam(r, "memberID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	out, err := h.Engine.RemoveMember(ctx, id.UID, gid, targetID)
	if err != nil {
		h.respondEngineError(w, r, "remove member", err)
		return
	}

	h.Audit.MemberRemoved(ctx, r, id.UID, targetID, gid, out.GroupName)

	httpapi.OK(w, "member removed successfully", removeDataJSON{
		RemovedUserID:  out.RemovedUserID,
		GroupName:      out.GroupName,
		NewMemberCount: out.NewMemberCount,
	})
}

type banDataJSON struct {
	BannedUserID     string `json:"bannedUserId"`
	GroupName        string `json:"groupName"`
	NewMemberCount   int    `json:"newMemberCount"`
	TotalBannedUsers int    `json:"totalBannedUsers"`
}

// Ban handles POST /groups/{groupID}/members/{memberID}/ban. Owner only.
// A banned member is evicted from the roster in the same transaction.
func (h *Handler) Ban(w http.ResponseWriter, r *http.Request) {
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
	targetID := chi.URLParam(r, "memberID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	out, err := h.Engine.BanMember(ctx, id.UID, gid, targetID)
	if err != nil {
		h.respondEngineError(w, r, "ban member", err)
		return
	}

	h.Audit.MemberBanned(ctx, r, id.UID, targetID, gid, out.GroupName, out.WasMember)

	httpapi.OK(w, "user banned successfully", banDataJSON{
		BannedUserID:     out.BannedUserID,
		GroupName:        out.GroupName,
		NewMemberCount:   out.NewMemberCount,
		TotalBannedUsers: out.TotalBannedUsers,
	})
}

type unbanDataJSON struct {
	UnbannedUserID       string `json:"unbannedUserId"`
	GroupName            string `json:"groupName"`
	RemainingBannedUsers int    `json:"remainingBannedUsers"`
}

// Unban handles POST /groups/{groupID}/members/{memberID}/unban. Owner
// only. Lifting a ban does not re-admit the user.
func (h *Handler) Unban(w http.ResponseWriter, r *http.Request) {
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
	targetID := chi.URLParam(r, "memberID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	out, err := h.Engine.UnbanMember(ctx, id.UID, gid, targetID)
	if err != nil {
		h.respondEngineError(w, r, "unban member", err)
		return
	}

	h.Audit.MemberUnbanned(ctx, r, id.UID, targetID, gid, out.GroupName)

	httpapi.OK(w, "user unbanned successfully", unbanDataJSON{
		UnbannedUserID:       out.UnbannedUserID,
		GroupName:            out.GroupName,
		RemainingBannedUsers: out.RemainingBannedUsers,
	})
}
