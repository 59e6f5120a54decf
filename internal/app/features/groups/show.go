// internal/app/features/groups/show.go
package groups

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cardfolio/clubhouse/internal/app/policy/grouppolicy"
	"github.com/cardfolio/clubhouse/internal/app/system/authn"
	"github.com/cardfolio/clubhouse/internal/app/system/httpapi"
	"github.com/cardfolio/clubhouse/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
)

// groupDetailJSON extends the group shape with the roster. The ban list is
// included only for the owner.
type groupDetailJSON struct {
	groupJSON
	MemberIDs   []string `json:"memberIds"`
	BannedUsers []string `json:"bannedUsers,omitempty"`
}

// Show handles GET /groups/{groupID}. Private groups are visible to their
// members only.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Groups.GetByID(ctx, gid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpapi.Error(w, http.StatusNotFound, "group not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "failed to load group", err, "internal server error")
		return
	}

	if !grouppolicy.CanView(g, id.UID) {
		httpapi.Error(w, http.StatusForbidden, "this group is private")
		return
	}

	detail := groupDetailJSON{
		groupJSON: toGroupJSON(g),
		MemberIDs: g.MemberIDs,
	}
	if grouppolicy.CanViewBanList(g, id.UID) {
		detail.BannedUsers = g.BannedUsers
	}

	httpapi.OK(w, "group retrieved", detail)
}

type memberJSON struct {
	UserID   string    `json:"userId"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type membersDataJSON struct {
	Members     []memberJSON `json:"members"`
	MemberCount int          `json:"memberCount"`
}

// ListMembers handles GET /groups/{groupID}/members. The roster is read
// from the member records, which are authoritative. Members only.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Groups.GetByID(ctx, gid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpapi.Error(w, http.StatusNotFound, "group not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "failed to load group", err, "internal server error")
		return
	}

	if !grouppolicy.CanViewRoster(g, id.UID) {
		httpapi.Error(w, http.StatusForbidden, "only members may view the roster")
		return
	}

	members, err := h.Members.ListByGroup(ctx, gid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to list members", err, "internal server error")
		return
	}

	rows := make([]memberJSON, 0, len(members))
	for _, m := range members {
		rows = append(rows, memberJSON{
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}

	httpapi.OK(w, "members retrieved", membersDataJSON{
		Members:     rows,
		MemberCount: len(rows),
	})
}
