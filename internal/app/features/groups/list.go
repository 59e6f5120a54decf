// internal/app/features/groups/list.go
package groups

import (
	"context"
	"net/http"
	"time"

	"github.com/cardfolio/clubhouse/internal/app/store/queries/groupqueries"
	"github.com/cardfolio/clubhouse/internal/app/system/authn"
	"github.com/cardfolio/clubhouse/internal/app/system/httpapi"
	"github.com/cardfolio/clubhouse/internal/app/system/paging"
	"github.com/cardfolio/clubhouse/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// groupRowJSON is one row of the listing. Member counts are computed live
// from the member records, so a stale denormalized count never reaches
// clients here.
type groupRowJSON struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	OwnerID      string    `json:"ownerId"`
	IsPrivate    bool      `json:"isPrivate"`
	MemberCount  int       `json:"memberCount"`
	LastActivity time.Time `json:"lastActivity"`
}

type listDataJSON struct {
	Groups     []groupRowJSON `json:"groups"`
	Total      int64          `json:"total"`
	HasPrev    bool           `json:"hasPrev"`
	HasNext    bool           `json:"hasNext"`
	PrevCursor string         `json:"prevCursor,omitempty"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// List handles GET /groups: public groups ordered by folded name, with
// optional `q` prefix search and `after`/`before` keyset cursors.
// `mine=true` scopes the listing to the caller's groups, private included.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := query.Get(r, "q")
	after := query.Get(r, "after")
	before := query.Get(r, "before")
	mine := query.Get(r, "mine") == "true"

	var filter groupqueries.ListFilter
	filter.SearchQuery = q
	if mine {
		uid := authn.CallerUID(r)
		if uid == "" {
			httpapi.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		filter.MemberID = uid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cfg := paging.ConfigureKeyset(before, after)
	result, err := groupqueries.ListGroups(ctx, h.DB, filter, cfg)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to list groups", err, "internal server error")
		return
	}

	items := result.Items
	if cfg.Direction == paging.Backward {
		paging.Reverse(items)
	}
	page := paging.TrimPage(&items, before, after)

	rows := make([]groupRowJSON, 0, len(items))
	for _, it := range items {
		rows = append(rows, groupRowJSON{
			ID:           it.ID.Hex(),
			Name:         it.Name,
			Description:  it.Description,
			OwnerID:      it.OwnerID,
			IsPrivate:    it.IsPrivate,
			MemberCount:  it.MemberCount,
			LastActivity: it.LastActivity,
		})
	}

	prevCur, nextCur := paging.BuildCursors(items,
		func(it groupqueries.GroupListItem) string { return it.NameCI },
		func(it groupqueries.GroupListItem) primitive.ObjectID { return it.ID },
	)

	httpapi.OK(w, "groups retrieved", listDataJSON{
		Groups:     rows,
		Total:      result.Total,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
		PrevCursor: prevCur,
		NextCursor: nextCur,
	})
}
