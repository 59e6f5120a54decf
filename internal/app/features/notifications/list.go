// internal/app/features/notifications/list.go
package notifications

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/cardfolio/clubhouse/internal/app/system/authn"
	"github.com/cardfolio/clubhouse/internal/app/system/httpapi"
	"github.com/cardfolio/clubhouse/internal/app/system/limits"
	"github.com/cardfolio/clubhouse/internal/app/system/timeouts"
	"github.com/cardfolio/clubhouse/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

const defaultPageSize = 20

type notificationDataJSON struct {
	GroupID   string `json:"groupId"`
	GroupName string `json:"groupName"`
}

type notificationJSON struct {
	ID        string               `json:"id"`
	SenderID  string               `json:"senderId"`
	Type      string               `json:"type"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Data      notificationDataJSON `json:"data"`
	Read      bool                 `json:"read"`
	CreatedAt time.Time            `json:"createdAt"`
}

type listDataJSON struct {
	Notifications []notificationJSON `json:"notifications"`
	UnreadCount   int64              `json:"unreadCount"`
}

func toNotificationJSON(n models.Notification) notificationJSON {
	return notificationJSON{
		ID:       n.ID.Hex(),
		SenderID: n.SenderID,
		Type:     n.Type,
		Title:    n.Title,
		Message:  n.Message,
		Data: notificationDataJSON{
			GroupID:   n.Data.GroupID,
			GroupName: n.Data.GroupName,
		},
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// List handles GET /notifications: the caller's inbox, newest first, with a
// running unread count. `unread=true` narrows to unread records; `limit`
// sizes the page.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := authn.CurrentIdentity(r)
	if !ok {
		httpapi.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	unreadOnly := query.Get(r, "unread") == "true"

	limit := int64(defaultPageSize)
	if raw := query.Get(r, "limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			httpapi.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > limits.MaxNotificationPageSize {
		limit = limits.MaxNotificationPageSize
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.Store.ListByRecipient(ctx, id.UID, unreadOnly, limit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to list notifications", err, "internal server error")
		return
	}

	unread, err := h.Store.CountUnread(ctx, id.UID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to count unread notifications", err, "internal server error")
		return
	}

	rows := make([]notificationJSON, 0, len(items))
	for _, n := range items {
		rows = append(rows, toNotificationJSON(n))
	}

	httpapi.OK(w, "notifications retrieved", listDataJSON{
		Notifications: rows,
		UnreadCount:   unread,
	})
}
