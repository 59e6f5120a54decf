// internal/app/features/notifications/markread.go
package notifications

import (
	"context"
	"errors"
	"net/http"

	"github.com/cardfolio/clubhouse/internal/app/system/authn"
	"github.com/cardfolio/clubhouse/internal/app/system/httpapi"
	"github.com/cardfolio/clubhouse/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MarkRead handles POST /notifications/{notificationID}/read. The update is
// scoped to the caller, so marking another user's notification lands on the
// same 404 as a missing one.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := authn.CurrentIdentity(r)
	if !ok {
		httpapi.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	nid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "notificationID"))
	if err != nil {
		httpapi.Error(w, http.StatusNotFound, "notification not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.MarkRead(ctx, nid, id.UID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpapi.Error(w, http.StatusNotFound, "notification not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "failed to mark notification read", err, "internal server error")
		return
	}

	httpapi.OK(w, "notification marked read", nil)
}
