// internal/app/features/notifications/handler.go

// Package notifications serves the per-user notification inbox.
//
// Moderation transitions write the records; this feature only reads them and
// flips the read flag. Every route is scoped to the authenticated caller's
// own inbox.
package notifications

import (
	notificationstore "github.com/cardfolio/clubhouse/internal/app/store/notifications"
	"github.com/cardfolio/clubhouse/internal/app/system/httpapi"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the notification endpoints.
type Handler struct {
	Store  *notificationstore.Store
	Log    *zap.Logger
	ErrLog *httpapi.ErrorLogger
}

// NewHandler constructs the notifications handler.
func NewHandler(db *mongo.Database, log *zap.Logger) *Handler {
	return &Handler{
		Store:  notificationstore.New(db),
		Log:    log,
		ErrLog: httpapi.NewErrorLogger(log),
	}
}
