// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types written by moderation transitions. Each moderation
// action that targets another user produces exactly one notification for
// that user, committed in the same transaction as the group mutation.
const (
	NotificationRemovedFromGroup  = "removed_from_group"
	NotificationBannedFromGroup   = "banned_from_group"
	NotificationUnbannedFromGroup = "unbanned_from_group"
)

// NotificationData carries the structured payload clients use to deep-link
// a notification back to the group it concerns.
type NotificationData struct {
	GroupID   string `bson:"group_id" json:"groupId"`
	GroupName string `bson:"group_name" json:"groupName"`
}

// Notification is a per-user inbox record.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	RecipientID string             `bson:"recipient_id" json:"recipient_id"`
	SenderID    string             `bson:"sender_id" json:"sender_id"`
	Type        string             `bson:"type" json:"type"`
	Title       string             `bson:"title" json:"title"`
	Message     string             `bson:"message" json:"message"`
	Data        NotificationData   `bson:"data" json:"data"`
	Read        bool               `bson:"read" json:"read"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
