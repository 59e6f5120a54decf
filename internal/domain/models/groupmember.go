// internal/domain/models/groupmember.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership roles. The owner is the user who created the group; everyone
// else joins as a plain member.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// IsValidRole checks if a value is a recognized membership role.
func IsValidRole(role string) bool {
	return role == RoleOwner || role == RoleMember
}

// GroupMember is the authoritative join between users and groups.
// Exactly one document per (group_id, user_id), enforced by a unique index.
type GroupMember struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID  primitive.ObjectID `bson:"group_id" json:"group_id"`
	UserID   string             `bson:"user_id" json:"user_id"`
	Role     string             `bson:"role" json:"role"` // "owner" | "member"
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
}
