// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a collector club: a named community users join to trade cards,
// talk, and compare predictions.
//
// NOTE:
//   - MemberIDs and MemberCount are denormalized read models. The
//     group_members collection is authoritative; every membership
//     transition rebuilds both fields inside the same transaction.
//   - BannedUsers holds user IDs barred from joining. A banned user is
//     never a member (the ban transition evicts them atomically).
//   - OwnerID always appears in MemberIDs and never in BannedUsers.
type Group struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description" json:"description"`
	OwnerID     string             `bson:"owner_id" json:"owner_id"`
	IsPrivate   bool               `bson:"is_private" json:"is_private"`

	MemberIDs   []string `bson:"member_ids" json:"member_ids"`
	MemberCount int      `bson:"member_count" json:"member_count"`
	BannedUsers []string `bson:"banned_users" json:"banned_users"`

	LastActivity time.Time `bson:"last_activity" json:"last_activity"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// IsMember reports whether the given user appears in the denormalized roster.
func (g *Group) IsMember(userID string) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsBanned reports whether the given user is on the ban list.
func (g *Group) IsBanned(userID string) bool {
	for _, id := range g.BannedUsers {
		if id == userID {
			return true
		}
	}
	return false
}
