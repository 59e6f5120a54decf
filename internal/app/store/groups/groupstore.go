// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/cardfolio/clubhouse/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateGroupName = errors.New("a group with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// Create inserts a new group. The caller supplies Name, Description, OwnerID,
// IsPrivate, and the initial roster; identity and bookkeeping fields are
// filled here. MemberCount is always derived from MemberIDs.
func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	if g.MemberIDs == nil {
		g.MemberIDs = []string{}
	}
	if g.BannedUsers == nil {
		g.BannedUsers = []string{}
	}
	g.MemberCount = len(g.MemberIDs)
	g.LastActivity = now
	g.CreatedAt = now
	g.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, g)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateGroupName
		}
		return models.Group{}, err
	}
	return g, nil
}

// UpdateInfo updates a group's profile fields. Nil fields are left unchanged;
// a non-nil description may be empty (cleared).
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, name, desc *string, isPrivate *bool) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if name != nil {
		set["name"] = *name
		set["name_ci"] = text.Fold(*name)
	}
	if desc != nil {
		set["description"] = *desc
	}
	if isPrivate != nil {
		set["is_private"] = *isPrivate
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateGroupName
		}
		return err
	}
	return nil
}

// ReplaceRoster overwrites the denormalized roster fields from the
// authoritative member records. member_count always equals len(memberIDs).
func (s *Store) ReplaceRoster(ctx context.Context, id primitive.ObjectID, memberIDs []string) error {
	if memberIDs == nil {
		memberIDs = []string{} // nil marshals to BSON null, not an empty array
	}
	now := time.Now().UTC()
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"member_ids":    memberIDs,
		"member_count":  len(memberIDs),
		"last_activity": now,
		"updated_at":    now,
	}})
	return err
}

// SetBanList overwrites the group's ban list.
func (s *Store) SetBanList(ctx context.Context, id primitive.ObjectID, banned []string) error {
	if banned == nil {
		banned = []string{}
	}
	now := time.Now().UTC()
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"banned_users":  banned,
		"last_activity": now,
		"updated_at":    now,
	}})
	return err
}
