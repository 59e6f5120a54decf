// internal/app/store/members/memberstore.go
package memberstore

// The group_members collection is the authoritative record of who belongs to
// a group. The denormalized roster on the group document (member_ids,
// member_count) is rebuilt from it after every membership change.

import (
	"context"
	"errors"
	"time"

	"github.com/cardfolio/clubhouse/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_members")}
}

var (
	errBadRole = errors.New(`role must be "owner" or "member"`)

	ErrDuplicateMember = errors.New("user is already a member of this group")
)

// Get returns the member record for (groupID, userID).
// Missing records surface as mongo.ErrNoDocuments.
func (s *Store) Get(ctx context.Context, groupID primitive.ObjectID, userID string) (models.GroupMember, error) {
	var m models.GroupMember
	err := s.c.FindOne(ctx, bson.M{"group_id": groupID, "user_id": userID}).Decode(&m)
	if err != nil {
		return models.GroupMember{}, err
	}
	return m, nil
}

// Insert creates a member record. JoinedAt is filled if unset.
func (s *Store) Insert(ctx context.Context, m models.GroupMember) error {
	if !models.IsValidRole(m.Role) {
		return errBadRole
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, m)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMember
		}
		return err
	}
	return nil
}

// Delete removes the member record for (groupID, userID).
func (s *Store) Delete(ctx context.Context, groupID primitive.ObjectID, userID string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"group_id": groupID, "user_id": userID})
	return err
}

// Exists checks if a member record exists for the given group and user.
func (s *Store) Exists(ctx context.Context, groupID primitive.ObjectID, userID string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"group_id": groupID, "user_id": userID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListUserIDs returns the user ids of all members of a group, ordered by
// join time. This is the rebuild source for the group's member_ids field.
func (s *Store) ListUserIDs(ctx context.Context, groupID primitive.ObjectID) ([]string, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "joined_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"user_id": 1})

	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := []string{}
	for cur.Next(ctx) {
		var row struct {
			UserID string `bson:"user_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.UserID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListByGroup returns all member records for a group, ordered by join time.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupMember, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "joined_at", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var members []models.GroupMember
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// CountByGroup returns the number of members in a group.
func (s *Store) CountByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"group_id": groupID})
}

// CountByUser returns the number of groups a user belongs to.
func (s *Store) CountByUser(ctx context.Context, userID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID})
}
