package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cardfolio/clubhouse/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateGroup creates a public test group owned by ownerID.
// The owner is seeded into member_ids and gets an owner member record,
// matching the state CreateGroup produces in production.
func (f *Fixtures) CreateGroup(ctx context.Context, name, ownerID string) models.Group {
	f.t.Helper()
	return f.createGroup(ctx, name, ownerID, false)
}

// CreatePrivateGroup creates a private test group owned by ownerID.
func (f *Fixtures) CreatePrivateGroup(ctx context.Context, name, ownerID string) models.Group {
	f.t.Helper()
	return f.createGroup(ctx, name, ownerID, true)
}

func (f *Fixtures) createGroup(ctx context.Context, name, ownerID string, isPrivate bool) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Description:  "Test group description",
		OwnerID:      ownerID,
		IsPrivate:    isPrivate,
		MemberIDs:    []string{ownerID},
		MemberCount:  1,
		BannedUsers:  []string{},
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}

	member := models.GroupMember{
		GroupID:  group.ID,
		UserID:   ownerID,
		Role:     models.RoleOwner,
		JoinedAt: now,
	}
	if _, err := f.db.Collection("group_members").InsertOne(ctx, member); err != nil {
		f.t.Fatalf("failed to create owner member record: %v", err)
	}

	return group
}

// AddMember adds userID to a group as a regular member, updating both the
// member record and the group's denormalized roster fields.
func (f *Fixtures) AddMember(ctx context.Context, group models.Group, userID string) models.GroupMember {
	f.t.Helper()

	now := time.Now().UTC()
	member := models.GroupMember{
		GroupID:  group.ID,
		UserID:   userID,
		Role:     models.RoleMember,
		JoinedAt: now,
	}
	if _, err := f.db.Collection("group_members").InsertOne(ctx, member); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}

	_, err := f.db.Collection("groups").UpdateByID(ctx, group.ID, bson.M{
		"$addToSet": bson.M{"member_ids": userID},
		"$inc":      bson.M{"member_count": 1},
		"$set":      bson.M{"last_activity": now, "updated_at": now},
	})
	if err != nil {
		f.t.Fatalf("failed to update group roster: %v", err)
	}

	return member
}

// BanUser appends userID to a group's ban list directly.
func (f *Fixtures) BanUser(ctx context.Context, group models.Group, userID string) {
	f.t.Helper()

	_, err := f.db.Collection("groups").UpdateByID(ctx, group.ID, bson.M{
		"$addToSet": bson.M{"banned_users": userID},
	})
	if err != nil {
		f.t.Fatalf("failed to ban test user: %v", err)
	}
}

// CreateNotification inserts an unread notification for recipientID.
func (f *Fixtures) CreateNotification(ctx context.Context, recipientID, senderID, notifType string, group models.Group) models.Notification {
	f.t.Helper()

	n := models.Notification{
		ID:          primitive.NewObjectID(),
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        notifType,
		Title:       "Test Notification",
		Message:     "Test notification message",
		Data: models.NotificationData{
			GroupID:   group.ID.Hex(),
			GroupName: group.Name,
		},
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("notifications").InsertOne(ctx, n); err != nil {
		f.t.Fatalf("failed to create test notification: %v", err)
	}

	return n
}
