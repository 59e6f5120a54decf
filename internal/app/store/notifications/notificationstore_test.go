package notificationstore_test

import (
	"testing"
	"time"

	notificationstore "github.com/cardfolio/clubhouse/internal/app/store/notifications"
	"github.com/cardfolio/clubhouse/internal/domain/models"
	"github.com/cardfolio/clubhouse/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Insert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n := models.Notification{
		RecipientID: "u2",
		SenderID:    "u1",
		Type:        models.NotificationRemovedFromGroup,
		Title:       "Removed from group",
		Message:     "You were removed from Vintage Rookies",
		Data: models.NotificationData{
			GroupID:   primitive.NewObjectID().Hex(),
			GroupName: "Vintage Rookies",
		},
		Read: true, // must be forced back to unread
	}

	created, err := store.Insert(ctx, n)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Read {
		t.Error("expected new notification to be unread")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_ListByRecipient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID().Hex()
	base := time.Now().UTC().Add(-time.Hour)

	for i, typ := range []string{
		models.NotificationRemovedFromGroup,
		models.NotificationBannedFromGroup,
		models.NotificationUnbannedFromGroup,
	} {
		_, err := store.Insert(ctx, models.Notification{
			RecipientID: "u2",
			SenderID:    "u1",
			Type:        typ,
			Title:       "t",
			Message:     "m",
			Data:        models.NotificationData{GroupID: groupID, GroupName: "G"},
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	// Another recipient's notification must not leak in
	if _, err := store.Insert(ctx, models.Notification{
		RecipientID: "u9",
		SenderID:    "u1",
		Type:        models.NotificationRemovedFromGroup,
		Title:       "t",
		Message:     "m",
	}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	list, err := store.ListByRecipient(ctx, "u2", false, 50)
	if err != nil {
		t.Fatalf("ListByRecipient failed: %v", err)
	}

	if len(list) != 3 {
		t.Fatalf("got %d notifications, want 3", len(list))
	}

	// Newest first
	if list[0].Type != models.NotificationUnbannedFromGroup {
		t.Errorf("expected newest notification first, got type %q", list[0].Type)
	}
}

func TestStore_ListByRecipient_UnreadOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.Insert(ctx, models.Notification{
		RecipientID: "u2", SenderID: "u1",
		Type: models.NotificationRemovedFromGroup, Title: "t", Message: "m",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := store.Insert(ctx, models.Notification{
		RecipientID: "u2", SenderID: "u1",
		Type: models.NotificationUnbannedFromGroup, Title: "t", Message: "m",
	}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := store.MarkRead(ctx, first.ID, "u2"); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	unread, err := store.ListByRecipient(ctx, "u2", true, 50)
	if err != nil {
		t.Fatalf("ListByRecipient failed: %v", err)
	}
	if len(unread) != 1 {
		t.Fatalf("got %d unread notifications, want 1", len(unread))
	}
	if unread[0].Type != models.NotificationUnbannedFromGroup {
		t.Errorf("unexpected unread notification type %q", unread[0].Type)
	}
}

func TestStore_ListByRecipient_Limit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 5; i++ {
		if _, err := store.Insert(ctx, models.Notification{
			RecipientID: "u2", SenderID: "u1",
			Type: models.NotificationRemovedFromGroup, Title: "t", Message: "m",
		}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	list, err := store.ListByRecipient(ctx, "u2", false, 2)
	if err != nil {
		t.Fatalf("ListByRecipient failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("got %d notifications, want 2", len(list))
	}
}

func TestStore_MarkRead_WrongRecipient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n, err := store.Insert(ctx, models.Notification{
		RecipientID: "u2", SenderID: "u1",
		Type: models.NotificationRemovedFromGroup, Title: "t", Message: "m",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	err = store.MarkRead(ctx, n.ID, "u-other")
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments for wrong recipient, got %v", err)
	}

	// Still unread for the real recipient
	count, err := store.CountUnread(ctx, "u2")
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if count != 1 {
		t.Errorf("CountUnread: got %d, want 1", count)
	}
}

func TestStore_MarkRead_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.MarkRead(ctx, primitive.NewObjectID(), "u2")
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_CountUnread(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var last models.Notification
	for i := 0; i < 3; i++ {
		n, err := store.Insert(ctx, models.Notification{
			RecipientID: "u2", SenderID: "u1",
			Type: models.NotificationRemovedFromGroup, Title: "t", Message: "m",
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		last = n
	}

	count, err := store.CountUnread(ctx, "u2")
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if count != 3 {
		t.Errorf("CountUnread: got %d, want 3", count)
	}

	if err := store.MarkRead(ctx, last.ID, "u2"); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	count, err = store.CountUnread(ctx, "u2")
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if count != 2 {
		t.Errorf("CountUnread after MarkRead: got %d, want 2", count)
	}
}

func TestStore_DeleteOlderThan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	ages := []time.Duration{-72 * time.Hour, -48 * time.Hour, -time.Hour}
	for _, age := range ages {
		if _, err := store.Insert(ctx, models.Notification{
			RecipientID: "u2", SenderID: "u1",
			Type: models.NotificationRemovedFromGroup, Title: "t", Message: "m",
			CreatedAt: now.Add(age),
		}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	deleted, err := store.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted: got %d, want 2", deleted)
	}

	remaining, err := store.ListByRecipient(ctx, "u2", false, 50)
	if err != nil {
		t.Fatalf("ListByRecipient failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("remaining: got %d, want 1", len(remaining))
	}
}
