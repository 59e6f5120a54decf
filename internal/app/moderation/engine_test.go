package moderation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cardfolio/clubhouse/internal/app/moderation"
	groupstore "github.com/cardfolio/clubhouse/internal/app/store/groups"
	"github.com/cardfolio/clubhouse/internal/domain/models"
	"github.com/cardfolio/clubhouse/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newEngine(db *mongo.Database) *moderation.Engine {
	return moderation.New(db, zap.NewNop())
}

func TestEngine_CreateGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g, err := eng.CreateGroup(ctx, "u-owner", "Topps Vault", "Vintage Topps collectors", false)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	if g.OwnerID != "u-owner" {
		t.Errorf("OwnerID: got %q, want %q", g.OwnerID, "u-owner")
	}
	if !g.IsMember("u-owner") {
		t.Error("expected owner in member_ids")
	}
	if g.MemberCount != 1 {
		t.Errorf("MemberCount: got %d, want 1", g.MemberCount)
	}
	if g.BannedUsers == nil || len(g.BannedUsers) != 0 {
		t.Errorf("BannedUsers: got %v, want empty list", g.BannedUsers)
	}

	// The owner's member record commits with the group
	var m models.GroupMember
	err = db.Collection("group_members").
		FindOne(ctx, bson.M{"group_id": g.ID, "user_id": "u-owner"}).
		Decode(&m)
	if err != nil {
		t.Fatalf("owner member record not found: %v", err)
	}
	if m.Role != models.RoleOwner {
		t.Errorf("owner role: got %q, want %q", m.Role, models.RoleOwner)
	}
}

func TestEngine_CreateGroup_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := eng.CreateGroup(ctx, "u1", "Rookie Chasers", "", false); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	_, err := eng.CreateGroup(ctx, "u2", "ROOKIE chasers", "", false)
	if !errors.Is(err, groupstore.ErrDuplicateGroupName) {
		t.Errorf("expected ErrDuplicateGroupName for case-insensitive duplicate, got %v", err)
	}
}

func TestEngine_JoinGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")

	out, err := eng.JoinGroup(ctx, "u-bob", g.ID)
	if err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}
	if out.GroupName != "Slab City" {
		t.Errorf("GroupName: got %q, want %q", out.GroupName, "Slab City")
	}
	if out.MemberCount != 2 {
		t.Errorf("MemberCount: got %d, want 2", out.MemberCount)
	}

	fresh := reloadGroup(ctx, t, db, g.ID)
	if !fresh.IsMember("u-bob") {
		t.Error("expected joiner in member_ids")
	}
	if fresh.MemberCount != len(fresh.MemberIDs) {
		t.Errorf("member_count %d out of step with member_ids %v", fresh.MemberCount, fresh.MemberIDs)
	}

	var m models.GroupMember
	err = db.Collection("group_members").
		FindOne(ctx, bson.M{"group_id": g.ID, "user_id": "u-bob"}).
		Decode(&m)
	if err != nil {
		t.Fatalf("member record not found: %v", err)
	}
	if m.Role != models.RoleMember {
		t.Errorf("role: got %q, want %q", m.Role, models.RoleMember)
	}
}

func TestEngine_JoinGroup_AlreadyMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")
	f.AddMember(ctx, g, "u-bob")

	_, err := eng.JoinGroup(ctx, "u-bob", g.ID)
	if !moderation.IsKind(err, moderation.KindAlreadyMember) {
		t.Errorf("expected AlreadyMember failure, got %v", err)
	}

	fresh := reloadGroup(ctx, t, db, g.ID)
	if fresh.MemberCount != 2 {
		t.Errorf("MemberCount changed on failed join: got %d, want 2", fresh.MemberCount)
	}
}

// A member of a private group re-joining reads as AlreadyMember, not as a
// privacy rejection.
func TestEngine_JoinGroup_AlreadyMemberOfPrivateGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreatePrivateGroup(ctx, "Inner Circle", "u-owner")
	f.AddMember(ctx, g, "u-bob")

	_, err := eng.JoinGroup(ctx, "u-bob", g.ID)
	if !moderation.IsKind(err, moderation.KindAlreadyMember) {
		t.Errorf("expected AlreadyMember failure, got %v", err)
	}
}

func TestEngine_JoinGroup_Banned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")
	f.BanUser(ctx, g, "u-eve")

	_, err := eng.JoinGroup(ctx, "u-eve", g.ID)
	if !moderation.IsKind(err, moderation.KindForbidden) {
		t.Fatalf("expected Forbidden failure, got %v", err)
	}

	fresh := reloadGroup(ctx, t, db, g.ID)
	if fresh.IsMember("u-eve") {
		t.Error("banned user must not enter member_ids")
	}
}

func TestEngine_JoinGroup_Private(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreatePrivateGroup(ctx, "Inner Circle", "u-owner")

	_, err := eng.JoinGroup(ctx, "u-bob", g.ID)
	if !moderation.IsKind(err, moderation.KindForbidden) {
		t.Fatalf("expected Forbidden failure, got %v", err)
	}
	failure, _ := moderation.AsFailure(err)
	if failure.Message != "this group is private" {
		t.Errorf("unexpected failure message %q", failure.Message)
	}
}

func TestEngine_JoinGroup_GroupNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := eng.JoinGroup(ctx, "u-bob", primitive.NewObjectID())
	if !moderation.IsKind(err, moderation.KindGroupNotFound) {
		t.Errorf("expected GroupNotFound failure, got %v", err)
	}
}

func TestEngine_LeaveGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")
	f.AddMember(ctx, g, "u-bob")

	out, err := eng.LeaveGroup(ctx, "u-bob", g.ID)
	if err != nil {
		t.Fatalf("LeaveGroup failed: %v", err)
	}
	if out.MemberCount != 1 {
		t.Errorf("MemberCount: got %d, want 1", out.MemberCount)
	}

	fresh := reloadGroup(ctx, t, db, g.ID)
	if fresh.IsMember("u-bob") {
		t.Error("expected leaver gone from member_ids")
	}
	if fresh.MemberCount != len(fresh.MemberIDs) {
		t.Errorf("member_count %d out of step with member_ids %v", fresh.MemberCount, fresh.MemberIDs)
	}

	// Leaving is the caller's own action; nobody gets notified
	if n := countNotifications(ctx, t, db, "u-bob"); n != 0 {
		t.Errorf("got %d notifications for leaver, want 0", n)
	}
}

func TestEngine_LeaveGroup_Owner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")

	_, err := eng.LeaveGroup(ctx, "u-owner", g.ID)
	if !moderation.IsKind(err, moderation.KindForbidden) {
		t.Errorf("expected Forbidden failure for owner leave, got %v", err)
	}

	fresh := reloadGroup(ctx, t, db, g.ID)
	if !fresh.IsMember("u-owner") {
		t.Error("owner must remain in member_ids")
	}
}

func TestEngine_LeaveGroup_NotMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")

	_, err := eng.LeaveGroup(ctx, "u-stranger", g.ID)
	if !moderation.IsKind(err, moderation.KindMemberNotFound) {
		t.Errorf("expected MemberNotFound failure, got %v", err)
	}
}

func TestEngine_RemoveMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")
	f.AddMember(ctx, g, "u-bob")

	out, err := eng.RemoveMember(ctx, "u-owner", g.ID, "u-bob")
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if out.RemovedUserID != "u-bob" {
		t.Errorf("RemovedUserID: got %q, want %q", out.RemovedUserID, "u-bob")
	}
	if out.GroupName != "Slab City" {
		t.Errorf("GroupName: got %q, want %q", out.GroupName, "Slab City")
	}
	if out.NewMemberCount != 1 {
		t.Errorf("NewMemberCount: got %d, want 1", out.NewMemberCount)
	}

	fresh := reloadGroup(ctx, t, db, g.ID)
	if fresh.IsMember("u-bob") {
		t.Error("removed user must not remain in member_ids")
	}
	if fresh.MemberCount != len(fresh.MemberIDs) {
		t.Errorf("member_count %d out of step with member_ids %v", fresh.MemberCount, fresh.MemberIDs)
	}

	count, err := db.Collection("group_members").
		CountDocuments(ctx, bson.M{"group_id": g.ID, "user_id": "u-bob"})
	if err != nil {
		t.Fatalf("count member records: %v", err)
	}
	if count != 0 {
		t.Error("expected member record deleted")
	}

	// Exactly one unread notification, addressed to the removed user
	if n := countNotifications(ctx, t, db, "u-bob"); n != 1 {
		t.Fatalf("got %d notifications, want 1", n)
	}
	var notif models.Notification
	err = db.Collection("notifications").
		FindOne(ctx, bson.M{"recipient_id": "u-bob"}).
		Decode(&notif)
	if err != nil {
		t.Fatalf("notification not found: %v", err)
	}
	if notif.Type != models.NotificationRemovedFromGroup {
		t.Errorf("notification type: got %q, want %q", notif.Type, models.NotificationRemovedFromGroup)
	}
	if notif.Read {
		t.Error("expected notification unread")
	}
	if notif.SenderID != "u-owner" {
		t.Errorf("SenderID: got %q, want %q", notif.SenderID, "u-owner")
	}
	if notif.Data.GroupID != g.ID.Hex() {
		t.Errorf("Data.GroupID: got %q, want %q", notif.Data.GroupID, g.ID.Hex())
	}
	if notif.Data.GroupName != "Slab City" {
		t.Errorf("Data.GroupName: got %q, want %q", notif.Data.GroupName, "Slab City")
	}
}

func TestEngine_RemoveMember_NotOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")
	f.AddMember(ctx, g, "u-bob")
	f.AddMember(ctx, g, "u-carol")

	_, err := eng.RemoveMember(ctx, "u-carol", g.ID, "u-bob")
	if !moderation.IsKind(err, moderation.KindForbidden) {
		t.Fatalf("expected Forbidden failure, got %v", err)
	}

	// Nothing changed
	fresh := reloadGroup(ctx, t, db, g.ID)
	if !fresh.IsMember("u-bob") {
		t.Error("target must remain a member after rejected removal")
	}
	if fresh.MemberCount != 3 {
		t.Errorf("MemberCount: got %d, want 3", fresh.MemberCount)
	}
	if n := countNotifications(ctx, t, db, "u-bob"); n != 0 {
		t.Errorf("got %d notifications after rejected removal, want 0", n)
	}
}

func TestEngine_RemoveMember_TargetNotMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")

	_, err := eng.RemoveMember(ctx, "u-owner", g.ID, "u-stranger")
	if !moderation.IsKind(err, moderation.KindMemberNotFound) {
		t.Fatalf("expected MemberNotFound failure, got %v", err)
	}

	fresh := reloadGroup(ctx, t, db, g.ID)
	if fresh.MemberCount != 1 {
		t.Errorf("MemberCount: got %d, want 1", fresh.MemberCount)
	}
	if n := countNotifications(ctx, t, db, "u-stranger"); n != 0 {
		t.Errorf("got %d notifications, want 0", n)
	}
}

func TestEngine_RemoveMember_SelfTarget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")

	_, err := eng.RemoveMember(ctx, "u-owner", g.ID, "u-owner")
	if !moderation.IsKind(err, moderation.KindForbidden) {
		t.Errorf("expected Forbidden failure for self-target, got %v", err)
	}
}

// A second removal of the same user fails cleanly and writes no second
// notification.
func TestEngine_RemoveMember_Rerun(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")
	f.AddMember(ctx, g, "u-bob")

	if _, err := eng.RemoveMember(ctx, "u-owner", g.ID, "u-bob"); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}

	_, err := eng.RemoveMember(ctx, "u-owner", g.ID, "u-bob")
	if !moderation.IsKind(err, moderation.KindMemberNotFound) {
		t.Errorf("expected MemberNotFound on rerun, got %v", err)
	}
	if n := countNotifications(ctx, t, db, "u-bob"); n != 1 {
		t.Errorf("got %d notifications after rerun, want 1", n)
	}
}

func TestEngine_RemoveMember_GroupNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := eng.RemoveMember(ctx, "u-owner", primitive.NewObjectID(), "u-bob")
	if !moderation.IsKind(err, moderation.KindGroupNotFound) {
		t.Errorf("expected GroupNotFound failure, got %v", err)
	}
}

func TestEngine_BanMember_EvictsMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")
	f.AddMember(ctx, g, "u-bob")

	out, err := eng.BanMember(ctx, "u-owner", g.ID, "u-bob")
	if err != nil {
		t.Fatalf("BanMember failed: %v", err)
	}
	if out.BannedUserID != "u-bob" {
		t.Errorf("BannedUserID: got %q, want %q", out.BannedUserID, "u-bob")
	}
	if out.NewMemberCount != 1 {
		t.Errorf("NewMemberCount: got %d, want 1", out.NewMemberCount)
	}
	if out.TotalBannedUsers != 1 {
		t.Errorf("TotalBannedUsers: got %d, want 1", out.TotalBannedUsers)
	}
	if !out.WasMember {
		t.Error("expected WasMember true for active member")
	}

	// Ban and eviction commit together: never banned and still a member
	fresh := reloadGroup(ctx, t, db, g.ID)
	if !fresh.IsBanned("u-bob") {
		t.Error("expected target in banned_users")
	}
	if fresh.IsMember("u-bob") {
		t.Error("banned user must not remain in member_ids")
	}
	if fresh.MemberCount != len(fresh.MemberIDs) {
		t.Errorf("member_count %d out of step with member_ids %v", fresh.MemberCount, fresh.MemberIDs)
	}

	count, err := db.Collection("group_members").
		CountDocuments(ctx, bson.M{"group_id": g.ID, "user_id": "u-bob"})
	if err != nil {
		t.Fatalf("count member records: %v", err)
	}
	if count != 0 {
		t.Error("expected member record deleted on ban")
	}

	if n := countNotifications(ctx, t, db, "u-bob"); n != 1 {
		t.Fatalf("got %d notifications, want 1", n)
	}
	var notif models.Notification
	if err := db.Collection("notifications").
		FindOne(ctx, bson.M{"recipient_id": "u-bob"}).
		Decode(&notif); err != nil {
		t.Fatalf("notification not found: %v", err)
	}
	if notif.Type != models.NotificationBannedFromGroup {
		t.Errorf("notification type: got %q, want %q", notif.Type, models.NotificationBannedFromGroup)
	}
}

// Banning a user who was never a member leaves the roster alone.
func TestEngine_BanMember_NonMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")

	out, err := eng.BanMember(ctx, "u-owner", g.ID, "u-eve")
	if err != nil {
		t.Fatalf("BanMember failed: %v", err)
	}
	if out.NewMemberCount != 1 {
		t.Errorf("NewMemberCount: got %d, want 1", out.NewMemberCount)
	}
	if out.TotalBannedUsers != 1 {
		t.Errorf("TotalBannedUsers: got %d, want 1", out.TotalBannedUsers)
	}
	if out.WasMember {
		t.Error("expected WasMember false for never-member")
	}

	fresh := reloadGroup(ctx, t, db, g.ID)
	if !fresh.IsBanned("u-eve") {
		t.Error("expected target in banned_users")
	}
	if fresh.MemberCount != 1 {
		t.Errorf("MemberCount: got %d, want 1", fresh.MemberCount)
	}
}

func TestEngine_BanMember_AlreadyBanned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")
	f.BanUser(ctx, g, "u-eve")

	_, err := eng.BanMember(ctx, "u-owner", g.ID, "u-eve")
	if !moderation.IsKind(err, moderation.KindAlreadyBanned) {
		t.Fatalf("expected AlreadyBanned failure, got %v", err)
	}

	fresh := reloadGroup(ctx, t, db, g.ID)
	if len(fresh.BannedUsers) != 1 {
		t.Errorf("banned_users: got %v, want one entry", fresh.BannedUsers)
	}
	if n := countNotifications(ctx, t, db, "u-eve"); n != 0 {
		t.Errorf("got %d notifications after rejected ban, want 0", n)
	}
}

func TestEngine_BanThenRejoinRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")
	f.AddMember(ctx, g, "u-bob")

	if _, err := eng.BanMember(ctx, "u-owner", g.ID, "u-bob"); err != nil {
		t.Fatalf("BanMember failed: %v", err)
	}

	_, err := eng.JoinGroup(ctx, "u-bob", g.ID)
	if !moderation.IsKind(err, moderation.KindForbidden) {
		t.Errorf("expected Forbidden failure for banned rejoin, got %v", err)
	}
}

func TestEngine_UnbanMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")
	f.BanUser(ctx, g, "u-eve")

	out, err := eng.UnbanMember(ctx, "u-owner", g.ID, "u-eve")
	if err != nil {
		t.Fatalf("UnbanMember failed: %v", err)
	}
	if out.UnbannedUserID != "u-eve" {
		t.Errorf("UnbannedUserID: got %q, want %q", out.UnbannedUserID, "u-eve")
	}
	if out.GroupName != "Slab City" {
		t.Errorf("GroupName: got %q, want %q", out.GroupName, "Slab City")
	}
	if out.RemainingBannedUsers != 0 {
		t.Errorf("RemainingBannedUsers: got %d, want 0", out.RemainingBannedUsers)
	}

	// Unban lifts the ban; it does not re-admit
	fresh := reloadGroup(ctx, t, db, g.ID)
	if fresh.IsBanned("u-eve") {
		t.Error("expected target gone from banned_users")
	}
	if fresh.IsMember("u-eve") {
		t.Error("unban must not re-add the user to member_ids")
	}

	if n := countNotifications(ctx, t, db, "u-eve"); n != 1 {
		t.Fatalf("got %d notifications, want 1", n)
	}
	var notif models.Notification
	if err := db.Collection("notifications").
		FindOne(ctx, bson.M{"recipient_id": "u-eve"}).
		Decode(&notif); err != nil {
		t.Fatalf("notification not found: %v", err)
	}
	if notif.Type != models.NotificationUnbannedFromGroup {
		t.Errorf("notification type: got %q, want %q", notif.Type, models.NotificationUnbannedFromGroup)
	}
	if notif.Read {
		t.Error("expected notification unread")
	}
}

// Unban only removes the targeted user from the list.
func TestEngine_UnbanMember_OthersKept(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")
	f.BanUser(ctx, g, "u-eve")
	f.BanUser(ctx, g, "u-mallory")

	out, err := eng.UnbanMember(ctx, "u-owner", g.ID, "u-eve")
	if err != nil {
		t.Fatalf("UnbanMember failed: %v", err)
	}
	if out.RemainingBannedUsers != 1 {
		t.Errorf("RemainingBannedUsers: got %d, want 1", out.RemainingBannedUsers)
	}

	fresh := reloadGroup(ctx, t, db, g.ID)
	if fresh.IsBanned("u-eve") {
		t.Error("expected u-eve unbanned")
	}
	if !fresh.IsBanned("u-mallory") {
		t.Error("expected u-mallory still banned")
	}
}

func TestEngine_UnbanMember_NotBanned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")

	_, err := eng.UnbanMember(ctx, "u-owner", g.ID, "u-eve")
	if !moderation.IsKind(err, moderation.KindNotBanned) {
		t.Fatalf("expected NotBanned failure, got %v", err)
	}
	if n := countNotifications(ctx, t, db, "u-eve"); n != 0 {
		t.Errorf("got %d notifications after rejected unban, want 0", n)
	}
}

func TestEngine_UnbanThenRejoin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")
	f.BanUser(ctx, g, "u-eve")

	if _, err := eng.UnbanMember(ctx, "u-owner", g.ID, "u-eve"); err != nil {
		t.Fatalf("UnbanMember failed: %v", err)
	}

	out, err := eng.JoinGroup(ctx, "u-eve", g.ID)
	if err != nil {
		t.Fatalf("JoinGroup after unban failed: %v", err)
	}
	if out.MemberCount != 2 {
		t.Errorf("MemberCount: got %d, want 2", out.MemberCount)
	}
}

// Authorization is checked before the target's state: a non-owner caller is
// rejected as Forbidden even when the target-state precondition would also
// fail.
func TestEngine_ModerationRequiresOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")
	f.AddMember(ctx, g, "u-carol")

	ops := []struct {
		name string
		call func(callerID, targetID string) error
	}{
		{"remove", func(c, tgt string) error {
			_, err := eng.RemoveMember(ctx, c, g.ID, tgt)
			return err
		}},
		{"ban", func(c, tgt string) error {
			_, err := eng.BanMember(ctx, c, g.ID, tgt)
			return err
		}},
		{"unban", func(c, tgt string) error {
			_, err := eng.UnbanMember(ctx, c, g.ID, tgt)
			return err
		}},
	}

	for _, op := range ops {
		for _, caller := range []string{"u-carol", "u-stranger"} {
			if err := op.call(caller, "u-nobody"); !moderation.IsKind(err, moderation.KindForbidden) {
				t.Errorf("%s by %s: expected Forbidden failure, got %v", op.name, caller, err)
			}
		}
	}
}

func TestEngine_ModerationRejectsSelfTarget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")

	ops := []struct {
		name string
		call func() error
	}{
		{"remove", func() error {
			_, err := eng.RemoveMember(ctx, "u-owner", g.ID, "u-owner")
			return err
		}},
		{"ban", func() error {
			_, err := eng.BanMember(ctx, "u-owner", g.ID, "u-owner")
			return err
		}},
		{"unban", func() error {
			_, err := eng.UnbanMember(ctx, "u-owner", g.ID, "u-owner")
			return err
		}},
	}

	for _, op := range ops {
		if err := op.call(); !moderation.IsKind(err, moderation.KindForbidden) {
			t.Errorf("%s self-target: expected Forbidden failure, got %v", op.name, err)
		}
	}
}

func TestEngine_UpdateGroupInfo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")

	name := "Slab Capital"
	private := true
	updated, err := eng.UpdateGroupInfo(ctx, "u-owner", g.ID, &name, nil, &private)
	if err != nil {
		t.Fatalf("UpdateGroupInfo failed: %v", err)
	}

	if updated.Name != "Slab Capital" {
		t.Errorf("Name: got %q, want %q", updated.Name, "Slab Capital")
	}
	if !updated.IsPrivate {
		t.Error("expected group private")
	}
	if updated.Description != g.Description {
		t.Errorf("Description changed: got %q, want %q", updated.Description, g.Description)
	}
}

func TestEngine_UpdateGroupInfo_NotOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	eng := newEngine(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Slab City", "u-owner")
	f.AddMember(ctx, g, "u-bob")

	name := "Hijacked"
	_, err := eng.UpdateGroupInfo(ctx, "u-bob", g.ID, &name, nil, nil)
	if !moderation.IsKind(err, moderation.KindForbidden) {
		t.Errorf("expected Forbidden failure, got %v", err)
	}
}

func reloadGroup(ctx context.Context, t *testing.T, db *mongo.Database, id primitive.ObjectID) models.Group {
	t.Helper()
	g, err := groupstore.New(db).GetByID(ctx, id)
	if err != nil {
		t.Fatalf("reload group: %v", err)
	}
	return g
}

func countNotifications(ctx context.Context, t *testing.T, db *mongo.Database, recipientID string) int64 {
	t.Helper()
	n, err := db.Collection("notifications").CountDocuments(ctx, bson.M{"recipient_id": recipientID})
	if err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	return n
}
