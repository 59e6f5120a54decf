// internal/app/moderation/engine.go

// Package moderation implements the guarded state transitions that mutate a
// group's membership roster and ban list. Every transition follows the same
// template: read the group, authorize the caller, check the transition's
// precondition, apply the mutation, write the notification that announces
// it, and commit — all inside one transaction, so the denormalized roster
// fields, the member records, and the notification are never observed out
// of step with each other.
//
// No other component may write member_ids, member_count, or banned_users.
package moderation

import (
	"context"
	"errors"

	groupstore "github.com/cardfolio/clubhouse/internal/app/store/groups"
	memberstore "github.com/cardfolio/clubhouse/internal/app/store/members"
	notificationstore "github.com/cardfolio/clubhouse/internal/app/store/notifications"
	"github.com/cardfolio/clubhouse/internal/app/system/txn"
	"github.com/cardfolio/clubhouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Engine executes guarded membership transitions.
type Engine struct {
	db            *mongo.Database
	log           *zap.Logger
	groups        *groupstore.Store
	members       *memberstore.Store
	notifications *notificationstore.Store
}

// New creates a moderation Engine over the given database.
func New(db *mongo.Database, log *zap.Logger) *Engine {
	return &Engine{
		db:            db,
		log:           log,
		groups:        groupstore.New(db),
		members:       memberstore.New(db),
		notifications: notificationstore.New(db),
	}
}

// RemoveOutcome summarizes a committed remove-member transition.
type RemoveOutcome struct {
	RemovedUserID  string
	GroupName      string
	NewMemberCount int
}

// BanOutcome summarizes a committed ban transition. WasMember records
// whether the ban evicted an active member.
type BanOutcome struct {
	BannedUserID     string
	GroupName        string
	NewMemberCount   int
	TotalBannedUsers int
	WasMember        bool
}

// UnbanOutcome summarizes a committed unban transition.
type UnbanOutcome struct {
	UnbannedUserID       string
	GroupName            string
	RemainingBannedUsers int
}

// JoinOutcome summarizes a committed join.
type JoinOutcome struct {
	GroupName   string
	MemberCount int
}

// LeaveOutcome summarizes a committed leave.
type LeaveOutcome struct {
	GroupName   string
	MemberCount int
}

// loadGroup reads a group inside a transition, mapping a missing document
// to the GroupNotFound failure.
func (e *Engine) loadGroup(ctx context.Context, groupID primitive.ObjectID) (models.Group, error) {
	g, err := e.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Group{}, errGroupNotFound()
		}
		return models.Group{}, err
	}
	return g, nil
}

// rebuildRoster re-derives the group's denormalized roster fields from the
// member records. Returns the fresh member ids.
func (e *Engine) rebuildRoster(ctx context.Context, groupID primitive.ObjectID) ([]string, error) {
	roster, err := e.members.ListUserIDs(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := e.groups.ReplaceRoster(ctx, groupID, roster); err != nil {
		return nil, err
	}
	return roster, nil
}

func (e *Engine) notify(ctx context.Context, g models.Group, senderID, recipientID, notifType, title, message string) error {
	_, err := e.notifications.Insert(ctx, models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        notifType,
		Title:       title,
		Message:     message,
		Data: models.NotificationData{
			GroupID:   g.ID.Hex(),
			GroupName: g.Name,
		},
	})
	return err
}

// CreateGroup creates a group with the caller as owner. The group document
// and the owner's member record commit together.
func (e *Engine) CreateGroup(ctx context.Context, ownerID, name, description string, isPrivate bool) (models.Group, error) {
	var created models.Group
	err := txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		g, err := e.groups.Create(ctx, models.Group{
			Name:        name,
			Description: description,
			OwnerID:     ownerID,
			IsPrivate:   isPrivate,
			MemberIDs:   []string{ownerID},
		})
		if err != nil {
			return err
		}
		if err := e.members.Insert(ctx, models.GroupMember{
			GroupID: g.ID,
			UserID:  ownerID,
			Role:    models.RoleOwner,
		}); err != nil {
			return err
		}
		created = g
		return nil
	})
	if err != nil {
		return models.Group{}, err
	}
	return created, nil
}

// UpdateGroupInfo updates a group's name, description, or privacy. Owner
// only. Nil fields are left unchanged. Roster and ban list are untouched,
// so no transaction is needed for this single-document update.
func (e *Engine) UpdateGroupInfo(ctx context.Context, callerID string, groupID primitive.ObjectID, name, description *string, isPrivate *bool) (models.Group, error) {
	g, err := e.loadGroup(ctx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	if g.OwnerID != callerID {
		return models.Group{}, errForbidden("only the owner may perform this action")
	}
	if err := e.groups.UpdateInfo(ctx, groupID, name, description, isPrivate); err != nil {
		return models.Group{}, err
	}
	return e.loadGroup(ctx, groupID)
}

// JoinGroup adds the caller to a group as a regular member.
func (e *Engine) JoinGroup(ctx context.Context, callerID string, groupID primitive.ObjectID) (JoinOutcome, error) {
	var out JoinOutcome
	err := txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		g, err := e.loadGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if g.IsBanned(callerID) {
			return errForbidden("you are banned from this group")
		}

		// group_members is authoritative for membership
		exists, err := e.members.Exists(ctx, groupID, callerID)
		if err != nil {
			return err
		}
		if exists {
			return errAlreadyMember()
		}
		if g.IsPrivate {
			return errForbidden("this group is private")
		}

		if err := e.members.Insert(ctx, models.GroupMember{
			GroupID: groupID,
			UserID:  callerID,
			Role:    models.RoleMember,
		}); err != nil {
			if errors.Is(err, memberstore.ErrDuplicateMember) {
				return errAlreadyMember()
			}
			return err
		}
		roster, err := e.rebuildRoster(ctx, groupID)
		if err != nil {
			return err
		}

		out = JoinOutcome{GroupName: g.Name, MemberCount: len(roster)}
		return nil
	})
	if err != nil {
		return JoinOutcome{}, err
	}
	return out, nil
}

// LeaveGroup removes the caller from a group. The owner cannot leave;
// ownership transfer is not supported.
func (e *Engine) LeaveGroup(ctx context.Context, callerID string, groupID primitive.ObjectID) (LeaveOutcome, error) {
	var out LeaveOutcome
	err := txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		g, err := e.loadGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if g.OwnerID == callerID {
			return errForbidden("owner cannot leave the group")
		}

		if _, err := e.members.Get(ctx, groupID, callerID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return errMemberNotFound()
			}
			return err
		}

		if err := e.members.Delete(ctx, groupID, callerID); err != nil {
			return err
		}
		roster, err := e.rebuildRoster(ctx, groupID)
		if err != nil {
			return err
		}

		out = LeaveOutcome{GroupName: g.Name, MemberCount: len(roster)}
		return nil
	})
	if err != nil {
		return LeaveOutcome{}, err
	}
	return out, nil
}

// RemoveMember removes targetID from the group. Owner only; the owner
// cannot target themselves, and an owner record can never be removed.
func (e *Engine) RemoveMember(ctx context.Context, callerID string, groupID primitive.ObjectID, targetID string) (RemoveOutcome, error) {
	var out RemoveOutcome
	err := txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		g, err := e.loadGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if g.OwnerID != callerID {
			return errForbidden("only the owner may perform this action")
		}
		if targetID == callerID {
			return errForbidden("owner cannot target self")
		}

		member, err := e.members.Get(ctx, groupID, targetID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return errMemberNotFound()
			}
			return err
		}
		if member.Role == models.RoleOwner {
			return errForbidden("cannot remove an owner")
		}

		if err := e.members.Delete(ctx, groupID, targetID); err != nil {
			return err
		}
		roster, err := e.rebuildRoster(ctx, groupID)
		if err != nil {
			return err
		}

		if err := e.notify(ctx, g, callerID, targetID,
			models.NotificationRemovedFromGroup,
			"Removed from group",
			"You were removed from "+g.Name+".",
		); err != nil {
			return err
		}

		out = RemoveOutcome{
			RemovedUserID:  targetID,
			GroupName:      g.Name,
			NewMemberCount: len(roster),
		}
		return nil
	})
	if err != nil {
		return RemoveOutcome{}, err
	}
	return out, nil
}

// BanMember adds targetID to the group's ban list. Owner only; the owner
// cannot target themselves. A banned user who is currently a member is
// evicted in the same transaction, so a banned user is never a member.
// Banning a user who was never a member is allowed (pre-emptive ban).
func (e *Engine) BanMember(ctx context.Context, callerID string, groupID primitive.ObjectID, targetID string) (BanOutcome, error) {
	var out BanOutcome
	err := txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		g, err := e.loadGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if g.OwnerID != callerID {
			return errForbidden("only the owner may perform this action")
		}
		if targetID == callerID {
			return errForbidden("owner cannot target self")
		}
		if g.IsBanned(targetID) {
			return errAlreadyBanned()
		}

		memberCount := g.MemberCount
		wasMember, err := e.members.Exists(ctx, groupID, targetID)
		if err != nil {
			return err
		}
		if wasMember {
			if err := e.members.Delete(ctx, groupID, targetID); err != nil {
				return err
			}
			roster, err := e.rebuildRoster(ctx, groupID)
			if err != nil {
				return err
			}
			memberCount = len(roster)
		}

		banned := append(append([]string{}, g.BannedUsers...), targetID)
		if err := e.groups.SetBanList(ctx, groupID, banned); err != nil {
			return err
		}

		if err := e.notify(ctx, g, callerID, targetID,
			models.NotificationBannedFromGroup,
			"Banned from group",
			"You were banned from "+g.Name+".",
		); err != nil {
			return err
		}

		out = BanOutcome{
			BannedUserID:     targetID,
			GroupName:        g.Name,
			NewMemberCount:   memberCount,
			TotalBannedUsers: len(banned),
			WasMember:        wasMember,
		}
		return nil
	})
	if err != nil {
		return BanOutcome{}, err
	}
	return out, nil
}

// UnbanMember removes targetID from the group's ban list. Owner only; the
// owner cannot target themselves. Unban does not re-add the user to the
// roster; rejoining is its own flow.
func (e *Engine) UnbanMember(ctx context.Context, callerID string, groupID primitive.ObjectID, targetID string) (UnbanOutcome, error) {
	var out UnbanOutcome
	err := txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		g, err := e.loadGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if g.OwnerID != callerID {
			return errForbidden("only the owner may perform this action")
		}
		if targetID == callerID {
			return errForbidden("owner cannot target self")
		}
		if !g.IsBanned(targetID) {
			return errNotBanned()
		}

		banned := make([]string, 0, len(g.BannedUsers))
		for _, uid := range g.BannedUsers {
			if uid != targetID {
				banned = append(banned, uid)
			}
		}
		if err := e.groups.SetBanList(ctx, groupID, banned); err != nil {
			return err
		}

		if err := e.notify(ctx, g, callerID, targetID,
			models.NotificationUnbannedFromGroup,
			"Unbanned from group",
			"Your ban from "+g.Name+" was lifted. You may join again.",
		); err != nil {
			return err
		}

		out = UnbanOutcome{
			UnbannedUserID:       targetID,
			GroupName:            g.Name,
			RemainingBannedUsers: len(banned),
		}
		return nil
	})
	if err != nil {
		return UnbanOutcome{}, err
	}
	return out, nil
}
