// internal/app/policy/grouppolicy/grouppolicy.go

// Package grouppolicy answers read-visibility questions about groups.
//
// Visibility rules:
//   - Public groups are visible to any authenticated caller.
//   - Private groups are visible to their members only.
//   - The roster is visible to members only, public group or not.
//   - The ban list is visible to the owner only.
//
// Mutation authorization (owner-only moderation, the self-target guard) is
// not here: those checks are preconditions of the engine's transitions and
// run inside the transaction with them.
package grouppolicy

import "github.com/cardfolio/clubhouse/internal/domain/models"

// CanView reports whether uid may read the group's detail.
func CanView(g models.Group, uid string) bool {
	if !g.IsPrivate {
		return true
	}
	return g.IsMember(uid)
}

// CanViewRoster reports whether uid may read the member list.
func CanViewRoster(g models.Group, uid string) bool {
	return g.IsMember(uid)
}

// CanViewBanList reports whether uid may read the group's banned users.
func CanViewBanList(g models.Group, uid string) bool {
	return g.OwnerID == uid
}
