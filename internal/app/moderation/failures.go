// internal/app/moderation/failures.go
package moderation

import "errors"

// Kind identifies a domain failure produced by the engine.
type Kind string

const (
	KindGroupNotFound  Kind = "group_not_found"
	KindMemberNotFound Kind = "member_not_found"
	KindForbidden      Kind = "forbidden"
	KindNotBanned      Kind = "not_banned"
	KindAlreadyBanned  Kind = "already_banned"
	KindAlreadyMember  Kind = "already_member"
)

// Failure is a typed domain failure from a guarded transition. The API
// surface selects status codes by matching on Kind, never on message text,
// so rewording a message cannot change the externally observed status.
type Failure struct {
	Kind    Kind
	Message string
}

func (f *Failure) Error() string { return f.Message }

// AsFailure unwraps err into a *Failure when it carries one.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsKind reports whether err is a Failure of the given kind.
func IsKind(err error, kind Kind) bool {
	f, ok := AsFailure(err)
	return ok && f.Kind == kind
}

func errGroupNotFound() *Failure {
	return &Failure{Kind: KindGroupNotFound, Message: "group not found"}
}

func errMemberNotFound() *Failure {
	return &Failure{Kind: KindMemberNotFound, Message: "member not found"}
}

func errForbidden(msg string) *Failure {
	return &Failure{Kind: KindForbidden, Message: msg}
}

func errNotBanned() *Failure {
	return &Failure{Kind: KindNotBanned, Message: "user is not banned from this group"}
}

func errAlreadyBanned() *Failure {
	return &Failure{Kind: KindAlreadyBanned, Message: "user is already banned from this group"}
}

func errAlreadyMember() *Failure {
	return &Failure{Kind: KindAlreadyMember, Message: "user is already a member of this group"}
}
