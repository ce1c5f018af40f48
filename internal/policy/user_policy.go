// Package policy decides whether an actor may act on a user record.
package policy

import "user_management/internal/model"

// Action is an operation on a user record
type Action int

const (
	ActionRead Action = iota
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Reason explains a denied verdict
type Reason string

const (
	ReasonUnauthenticated         Reason = "Unauthenticated"
	ReasonNotSelfOrAdmin          Reason = "Forbidden: not self or admin"
	ReasonRoleChangeRequiresAdmin Reason = "Forbidden: role change requires admin"
)

// Verdict is the outcome of Authorize. Reason is empty when Allowed is true.
type Verdict struct {
	Allowed bool
	Reason  Reason
}

func allow() Verdict { return Verdict{Allowed: true} }

func deny(r Reason) Verdict { return Verdict{Reason: r} }

// Authorize evaluates actor against the target user ID and the requested changes.
// Reads are always allowed. Updates and deletes need an actor who is the target or an admin,
// and only admins may change a role, including their own.
func Authorize(actor *model.Actor, action Action, targetID int64, changes model.UserUpdate) Verdict {
	if action == ActionRead {
		return allow()
	}
	if actor == nil {
		return deny(ReasonUnauthenticated)
	}

	isSelf := actor.ID == targetID
	isAdmin := actor.IsAdmin()

	if !isSelf && !isAdmin {
		return deny(ReasonNotSelfOrAdmin)
	}
	if action == ActionUpdate && changes.Role != nil && !isAdmin {
		return deny(ReasonRoleChangeRequiresAdmin)
	}
	return allow()
}
