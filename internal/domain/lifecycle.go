package domain

import "errors"

// Action is a requested change of a product's status.
type Action string

const (
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionRequestTakedown Action = "request_takedown"
	ActionApproveTakedown Action = "approve_takedown"
	ActionRejectTakedown  Action = "reject_takedown"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUnknownAction     = errors.New("unknown action")
)

// Rule one row of the transition table
type Rule struct {
	Action Action
	Actor  Role
	From   ProductStatus
	To     ProductStatus
}

// rejected and taken_down have no outgoing rules.
var rules = map[Action]Rule{
	ActionApprove:         {Action: ActionApprove, Actor: RoleAdmin, From: StatusPending, To: StatusApproved},
	ActionReject:          {Action: ActionReject, Actor: RoleAdmin, From: StatusPending, To: StatusRejected},
	ActionRequestTakedown: {Action: ActionRequestTakedown, Actor: RoleVendor, From: StatusApproved, To: StatusPendingTakedown},
	ActionApproveTakedown: {Action: ActionApproveTakedown, Actor: RoleAdmin, From: StatusPendingTakedown, To: StatusTakenDown},
	ActionRejectTakedown:  {Action: ActionRejectTakedown, Actor: RoleAdmin, From: StatusPendingTakedown, To: StatusApproved},
}

// Actions lists every known action in table order.
var Actions = []Action{
	ActionApprove,
	ActionReject,
	ActionRequestTakedown,
	ActionApproveTakedown,
	ActionRejectTakedown,
}

func (a Action) Valid() bool {
	_, ok := rules[a]
	return ok
}

// Transition returns the rule for an action.
func Transition(a Action) (Rule, bool) {
	r, ok := rules[a]
	return r, ok
}

// Check validates a transition without touching storage. The order of checks
// is action, role, state; the first failure wins.
func Check(a Action, role Role, current ProductStatus) (Rule, error) {
	r, ok := rules[a]
	if !ok {
		return Rule{}, ErrUnknownAction
	}
	if !role.Valid() || role != r.Actor {
		return Rule{}, ErrUnauthorized
	}
	if current != r.From {
		return Rule{}, ErrInvalidTransition
	}
	return r, nil
}

// AllowedActions returns the actions a role may take on a product in the
// given status, e.g. to decide which buttons to show.
func AllowedActions(status ProductStatus, role Role) []Action {
	out := make([]Action, 0, 2)
	for _, a := range Actions {
		r := rules[a]
		if r.From == status && r.Actor == role {
			out = append(out, a)
		}
	}
	return out
}
