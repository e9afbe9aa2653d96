// Package lifecycle is the single source of truth for what can happen to a
// repair request and who may do it. Views consult it to decide which action
// controls to render; the backend remains the enforcer of every transition.
package lifecycle

type Status string

const (
	StatusNew        Status = "new"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionAssign Action = "assign"
	ActionCancel Action = "cancel"
	ActionTake   Action = "take"
	ActionDone   Action = "done"
)

type Role string

const (
	RoleAnonymous  Role = ""
	RoleDispatcher Role = "dispatcher"
	RoleMaster     Role = "master"
	RoleAdmin      Role = "admin"
)

type rule struct {
	from         []Status
	role         Role
	assigneeOnly bool
	next         Status
}

// The action table. Adding a status (say, on_hold) or an action means
// extending this map and nothing else; every view derives from it.
var rules = map[Action]rule{
	ActionCreate: {from: nil, role: RoleAnonymous, next: StatusNew},
	ActionAssign: {from: []Status{StatusNew}, role: RoleDispatcher, next: StatusAssigned},
	ActionCancel: {from: []Status{StatusNew, StatusAssigned, StatusInProgress}, role: RoleDispatcher, next: StatusCancelled},
	ActionTake:   {from: []Status{StatusAssigned}, role: RoleMaster, assigneeOnly: true, next: StatusInProgress},
	ActionDone:   {from: []Status{StatusInProgress}, role: RoleMaster, assigneeOnly: true, next: StatusDone},
}

// viewOrder fixes the order actions are offered in.
var viewOrder = []Action{ActionAssign, ActionTake, ActionDone, ActionCancel}

// All returns every status in workflow order.
func All() []Status {
	return []Status{StatusNew, StatusAssigned, StatusInProgress, StatusDone, StatusCancelled}
}

func Valid(s Status) bool {
	switch s {
	case StatusNew, StatusAssigned, StatusInProgress, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// Parse returns the typed status for a raw string, or false if the value is
// not part of the workflow.
func Parse(raw string) (Status, bool) {
	s := Status(raw)
	return s, Valid(s)
}

// Terminal reports whether no action can ever apply to the status again.
func Terminal(s Status) bool {
	return s == StatusDone || s == StatusCancelled
}

// Allowed reports whether the action may be requested from the given status,
// ignoring who asks.
func Allowed(a Action, from Status) bool {
	r, ok := rules[a]
	if !ok {
		return false
	}
	for _, s := range r.from {
		if s == from {
			return true
		}
	}
	return false
}

// Next returns the status the backend will move a request to when it accepts
// the action.
func Next(a Action) (Status, bool) {
	r, ok := rules[a]
	return r.next, ok
}

// Satisfies reports whether a caller role grants a required one; admin is a
// dispatcher superset, mirroring the backend.
func Satisfies(have, need Role) bool {
	if have == need {
		return true
	}
	return need == RoleDispatcher && have == RoleAdmin
}

// ActionsFor returns the actions a view should offer for a row: the action
// table filtered by current status, caller role, and (for master actions)
// whether the caller is the assignee. Create is never offered on a row.
func ActionsFor(status Status, role Role, isAssignee bool) []Action {
	var out []Action
	for _, a := range viewOrder {
		r := rules[a]
		if !Satisfies(role, r.role) {
			continue
		}
		if r.assigneeOnly && !isAssignee {
			continue
		}
		if Allowed(a, status) {
			out = append(out, a)
		}
	}
	return out
}

func ParseAction(raw string) (Action, bool) {
	a := Action(raw)
	_, ok := rules[a]
	return a, ok
}

func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleDispatcher, RoleMaster, RoleAdmin:
		return Role(raw)
	}
	return RoleAnonymous
}
