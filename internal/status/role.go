package status

import "fmt"

// Role is the lifecycle status of a role.
//
//	draft ──► beautifying ──► active ◄──► paused
//	  ▲            │            │            │
//	  │            ▼            ▼            ▼
//	  └──────── closed ◄────────┴────────────┘
//
// beautifying is entered only as a side effect of a beautify call and exits
// automatically to active on success or back to draft on failure.
type Role string

// Role statuses.
const (
	RoleDraft       Role = "draft"
	RoleBeautifying Role = "beautifying"
	RoleActive      Role = "active"
	RolePaused      Role = "paused"
	RoleClosed      Role = "closed"
)

var roleTransitions = map[Role][]Role{
	RoleDraft:       {RoleBeautifying, RoleClosed},
	RoleBeautifying: {RoleActive, RoleDraft, RoleClosed},
	RoleActive:      {RolePaused, RoleClosed},
	RolePaused:      {RoleActive, RoleClosed},
	RoleClosed:      {RoleDraft},
}

// ParseRole converts a raw string to a Role status.
func ParseRole(s string) (Role, error) {
	st := Role(s)
	switch st {
	case RoleDraft, RoleBeautifying, RoleActive, RolePaused, RoleClosed:
		return st, nil
	}
	return "", fmt.Errorf("unknown role status %q", s)
}

// Transition validates moving a role from → to.
func (from Role) Transition(to Role) error {
	if !transitionAllowed(roleTransitions, from, to) {
		return &TransitionError{Entity: "role", From: string(from), To: string(to)}
	}
	return nil
}
