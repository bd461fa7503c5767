package domain

import "fmt"

// Role is the closed set of workspace roles. Anything outside this set is
// rejected at the boundary via ParseRole rather than cast through.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleTeamLead Role = "team_lead"
	RoleViewer   Role = "viewer"

	// RoleNone marks the absence of membership. It is never stored.
	RoleNone Role = ""
)

// ParseRole validates a raw role string against the closed enumeration.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleTeamLead, RoleViewer:
		return Role(s), nil
	default:
		return RoleNone, fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
}

// Valid reports whether the role belongs to the closed enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeamLead, RoleViewer:
		return true
	default:
		return false
	}
}

// Rank orders roles by authority: admin > team_lead > viewer. Used for the
// role-hierarchy sort and nothing else; authority checks go through the
// permission engine.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleTeamLead:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}
