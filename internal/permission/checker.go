// Package permission is the single source of truth for workspace capability
// decisions. It is pure and stateless: every check is computed fresh from the
// actor's role and ownership, never cached across role changes.
package permission

import (
	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/domain"
)

// Actor describes the acting user within a specific workspace.
type Actor struct {
	UserID  uuid.UUID
	Role    domain.Role
	IsOwner bool
}

// EffectiveRole resolves the actor's authority. The workspace owner always
// acts as admin, even when no explicit membership row exists; roles outside
// the closed enumeration degrade to no authority, never defaulting open.
func (a Actor) EffectiveRole() domain.Role {
	if a.IsOwner {
		return domain.RoleAdmin
	}
	if !a.Role.Valid() {
		return domain.RoleNone
	}
	return a.Role
}

// Checker answers capability questions for one actor.
type Checker struct {
	actor Actor
	role  domain.Role
}

// NewChecker creates a checker for the given actor.
func NewChecker(actor Actor) *Checker {
	return &Checker{actor: actor, role: actor.EffectiveRole()}
}

// CanView reports whether the actor may view workspace content. Any
// membership implies view access.
func (c *Checker) CanView() bool {
	return c.role != domain.RoleNone
}

// CanEdit reports whether the actor may edit workspace content.
func (c *Checker) CanEdit() bool {
	return c.role == domain.RoleAdmin || c.role == domain.RoleTeamLead
}

// CanUpload reports whether the actor may upload documents.
func (c *Checker) CanUpload() bool {
	return c.role == domain.RoleAdmin || c.role == domain.RoleTeamLead
}

// CanDownload reports whether the actor may download documents. Policy:
// same as upload, admin and team_lead.
func (c *Checker) CanDownload() bool {
	return c.role == domain.RoleAdmin || c.role == domain.RoleTeamLead
}

// CanDelete reports whether the actor may delete workspace content.
func (c *Checker) CanDelete() bool {
	return c.role == domain.RoleAdmin
}

// CanManageUsers reports whether the actor may manage memberships.
func (c *Checker) CanManageUsers() bool {
	return c.role == domain.RoleAdmin
}

// CanManageWorkspace reports whether the actor may change workspace settings.
func (c *Checker) CanManageWorkspace() bool {
	return c.role == domain.RoleAdmin
}

// CanAddMembers reports whether the actor may invite new members.
func (c *Checker) CanAddMembers() bool {
	return c.role == domain.RoleAdmin || c.role == domain.RoleTeamLead
}

// CanChangeMemberRole reports whether the actor may change the target
// member's role. The owner's own membership is immutable, and only the owner
// may act on other admins.
func (c *Checker) CanChangeMemberRole(target domain.Member) bool {
	return c.canActOnMember(target)
}

// CanRemoveMember reports whether the actor may remove the target member.
// Same rules as role changes.
func (c *Checker) CanRemoveMember(target domain.Member) bool {
	return c.canActOnMember(target)
}

func (c *Checker) canActOnMember(target domain.Member) bool {
	if c.role != domain.RoleAdmin {
		return false
	}
	if target.UserID == c.actor.UserID && c.actor.IsOwner {
		return false
	}
	if target.Role == domain.RoleAdmin && !c.actor.IsOwner {
		return false
	}
	return true
}

// CanAssignRole reports whether the actor may assign the given role to a
// member. Granting admin is reserved for the owner.
func (c *Checker) CanAssignRole(role domain.Role) bool {
	if c.role != domain.RoleAdmin || !role.Valid() {
		return false
	}
	if role == domain.RoleAdmin {
		return c.actor.IsOwner
	}
	return true
}

// AvailableRoles returns the roles the actor may assign, highest authority
// first. Non-admins get none; admin itself is assignable only by the owner.
func (c *Checker) AvailableRoles() []domain.Role {
	if c.role != domain.RoleAdmin {
		return nil
	}
	roles := []domain.Role{domain.RoleTeamLead, domain.RoleViewer}
	if c.actor.IsOwner {
		roles = append([]domain.Role{domain.RoleAdmin}, roles...)
	}
	return roles
}
