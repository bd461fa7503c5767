package domain

import (
	"time"

	"github.com/google/uuid"
)

// Member represents the association of a user to a workspace with a role.
// At most one membership exists per (workspace, user) pair.
type Member struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	UserID      uuid.UUID `json:"user_id"`
	Role        Role      `json:"role"`
	User        User      `json:"user"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Pending marks an optimistically added member whose backend insert has
	// not settled yet. Pending ids must never be used as operation targets.
	Pending bool `json:"pending,omitempty"`
}

// MemberInput carries the fields needed to add a member to a workspace.
type MemberInput struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Role      string `json:"role" validate:"required"`
	FirstName string `json:"first_name,omitempty" validate:"omitempty,max=255"`
	LastName  string `json:"last_name,omitempty" validate:"omitempty,max=255"`
}
