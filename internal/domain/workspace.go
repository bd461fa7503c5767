package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workspace represents a tenant workspace. The owning user holds implicit
// admin authority even without an explicit membership row.
type Workspace struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkspaceUpdate represents workspace mutation data
type WorkspaceUpdate struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
}
