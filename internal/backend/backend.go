// Package backend defines the boundary to the remote service that durably
// stores workspaces, members and documents. The sync layer above only ever
// talks to these interfaces; error classification onto the domain taxonomy
// happens inside the implementations, nowhere else.
package backend

import (
	"context"

	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/domain"
)

// InsertMember carries the fields of a membership insert.
type InsertMember struct {
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
	Role        domain.Role
}

// MemberAPI is the member read/write surface. Implementations must return an
// error matching domain.ErrConflict when (workspace, user) already exists,
// and domain.ErrNotFound when an id+workspace pair does not match.
type MemberAPI interface {
	ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]domain.Member, error)
	InsertMember(ctx context.Context, in InsertMember) (domain.Member, error)
	UpdateMemberRole(ctx context.Context, workspaceID, memberID uuid.UUID, role domain.Role) (domain.Member, error)
	DeleteMember(ctx context.Context, workspaceID, memberID uuid.UUID) error
}

// WorkspaceAPI is the workspace read/write surface.
type WorkspaceAPI interface {
	GetWorkspace(ctx context.Context, id uuid.UUID) (domain.Workspace, error)
	UpdateWorkspace(ctx context.Context, id uuid.UUID, update domain.WorkspaceUpdate) error
	DeleteWorkspace(ctx context.Context, id uuid.UUID) error
	// GetMembership returns the caller's membership row, or domain.ErrNotFound
	// when the user has no explicit row in the workspace.
	GetMembership(ctx context.Context, workspaceID, userID uuid.UUID) (domain.Member, error)
}

// UserAPI is the read-only user profile surface.
type UserAPI interface {
	LookupUserByEmail(ctx context.Context, email string) (domain.User, error)
	// SearchUsers may be unavailable; callers fall back to filtering
	// ListRecentUsers client-side.
	SearchUsers(ctx context.Context, query string, limit int) ([]domain.User, error)
	ListRecentUsers(ctx context.Context, limit int) ([]domain.User, error)
}

// DocumentAPI is the document surface. Documents are insert/delete only.
type DocumentAPI interface {
	ListDocuments(ctx context.Context, workspaceID uuid.UUID) ([]domain.Document, error)
	InsertDocument(ctx context.Context, doc domain.Document) (domain.Document, error)
	DeleteDocument(ctx context.Context, workspaceID, documentID uuid.UUID) error
}

// EventSink receives member change events after successful writes so that
// other connected clients converge.
type EventSink interface {
	PublishMemberEvent(ctx context.Context, event domain.MemberEvent) error
}

// Client bundles the full backend surface.
type Client interface {
	MemberAPI
	WorkspaceAPI
	UserAPI
	DocumentAPI
}
