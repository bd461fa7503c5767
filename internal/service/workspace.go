package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/backend"
	"github.com/loftable/teamsync/internal/domain"
	"github.com/loftable/teamsync/internal/permission"
	"github.com/rs/zerolog"
)

// Capabilities are the coarse-grained workspace flags derived once from the
// viewer's role when a workspace loads.
type Capabilities struct {
	CanView        bool `json:"can_view"`
	CanEdit        bool `json:"can_edit"`
	CanDelete      bool `json:"can_delete"`
	CanManageUsers bool `json:"can_manage_users"`
}

// WorkspaceView is a loaded workspace together with the viewer's derived
// role and capability flags.
type WorkspaceView struct {
	Workspace    domain.Workspace `json:"workspace"`
	ViewerID     uuid.UUID        `json:"-"`
	Role         domain.Role      `json:"role"`
	IsOwner      bool             `json:"is_owner"`
	Capabilities Capabilities     `json:"capabilities"`
}

// WorkspaceService serves workspace reads and mutations. It also holds a
// single current-workspace cell for embedding clients that track one active
// workspace at a time. Workspace-level mutations are fire-and-refetch; there
// is no optimistic behavior here.
type WorkspaceService struct {
	mu      sync.RWMutex
	backend backend.WorkspaceAPI
	current *WorkspaceView
	log     zerolog.Logger
}

// NewWorkspaceService creates a new workspace service.
func NewWorkspaceService(b backend.WorkspaceAPI, log zerolog.Logger) *WorkspaceService {
	return &WorkspaceService{
		backend: b,
		log:     log.With().Str("component", "workspace_service").Logger(),
	}
}

// Inspect fetches the workspace and derives the viewer's role and
// capability flags, without touching the current cell.
func (s *WorkspaceService) Inspect(ctx context.Context, viewerID, workspaceID uuid.UUID) (WorkspaceView, error) {
	ws, err := s.backend.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return WorkspaceView{}, fmt.Errorf("load workspace: %w", err)
	}

	actor := permission.Actor{UserID: viewerID, IsOwner: ws.OwnerID == viewerID}
	member, err := s.backend.GetMembership(ctx, workspaceID, viewerID)
	switch {
	case err == nil:
		actor.Role = member.Role
	case errors.Is(err, domain.ErrNotFound):
		// Owner still gets implicit admin via EffectiveRole.
	default:
		return WorkspaceView{}, fmt.Errorf("load membership: %w", err)
	}

	checker := permission.NewChecker(actor)
	return WorkspaceView{
		Workspace: ws,
		ViewerID:  viewerID,
		Role:      actor.EffectiveRole(),
		IsOwner:   actor.IsOwner,
		Capabilities: Capabilities{
			CanView:        checker.CanView(),
			CanEdit:        checker.CanEdit(),
			CanDelete:      checker.CanDelete(),
			CanManageUsers: checker.CanManageUsers(),
		},
	}, nil
}

// Load fetches the workspace and replaces the current cell.
func (s *WorkspaceService) Load(ctx context.Context, viewerID, workspaceID uuid.UUID) (WorkspaceView, error) {
	view, err := s.Inspect(ctx, viewerID, workspaceID)
	if err != nil {
		return WorkspaceView{}, err
	}

	s.mu.Lock()
	s.current = &view
	s.mu.Unlock()

	return view, nil
}

// Refresh repeats the load for the currently loaded workspace only.
func (s *WorkspaceService) Refresh(ctx context.Context) error {
	cur, ok := s.Current()
	if !ok {
		return fmt.Errorf("refresh: no workspace loaded: %w", domain.ErrNotFound)
	}

	_, err := s.Load(ctx, cur.ViewerID, cur.Workspace.ID)
	return err
}

// Current returns the loaded workspace view, if any.
func (s *WorkspaceService) Current() (WorkspaceView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return WorkspaceView{}, false
	}
	return *s.current, true
}

// RenameWorkspace updates a workspace's name after a permission check.
func (s *WorkspaceService) RenameWorkspace(ctx context.Context, viewerID, workspaceID uuid.UUID, name string) error {
	view, err := s.Inspect(ctx, viewerID, workspaceID)
	if err != nil {
		return err
	}
	if !checkerFor(view).CanManageWorkspace() {
		return fmt.Errorf("%w: renaming requires admin", domain.ErrPermissionDenied)
	}
	if name == "" {
		return fmt.Errorf("%w: workspace name is required", domain.ErrValidation)
	}

	if err := s.backend.UpdateWorkspace(ctx, workspaceID, domain.WorkspaceUpdate{Name: &name}); err != nil {
		return fmt.Errorf("rename workspace: %w", err)
	}
	return nil
}

// DeleteWorkspace destroys a workspace after a permission check; the
// backend cascades members and documents.
func (s *WorkspaceService) DeleteWorkspace(ctx context.Context, viewerID, workspaceID uuid.UUID) error {
	view, err := s.Inspect(ctx, viewerID, workspaceID)
	if err != nil {
		return err
	}
	if !checkerFor(view).CanDelete() {
		return fmt.Errorf("%w: deleting a workspace requires admin", domain.ErrPermissionDenied)
	}

	if err := s.backend.DeleteWorkspace(ctx, workspaceID); err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}

	s.mu.Lock()
	if s.current != nil && s.current.Workspace.ID == workspaceID {
		s.current = nil
	}
	s.mu.Unlock()
	return nil
}

// Rename renames the currently loaded workspace and refetches it.
func (s *WorkspaceService) Rename(ctx context.Context, name string) error {
	cur, ok := s.Current()
	if !ok {
		return fmt.Errorf("rename: no workspace loaded: %w", domain.ErrNotFound)
	}
	if err := s.RenameWorkspace(ctx, cur.ViewerID, cur.Workspace.ID, name); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Delete destroys the currently loaded workspace and clears the cell.
func (s *WorkspaceService) Delete(ctx context.Context) error {
	cur, ok := s.Current()
	if !ok {
		return fmt.Errorf("delete: no workspace loaded: %w", domain.ErrNotFound)
	}
	return s.DeleteWorkspace(ctx, cur.ViewerID, cur.Workspace.ID)
}

func checkerFor(view WorkspaceView) *permission.Checker {
	return permission.NewChecker(permission.Actor{
		UserID:  view.ViewerID,
		Role:    view.Role,
		IsOwner: view.IsOwner,
	})
}
