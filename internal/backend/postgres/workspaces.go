package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/domain"
)

// GetWorkspace retrieves a workspace by ID
func (c *Client) GetWorkspace(ctx context.Context, id uuid.UUID) (domain.Workspace, error) {
	query := `
		SELECT id, name, owner_id, created_at, updated_at
		FROM workspaces
		WHERE id = $1
	`

	var ws domain.Workspace
	err := c.db.Pool.QueryRow(ctx, query, id).Scan(
		&ws.ID,
		&ws.Name,
		&ws.OwnerID,
		&ws.CreatedAt,
		&ws.UpdatedAt,
	)
	if err != nil {
		return domain.Workspace{}, mapErr("get workspace", err)
	}

	return ws, nil
}

// UpdateWorkspace applies a partial workspace update
func (c *Client) UpdateWorkspace(ctx context.Context, id uuid.UUID, update domain.WorkspaceUpdate) error {
	query := `
		UPDATE workspaces
		SET name = COALESCE($2, name),
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := c.db.Pool.Exec(ctx, query, id, update.Name)
	if err != nil {
		return mapErr("update workspace", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update workspace: %w", domain.ErrNotFound)
	}

	return nil
}

// DeleteWorkspace deletes a workspace; members and documents cascade.
func (c *Client) DeleteWorkspace(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM workspaces WHERE id = $1`

	tag, err := c.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return mapErr("delete workspace", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete workspace: %w", domain.ErrNotFound)
	}

	return nil
}

// GetMembership retrieves a user's membership row within a workspace.
func (c *Client) GetMembership(ctx context.Context, workspaceID, userID uuid.UUID) (domain.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM workspace_members m
		LEFT JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = $1 AND m.user_id = $2
	`

	row := c.db.Pool.QueryRow(ctx, query, workspaceID, userID)
	m, err := scanMember(row.Scan)
	if err != nil {
		return domain.Member{}, mapErr("get membership", err)
	}
	return m, nil
}
