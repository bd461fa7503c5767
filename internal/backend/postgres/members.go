package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/backend"
	"github.com/loftable/teamsync/internal/domain"
)

const memberColumns = `
	m.id, m.workspace_id, m.user_id, m.role, m.created_at, m.updated_at,
	COALESCE(u.email, ''), COALESCE(u.first_name, ''), COALESCE(u.last_name, ''), COALESCE(u.avatar_url, '')
`

// ListMembers returns the workspace's members joined with user profiles.
// A missing profile degrades to empty placeholder fields rather than failing
// the read. When the workspace owner has no explicit membership row, an
// admin row is materialized for them.
func (c *Client) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]domain.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM workspace_members m
		LEFT JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = $1
		ORDER BY m.created_at ASC
	`

	rows, err := c.db.Pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, mapErr("list members", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, mapErr("scan member", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list members", err)
	}

	return c.materializeOwner(ctx, workspaceID, members)
}

// InsertMember creates a membership row. A duplicate (workspace, user) pair
// surfaces as a conflict, never a silent overwrite.
func (c *Client) InsertMember(ctx context.Context, in backend.InsertMember) (domain.Member, error) {
	if !in.Role.Valid() {
		return domain.Member{}, fmt.Errorf("insert member: %w: invalid role", domain.ErrValidation)
	}

	query := `
		INSERT INTO workspace_members (id, workspace_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`

	id := uuid.New()
	now := time.Now()
	if err := c.db.Pool.QueryRow(ctx, query, id, in.WorkspaceID, in.UserID, in.Role, now).Scan(&id); err != nil {
		return domain.Member{}, mapErr("insert member", err)
	}

	member, err := c.getMember(ctx, in.WorkspaceID, id)
	if err != nil {
		return domain.Member{}, err
	}

	c.publish(ctx, domain.MemberEvent{
		Type:        domain.EventMemberAdded,
		WorkspaceID: in.WorkspaceID,
		MemberID:    member.ID,
		Member:      &member,
	})
	return member, nil
}

// UpdateMemberRole patches a member's role, keyed by member id and workspace
// id together; a cross-workspace id does not match.
func (c *Client) UpdateMemberRole(ctx context.Context, workspaceID, memberID uuid.UUID, role domain.Role) (domain.Member, error) {
	if !role.Valid() {
		return domain.Member{}, fmt.Errorf("update member role: %w: invalid role", domain.ErrValidation)
	}

	query := `
		UPDATE workspace_members
		SET role = $3, updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2
	`

	tag, err := c.db.Pool.Exec(ctx, query, memberID, workspaceID, role)
	if err != nil {
		return domain.Member{}, mapErr("update member role", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Member{}, fmt.Errorf("update member role: %w", domain.ErrNotFound)
	}

	member, err := c.getMember(ctx, workspaceID, memberID)
	if err != nil {
		return domain.Member{}, err
	}

	c.publish(ctx, domain.MemberEvent{
		Type:        domain.EventMemberUpdated,
		WorkspaceID: workspaceID,
		MemberID:    memberID,
		Member:      &member,
	})
	return member, nil
}

// DeleteMember removes a membership row, keyed by member id and workspace id.
func (c *Client) DeleteMember(ctx context.Context, workspaceID, memberID uuid.UUID) error {
	query := `DELETE FROM workspace_members WHERE id = $1 AND workspace_id = $2`

	tag, err := c.db.Pool.Exec(ctx, query, memberID, workspaceID)
	if err != nil {
		return mapErr("delete member", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete member: %w", domain.ErrNotFound)
	}

	c.publish(ctx, domain.MemberEvent{
		Type:        domain.EventMemberRemoved,
		WorkspaceID: workspaceID,
		MemberID:    memberID,
	})
	return nil
}

func (c *Client) getMember(ctx context.Context, workspaceID, memberID uuid.UUID) (domain.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM workspace_members m
		LEFT JOIN users u ON u.id = m.user_id
		WHERE m.id = $1 AND m.workspace_id = $2
	`

	row := c.db.Pool.QueryRow(ctx, query, memberID, workspaceID)
	m, err := scanMember(row.Scan)
	if err != nil {
		return domain.Member{}, mapErr("get member", err)
	}
	return m, nil
}

// materializeOwner appends a synthesized admin membership for the workspace
// owner when no explicit row exists. The synthesized id is the owner's user
// id, which keeps it stable across fetches.
func (c *Client) materializeOwner(ctx context.Context, workspaceID uuid.UUID, members []domain.Member) ([]domain.Member, error) {
	ws, err := c.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	for _, m := range members {
		if m.UserID == ws.OwnerID {
			return members, nil
		}
	}

	owner, err := c.getUser(ctx, ws.OwnerID)
	if err != nil {
		// Owner profile missing entirely; degrade to placeholders.
		owner = domain.User{ID: ws.OwnerID}
	}

	return append(members, domain.Member{
		ID:          ws.OwnerID,
		WorkspaceID: workspaceID,
		UserID:      ws.OwnerID,
		Role:        domain.RoleAdmin,
		User:        owner,
		CreatedAt:   ws.CreatedAt,
		UpdatedAt:   ws.CreatedAt,
	}), nil
}

func scanMember(scan func(dest ...any) error) (domain.Member, error) {
	var m domain.Member
	err := scan(
		&m.ID,
		&m.WorkspaceID,
		&m.UserID,
		&m.Role,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.User.Email,
		&m.User.FirstName,
		&m.User.LastName,
		&m.User.AvatarURL,
	)
	if err != nil {
		return domain.Member{}, err
	}
	m.User.ID = m.UserID
	return m, nil
}
