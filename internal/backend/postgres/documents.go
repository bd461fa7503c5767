package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/domain"
)

// ListDocuments returns a workspace's documents joined with uploader
// profiles, newest first.
func (c *Client) ListDocuments(ctx context.Context, workspaceID uuid.UUID) ([]domain.Document, error) {
	query := `
		SELECT d.id, d.workspace_id, d.uploader_id, d.name, d.file_url, d.size_bytes, d.mime_type,
		       d.created_at, d.updated_at,
		       COALESCE(u.email, ''), COALESCE(u.first_name, ''), COALESCE(u.last_name, ''), COALESCE(u.avatar_url, '')
		FROM documents d
		LEFT JOIN users u ON u.id = d.uploader_id
		WHERE d.workspace_id = $1
		ORDER BY d.created_at DESC
	`

	rows, err := c.db.Pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, mapErr("list documents", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		err := rows.Scan(
			&d.ID,
			&d.WorkspaceID,
			&d.UploaderID,
			&d.Name,
			&d.FileURL,
			&d.SizeBytes,
			&d.MimeType,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.Uploader.Email,
			&d.Uploader.FirstName,
			&d.Uploader.LastName,
			&d.Uploader.AvatarURL,
		)
		if err != nil {
			return nil, mapErr("scan document", err)
		}
		d.Uploader.ID = d.UploaderID
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// InsertDocument creates a document row for an uploaded file.
func (c *Client) InsertDocument(ctx context.Context, doc domain.Document) (domain.Document, error) {
	query := `
		INSERT INTO documents (id, workspace_id, uploader_id, name, file_url, size_bytes, mime_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`

	_, err := c.db.Pool.Exec(ctx, query,
		doc.ID,
		doc.WorkspaceID,
		doc.UploaderID,
		doc.Name,
		doc.FileURL,
		doc.SizeBytes,
		doc.MimeType,
		doc.CreatedAt,
	)
	if err != nil {
		return domain.Document{}, mapErr("insert document", err)
	}

	return doc, nil
}

// DeleteDocument removes a document, keyed by document id and workspace id.
func (c *Client) DeleteDocument(ctx context.Context, workspaceID, documentID uuid.UUID) error {
	query := `DELETE FROM documents WHERE id = $1 AND workspace_id = $2`

	tag, err := c.db.Pool.Exec(ctx, query, documentID, workspaceID)
	if err != nil {
		return mapErr("delete document", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete document: %w", domain.ErrNotFound)
	}

	return nil
}
