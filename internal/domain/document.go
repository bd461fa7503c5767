package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document represents an uploaded file belonging to a workspace. Documents
// are created by upload and destroyed by delete; never mutated in place.
type Document struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	UploaderID  uuid.UUID `json:"uploader_id"`
	Name        string    `json:"name"`
	FileURL     string    `json:"file_url"`
	SizeBytes   int64     `json:"size_bytes"`
	MimeType    string    `json:"mime_type"`
	Uploader    User      `json:"uploader"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
