package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/backend"
	"github.com/loftable/teamsync/internal/domain"
	"github.com/loftable/teamsync/internal/permission"
	"github.com/rs/zerolog"
)

// DocumentService gates document operations through the same permission
// engine as members. Documents have no optimistic lifecycle; mutations are
// fire-and-refetch.
type DocumentService struct {
	docs backend.DocumentAPI
	log  zerolog.Logger
}

// NewDocumentService creates a new document service.
func NewDocumentService(docs backend.DocumentAPI, log zerolog.Logger) *DocumentService {
	return &DocumentService{
		docs: docs,
		log:  log.With().Str("component", "document_service").Logger(),
	}
}

// List returns the workspace's documents for any member.
func (s *DocumentService) List(ctx context.Context, actor permission.Actor, workspaceID uuid.UUID) ([]domain.Document, error) {
	if !permission.NewChecker(actor).CanView() {
		return nil, fmt.Errorf("%w: viewing documents requires membership", domain.ErrPermissionDenied)
	}
	docs, err := s.docs.ListDocuments(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Upload registers an uploaded file for the workspace.
func (s *DocumentService) Upload(ctx context.Context, actor permission.Actor, workspaceID uuid.UUID, name, fileURL, mimeType string, sizeBytes int64) (domain.Document, error) {
	if !permission.NewChecker(actor).CanUpload() {
		return domain.Document{}, fmt.Errorf("%w: uploading requires admin or team lead", domain.ErrPermissionDenied)
	}
	if name == "" || fileURL == "" {
		return domain.Document{}, fmt.Errorf("%w: document name and file URL are required", domain.ErrValidation)
	}

	now := time.Now()
	doc := domain.Document{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		UploaderID:  actor.UserID,
		Name:        name,
		FileURL:     fileURL,
		SizeBytes:   sizeBytes,
		MimeType:    mimeType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.docs.InsertDocument(ctx, doc)
	if err != nil {
		return domain.Document{}, fmt.Errorf("upload document: %w", err)
	}
	return created, nil
}

// Delete removes a document from the workspace.
func (s *DocumentService) Delete(ctx context.Context, actor permission.Actor, workspaceID, documentID uuid.UUID) error {
	if !permission.NewChecker(actor).CanDelete() {
		return fmt.Errorf("%w: deleting documents requires admin", domain.ErrPermissionDenied)
	}
	if err := s.docs.DeleteDocument(ctx, workspaceID, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// DownloadURL resolves a document's file URL for download-capable roles.
func (s *DocumentService) DownloadURL(ctx context.Context, actor permission.Actor, workspaceID, documentID uuid.UUID) (string, error) {
	if !permission.NewChecker(actor).CanDownload() {
		return "", fmt.Errorf("%w: downloading requires admin or team lead", domain.ErrPermissionDenied)
	}

	docs, err := s.docs.ListDocuments(ctx, workspaceID)
	if err != nil {
		return "", fmt.Errorf("resolve document: %w", err)
	}
	for _, d := range docs {
		if d.ID == documentID {
			return d.FileURL, nil
		}
	}
	return "", fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
}
