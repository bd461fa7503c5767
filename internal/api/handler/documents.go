package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/api/response"
	"github.com/loftable/teamsync/internal/service"
)

// DocumentHandler handles workspace document endpoints
type DocumentHandler struct {
	documents *service.DocumentService
	members   *service.MemberService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents *service.DocumentService, members *service.MemberService) *DocumentHandler {
	return &DocumentHandler{documents: documents, members: members}
}

// List returns the workspace's documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, workspaceID, ok := resolveActor(w, r, h.members)
	if !ok {
		return
	}

	docs, err := h.documents.List(r.Context(), actor, workspaceID)
	if err != nil {
		response.ClassifiedError(w, err)
		return
	}
	response.OK(w, docs)
}

// Upload registers an uploaded file
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, workspaceID, ok := resolveActor(w, r, h.members)
	if !ok {
		return
	}

	var input struct {
		Name      string `json:"name"`
		FileURL   string `json:"file_url"`
		MimeType  string `json:"mime_type"`
		SizeBytes int64  `json:"size_bytes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	doc, err := h.documents.Upload(r.Context(), actor, workspaceID, input.Name, input.FileURL, input.MimeType, input.SizeBytes)
	if err != nil {
		response.ClassifiedError(w, err)
		return
	}
	response.Created(w, doc)
}

// Delete removes a document
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, workspaceID, ok := resolveActor(w, r, h.members)
	if !ok {
		return
	}
	documentID, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		response.BadRequest(w, "invalid document ID")
		return
	}

	if err := h.documents.Delete(r.Context(), actor, workspaceID, documentID); err != nil {
		response.ClassifiedError(w, err)
		return
	}
	response.NoContent(w)
}

// Download resolves a document's file URL
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	actor, workspaceID, ok := resolveActor(w, r, h.members)
	if !ok {
		return
	}
	documentID, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		response.BadRequest(w, "invalid document ID")
		return
	}

	url, err := h.documents.DownloadURL(r.Context(), actor, workspaceID, documentID)
	if err != nil {
		response.ClassifiedError(w, err)
		return
	}
	response.OK(w, map[string]string{"url": url})
}
