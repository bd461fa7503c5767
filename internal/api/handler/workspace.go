package handler

import (
	"encoding/json"
	"net/http"

	"github.com/loftable/teamsync/internal/api/middleware"
	"github.com/loftable/teamsync/internal/api/response"
	"github.com/loftable/teamsync/internal/service"
)

// WorkspaceHandler handles workspace endpoints
type WorkspaceHandler struct {
	workspaces *service.WorkspaceService
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(workspaces *service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

// Get returns the workspace with the viewer's role and capability flags.
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	workspaceID, ok := middleware.GetWorkspaceID(r.Context())
	if !ok {
		response.BadRequest(w, "missing workspace ID")
		return
	}

	view, err := h.workspaces.Inspect(r.Context(), userID, workspaceID)
	if err != nil {
		response.ClassifiedError(w, err)
		return
	}
	if !view.Capabilities.CanView {
		response.Forbidden(w, "membership required")
		return
	}

	response.OK(w, view)
}

// Update handles renaming a workspace
func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	workspaceID, ok := middleware.GetWorkspaceID(r.Context())
	if !ok {
		response.BadRequest(w, "missing workspace ID")
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.workspaces.RenameWorkspace(r.Context(), userID, workspaceID, input.Name); err != nil {
		response.ClassifiedError(w, err)
		return
	}

	view, err := h.workspaces.Inspect(r.Context(), userID, workspaceID)
	if err != nil {
		response.ClassifiedError(w, err)
		return
	}
	response.OK(w, view)
}

// Delete handles deleting a workspace
func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	workspaceID, ok := middleware.GetWorkspaceID(r.Context())
	if !ok {
		response.BadRequest(w, "missing workspace ID")
		return
	}

	if err := h.workspaces.DeleteWorkspace(r.Context(), userID, workspaceID); err != nil {
		response.ClassifiedError(w, err)
		return
	}
	response.NoContent(w)
}
