package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/api/response"
	"github.com/loftable/teamsync/internal/domain"
	"github.com/loftable/teamsync/internal/permission"
	"github.com/loftable/teamsync/internal/realtime"
	"github.com/loftable/teamsync/internal/service"
)

// MemberHandler handles workspace member endpoints
type MemberHandler struct {
	members *service.MemberService
	bridge  *realtime.Bridge
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(members *service.MemberService, bridge *realtime.Bridge) *MemberHandler {
	return &MemberHandler{members: members, bridge: bridge}
}

func (h *MemberHandler) actor(w http.ResponseWriter, r *http.Request) (permission.Actor, uuid.UUID, bool) {
	return resolveActor(w, r, h.members)
}

// List returns the workspace's members, filtered and sorted per query
// parameters. Serves from the cache, refreshing it first.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, workspaceID, ok := h.actor(w, r)
	if !ok {
		return
	}
	if !permission.NewChecker(actor).CanView() {
		response.Forbidden(w, "membership required")
		return
	}

	if err := h.members.Refresh(r.Context(), workspaceID); err != nil {
		response.ClassifiedError(w, err)
		return
	}

	q := service.MemberQuery{
		Search: r.URL.Query().Get("search"),
		Role:   r.URL.Query().Get("role"),
		Sort:   service.SortMode(r.URL.Query().Get("sort")),
	}
	response.OK(w, h.members.FilterMembers(workspaceID, q))
}

// Add handles adding a member to the workspace
func (h *MemberHandler) Add(w http.ResponseWriter, r *http.Request) {
	actor, workspaceID, ok := h.actor(w, r)
	if !ok {
		return
	}

	var input domain.MemberInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	res := h.members.AddMember(r.Context(), actor, workspaceID, input)
	if !res.OK {
		response.ClassifiedError(w, res.Err)
		return
	}
	response.Created(w, res)
}

// UpdateRole handles changing a member's role
func (h *MemberHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, workspaceID, ok := h.actor(w, r)
	if !ok {
		return
	}
	memberID, err := uuid.Parse(chi.URLParam(r, "memberID"))
	if err != nil {
		response.BadRequest(w, "invalid member ID")
		return
	}

	var input struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	res := h.members.UpdateMemberRole(r.Context(), actor, workspaceID, memberID, input.Role)
	if !res.OK {
		response.ClassifiedError(w, res.Err)
		return
	}
	response.OK(w, res)
}

// Remove handles removing a member from the workspace
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	actor, workspaceID, ok := h.actor(w, r)
	if !ok {
		return
	}
	memberID, err := uuid.Parse(chi.URLParam(r, "memberID"))
	if err != nil {
		response.BadRequest(w, "invalid member ID")
		return
	}

	res := h.members.RemoveMember(r.Context(), actor, workspaceID, memberID)
	if !res.OK {
		response.ClassifiedError(w, res.Err)
		return
	}
	response.NoContent(w)
}

type bulkInput struct {
	MemberIDs []uuid.UUID `json:"member_ids"`
	Role      string      `json:"role,omitempty"`
}

// BulkRemove handles removing several members at once
func (h *MemberHandler) BulkRemove(w http.ResponseWriter, r *http.Request) {
	actor, workspaceID, ok := h.actor(w, r)
	if !ok {
		return
	}

	var input bulkInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	result, err := h.members.BulkRemove(r.Context(), actor, workspaceID, input.MemberIDs)
	if err != nil {
		response.ClassifiedError(w, err)
		return
	}
	response.OK(w, result)
}

// BulkUpdateRole handles assigning a role to several members at once
func (h *MemberHandler) BulkUpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, workspaceID, ok := h.actor(w, r)
	if !ok {
		return
	}

	var input bulkInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	result, err := h.members.BulkUpdateRole(r.Context(), actor, workspaceID, input.MemberIDs, input.Role)
	if err != nil {
		response.ClassifiedError(w, err)
		return
	}
	response.OK(w, result)
}

// Subscribe starts live member updates for the workspace. Idempotent.
func (h *MemberHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	actor, workspaceID, ok := h.actor(w, r)
	if !ok {
		return
	}
	if !permission.NewChecker(actor).CanView() {
		response.Forbidden(w, "membership required")
		return
	}

	// Detach the subscription from the request's lifetime; it is torn down
	// via Unsubscribe, not when this request completes.
	if err := h.bridge.Subscribe(context.WithoutCancel(r.Context()), workspaceID); err != nil {
		response.ClassifiedError(w, err)
		return
	}
	response.OK(w, map[string]bool{"subscribed": true})
}

// Unsubscribe stops live member updates for the workspace.
func (h *MemberHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	_, workspaceID, ok := h.actor(w, r)
	if !ok {
		return
	}
	h.bridge.Unsubscribe(workspaceID)
	response.NoContent(w)
}
