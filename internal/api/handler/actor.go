package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/api/middleware"
	"github.com/loftable/teamsync/internal/api/response"
	"github.com/loftable/teamsync/internal/permission"
	"github.com/loftable/teamsync/internal/service"
)

// resolveActor derives the acting user's workspace authority from the
// request context. On failure it writes the error response and returns
// ok=false.
func resolveActor(w http.ResponseWriter, r *http.Request, members *service.MemberService) (permission.Actor, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return permission.Actor{}, uuid.Nil, false
	}
	workspaceID, ok := middleware.GetWorkspaceID(r.Context())
	if !ok {
		response.BadRequest(w, "missing workspace ID")
		return permission.Actor{}, uuid.Nil, false
	}

	actor, err := members.ActorFor(r.Context(), userID, workspaceID)
	if err != nil {
		response.ClassifiedError(w, err)
		return permission.Actor{}, uuid.Nil, false
	}
	return actor, workspaceID, true
}
