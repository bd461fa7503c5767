package handler

import (
	"net/http"

	"github.com/loftable/teamsync/internal/api/response"
	"github.com/loftable/teamsync/internal/permission"
	"github.com/loftable/teamsync/internal/service"
)

// UserHandler handles user lookup endpoints
type UserHandler struct {
	search  *service.UserSearch
	members *service.MemberService
}

// NewUserHandler creates a new user handler
func NewUserHandler(search *service.UserSearch, members *service.MemberService) *UserHandler {
	return &UserHandler{search: search, members: members}
}

// Search finds platform users matching the q parameter. Scoped to members
// who can invite, since the results feed the invite flow.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := resolveActor(w, r, h.members)
	if !ok {
		return
	}
	if !permission.NewChecker(actor).CanAddMembers() {
		response.Forbidden(w, "inviting members requires admin access")
		return
	}

	users, err := h.search.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		response.ClassifiedError(w, err)
		return
	}
	response.OK(w, users)
}
