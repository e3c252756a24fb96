package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pagebound/bookstore-api/internal/api/shared"
	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/store"
)

// GroupHandler handles the role group endpoints under /groups. Admins manage
// the manager group; admins and managers manage the delivery crew. Removing
// a user from a group returns them to the customer role.
type GroupHandler struct {
	userStore store.UserStore
	validator *validator.Validate
}

// NewGroupHandler creates a new GroupHandler with the given dependencies.
func NewGroupHandler(userStore store.UserStore) *GroupHandler {
	return &GroupHandler{
		userStore: userStore,
		validator: validator.New(),
	}
}

// groupRole resolves the {group} path parameter and checks that the actor's
// role may manage it.
func (h *GroupHandler) groupRole(w http.ResponseWriter, r *http.Request) (domain.Role, bool) {
	actor, ok := requireActor(w, r)
	if !ok {
		return "", false
	}

	var groupRole domain.Role
	switch chi.URLParam(r, "group") {
	case "manager":
		groupRole = domain.RoleManager
	case "delivery":
		groupRole = domain.RoleDelivery
	default:
		shared.RespondWithError(w, r, http.StatusNotFound, "Unknown group")
		return "", false
	}

	// Only admins touch the manager group; managers may manage the crew.
	if actor.Role != domain.RoleAdmin &&
		!(actor.Role == domain.RoleManager && groupRole == domain.RoleDelivery) {
		HandleAPIError(w, r, domain.ErrForbidden, "")
		return "", false
	}

	return groupRole, true
}

// List handles GET /groups/{group}/users.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groupRole, ok := h.groupRole(w, r)
	if !ok {
		return
	}

	users, err := h.userStore.ListByRole(r.Context(), groupRole)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list group members")
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Add handles POST /groups/{group}/users, promoting the named user into the
// group's role.
func (h *GroupHandler) Add(w http.ResponseWriter, r *http.Request) {
	groupRole, ok := h.groupRole(w, r)
	if !ok {
		return
	}

	var req GroupMemberRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	// Admin accounts are never demoted through group membership.
	if user.Role == domain.RoleAdmin {
		HandleAPIError(w, r, domain.ErrForbidden, "Admin accounts cannot be moved between groups")
		return
	}

	if err := h.userStore.UpdateRole(r.Context(), user.ID, groupRole); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user.Role = groupRole
	shared.RespondWithJSON(w, r, http.StatusCreated, NewUserResponse(user))
}

// Remove handles DELETE /groups/{group}/users/{userID}, returning the user
// to the customer role. Removing a user who is not in the group is a 404.
func (h *GroupHandler) Remove(w http.ResponseWriter, r *http.Request) {
	groupRole, ok := h.groupRole(w, r)
	if !ok {
		return
	}

	userID, err := getPathUUID(r, "userID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if user.Role != groupRole {
		HandleAPIError(w, r, store.ErrUserNotFound, "User is not in this group")
		return
	}

	if err := h.userStore.UpdateRole(r.Context(), user.ID, domain.RoleCustomer); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}
