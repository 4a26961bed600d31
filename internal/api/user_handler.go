package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskhub/internal/api/shared"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/service"
)

// UserHandler serves /users.
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler. It panics on a nil logger.
func NewUserHandler(userService service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}
	return &UserHandler{
		userService: userService,
		logger:      logger.With(slog.String("component", "user_handler")),
	}
}

// ListUsers handles GET /users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}
	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, userToResponse(&users[i]))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetUser handles GET /users/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// CreateUser handles POST /users.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.userService)
	if !ok {
		return
	}

	var req CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.CreateUser(r.Context(), actor, service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.UserRole(req.Role),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, userToResponse(user))
}

// UpdateUser handles PUT /users/{id}.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, h.userService, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	input := service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != nil {
		role := domain.UserRole(*req.Role)
		input.Role = &role
	}

	user, err := h.userService.UpdateUser(r.Context(), actor, id, input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// DeleteUser handles DELETE /users/{id}.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, h.userService, "id")
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "User deleted"})
}
