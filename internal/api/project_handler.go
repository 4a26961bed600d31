package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskhub/internal/api/shared"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/service"
)

// ProjectHandler serves /projects and their members and modules.
type ProjectHandler struct {
	projectService service.ProjectService
	userService    service.UserService
	logger         *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler. It panics on a nil logger.
func NewProjectHandler(
	projectService service.ProjectService,
	userService service.UserService,
	logger *slog.Logger,
) *ProjectHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProjectHandler")
	}
	return &ProjectHandler{
		projectService: projectService,
		userService:    userService,
		logger:         logger.With(slog.String("component", "project_handler")),
	}
}

// ListProjects handles GET /projects.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.ListProjects(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list projects")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, projects)
}

// GetProject handles GET /projects/{id}.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	project, err := h.projectService.GetProject(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get project")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, project)
}

// CreateProject handles POST /projects.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.userService)
	if !ok {
		return
	}

	var req ProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.CreateProject(r.Context(), actor, service.CreateProjectInput{
		Name:    req.Name,
		Desc:    req.Desc,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create project")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, project)
}

// UpdateProject handles PUT /projects/{id}.
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, h.userService, "id")
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.UpdateProject(r.Context(), actor, id, service.UpdateProjectInput{
		Name:    req.Name,
		Desc:    req.Desc,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update project")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, project)
}

// DeleteProject handles DELETE /projects/{id}.
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, h.userService, "id")
	if !ok {
		return
	}
	if err := h.projectService.DeleteProject(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete project")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Project deleted"})
}

// AddMember handles POST /projects/{id}/members. Adding an existing member
// answers 200 with added=false; a new membership answers 201.
func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	actor, projectID, ok := actorAndPathUUID(w, r, h.userService, "id")
	if !ok {
		return
	}

	var req AddMemberRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	added, err := h.projectService.AddMember(r.Context(), actor, projectID, req.UserID, domain.MemberRole(req.Role))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add member")
		return
	}
	project, err := h.projectService.GetProject(r.Context(), projectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get project")
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	shared.RespondWithJSON(w, r, status, AddMemberResponse{Added: added, Project: project})
}

// UpdateMember handles PUT /projects/{id}/members/{user_id}.
func (h *ProjectHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	actor, projectID, ok := actorAndPathUUID(w, r, h.userService, "id")
	if !ok {
		return
	}
	userID, err := getPathUUID(r, "user_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateMemberRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.projectService.UpdateMemberRole(r.Context(), actor, projectID, userID, domain.MemberRole(req.Role)); err != nil {
		HandleAPIError(w, r, err, "Failed to update member")
		return
	}
	project, err := h.projectService.GetProject(r.Context(), projectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get project")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, project)
}

// RemoveMember handles DELETE /projects/{id}/members/{user_id}.
func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, projectID, ok := actorAndPathUUID(w, r, h.userService, "id")
	if !ok {
		return
	}
	userID, err := getPathUUID(r, "user_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.projectService.RemoveMember(r.Context(), actor, projectID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to remove member")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Member removed"})
}

// AddModule handles POST /projects/{id}/modules.
func (h *ProjectHandler) AddModule(w http.ResponseWriter, r *http.Request) {
	actor, projectID, ok := actorAndPathUUID(w, r, h.userService, "id")
	if !ok {
		return
	}

	var req ModuleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	module, err := h.projectService.AddModule(r.Context(), actor, projectID, req.Name, req.Desc)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add module")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, module)
}

// UpdateModule handles PUT /projects/{id}/modules/{module_id}.
func (h *ProjectHandler) UpdateModule(w http.ResponseWriter, r *http.Request) {
	actor, projectID, ok := actorAndPathUUID(w, r, h.userService, "id")
	if !ok {
		return
	}
	moduleID, err := getPathUUID(r, "module_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req ModuleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	module, err := h.projectService.UpdateModule(r.Context(), actor, projectID, moduleID, req.Name, req.Desc)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update module")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, module)
}

// DeleteModule handles DELETE /projects/{id}/modules/{module_id}.
func (h *ProjectHandler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	actor, projectID, ok := actorAndPathUUID(w, r, h.userService, "id")
	if !ok {
		return
	}
	moduleID, err := getPathUUID(r, "module_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.projectService.DeleteModule(r.Context(), actor, projectID, moduleID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete module")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Module deleted"})
}
