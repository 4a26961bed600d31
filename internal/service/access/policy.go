// Package access decides who may change users, projects and tasks. Every
// decision is made from persisted data: the actor's application role, project
// ownership, project membership roles and task authorship.
package access

import (
	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
)

// CanManageUser reports whether actor may edit or delete the user with targetID.
func CanManageUser(actor *domain.User, targetID uuid.UUID) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || actor.ID == targetID
}

// CanManageProject reports whether actor may update or delete the project and
// manage its members and modules: admins, the owner, and project admins.
func CanManageProject(actor *domain.User, project *domain.Project) bool {
	if actor == nil || project == nil {
		return false
	}
	if actor.IsAdmin() || project.IsOwner(actor.ID) {
		return true
	}
	member, ok := project.Member(actor.ID)
	return ok && member.Role == domain.MemberRoleAdmin
}

// CanModifyTask reports whether actor may update or delete the task: admins,
// the creator, and the owner of the task's project. project may be nil when
// the task has none.
func CanModifyTask(actor *domain.User, task *domain.Task, project *domain.Project) bool {
	if actor == nil || task == nil {
		return false
	}
	if actor.IsAdmin() || task.CreatedBy == actor.ID {
		return true
	}
	return project != nil && task.InProject(project.ID) && project.IsOwner(actor.ID)
}
