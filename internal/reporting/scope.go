package reporting

import (
	"gorm.io/gorm"

	"github.com/forte-savings/backend/internal/models"
)

// Scope describes which projects a caller may read. Admins and super
// admins are unrestricted; regular users see projects they created or
// hold an owner/cc permission on.
type Scope struct {
	All    bool
	UserID uint
}

// ScopeFor derives the read scope for a user. Pure; authentication is
// handled upstream by the auth middleware.
func ScopeFor(user models.User) Scope {
	if user.IsAdmin() {
		return Scope{All: true}
	}
	return Scope{UserID: user.ID}
}

// Projects returns a query over projects narrowed to the scope.
func (s Scope) Projects(db *gorm.DB) *gorm.DB {
	q := db.Model(&models.Project{})
	if s.All {
		return q
	}
	return q.Where("projects.created_by = ? OR projects.id IN (?)", s.UserID, s.permittedProjectIDs(db))
}

// Records returns a query over savings records narrowed to the scope.
func (s Scope) Records(db *gorm.DB) *gorm.DB {
	q := db.Model(&models.SavingsRecord{})
	if s.All {
		return q
	}
	return q.Where("savings_records.project_id IN (?)", s.VisibleProjectIDs(db))
}

// CanAccessProject reports whether the scope covers the given project.
func (s Scope) CanAccessProject(db *gorm.DB, projectID uint) (bool, error) {
	if s.All {
		return true, nil
	}
	var count int64
	err := s.Projects(db).Where("projects.id = ?", projectID).Count(&count).Error
	return count > 0, err
}

// VisibleProjectIDs returns a subquery selecting the ids of all projects
// the scope may read.
func (s Scope) VisibleProjectIDs(db *gorm.DB) *gorm.DB {
	q := db.Session(&gorm.Session{NewDB: true}).Model(&models.Project{}).Select("projects.id")
	if s.All {
		return q
	}
	return q.Where("projects.created_by = ? OR projects.id IN (?)", s.UserID, s.permittedProjectIDs(db))
}

func (s Scope) permittedProjectIDs(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&models.ProjectPermission{}).
		Select("project_permissions.project_id").
		Where("project_permissions.user_id = ? AND project_permissions.permission_type IN ?",
			s.UserID, []string{models.PermissionOwner, models.PermissionCC})
}
