package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/forte-savings/backend/internal/models"
	"github.com/forte-savings/backend/internal/reporting"
)

var ErrProjectHasRecords = errors.New("project has savings records")

// ProjectService owns Project CRUD and permission grants.
type ProjectService struct {
	DB *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{DB: db}
}

// ProjectInput is the validated payload for create and update.
type ProjectInput struct {
	FRN         string
	Name        string
	Customer    string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
}

// Create inserts the project together with its owner permission row, so
// the one-owner invariant holds from the first commit.
func (s *ProjectService) Create(user models.User, in ProjectInput) (*models.Project, error) {
	project := &models.Project{
		FRN:         in.FRN,
		Name:        in.Name,
		Customer:    in.Customer,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		CreatedBy:   user.ID,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		perm := models.ProjectPermission{
			ProjectID:      project.ID,
			UserID:         user.ID,
			PermissionType: models.PermissionOwner,
		}
		return tx.Create(&perm).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

// Get loads one caller-visible project.
func (s *ProjectService) Get(user models.User, projectID uint) (*models.Project, error) {
	scope := reporting.ScopeFor(user)
	ok, err := scope.CanAccessProject(s.DB, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	var project models.Project
	if err := s.DB.Preload("Creator").First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// List returns the caller-visible projects, newest first.
func (s *ProjectService) List(user models.User) ([]models.Project, error) {
	var projects []models.Project
	err := reporting.ScopeFor(user).Projects(s.DB).
		Order("projects.created_at DESC").
		Find(&projects).Error
	return projects, err
}

// Update modifies project fields; caller must have access.
func (s *ProjectService) Update(user models.User, projectID uint, in ProjectInput) (*models.Project, error) {
	project, err := s.Get(user, projectID)
	if err != nil {
		return nil, err
	}

	project.FRN = in.FRN
	project.Name = in.Name
	project.Customer = in.Customer
	project.Description = in.Description
	project.StartDate = in.StartDate
	project.EndDate = in.EndDate

	if err := s.DB.Save(project).Error; err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return project, nil
}

// Delete removes a project and its permission rows. Deleting a project
// that still has savings records is forbidden; records must be removed
// first so their totals stay accounted for.
func (s *ProjectService) Delete(user models.User, projectID uint) error {
	if _, err := s.Get(user, projectID); err != nil {
		return err
	}

	var recordCount int64
	if err := s.DB.Model(&models.SavingsRecord{}).
		Where("project_id = ?", projectID).
		Count(&recordCount).Error; err != nil {
		return err
	}
	if recordCount > 0 {
		return ErrProjectHasRecords
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectPermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
}

// GrantCC adds a cc permission for another user. Only the project creator
// or an admin may grant.
func (s *ProjectService) GrantCC(user models.User, projectID, granteeID uint) error {
	var project models.Project
	if err := s.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return err
	}
	if !user.IsAdmin() && project.CreatedBy != user.ID {
		return ErrForbidden
	}

	perm := models.ProjectPermission{
		ProjectID:      projectID,
		UserID:         granteeID,
		PermissionType: models.PermissionCC,
	}
	if err := s.DB.Create(&perm).Error; err != nil {
		return fmt.Errorf("grant cc: %w", err)
	}
	return nil
}
