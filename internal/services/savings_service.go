package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/forte-savings/backend/internal/models"
	"github.com/forte-savings/backend/internal/reporting"
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrRecordNotFound  = errors.New("record not found")
	ErrProjectNotFound = errors.New("project not found")
)

// SavingsService owns SavingsRecord mutations. Every mutation recomputes
// the owning project's total_savings inside the same transaction, so
// concurrent writers converge on the last committed recompute.
type SavingsService struct {
	DB *gorm.DB
}

func NewSavingsService(db *gorm.DB) *SavingsService {
	return &SavingsService{DB: db}
}

// RecordInput is the validated payload for create and update.
type RecordInput struct {
	ProjectID           uint
	Date                time.Time
	Type                string
	Category            string
	ExplanationCategory string
	ExplanationCustom   string
	Price               float64
	Unit                int
	Currency            string
}

// Create inserts a record after checking project access for the caller.
func (s *SavingsService) Create(user models.User, in RecordInput) (*models.SavingsRecord, error) {
	scope := reporting.ScopeFor(user)
	ok, err := scope.CanAccessProject(s.DB, in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("check project access: %w", err)
	}
	if !ok {
		return nil, ErrForbidden
	}

	var exists int64
	if err := s.DB.Model(&models.Project{}).Where("id = ?", in.ProjectID).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrProjectNotFound
	}

	record := &models.SavingsRecord{
		ProjectID:           in.ProjectID,
		Date:                in.Date,
		Type:                in.Type,
		Category:            in.Category,
		ExplanationCategory: in.ExplanationCategory,
		ExplanationCustom:   in.ExplanationCustom,
		Price:               in.Price,
		Unit:                in.Unit,
		Currency:            in.Currency,
		CreatedBy:           user.ID,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		return RecomputeTotalSavings(tx, in.ProjectID)
	})
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	return record, nil
}

// Update modifies a record in place. Access is checked against the
// record's project; moving a record between projects recomputes both.
func (s *SavingsService) Update(user models.User, recordID uint, in RecordInput) (*models.SavingsRecord, error) {
	var record models.SavingsRecord
	if err := s.DB.First(&record, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	scope := reporting.ScopeFor(user)
	ok, err := scope.CanAccessProject(s.DB, record.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("check project access: %w", err)
	}
	if !ok {
		return nil, ErrForbidden
	}

	oldProjectID := record.ProjectID
	if in.ProjectID != 0 && in.ProjectID != oldProjectID {
		ok, err := scope.CanAccessProject(s.DB, in.ProjectID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbidden
		}
		record.ProjectID = in.ProjectID
	}

	record.Date = in.Date
	record.Type = in.Type
	record.Category = in.Category
	record.ExplanationCategory = in.ExplanationCategory
	record.ExplanationCustom = in.ExplanationCustom
	record.Price = in.Price
	record.Unit = in.Unit
	record.Currency = in.Currency

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		if err := RecomputeTotalSavings(tx, record.ProjectID); err != nil {
			return err
		}
		if record.ProjectID != oldProjectID {
			return RecomputeTotalSavings(tx, oldProjectID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	return &record, nil
}

// Delete removes a record. Only the record creator or an admin may delete.
func (s *SavingsService) Delete(user models.User, recordID uint) error {
	var record models.SavingsRecord
	if err := s.DB.First(&record, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		return err
	}

	if !user.IsAdmin() && record.CreatedBy != user.ID {
		return ErrForbidden
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.SavingsRecord{}, record.ID).Error; err != nil {
			return err
		}
		return RecomputeTotalSavings(tx, record.ProjectID)
	})
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// List returns the caller-visible records, optionally for one project.
func (s *SavingsService) List(user models.User, projectID uint) ([]models.SavingsRecord, error) {
	scope := reporting.ScopeFor(user)
	q := scope.Records(s.DB).Preload("Project").Order("savings_records.date DESC, savings_records.id DESC")
	if projectID != 0 {
		ok, err := scope.CanAccessProject(s.DB, projectID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbidden
		}
		q = q.Where("savings_records.project_id = ?", projectID)
	}
	var records []models.SavingsRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// RecomputeTotalSavings re-derives a project's denormalized cache from
// its Savings-type records. It re-reads current state, so repeated calls
// are idempotent.
func RecomputeTotalSavings(tx *gorm.DB, projectID uint) error {
	var total float64
	err := tx.Model(&models.SavingsRecord{}).
		Where("project_id = ? AND type = ?", projectID, models.TypeSavings).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&total).Error
	if err != nil {
		return fmt.Errorf("sum records: %w", err)
	}
	return tx.Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("total_savings", total).Error
}
