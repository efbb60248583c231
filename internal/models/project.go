package models

import (
	"time"
)

// Project is a cost-savings tracking project identified by its FRN code.
// TotalSavings is a denormalized cache of SUM(total_price) over the
// project's records of type Savings; it is recomputed inside the same
// transaction as every record mutation.
type Project struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	FRN         string     `json:"frn" gorm:"column:frn;uniqueIndex"`
	Name        string     `json:"name"`
	Customer    string     `json:"customer"`
	Description string     `json:"description"`
	CreatedBy   uint       `json:"created_by" gorm:"index"`
	Creator     *User      `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`

	TotalSavings float64 `json:"total_savings" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the project end date has not passed yet.
// Projects without an end date are considered active.
func (p *Project) IsActive(now time.Time) bool {
	if p.EndDate == nil {
		return true
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !p.EndDate.Before(today)
}
