package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TypeSavings       = "Savings"
	TypeCostAvoidance = "Cost Avoidance"
)

// Currencies lists the accepted record currencies.
var Currencies = []string{"TRY", "USD", "EUR", "GBP"}

// ValidCurrency reports whether c is one of the accepted currencies.
func ValidCurrency(c string) bool {
	for _, cur := range Currencies {
		if cur == c {
			return true
		}
	}
	return false
}

// ValidRecordType reports whether t is Savings or Cost Avoidance.
func ValidRecordType(t string) bool {
	return t == TypeSavings || t == TypeCostAvoidance
}

// SavingsRecord is a single savings or cost-avoidance line item on a project.
// TotalPrice is derived (price x unit) in BeforeSave and is never taken
// from client input.
type SavingsRecord struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	ProjectID           uint      `json:"project_id" gorm:"index"`
	Project             *Project  `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Date                time.Time `json:"date" gorm:"index"`
	Type                string    `json:"type" gorm:"index"` // "Savings" or "Cost Avoidance"
	Category            string    `json:"category"`
	ExplanationCategory string    `json:"explanation_category"`
	ExplanationCustom   string    `json:"explanation_custom"`
	Price               float64   `json:"price"`
	Unit                int       `json:"unit"`
	Currency            string    `json:"currency" gorm:"index"`
	TotalPrice          float64   `json:"total_price"`
	CreatedBy           uint      `json:"created_by" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeSave derives TotalPrice. Client-supplied values are overwritten.
func (r *SavingsRecord) BeforeSave(_ *gorm.DB) error {
	r.TotalPrice = r.Price * float64(r.Unit)
	return nil
}
