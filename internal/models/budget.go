package models

import (
	"time"

	"fintrack/internal/money"
)

// Budget is a spending allowance for one category in one calendar month.
// At most one budget exists per (user, category, month, year).
type Budget struct {
	Base
	UserID     string       `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_owner_period,priority:1" json:"-"`
	CategoryID string       `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_owner_period,priority:2" json:"category"`
	Amount     money.Amount `gorm:"type:decimal(12,2);not null" json:"amount"`
	Month      int          `gorm:"not null;uniqueIndex:idx_budgets_owner_period,priority:3;check:chk_budgets_month,month >= 1 AND month <= 12" json:"month"`
	Year       int          `gorm:"not null;uniqueIndex:idx_budgets_owner_period,priority:4" json:"year"`
	UpdatedAt  time.Time    `json:"updated_at"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category_details"`
}
