package models

import (
	"time"

	"fintrack/internal/money"
)

// PaymentMethod represents how a transaction was paid.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodOther        PaymentMethod = "other"
)

// Valid reports whether m is one of the known payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodUPI, PaymentMethodOther:
		return true
	}
	return false
}

// Transaction represents a dated money movement. Deleting its category
// leaves the transaction in place with no category.
type Transaction struct {
	Base
	UserID        string        `gorm:"type:uuid;not null;index:idx_transactions_owner_date,priority:1" json:"-"`
	CategoryID    *string       `gorm:"type:uuid;index" json:"category"`
	Amount        money.Amount  `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description   string        `gorm:"type:text;not null;default:''" json:"description"`
	Date          Date          `gorm:"type:date;not null;index:idx_transactions_owner_date,priority:2" json:"date"`
	PaymentMethod PaymentMethod `gorm:"size:20;not null;default:'cash'" json:"payment_method"`
	Receipt       *string       `gorm:"size:255" json:"receipt"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category_details"`
}
