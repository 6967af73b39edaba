package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Valid reports whether t is one of the known category types.
func (t CategoryType) Valid() bool {
	switch t {
	case CategoryTypeIncome, CategoryTypeExpense:
		return true
	}
	return false
}

// DefaultCategoryColor is applied when a category is created without a color.
const DefaultCategoryColor = "#000000"

// Category groups transactions and budgets. A user cannot own two
// categories with the same name and type.
type Category struct {
	Base
	UserID string       `gorm:"type:uuid;not null;uniqueIndex:idx_categories_owner_name_type,priority:1" json:"-"`
	Name   string       `gorm:"size:100;not null;uniqueIndex:idx_categories_owner_name_type,priority:2" json:"name"`
	Type   CategoryType `gorm:"size:10;not null;uniqueIndex:idx_categories_owner_name_type,priority:3" json:"type"`
	Icon   *string      `gorm:"size:50" json:"icon"`
	Color  string       `gorm:"size:7;not null;default:'#000000'" json:"color"`
}
