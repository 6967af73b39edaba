package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/uuid"
)

// fieldErrors collects per-field validation messages.
type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

// err returns an ErrInvalidInput carrying the collected details, or nil.
func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	if len(f) == 1 {
		for field, msg := range f {
			return apperrors.InvalidField(field, msg)
		}
	}
	return apperrors.WithDetails(apperrors.ErrInvalidInput, f)
}

// isDuplicateKey reports whether err is a unique-constraint violation.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

// findPage counts the rows matched by query and loads the requested page.
// The scopes (ordering, preloads) are applied to the page query only.
func findPage[T any](query *gorm.DB, page pagination.PageRequest, scopes ...func(*gorm.DB) *gorm.DB) (*pagination.PageResponse[T], error) {
	page.Defaults()
	base := query.Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !page.InRange(totalItems) {
		return nil, apperrors.WithMessage(apperrors.ErrNotFound, "Invalid page.")
	}

	var items []T
	if err := base.Scopes(scopes...).Scopes(pagination.Paginate(page)).Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(items, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func orderBy(clauses ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, c := range clauses {
			db = db.Order(c)
		}
		return db
	}
}

func preloadCategory(db *gorm.DB) *gorm.DB {
	return db.Preload("Category")
}

// ownedCategory loads a category referenced from another resource. A
// category that is missing or owned by someone else is an input error on
// the "category" field rather than a not-found.
func ownedCategory(db *gorm.DB, userID, categoryID string) (*models.Category, error) {
	invalid := apperrors.InvalidField("category", `Invalid pk "`+categoryID+`" - object does not exist.`)
	if !uuid.IsValid(categoryID) {
		return nil, invalid
	}

	var category models.Category
	if err := db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}
