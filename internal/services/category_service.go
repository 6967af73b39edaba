package services

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

const (
	maxCategoryNameLen = 100
	maxCategoryIconLen = 50
)

var categoryColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// validateCategoryFields checks the supplied fields. When partial is false,
// name and type are required. Name is trimmed in place.
func validateCategoryFields(fields *CategoryFields, partial bool) error {
	errs := fieldErrors{}

	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		fields.Name = &name
		switch {
		case name == "":
			errs.add("name", "This field may not be blank.")
		case utf8.RuneCountInString(name) > maxCategoryNameLen:
			errs.add("name", "Ensure this field has no more than 100 characters.")
		}
	} else if !partial {
		errs.add("name", "This field is required.")
	}

	if fields.Type != nil {
		if !fields.Type.Valid() {
			errs.add("type", `"`+string(*fields.Type)+`" is not a valid choice.`)
		}
	} else if !partial {
		errs.add("type", "This field is required.")
	}

	if fields.Icon != nil && utf8.RuneCountInString(*fields.Icon) > maxCategoryIconLen {
		errs.add("icon", "Ensure this field has no more than 50 characters.")
	}

	if fields.Color != nil && !categoryColorRegex.MatchString(*fields.Color) {
		errs.add("color", "Enter a valid hex color, e.g. #FF5733.")
	}

	return errs.err()
}

// CreateCategory creates a new category owned by userID.
func (s *categoryService) CreateCategory(userID string, fields CategoryFields) (*models.Category, error) {
	if err := validateCategoryFields(&fields, false); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID: userID,
		Name:   *fields.Name,
		Type:   *fields.Type,
		Color:  models.DefaultCategoryColor,
	}
	if fields.Icon != nil && *fields.Icon != "" {
		category.Icon = fields.Icon
	}
	if fields.Color != nil {
		category.Color = *fields.Color
	}

	if err := s.db.Create(category).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.ErrDuplicateCategory
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetUserCategories retrieves a paginated list of a user's categories
// ordered by name, optionally restricted to one type.
func (s *categoryService) GetUserCategories(userID string, page pagination.PageRequest, categoryType *models.CategoryType) (*pagination.PageResponse[models.Category], error) {
	base := s.db.Model(&models.Category{}).Where("user_id = ?", userID)
	if categoryType != nil {
		base = base.Where("type = ?", *categoryType)
	}
	return findPage[models.Category](base, page, orderBy("name ASC", "id ASC"))
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory applies the non-nil fields to an existing category.
func (s *categoryService) UpdateCategory(userID, categoryID string, fields CategoryFields) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	if err := validateCategoryFields(&fields, true); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil {
		updates["name"] = *fields.Name
	}
	if fields.Type != nil {
		updates["type"] = *fields.Type
	}
	if fields.Icon != nil {
		if *fields.Icon == "" {
			updates["icon"] = nil
		} else {
			updates["icon"] = *fields.Icon
		}
	}
	if fields.Color != nil {
		updates["color"] = *fields.Color
	}

	if len(updates) == 0 {
		return category, nil
	}

	if err := s.db.Model(category).Updates(updates).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.ErrDuplicateCategory
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetCategoryByID(userID, categoryID)
}

// DeleteCategory deletes a category together with its budgets. Transactions
// in the category are kept and become uncategorized.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Where("category_id = ?", category.ID).Delete(&models.Budget{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Model(&models.Transaction{}).
			Where("category_id = ?", category.ID).
			UpdateColumn("category_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Delete(&category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
