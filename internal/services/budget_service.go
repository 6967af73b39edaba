package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/pagination"
)

const (
	minYear = 1
	maxYear = 9999
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// validateBudgetFields checks the supplied fields. When partial is false,
// every field is required.
func validateBudgetFields(fields *BudgetFields, partial bool) error {
	errs := fieldErrors{}

	if fields.CategoryID == nil && !partial {
		errs.add("category", "This field is required.")
	}
	if fields.Amount == nil && !partial {
		errs.add("amount", "This field is required.")
	}
	if fields.Month != nil {
		if *fields.Month < 1 || *fields.Month > 12 {
			errs.add("month", "Ensure this value is between 1 and 12.")
		}
	} else if !partial {
		errs.add("month", "This field is required.")
	}
	if fields.Year != nil {
		if *fields.Year < minYear || *fields.Year > maxYear {
			errs.add("year", "Ensure this value is between 1 and 9999.")
		}
	} else if !partial {
		errs.add("year", "This field is required.")
	}

	return errs.err()
}

// CreateBudget creates a monthly budget for one of the user's categories.
func (s *budgetService) CreateBudget(userID string, fields BudgetFields) (*models.Budget, error) {
	if err := validateBudgetFields(&fields, false); err != nil {
		return nil, err
	}

	category, err := ownedCategory(s.db, userID, *fields.CategoryID)
	if err != nil {
		return nil, err
	}

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: category.ID,
		Amount:     *fields.Amount,
		Month:      *fields.Month,
		Year:       *fields.Year,
	}

	if err := s.db.Create(budget).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.ErrDuplicateBudget
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budget.Category = category
	return budget, nil
}

// GetUserBudgets returns a paginated list of budgets for the user with optional filters.
func (s *budgetService) GetUserBudgets(userID string, page pagination.PageRequest, filter BudgetFilter) (*pagination.PageResponse[models.Budget], error) {
	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if filter.CategoryID != nil {
		base = base.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Month != nil {
		base = base.Where("month = ?", *filter.Month)
	}
	if filter.Year != nil {
		base = base.Where("year = ?", *filter.Year)
	}

	return findPage[models.Budget](base, page, preloadCategory, orderBy("year DESC", "month DESC", "id ASC"))
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates an existing budget's fields. Changing the category,
// month or year is rejected if another budget already covers that period.
func (s *budgetService) UpdateBudget(userID, budgetID string, fields BudgetFields) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	if err := validateBudgetFields(&fields, true); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.CategoryID != nil {
		category, err := ownedCategory(s.db, userID, *fields.CategoryID)
		if err != nil {
			return nil, err
		}
		updates["category_id"] = category.ID
	}
	if fields.Amount != nil {
		updates["amount"] = *fields.Amount
	}
	if fields.Month != nil {
		updates["month"] = *fields.Month
	}
	if fields.Year != nil {
		updates["year"] = *fields.Year
	}

	if len(updates) == 0 {
		return budget, nil
	}

	if err := s.db.Model(&models.Budget{}).
		Where("id = ? AND user_id = ?", budget.ID, userID).
		Updates(updates).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.ErrDuplicateBudget
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetBudgetByID(userID, budgetID)
}

// DeleteBudget permanently removes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Where("user_id = ?", userID).Delete(&models.Budget{}, "id = ?", budget.ID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetProgress sums the user's transactions in the budget's category
// during the budget's calendar month and compares them with the budgeted
// amount.
func (s *budgetService) GetBudgetProgress(userID, budgetID string) (*BudgetProgress, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	periodStart := models.FirstOfMonth(budget.Year, budget.Month)
	periodEnd := models.Date{Time: periodStart.AddMonths(1).AddDate(0, 0, -1)}

	var spent money.Amount
	err = s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category_id = ? AND date >= ? AND date <= ?",
			userID, budget.CategoryID, periodStart, periodEnd).
		Row().Scan(&spent)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &BudgetProgress{
		BudgetID:   budget.ID,
		CategoryID: budget.CategoryID,
		Month:      budget.Month,
		Year:       budget.Year,
		Budgeted:   budget.Amount,
		Spent:      spent,
		Remaining:  budget.Amount.Sub(spent),
		Percentage: spent.Percent(budget.Amount),
		OverBudget: spent.Cmp(budget.Amount) > 0,
	}, nil
}
