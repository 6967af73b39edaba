package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/pagination"
)

const maxReceiptLen = 255

// transactionOrderingFields maps the public ordering names to columns.
var transactionOrderingFields = map[string]string{
	"date":       "date",
	"amount":     "amount",
	"created_at": "created_at",
}

var defaultTransactionOrdering = []string{"date DESC", "created_at DESC"}

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// transactionOrdering turns an ordering parameter such as "-amount,date"
// into ORDER BY clauses. Unknown fields are dropped; if nothing valid
// remains the default ordering applies. Rows are tie-broken by id.
func transactionOrdering(raw string) []string {
	var clauses []string
	seen := make(map[string]bool)
	for _, term := range strings.Split(raw, ",") {
		term = strings.TrimSpace(term)
		desc := strings.HasPrefix(term, "-")
		column, ok := transactionOrderingFields[strings.TrimPrefix(term, "-")]
		if !ok || seen[column] {
			continue
		}
		seen[column] = true
		if desc {
			clauses = append(clauses, column+" DESC")
		} else {
			clauses = append(clauses, column+" ASC")
		}
	}
	if len(clauses) == 0 {
		clauses = append(clauses, defaultTransactionOrdering...)
	}
	return append(clauses, "id ASC")
}

// applyTransactionFilter narrows query to the filter's criteria.
func applyTransactionFilter(query *gorm.DB, filter TransactionFilter) *gorm.DB {
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Uncategorized {
		query = query.Where("category_id IS NULL")
	}
	if filter.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *filter.PaymentMethod)
	}
	if filter.Date != nil {
		query = query.Where("date = ?", *filter.Date)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	return query
}

// validateTransactionFields checks the supplied fields. When partial is
// false, amount and date are required.
func validateTransactionFields(fields *TransactionFields, partial bool) error {
	errs := fieldErrors{}

	if fields.Amount == nil && !partial {
		errs.add("amount", "This field is required.")
	}
	if fields.Date == nil && !partial {
		errs.add("date", "This field is required.")
	}
	if fields.PaymentMethod != nil && !fields.PaymentMethod.Valid() {
		errs.add("payment_method", `"`+string(*fields.PaymentMethod)+`" is not a valid choice.`)
	}
	if fields.Receipt != nil && utf8.RuneCountInString(*fields.Receipt) > maxReceiptLen {
		errs.add("receipt", "Ensure this field has no more than 255 characters.")
	}

	return errs.err()
}

// CreateTransaction records a transaction for userID. A supplied category
// must belong to the same user.
func (s *transactionService) CreateTransaction(userID string, fields TransactionFields) (*models.Transaction, error) {
	if err := validateTransactionFields(&fields, false); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:        userID,
		Amount:        *fields.Amount,
		Date:          *fields.Date,
		PaymentMethod: models.PaymentMethodCash,
	}
	if fields.Description != nil {
		transaction.Description = *fields.Description
	}
	if fields.PaymentMethod != nil {
		transaction.PaymentMethod = *fields.PaymentMethod
	}
	if fields.Receipt != nil && *fields.Receipt != "" {
		transaction.Receipt = fields.Receipt
	}

	if fields.SetCategory && fields.CategoryID != nil {
		category, err := ownedCategory(s.db, userID, *fields.CategoryID)
		if err != nil {
			return nil, err
		}
		transaction.CategoryID = &category.ID
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetTransactionByID(userID, transaction.ID)
}

// GetUserTransactions retrieves a filtered, ordered page of a user's transactions.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	base := applyTransactionFilter(s.db.Model(&models.Transaction{}).Where("user_id = ?", userID), filter)
	return findPage[models.Transaction](base, page, preloadCategory, orderBy(transactionOrdering(filter.Ordering)...))
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Category").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies the supplied fields to an existing transaction.
func (s *transactionService) UpdateTransaction(userID, transactionID string, fields TransactionFields) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if err := validateTransactionFields(&fields, true); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.SetCategory {
		if fields.CategoryID == nil {
			updates["category_id"] = nil
		} else {
			category, err := ownedCategory(s.db, userID, *fields.CategoryID)
			if err != nil {
				return nil, err
			}
			updates["category_id"] = category.ID
		}
	}
	if fields.Amount != nil {
		updates["amount"] = *fields.Amount
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.Date != nil {
		updates["date"] = *fields.Date
	}
	if fields.PaymentMethod != nil {
		updates["payment_method"] = *fields.PaymentMethod
	}
	if fields.Receipt != nil {
		if *fields.Receipt == "" {
			updates["receipt"] = nil
		} else {
			updates["receipt"] = *fields.Receipt
		}
	}

	if len(updates) == 0 {
		return transaction, nil
	}

	if err := s.db.Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", transaction.ID, userID).
		Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetTransactionByID(userID, transactionID)
}

// DeleteTransaction permanently removes a transaction.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.Where("user_id = ?", userID).Delete(&models.Transaction{}, "id = ?", transaction.ID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// summaryRange converts a period into an inclusive date range. A nil
// range means all time.
func summaryRange(period SummaryPeriod) (*models.Date, *models.Date, error) {
	errs := fieldErrors{}
	if period.Month != nil {
		if *period.Month < 1 || *period.Month > 12 {
			errs.add("month", "Ensure this value is between 1 and 12.")
		}
		if period.Year == nil {
			errs.add("year", "This field is required when month is given.")
		}
	}
	if period.Year != nil && (*period.Year < minYear || *period.Year > maxYear) {
		errs.add("year", "Ensure this value is between 1 and 9999.")
	}
	if err := errs.err(); err != nil {
		return nil, nil, err
	}

	if period.Year == nil {
		return nil, nil, nil
	}

	months := 12
	from := models.FirstOfMonth(*period.Year, 1)
	if period.Month != nil {
		months = 1
		from = models.FirstOfMonth(*period.Year, *period.Month)
	}
	to := models.Date{Time: from.AddMonths(months).AddDate(0, 0, -1)}
	return &from, &to, nil
}

// GetSummary totals a user's transactions per category and per category
// type for the given period.
func (s *transactionService) GetSummary(userID string, period SummaryPeriod) (*TransactionSummary, error) {
	from, to, err := summaryRange(period)
	if err != nil {
		return nil, err
	}

	var byCategory []CategoryTotal
	err = s.db.Table("transactions").
		Select("categories.id AS category_id, categories.name AS name, categories.type AS type, categories.color AS color, " +
			"COALESCE(SUM(transactions.amount), 0) AS total, COUNT(transactions.id) AS count").
		Joins("JOIN categories ON categories.id = transactions.category_id AND categories.user_id = transactions.user_id").
		Where("transactions.user_id = ?", userID).
		Scopes(transactionDateRange(from, to)).
		Group("categories.id, categories.name, categories.type, categories.color").
		Order("categories.type ASC").
		Order("categories.name ASC").
		Scan(&byCategory).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &TransactionSummary{
		Month:      period.Month,
		Year:       period.Year,
		ByCategory: byCategory,
	}
	if summary.ByCategory == nil {
		summary.ByCategory = []CategoryTotal{}
	}
	for i := range summary.ByCategory {
		row := &summary.ByCategory[i]
		switch row.Type {
		case models.CategoryTypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(row.Total)
			summary.IncomeCount += row.Count
		case models.CategoryTypeExpense:
			summary.TotalExpense = summary.TotalExpense.Add(row.Total)
			summary.ExpenseCount += row.Count
		}
	}
	summary.NetBalance = summary.TotalIncome.Sub(summary.TotalExpense)

	var uncategorized money.Amount
	err = s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(transactions.amount), 0), COUNT(*)").
		Where("transactions.user_id = ? AND transactions.category_id IS NULL", userID).
		Scopes(transactionDateRange(from, to)).
		Row().Scan(&uncategorized, &summary.UncategorizedCount)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	summary.UncategorizedTotal = uncategorized

	return summary, nil
}

func transactionDateRange(from, to *models.Date) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where("transactions.date >= ?", *from)
		}
		if to != nil {
			db = db.Where("transactions.date <= ?", *to)
		}
		return db
	}
}

// ExportTransactions returns every transaction matching filter, in list
// order, without pagination.
func (s *transactionService) ExportTransactions(userID string, filter TransactionFilter) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := applyTransactionFilter(s.db.Where("user_id = ?", userID), filter).
		Preload("Category").
		Scopes(orderBy(transactionOrdering(filter.Ordering)...)).
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}
