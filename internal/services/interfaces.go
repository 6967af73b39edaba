package services

import (
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName, currency string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	UpdateProfile(userID string, fields ProfileFields) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	DeleteUser(userID string) error
}

// ProfileFields holds the user-editable profile fields. Nil fields are left unchanged.
type ProfileFields struct {
	FirstName *string
	LastName  *string
	Currency  *string
}

// CategoryFields holds writable category fields. On update, nil fields are
// left unchanged; an empty Icon clears it.
type CategoryFields struct {
	Name  *string
	Type  *models.CategoryType
	Icon  *string
	Color *string
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID string, fields CategoryFields) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest, categoryType *models.CategoryType) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, fields CategoryFields) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	CategoryID    *string
	Uncategorized bool
	PaymentMethod *models.PaymentMethod
	Date          *models.Date
	FromDate      *models.Date
	ToDate        *models.Date
	// Ordering is a comma-separated list of date, amount and created_at,
	// each optionally prefixed with "-". Unknown fields are ignored.
	Ordering string
}

// TransactionFields holds writable transaction fields. On update, nil
// fields are left unchanged. CategoryID is applied only when SetCategory is
// true, and a nil CategoryID then clears the category. An empty Receipt
// clears it.
type TransactionFields struct {
	SetCategory   bool
	CategoryID    *string
	Amount        *money.Amount
	Description   *string
	Date          *models.Date
	PaymentMethod *models.PaymentMethod
	Receipt       *string
}

// SummaryPeriod narrows a summary to a calendar month or year. Month
// without Year is rejected.
type SummaryPeriod struct {
	Month *int
	Year  *int
}

// CategoryTotal is the sum of one category's transactions.
type CategoryTotal struct {
	CategoryID string              `json:"category"`
	Name       string              `json:"name"`
	Type       models.CategoryType `json:"type"`
	Color      string              `json:"color"`
	Total      money.Amount        `json:"total"`
	Count      int64               `json:"count"`
}

// TransactionSummary aggregates a user's transactions. Income and expense
// are classified by the type of the transaction's category; uncategorized
// transactions count toward neither.
type TransactionSummary struct {
	Month              *int            `json:"month"`
	Year               *int            `json:"year"`
	TotalIncome        money.Amount    `json:"total_income"`
	TotalExpense       money.Amount    `json:"total_expense"`
	NetBalance         money.Amount    `json:"net_balance"`
	IncomeCount        int64           `json:"income_count"`
	ExpenseCount       int64           `json:"expense_count"`
	UncategorizedTotal money.Amount    `json:"uncategorized_total"`
	UncategorizedCount int64           `json:"uncategorized_count"`
	ByCategory         []CategoryTotal `json:"by_category"`
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, fields TransactionFields) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, fields TransactionFields) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	GetSummary(userID string, period SummaryPeriod) (*TransactionSummary, error)
	ExportTransactions(userID string, filter TransactionFilter) ([]models.Transaction, error)
}

// BudgetFilter holds optional filter parameters for listing budgets.
type BudgetFilter struct {
	CategoryID *string
	Month      *int
	Year       *int
}

// BudgetFields holds writable budget fields. On update, nil fields are left unchanged.
type BudgetFields struct {
	CategoryID *string
	Amount     *money.Amount
	Month      *int
	Year       *int
}

// BudgetProgress compares a budget with the spending in its category and month.
type BudgetProgress struct {
	BudgetID   string       `json:"budget"`
	CategoryID string       `json:"category"`
	Month      int          `json:"month"`
	Year       int          `json:"year"`
	Budgeted   money.Amount `json:"budgeted"`
	Spent      money.Amount `json:"spent"`
	Remaining  money.Amount `json:"remaining"`
	Percentage float64      `json:"percentage"`
	OverBudget bool         `json:"over_budget"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, fields BudgetFields) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, filter BudgetFilter) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, fields BudgetFields) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetProgress(userID, budgetID string) (*BudgetProgress, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
