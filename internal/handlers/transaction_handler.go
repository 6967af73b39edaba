package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/export"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/services"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// TransactionRequest is the payload for creating or replacing a transaction.
// A null or absent category leaves the transaction uncategorized.
type TransactionRequest struct {
	Category      nullableID            `json:"category" swaggertype:"string" example:"0190b8f2-8c3a-7d1e-9a4b-5c6d7e8f9a0b"`
	Amount        *money.Amount         `json:"amount" binding:"required" swaggertype:"string" example:"45.00"`
	Description   *string               `json:"description"`
	Date          *models.Date          `json:"date" binding:"required" swaggertype:"string" example:"2024-03-15"`
	PaymentMethod *models.PaymentMethod `json:"payment_method" binding:"omitempty,payment_method"`
	Receipt       *string               `json:"receipt" binding:"omitempty,max=255"`
}

// PatchTransactionRequest is the payload for partially updating a transaction.
// An explicit null category clears it.
type PatchTransactionRequest struct {
	Category      nullableID            `json:"category" swaggertype:"string"`
	Amount        *money.Amount         `json:"amount" swaggertype:"string" example:"45.00"`
	Description   *string               `json:"description"`
	Date          *models.Date          `json:"date" swaggertype:"string" example:"2024-03-15"`
	PaymentMethod *models.PaymentMethod `json:"payment_method" binding:"omitempty,payment_method"`
	Receipt       *string               `json:"receipt" binding:"omitempty,max=255"`
}

func (r TransactionRequest) fields() services.TransactionFields {
	return services.TransactionFields{
		// PUT replaces the category, so absent means none.
		SetCategory:   true,
		CategoryID:    r.Category.Value,
		Amount:        r.Amount,
		Description:   r.Description,
		Date:          r.Date,
		PaymentMethod: r.PaymentMethod,
		Receipt:       r.Receipt,
	}
}

func (r PatchTransactionRequest) fields() services.TransactionFields {
	return services.TransactionFields{
		SetCategory:   r.Category.Set,
		CategoryID:    r.Category.Value,
		Amount:        r.Amount,
		Description:   r.Description,
		Date:          r.Date,
		PaymentMethod: r.PaymentMethod,
		Receipt:       r.Receipt,
	}
}

// TransactionListQuery holds the list and export filters.
type TransactionListQuery struct {
	Category      string `form:"category" binding:"omitempty,uuid"`
	Uncategorized bool   `form:"uncategorized"`
	PaymentMethod string `form:"payment_method" binding:"omitempty,payment_method"`
	Date          string `form:"date" binding:"omitempty,calendar_date"`
	FromDate      string `form:"from_date" binding:"omitempty,calendar_date"`
	ToDate        string `form:"to_date" binding:"omitempty,calendar_date"`
	Ordering      string `form:"ordering"`
}

func (q TransactionListQuery) filter() services.TransactionFilter {
	f := services.TransactionFilter{
		Uncategorized: q.Uncategorized,
		Date:          optionalDate(q.Date),
		FromDate:      optionalDate(q.FromDate),
		ToDate:        optionalDate(q.ToDate),
		Ordering:      q.Ordering,
	}
	if q.Category != "" {
		f.CategoryID = &q.Category
	}
	if q.PaymentMethod != "" {
		m := models.PaymentMethod(q.PaymentMethod)
		f.PaymentMethod = &m
	}
	return f
}

// optionalDate parses a date already checked by the calendar_date binding.
func optionalDate(s string) *models.Date {
	if s == "" {
		return nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil
	}
	return &d
}

// SummaryQuery narrows the summary to a month or year.
type SummaryQuery struct {
	Month *int `form:"month" binding:"omitempty,gte=1,lte=12"`
	Year  *int `form:"year" binding:"omitempty,gte=1,lte=9999"`
}

func (h *TransactionHandler) bindFilter(c *gin.Context) (services.TransactionFilter, bool) {
	var query TransactionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindingError(err))
		return services.TransactionFilter{}, false
	}
	return query.filter(), true
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record a transaction, optionally in one of the caller's categories
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/ [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	transaction, err := h.transactionService.CreateTransaction(userID, req.fields())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"amount": transaction.Amount.String(), "date": transaction.Date.String()})

	c.JSON(http.StatusCreated, transaction)
}

// GetTransactions handles listing the authenticated user's transactions
// @Summary     Get transactions
// @Description Get a paginated, filtered list of transactions. Default order is newest date first.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       category       query string false "Filter by category ID"
// @Param       uncategorized  query bool   false "Only transactions without a category"
// @Param       payment_method query string false "Filter by payment method"
// @Param       date           query string false "Exact date (YYYY-MM-DD)"
// @Param       from_date      query string false "Earliest date, inclusive (YYYY-MM-DD)"
// @Param       to_date        query string false "Latest date, inclusive (YYYY-MM-DD)"
// @Param       ordering       query string false "Comma-separated date, amount, created_at; prefix - for descending"
// @Param       page           query int    false "Page number (default 1)"
// @Param       page_size      query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Invalid page"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/ [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	page, err := parsePage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result.SetLinks(requestURL(c))
	c.JSON(http.StatusOK, result)
}

// GetTransaction handles retrieving a specific transaction
// @Summary     Get transaction by ID
// @Description Get one of the authenticated user's transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id}/ [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id", apperrors.ErrTransactionNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// UpdateTransaction handles replacing a transaction
// @Summary     Update transaction
// @Description Replace a transaction; amount and date are required
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Transaction ID"
// @Param       request body TransactionRequest true "Transaction details"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id}/ [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	var req TransactionRequest
	h.update(c, &req, func() services.TransactionFields { return req.fields() })
}

// PatchTransaction handles partially updating a transaction
// @Summary     Partially update transaction
// @Description Update any subset of a transaction's writable fields; a null category clears it
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Transaction ID"
// @Param       request body PatchTransactionRequest true "Fields to change"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id}/ [patch]
func (h *TransactionHandler) PatchTransaction(c *gin.Context) {
	var req PatchTransactionRequest
	h.update(c, &req, func() services.TransactionFields { return req.fields() })
}

func (h *TransactionHandler) update(c *gin.Context, req interface{}, fields func() services.TransactionFields) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id", apperrors.ErrTransactionNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := c.ShouldBindJSON(req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, transactionID, fields())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"amount": transaction.Amount.String(), "date": transaction.Date.String()})

	c.JSON(http.StatusOK, transaction)
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete transaction
// @Description Permanently delete a transaction
// @Tags        transactions
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     204 "Transaction deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id}/ [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id", apperrors.ErrTransactionNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// GetSummary handles aggregating the user's transactions
// @Summary     Transaction summary
// @Description Income, expense and per-category totals, optionally for one month or year
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       month query int false "Month (1-12); requires year"
// @Param       year  query int false "Year"
// @Success     200 {object} services.TransactionSummary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/summary/ [get]
func (h *TransactionHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query SummaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	summary, err := h.transactionService.GetSummary(userID, services.SummaryPeriod{Month: query.Month, Year: query.Year})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ExportTransactions handles downloading the user's transactions as a spreadsheet
// @Summary     Export transactions
// @Description Download every transaction matching the list filters as an XLSX workbook
// @Tags        transactions
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       category       query string false "Filter by category ID"
// @Param       uncategorized  query bool   false "Only transactions without a category"
// @Param       payment_method query string false "Filter by payment method"
// @Param       date           query string false "Exact date (YYYY-MM-DD)"
// @Param       from_date      query string false "Earliest date, inclusive (YYYY-MM-DD)"
// @Param       to_date        query string false "Latest date, inclusive (YYYY-MM-DD)"
// @Param       ordering       query string false "Comma-separated date, amount, created_at; prefix - for descending"
// @Success     200 {file} file "XLSX workbook"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/export/ [get]
func (h *TransactionHandler) ExportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	transactions, err := h.transactionService.ExportTransactions(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.TransactionsXLSX(&buf, transactions); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	filename := fmt.Sprintf("transactions_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}
