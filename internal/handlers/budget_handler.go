package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/money"
	"fintrack/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// BudgetRequest is the payload for creating or replacing a budget.
type BudgetRequest struct {
	Category *string       `json:"category" binding:"required" example:"0190b8f2-8c3a-7d1e-9a4b-5c6d7e8f9a0b"`
	Amount   *money.Amount `json:"amount" binding:"required" swaggertype:"string" example:"500.00"`
	Month    *int          `json:"month" binding:"required,gte=1,lte=12" example:"3"`
	Year     *int          `json:"year" binding:"required,gte=1,lte=9999" example:"2024"`
}

// PatchBudgetRequest is the payload for partially updating a budget.
type PatchBudgetRequest struct {
	Category *string       `json:"category"`
	Amount   *money.Amount `json:"amount" swaggertype:"string" example:"500.00"`
	Month    *int          `json:"month" binding:"omitempty,gte=1,lte=12"`
	Year     *int          `json:"year" binding:"omitempty,gte=1,lte=9999"`
}

func (r BudgetRequest) fields() services.BudgetFields {
	return services.BudgetFields{CategoryID: r.Category, Amount: r.Amount, Month: r.Month, Year: r.Year}
}

func (r PatchBudgetRequest) fields() services.BudgetFields {
	return services.BudgetFields{CategoryID: r.Category, Amount: r.Amount, Month: r.Month, Year: r.Year}
}

// BudgetListQuery holds the list filters.
type BudgetListQuery struct {
	Category string `form:"category" binding:"omitempty,uuid"`
	Month    *int   `form:"month" binding:"omitempty,gte=1,lte=12"`
	Year     *int   `form:"year" binding:"omitempty,gte=1,lte=9999"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create budget
// @Description Create a monthly budget for one of the caller's categories
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Budget already exists for this period"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/ [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	budget, err := h.budgetService.CreateBudget(userID, req.fields())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"amount": budget.Amount.String(), "month": budget.Month, "year": budget.Year})

	c.JSON(http.StatusCreated, budget)
}

// GetBudgets handles listing the authenticated user's budgets.
// @Summary     List budgets
// @Description Get a paginated list of budgets, most recent period first
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       category  query string false "Filter by category ID"
// @Param       month     query int    false "Filter by month (1-12)"
// @Param       year      query int    false "Filter by year"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Invalid page"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/ [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query BudgetListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	page, err := parsePage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter := services.BudgetFilter{Month: query.Month, Year: query.Year}
	if query.Category != "" {
		filter.CategoryID = &query.Category
	}

	result, err := h.budgetService.GetUserBudgets(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result.SetLinks(requestURL(c))
	c.JSON(http.StatusOK, result)
}

// GetBudget handles retrieving a single budget.
// @Summary     Get budget
// @Description Get one of the authenticated user's budgets
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} models.Budget "Budget details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/ [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id", apperrors.ErrBudgetNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, budget)
}

// UpdateBudget handles replacing a budget.
// @Summary     Update budget
// @Description Replace a budget; every field is required
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true "Budget ID"
// @Param       request body BudgetRequest true "Budget details"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Budget already exists for this period"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/ [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	var req BudgetRequest
	h.update(c, &req, func() services.BudgetFields { return req.fields() })
}

// PatchBudget handles partially updating a budget.
// @Summary     Partially update budget
// @Description Update any subset of a budget's fields
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Budget ID"
// @Param       request body PatchBudgetRequest true "Fields to change"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Budget already exists for this period"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/ [patch]
func (h *BudgetHandler) PatchBudget(c *gin.Context) {
	var req PatchBudgetRequest
	h.update(c, &req, func() services.BudgetFields { return req.fields() })
}

func (h *BudgetHandler) update(c *gin.Context, req interface{}, fields func() services.BudgetFields) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id", apperrors.ErrBudgetNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := c.ShouldBindJSON(req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	budget, err := h.budgetService.UpdateBudget(userID, budgetID, fields())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"amount": budget.Amount.String(), "month": budget.Month, "year": budget.Year})

	c.JSON(http.StatusOK, budget)
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Description Permanently delete a budget
// @Tags        budgets
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     204 "Budget deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/ [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id", apperrors.ErrBudgetNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET", "budget", budgetID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// GetBudgetProgress handles comparing a budget with its month's spending.
// @Summary     Get budget progress
// @Description Sum the budget category's transactions in the budget month and compare with the budgeted amount
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} services.BudgetProgress "Budget progress"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/progress/ [get]
func (h *BudgetHandler) GetBudgetProgress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id", apperrors.ErrBudgetNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.budgetService.GetBudgetProgress(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}
