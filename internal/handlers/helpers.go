package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/pagination"
	"fintrack/internal/uuid"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return "", apperrors.ErrUnauthorized
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		return "", apperrors.ErrUnauthorized
	}
	return id, nil
}

// parsePathID reads a UUID path parameter. A malformed ID cannot name an
// existing row, so it is reported with notFound.
func parsePathID(c *gin.Context, param string, notFound *apperrors.AppError) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", notFound
	}
	return id, nil
}

// parsePage reads page and page_size from the query string.
func parsePage(c *gin.Context) (pagination.PageRequest, error) {
	page, ok := pagination.FromQuery(c.Request.URL.Query())
	if !ok {
		return page, apperrors.WithMessage(apperrors.ErrNotFound, "Invalid page.")
	}
	return page, nil
}

// requestURL returns the absolute URL of the current request, used for
// pagination links.
func requestURL(c *gin.Context) *url.URL {
	u := *c.Request.URL
	u.Scheme = "http"
	if c.Request.TLS != nil {
		u.Scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		u.Scheme = proto
	}
	u.Host = c.Request.Host
	return &u
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, message and details.
// Otherwise it logs the unexpected error and returns a generic internal
// server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		body := gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		}
		if len(appErr.Details) > 0 {
			body["details"] = appErr.Details
		}
		c.JSON(appErr.StatusCode, gin.H{"error": body})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// bindingError converts an error from ShouldBindJSON or ShouldBindQuery into
// an INVALID_INPUT AppError with per-field details.
func bindingError(err error) error {
	details := make(map[string]string)

	var validationErrs validator.ValidationErrors
	var formatErr *money.FormatError
	var dateErr *models.DateError
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &validationErrs):
		for _, fe := range validationErrs {
			if _, exists := details[fe.Field()]; !exists {
				details[fe.Field()] = validationMessage(fe)
			}
		}
	case errors.As(err, &formatErr):
		details["amount"] = capitalize(formatErr.Reason) + "."
	case errors.As(err, &dateErr):
		details["date"] = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "non_field_errors"
		}
		details[field] = fmt.Sprintf("Incorrect type. Expected %s.", typeErr.Type.String())
	case errors.As(err, &syntaxErr):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "JSON parse error - "+syntaxErr.Error())
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	if len(details) == 1 {
		for field, msg := range details {
			return apperrors.InvalidField(field, msg)
		}
	}
	return apperrors.WithDetails(apperrors.ErrInvalidInput, details)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "lte":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "hex_color":
		return "Enter a valid hex color, e.g. #FF5733."
	case "category_type", "payment_method":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	case "calendar_date":
		return "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	case "iso4217":
		return "Enter a valid ISO 4217 currency code."
	case "uuid":
		return "Must be a valid UUID."
	}
	return "Invalid value."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// nullableID distinguishes an absent JSON field from an explicit null.
type nullableID struct {
	Set   bool
	Value *string
}

// UnmarshalJSON records that the field was present.
func (n *nullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
