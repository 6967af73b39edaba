package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

const testCategoryID = "01900000-0000-7000-8000-0000000000c1"

// --- mock category service ---

type mockCategoryService struct {
	createCategoryFn    func(userID string, fields services.CategoryFields) (*models.Category, error)
	getUserCategoriesFn func(userID string, page pagination.PageRequest, categoryType *models.CategoryType) (*pagination.PageResponse[models.Category], error)
	getCategoryByIDFn   func(userID, categoryID string) (*models.Category, error)
	updateCategoryFn    func(userID, categoryID string, fields services.CategoryFields) (*models.Category, error)
	deleteCategoryFn    func(userID, categoryID string) error
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

func (m *mockCategoryService) CreateCategory(userID string, fields services.CategoryFields) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, fields)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetUserCategories(userID string, page pagination.PageRequest, categoryType *models.CategoryType) (*pagination.PageResponse[models.Category], error) {
	if m.getUserCategoriesFn != nil {
		return m.getUserCategoriesFn(userID, page, categoryType)
	}
	resp := pagination.NewPageResponse([]models.Category{}, page.Page, page.PageSize, 0)
	return &resp, nil
}

func (m *mockCategoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(userID, categoryID)
	}
	return &models.Category{Base: models.Base{ID: categoryID}}, nil
}

func (m *mockCategoryService) UpdateCategory(userID, categoryID string, fields services.CategoryFields) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(userID, categoryID, fields)
	}
	return &models.Category{Base: models.Base{ID: categoryID}}, nil
}

func (m *mockCategoryService) DeleteCategory(userID, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, categoryID)
	}
	return nil
}

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("/api", injectUserID(testUserID))
	auth.POST("/categories/", handler.CreateCategory)
	auth.GET("/categories/", handler.GetCategories)
	auth.GET("/categories/:id/", handler.GetCategory)
	auth.PUT("/categories/:id/", handler.UpdateCategory)
	auth.PATCH("/categories/:id/", handler.PatchCategory)
	auth.DELETE("/categories/:id/", handler.DeleteCategory)
	return r
}

// --- tests ---

func TestCategoryHandler_Create(t *testing.T) {
	t.Run("returns 201 with the category", func(t *testing.T) {
		var gotUser string
		var got services.CategoryFields
		svc := &mockCategoryService{
			createCategoryFn: func(userID string, fields services.CategoryFields) (*models.Category, error) {
				gotUser, got = userID, fields
				return &models.Category{
					Base:  models.Base{ID: testCategoryID},
					Name:  *fields.Name,
					Type:  *fields.Type,
					Color: models.DefaultCategoryColor,
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupCategoryRouter(NewCategoryHandler(svc, audit))

		rec := doRequest(r, "POST", "/api/categories/", `{"name":"Groceries","type":"expense"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["id"] != testCategoryID || result["name"] != "Groceries" || result["type"] != "expense" {
			t.Errorf("unexpected body %v", result)
		}
		if result["color"] != models.DefaultCategoryColor {
			t.Errorf("expected default color, got %v", result["color"])
		}
		if _, leaked := result["user_id"]; leaked {
			t.Error("user_id must not be serialized")
		}
		if gotUser != testUserID {
			t.Errorf("expected caller %s, got %s", testUserID, gotUser)
		}
		if got.Icon != nil || got.Color != nil {
			t.Error("expected absent icon and color to stay nil")
		}
		if len(audit.actions) != 1 || audit.actions[0] != "CREATE_CATEGORY" {
			t.Errorf("expected CREATE_CATEGORY audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 400 with details on missing name", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/api/categories/", `{"type":"expense"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "INVALID_INPUT")
		assertErrorField(t, result, "name")
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/api/categories/", `{"name":"Rent","type":"transfer"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorField(t, parseJSON(t, rec), "type")
	})

	t.Run("returns 400 on bad color", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/api/categories/", `{"name":"Rent","type":"expense","color":"red"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorField(t, parseJSON(t, rec), "color")
	})

	t.Run("returns 409 on duplicate", func(t *testing.T) {
		svc := &mockCategoryService{
			createCategoryFn: func(string, services.CategoryFields) (*models.Category, error) {
				return nil, apperrors.ErrDuplicateCategory
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/api/categories/", `{"name":"Groceries","type":"expense"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_CATEGORY")
	})
}

func TestCategoryHandler_List(t *testing.T) {
	t.Run("passes the type filter and page", func(t *testing.T) {
		var gotType *models.CategoryType
		var gotPage pagination.PageRequest
		svc := &mockCategoryService{
			getUserCategoriesFn: func(_ string, page pagination.PageRequest, categoryType *models.CategoryType) (*pagination.PageResponse[models.Category], error) {
				gotType, gotPage = categoryType, page
				resp := pagination.NewPageResponse([]models.Category{{Name: "Salary"}}, page.Page, page.PageSize, 3)
				return &resp, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/api/categories/?type=income&page=2&page_size=1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotType == nil || *gotType != models.CategoryTypeIncome {
			t.Errorf("expected income filter, got %v", gotType)
		}
		if gotPage.Page != 2 || gotPage.PageSize != 1 {
			t.Errorf("unexpected page %+v", gotPage)
		}

		result := parseJSON(t, rec)
		if result["count"] != float64(3) {
			t.Errorf("expected count 3, got %v", result["count"])
		}
		if next, _ := result["next"].(string); next != "http://example.com/api/categories/?page=3&page_size=1&type=income" {
			t.Errorf("unexpected next link %q", next)
		}
		if prev, _ := result["previous"].(string); prev != "http://example.com/api/categories/?page_size=1&type=income" {
			t.Errorf("unexpected previous link %q", prev)
		}
	})

	t.Run("empty list has null links", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/api/categories/", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["next"] != nil || result["previous"] != nil {
			t.Errorf("expected null links, got %v", result)
		}
		if results, ok := result["results"].([]interface{}); !ok || len(results) != 0 {
			t.Errorf("expected empty results array, got %v", result["results"])
		}
	})

	t.Run("returns 404 on invalid page", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/api/categories/?page=zero", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on bad type filter", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/api/categories/?type=savings", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_Get(t *testing.T) {
	t.Run("returns 200", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/api/categories/"+testCategoryID+"/", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseJSON(t, rec)["id"] != testCategoryID {
			t.Error("expected the requested category")
		}
	})

	t.Run("returns 404 on malformed id", func(t *testing.T) {
		called := false
		svc := &mockCategoryService{
			getCategoryByIDFn: func(string, string) (*models.Category, error) {
				called = true
				return nil, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/api/categories/not-a-uuid/", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
		if called {
			t.Error("service must not be called for a malformed id")
		}
	})

	t.Run("returns 404 for another user's category", func(t *testing.T) {
		svc := &mockCategoryService{
			getCategoryByIDFn: func(string, string) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/api/categories/"+testCategoryID+"/", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_Update(t *testing.T) {
	t.Run("put requires name and type", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/api/categories/"+testCategoryID+"/", `{"color":"#112233"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorField(t, result, "name")
		assertErrorField(t, result, "type")
	})

	t.Run("patch passes only supplied fields", func(t *testing.T) {
		var got services.CategoryFields
		svc := &mockCategoryService{
			updateCategoryFn: func(_, categoryID string, fields services.CategoryFields) (*models.Category, error) {
				got = fields
				return &models.Category{Base: models.Base{ID: categoryID}, Color: *fields.Color}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupCategoryRouter(NewCategoryHandler(svc, audit))

		rec := doRequest(r, "PATCH", "/api/categories/"+testCategoryID+"/", `{"color":"#112233"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Name != nil || got.Type != nil || got.Icon != nil {
			t.Errorf("expected only color set, got %+v", got)
		}
		if got.Color == nil || *got.Color != "#112233" {
			t.Errorf("expected color #112233, got %v", got.Color)
		}
		if len(audit.actions) != 1 || audit.actions[0] != "UPDATE_CATEGORY" {
			t.Errorf("expected UPDATE_CATEGORY audit entry, got %v", audit.actions)
		}
	})

	t.Run("put passes the bound body", func(t *testing.T) {
		var got services.CategoryFields
		svc := &mockCategoryService{
			updateCategoryFn: func(_, categoryID string, fields services.CategoryFields) (*models.Category, error) {
				got = fields
				return &models.Category{Base: models.Base{ID: categoryID}}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/api/categories/"+testCategoryID+"/", `{"name":"Food","type":"expense"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Name == nil || *got.Name != "Food" {
			t.Errorf("expected name Food, got %v", got.Name)
		}
	})
}

func TestCategoryHandler_Delete(t *testing.T) {
	t.Run("returns 204", func(t *testing.T) {
		var deleted string
		svc := &mockCategoryService{
			deleteCategoryFn: func(_, categoryID string) error {
				deleted = categoryID
				return nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/api/categories/"+testCategoryID+"/", "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Errorf("expected empty body, got %q", rec.Body.String())
		}
		if deleted != testCategoryID {
			t.Errorf("expected %s deleted, got %q", testCategoryID, deleted)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		svc := &mockCategoryService{
			deleteCategoryFn: func(string, string) error { return apperrors.ErrCategoryNotFound },
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/api/categories/"+testCategoryID+"/", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
