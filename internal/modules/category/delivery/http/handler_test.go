package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"anoa.com/yamdb/internal/modules/category/dto"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"anoa.com/yamdb/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	created []dto.CreateCategoryRequest
	deleted []string
}

func (s *stubService) CreateCategory(_ context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	s.created = append(s.created, req)
	return &dto.CategoryResponse{Name: req.Name, Slug: req.Slug}, nil
}

func (s *stubService) GetAllCategories(_ context.Context, filter dto.CategoryFilter) (*commonDto.Paginated[dto.CategoryResponse], error) {
	page := filter.PageQuery.Normalize()
	res := commonDto.NewPaginated([]dto.CategoryResponse{{Name: "Films", Slug: "films"}}, page, 1)
	return &res, nil
}

func (s *stubService) DeleteCategory(_ context.Context, slug string) error {
	if slug != "films" {
		return apperror.NotFound("category not found")
	}
	s.deleted = append(s.deleted, slug)
	return nil
}

func setup() (*gin.Engine, *stubService) {
	gin.SetMode(gin.TestMode)
	validator.Register()

	svc := &stubService{}
	h := NewCategoryHandler(svc)
	r := gin.New()
	r.GET("/v1/categories/", h.GetAllCategories)
	r.POST("/v1/categories/", h.CreateCategory)
	r.DELETE("/v1/categories/:slug/", h.DeleteCategory)
	return r, svc
}

func TestCreateCategory_Handler(t *testing.T) {
	r, svc := setup()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/categories/",
		strings.NewReader(`{"name":"Films","slug":"films"}`)))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"name":"Films","slug":"films"}`, w.Body.String())
	assert.Len(t, svc.created, 1)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/categories/",
		strings.NewReader(`{"name":"Films","slug":"bad slug!"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["fields"], "slug")
}

func TestGetAllCategories_Handler(t *testing.T) {
	r, _ := setup()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/categories/?search=fil", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"data": [{"name":"Films","slug":"films"}],
		"meta": {"current_page":1,"total_pages":1,"total_items":1,"limit":10}
	}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/categories/?limit=1000", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteCategory_Handler(t *testing.T) {
	r, svc := setup()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/categories/films/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"films"}, svc.deleted)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/categories/nope/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
