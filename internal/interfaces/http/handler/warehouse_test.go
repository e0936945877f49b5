package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/warehousepro/backend/internal/interfaces/http/middleware"
)

func newWarehouseRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	router := gin.New()
	// Service is nil: these tests only exercise paths that fail binding
	// or parsing before any service call.
	h := NewWarehouseHandler(nil)
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestWarehouseHandlerCreateValidation(t *testing.T) {
	router := newWarehouseRouter()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing name", `{"address": "1 Dock Rd"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/api/v1/warehouses", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestWarehouseHandlerCreateLocationValidation(t *testing.T) {
	router := newWarehouseRouter()

	tests := []struct {
		name string
		path string
		body string
	}{
		{"bad warehouse id", "/api/v1/warehouses/nope/locations", `{"code": "A-01-01"}`},
		{"missing code", "/api/v1/warehouses/550e8400-e29b-41d4-a716-446655440000/locations", `{}`},
		{"lowercase code", "/api/v1/warehouses/550e8400-e29b-41d4-a716-446655440000/locations", `{"code": "a-01-01"}`},
		{"trailing dash", "/api/v1/warehouses/550e8400-e29b-41d4-a716-446655440000/locations", `{"code": "A-01-"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestWarehouseHandlerDeleteLocationValidation(t *testing.T) {
	router := newWarehouseRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/locations/nope", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
