package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newMovementRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	// Services are nil: these tests only exercise paths that fail binding
	// or parsing before any service call.
	h := NewMovementHandler(nil, nil)
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestMovementHandlerCreateValidation(t *testing.T) {
	router := newMovementRouter()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing type", `{"lines": [{"product_id": "550e8400-e29b-41d4-a716-446655440000", "quantity": 5}]}`},
		{"unknown type", `{"type": "ADJUST", "lines": [{"product_id": "550e8400-e29b-41d4-a716-446655440000", "quantity": 5}]}`},
		{"empty lines", `{"type": "IMPORT", "lines": []}`},
		{"zero quantity", `{"type": "IMPORT", "lines": [{"product_id": "550e8400-e29b-41d4-a716-446655440000", "quantity": 0}]}`},
		{"bad product id", `{"type": "IMPORT", "lines": [{"product_id": "not-a-uuid", "quantity": 5}]}`},
		{"bad partner id", `{"type": "IMPORT", "partner_id": "nope", "lines": [{"product_id": "550e8400-e29b-41d4-a716-446655440000", "quantity": 5}]}`},
		{"negative amount paid", `{"type": "IMPORT", "amount_paid": -1, "lines": [{"product_id": "550e8400-e29b-41d4-a716-446655440000", "quantity": 5}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/api/v1/movements", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestMovementHandlerTransferValidation(t *testing.T) {
	router := newMovementRouter()

	tests := []struct {
		name string
		body string
	}{
		{"missing product", `{"from_location_id": "550e8400-e29b-41d4-a716-446655440001", "to_location_id": "550e8400-e29b-41d4-a716-446655440002", "quantity": 5}`},
		{"bad source location", `{"product_id": "550e8400-e29b-41d4-a716-446655440000", "from_location_id": "x", "to_location_id": "550e8400-e29b-41d4-a716-446655440002", "quantity": 5}`},
		{"zero quantity", `{"product_id": "550e8400-e29b-41d4-a716-446655440000", "from_location_id": "550e8400-e29b-41d4-a716-446655440001", "to_location_id": "550e8400-e29b-41d4-a716-446655440002", "quantity": 0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/api/v1/movements/transfer", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestMovementHandlerPathValidation(t *testing.T) {
	router := newMovementRouter()

	t.Run("bad movement id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/movements/not-a-uuid", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad status value", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/movements/550e8400-e29b-41d4-a716-446655440000/status", bytes.NewBufferString(`{"status": "PAUSED"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
