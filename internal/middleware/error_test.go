// File: internal/middleware/error_test.go
package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"life_lesson_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("handler 404 body is written exactly once", func(t *testing.T) {
		router := gin.New()
		router.Use(ErrorHandler(zap.NewNop()))
		router.GET("/lessons/:id", func(c *gin.Context) {
			common.RespondWithError(c, common.ErrNotFound.WithDetails("Lesson not found."))
		})

		req := httptest.NewRequest(http.MethodGet, "/lessons/ffffffffffffffffffffffff", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)

		// A second appended error object would make the body invalid JSON.
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "NOT_FOUND", body["code"])
		assert.Equal(t, "Lesson not found.", body["details"])
	})

	t.Run("unmatched route gets a JSON 404", func(t *testing.T) {
		router := gin.New()
		router.Use(ErrorHandler(zap.NewNop()))

		req := httptest.NewRequest(http.MethodGet, "/no/such/route", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "NOT_FOUND", body["code"])
		assert.Equal(t, "The requested endpoint does not exist.", body["details"])
	})

	t.Run("method not allowed gets a JSON 405", func(t *testing.T) {
		router := gin.New()
		router.HandleMethodNotAllowed = true
		router.Use(ErrorHandler(zap.NewNop()))
		router.GET("/lessons", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodDelete, "/lessons", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "METHOD_NOT_ALLOWED", body["code"])
	})

	t.Run("deferred gin error becomes a JSON response", func(t *testing.T) {
		router := gin.New()
		router.Use(ErrorHandler(zap.NewNop()))
		router.GET("/boom", func(c *gin.Context) {
			_ = c.Error(common.ErrConflict.WithDetails("Busy."))
		})

		req := httptest.NewRequest(http.MethodGet, "/boom", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "CONFLICT", body["code"])
	})
}
