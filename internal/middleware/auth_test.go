// File: internal/middleware/auth_test.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"life_lesson_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockVerifier is a mock type for middleware.IdentityVerifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, token string) (common.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(common.Identity), args.Error(1)
}

// MockRoleChecker is a mock type for middleware.RoleChecker
type MockRoleChecker struct {
	mock.Mock
}

func (m *MockRoleChecker) IsAdmin(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func performRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set(common.AuthorizationHeader, authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	t.Run("missing header is 401", func(t *testing.T) {
		verifier := new(MockVerifier)
		router := gin.New()
		router.GET("/protected", Authenticate(verifier, zap.NewNop()), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := performRequest(router, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("malformed header is 401", func(t *testing.T) {
		verifier := new(MockVerifier)
		router := gin.New()
		router.GET("/protected", Authenticate(verifier, zap.NewNop()), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := performRequest(router, "Basic abc123")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("failed verification is 401 and handler never runs", func(t *testing.T) {
		verifier := new(MockVerifier)
		verifier.On("Verify", mock.Anything, "bad-token").
			Return(common.Identity{}, errors.New("token expired")).Once()

		handlerRan := false
		router := gin.New()
		router.GET("/protected", Authenticate(verifier, zap.NewNop()), func(c *gin.Context) {
			handlerRan = true
			c.Status(http.StatusOK)
		})

		w := performRequest(router, "Bearer bad-token")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, handlerRan)
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		verifier := new(MockVerifier)
		verifier.On("Verify", mock.Anything, "good-token").
			Return(common.Identity{Email: "alice@example.com", Name: "Alice"}, nil).Once()

		var seen common.Identity
		router := gin.New()
		router.GET("/protected", Authenticate(verifier, zap.NewNop()), func(c *gin.Context) {
			identity, ok := common.GetIdentityFromContext(c)
			assert.True(t, ok)
			seen = identity
			c.Status(http.StatusOK)
		})

		w := performRequest(router, "Bearer good-token")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice@example.com", seen.Email)
		assert.Equal(t, "Alice", seen.Name)
	})
}

func TestRequireAdmin(t *testing.T) {
	newRouter := func(verifier IdentityVerifier, roles RoleChecker) *gin.Engine {
		router := gin.New()
		router.GET("/protected",
			Authenticate(verifier, zap.NewNop()),
			RequireAdmin(roles, zap.NewNop()),
			func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	t.Run("admin caller passes", func(t *testing.T) {
		verifier := new(MockVerifier)
		verifier.On("Verify", mock.Anything, "token").
			Return(common.Identity{Email: "admin@example.com"}, nil).Once()

		roles := new(MockRoleChecker)
		roles.On("IsAdmin", mock.Anything, "admin@example.com").Return(true, nil).Once()

		w := performRequest(newRouter(verifier, roles), "Bearer token")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non-admin caller is 403", func(t *testing.T) {
		verifier := new(MockVerifier)
		verifier.On("Verify", mock.Anything, "token").
			Return(common.Identity{Email: "user@example.com"}, nil).Once()

		roles := new(MockRoleChecker)
		roles.On("IsAdmin", mock.Anything, "user@example.com").Return(false, nil).Once()

		w := performRequest(newRouter(verifier, roles), "Bearer token")

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("role lookup failure fails closed", func(t *testing.T) {
		verifier := new(MockVerifier)
		verifier.On("Verify", mock.Anything, "token").
			Return(common.Identity{Email: "user@example.com"}, nil).Once()

		roles := new(MockRoleChecker)
		roles.On("IsAdmin", mock.Anything, "user@example.com").
			Return(false, errors.New("store unavailable")).Once()

		w := performRequest(newRouter(verifier, roles), "Bearer token")

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no identity in context is 403", func(t *testing.T) {
		roles := new(MockRoleChecker)
		router := gin.New()
		router.GET("/protected", RequireAdmin(roles, zap.NewNop()), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := performRequest(router, "")

		assert.Equal(t, http.StatusForbidden, w.Code)
		roles.AssertNotCalled(t, "IsAdmin", mock.Anything, mock.Anything)
	})
}
