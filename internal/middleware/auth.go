// File: internal/middleware/auth.go
package middleware

import (
	"context"

	"life_lesson_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdentityVerifier validates a bearer credential and returns the verified
// caller identity. Implemented by the Firebase service.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (common.Identity, error)
}

// RoleChecker reports whether the caller's stored record carries the admin
// role. Implemented by the user service. The stored role is authoritative,
// not token claims.
type RoleChecker interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// Authenticate creates a Gin middleware that verifies the bearer credential
// and attaches the verified identity to the request context. Verification
// failures short-circuit with 401; no handler is invoked and no internal
// error detail reaches the response.
func Authenticate(verifier IdentityVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(common.AuthorizationHeader)
		if authHeader == "" {
			logger.Debug("Authorization header missing")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header is required."))
			return
		}

		tokenString := common.ExtractBearerToken(authHeader)
		if tokenString == "" {
			logger.Debug("Authorization header format invalid")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), tokenString)
		if err != nil {
			logger.Warn("Credential verification failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired credential."))
			return
		}

		c.Set(common.IdentityKey, identity)

		logger.Debug("User authenticated successfully", zap.String("email", identity.Email))
		c.Next()
	}
}

// RequireAdmin creates a middleware that fails closed unless the
// authenticated caller's stored record has the admin role. Must run
// strictly after Authenticate.
func RequireAdmin(roles RoleChecker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := common.GetIdentityFromContext(c)
		if !ok {
			// Authenticate did not run or failed; never grant access here.
			common.RespondWithError(c, common.ErrForbidden.WithDetails("Caller identity not found."))
			return
		}

		isAdmin, err := roles.IsAdmin(c.Request.Context(), identity.Email)
		if err != nil {
			logger.Warn("Admin role lookup failed", zap.String("email", identity.Email), zap.Error(err))
			common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
			return
		}
		if !isAdmin {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
			return
		}
		c.Next()
	}
}
