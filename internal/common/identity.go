// File: internal/common/identity.go
package common

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Role values stored on user records.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	// AuthorizationHeader is the header name for the authorization token.
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens.
	AuthorizationTypeBearer = "Bearer"
	// IdentityKey is the context key under which the authentication
	// middleware stores the verified caller identity.
	IdentityKey = "identity"
)

// Identity is the verified caller identity produced by the authentication
// middleware. Handlers consume it via GetIdentityFromContext and never
// reconstruct it from the request.
type Identity struct {
	Email string
	Name  string
}

// ExtractBearerToken parses an Authorization header value and returns the
// bearer token. Returns an empty string if the value is absent or not in
// 'Bearer <token>' form.
func ExtractBearerToken(authHeader string) string {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], AuthorizationTypeBearer) {
		return ""
	}
	return parts[1]
}

// GetIdentityFromContext retrieves the verified identity from the Gin
// context. The second return is false when the request was not
// authenticated.
func GetIdentityFromContext(c *gin.Context) (Identity, bool) {
	val, exists := c.Get(IdentityKey)
	if !exists {
		return Identity{}, false
	}
	identity, ok := val.(Identity)
	if !ok || identity.Email == "" {
		return Identity{}, false
	}
	return identity, true
}
