package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexuscloud/nexus/internal/registry"
)

// CookieName carries the session token.
const CookieName = "session"

const identityKey = "auth_identity"

// GinAuth resolves the session cookie to an identity and stores it in the
// request context. Unknown or missing tokens abort with 401.
func (s *Service) GinAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := s.Sessions.Get(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the resolved identity is an admin.
// It must run after GinAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c).Role != registry.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity stored by GinAuth. The zero value is
// returned for unauthenticated contexts (tests hitting handlers directly).
func IdentityFrom(c *gin.Context) Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}
