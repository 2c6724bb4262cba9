// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"postsaathi-service/internal/pkg/response"
	"postsaathi-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

const (
	// CookieName is where browser clients carry the access token.
	CookieName = "access_token"

	ctxAgentKey   = "agent"
	ctxIsAdminKey = "is_admin"
)

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Auth validates the access token and resolves it to a live agent (or the
// admin principal) before the handler runs.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		agent, isAdmin, err := m.authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		c.Set(ctxIsAdminKey, isAdmin)
		if agent != nil {
			c.Set(ctxAgentKey, agent)
		}

		c.Next()
	}
}

// AdminOnly requires an admin token. MUST be used after Auth().
func (m *AuthMiddleware) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			response.Error(c, http.StatusForbidden, "admin access required", nil)
			return
		}
		c.Next()
	}
}

// AgentOnly rejects admin tokens on endpoints that act on behalf of one
// agent. MUST be used after Auth().
func (m *AuthMiddleware) AgentOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetAgent(c); !ok {
			response.Error(c, http.StatusForbidden, "agent access required", nil)
			return
		}
		c.Next()
	}
}

// extractToken reads the token from the Authorization header or, for browser
// clients, the HttpOnly cookie. The cookie value may itself carry a
// "Bearer " prefix.
func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}

	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(cookie, "Bearer ")
}
