// internal/middleware/helpers.go
package middleware

import (
	"postsaathi-service/internal/domain/agent"

	"github.com/gin-gonic/gin"
)

// GetAgent gets the authenticated agent from context.
func GetAgent(c *gin.Context) (*agent.Agent, bool) {
	value, exists := c.Get(ctxAgentKey)
	if !exists {
		return nil, false
	}

	a, ok := value.(*agent.Agent)
	if !ok {
		return nil, false
	}
	return a, true
}

// MustGetAgent gets the authenticated agent from context or panics. Only for
// handlers behind AgentOnly().
func MustGetAgent(c *gin.Context) *agent.Agent {
	a, exists := GetAgent(c)
	if !exists {
		panic("agent not found in context")
	}
	return a
}

// IsAdmin checks whether the request carries an admin token.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ctxIsAdminKey)
}

// IsAuthenticated checks if request is authenticated.
func IsAuthenticated(c *gin.Context) bool {
	if IsAdmin(c) {
		return true
	}
	_, exists := c.Get(ctxAgentKey)
	return exists
}
