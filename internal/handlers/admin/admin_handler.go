// internal/handlers/admin/admin_handler.go
package admin

import (
	"net/http"

	"postsaathi-service/internal/domain/agent"
	"postsaathi-service/internal/middleware"
	xerrors "postsaathi-service/internal/pkg/errors"
	"postsaathi-service/internal/pkg/response"
	authService "postsaathi-service/internal/service/auth"
	"postsaathi-service/internal/service/followup"
	investmentService "postsaathi-service/internal/service/investment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	authService       *authService.Service
	investmentService *investmentService.Service
	engine            *followup.Engine
	logger            *zap.Logger
}

func NewAdminHandler(
	auth *authService.Service,
	investments *investmentService.Service,
	engine *followup.Engine,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		authService:       auth,
		investmentService: investments,
		engine:            engine,
		logger:            logger,
	}
}

// Login exchanges the shared admin secret for an admin token.
func (h *AdminHandler) Login(c *gin.Context) {
	var req agent.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.authService.AdminLogin(req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrForbidden):
			response.Error(c, http.StatusInternalServerError, "admin secret not configured", nil)
		case xerrors.Is(err, xerrors.ErrUnauthorized):
			response.Unauthorized(c, "invalid admin secret")
		default:
			h.logger.Error("admin login failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "failed to log in", nil)
		}
		return
	}

	maxAge := int(h.authService.TokenTTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, "Bearer "+result.AccessToken, maxAge, "/", "", false, true)

	response.Success(c, http.StatusOK, "admin login successful", result)
}

// Stats returns system-wide aggregates across all agents.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.investmentService.Stats(c.Request.Context(), "")
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to compute stats", nil)
		return
	}
	response.Success(c, http.StatusOK, "stats retrieved", stats)
}

// RunFollowups triggers a follow-up scan on demand, outside the daily
// schedule.
func (h *AdminHandler) RunFollowups(c *gin.Context) {
	triggered, err := h.engine.RunPass(c.Request.Context())
	if err != nil {
		h.logger.Error("manual follow-up scan failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "follow-up scan failed", nil)
		return
	}

	response.Success(c, http.StatusOK, "follow-up scan complete", gin.H{"triggered": triggered})
}
