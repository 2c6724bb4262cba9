// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"postsaathi-service/internal/domain/agent"
	"postsaathi-service/internal/middleware"
	xerrors "postsaathi-service/internal/pkg/errors"
	"postsaathi-service/internal/pkg/response"
	service "postsaathi-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.Service
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Signup registers a new agent and sends the verification code.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req agent.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	if err := h.authService.Signup(c.Request.Context(), req); err != nil {
		if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
			response.Error(c, http.StatusBadRequest, "agent with this mobile number already registered", nil)
			return
		}
		h.logger.Error("signup failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to sign up", nil)
		return
	}

	response.Success(c, http.StatusCreated, "signup successful, please verify the OTP sent to your mobile", nil)
}

// VerifyOTP confirms the code and logs the agent in.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req agent.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.authService.VerifyOTP(c.Request.Context(), req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "agent not found")
		case xerrors.Is(err, xerrors.ErrAlreadyVerified):
			response.Error(c, http.StatusBadRequest, "agent already verified", nil)
		case xerrors.Is(err, xerrors.ErrInvalidCode):
			response.Error(c, http.StatusBadRequest, "invalid OTP", nil)
		case xerrors.Is(err, xerrors.ErrCodeExpired):
			response.Error(c, http.StatusBadRequest, "OTP expired", nil)
		default:
			h.logger.Error("otp verification failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "failed to verify OTP", nil)
		}
		return
	}

	h.setAuthCookie(c, result)
	response.Success(c, http.StatusOK, "verification successful", result)
}

// ResendOTP issues a fresh verification code.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req agent.ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	if err := h.authService.ResendOTP(c.Request.Context(), req); err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "agent not found")
		case xerrors.Is(err, xerrors.ErrAlreadyVerified):
			response.Error(c, http.StatusBadRequest, "agent already verified", nil)
		case xerrors.Is(err, xerrors.ErrRateLimited):
			response.Error(c, http.StatusTooManyRequests, "too many OTP requests, try again later", nil)
		default:
			h.logger.Error("otp resend failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "failed to resend OTP", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, "OTP resent successfully", nil)
}

// Login authenticates an agent by mobile and password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req agent.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrAccountLocked):
			response.Error(c, http.StatusUnauthorized, "account locked, try again later", nil)
		case xerrors.Is(err, xerrors.ErrNotVerified):
			response.Error(c, http.StatusForbidden, "account not verified, please verify OTP", nil)
		case xerrors.Is(err, xerrors.ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "incorrect mobile or password", nil)
		default:
			h.logger.Error("login failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "failed to log in", nil)
		}
		return
	}

	h.setAuthCookie(c, result)
	response.Success(c, http.StatusOK, "login successful", result)
}

// Logout clears the auth cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, "", -1, "/", "", false, true)
	response.Success(c, http.StatusOK, "logout successful", nil)
}

// Me returns the authenticated agent's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	a := middleware.MustGetAgent(c)
	response.Success(c, http.StatusOK, "agent retrieved", h.authService.AgentInfo(a))
}

// setAuthCookie mirrors the token into an HttpOnly cookie for browser
// clients; API clients keep using the bearer token from the body.
func (h *AuthHandler) setAuthCookie(c *gin.Context, result *agent.LoginResponse) {
	maxAge := int(h.authService.TokenTTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, "Bearer "+result.AccessToken, maxAge, "/", "", false, true)
}
