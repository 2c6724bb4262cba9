// internal/domain/agent/dto.go
package agent

import "time"

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Mobile   string `json:"mobile" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Mobile   string `json:"mobile" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type VerifyOTPRequest struct {
	Mobile string `json:"mobile" binding:"required"`
	OTP    string `json:"otp" binding:"required"`
}

type ResendOTPRequest struct {
	Mobile string `json:"mobile" binding:"required"`
}

type AdminLoginRequest struct {
	SecretKey string `json:"secret_key" binding:"required"`
}

type AgentInfo struct {
	ID         string    `json:"agent_id"`
	Name       string    `json:"name"`
	Mobile     string    `json:"mobile"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Agent       AgentInfo `json:"agent"`
}
