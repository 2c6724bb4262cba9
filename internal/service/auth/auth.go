// internal/service/auth/auth.go
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"postsaathi-service/internal/domain/agent"
	xerrors "postsaathi-service/internal/pkg/errors"
	"postsaathi-service/internal/pkg/fieldcrypt"
	"postsaathi-service/internal/pkg/ratelimit"
	"postsaathi-service/internal/pkg/token"
	"postsaathi-service/internal/service/notify"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
	otpTTL          = 10 * time.Minute
)

// Service implements agent signup, OTP verification and login with account
// lockout. Lockout state lives on the agent row, so it survives restarts and
// holds across instances.
type Service struct {
	agents   agent.Repository
	codec    *fieldcrypt.Codec
	tokens   *token.Generator
	verifier *token.Verifier
	sms      notify.SMSSender
	limiter  *ratelimit.Limiter

	adminSecret string
	// encryptMobile stores agent mobiles as ciphertext tokens. Lookups are
	// unaffected either way because they go through the mobile hash.
	encryptMobile bool

	logger *zap.Logger
}

func NewService(
	agents agent.Repository,
	codec *fieldcrypt.Codec,
	tokens *token.Generator,
	verifier *token.Verifier,
	sms notify.SMSSender,
	limiter *ratelimit.Limiter,
	adminSecret string,
	encryptMobile bool,
	logger *zap.Logger,
) *Service {
	return &Service{
		agents:        agents,
		codec:         codec,
		tokens:        tokens,
		verifier:      verifier,
		sms:           sms,
		limiter:       limiter,
		adminSecret:   adminSecret,
		encryptMobile: encryptMobile,
		logger:        logger,
	}
}

// Signup registers a new agent as unverified and sends a verification code
// to their mobile.
func (s *Service) Signup(ctx context.Context, req agent.SignupRequest) error {
	mobileHash := agent.HashMobile(req.Mobile)

	if _, err := s.agents.FindByMobileHash(ctx, mobileHash); err == nil {
		return xerrors.ErrDuplicateEntry
	} else if !xerrors.Is(err, xerrors.ErrNotFound) {
		return fmt.Errorf("failed to check existing agent: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	storedMobile := req.Mobile
	if s.encryptMobile {
		storedMobile, err = s.codec.Encrypt(req.Mobile)
		if err != nil {
			return fmt.Errorf("failed to encrypt mobile: %w", err)
		}
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	a := &agent.Agent{
		ID:                        uuid.NewString(),
		Name:                      req.Name,
		Mobile:                    storedMobile,
		MobileHash:                mobileHash,
		PasswordHash:              string(passwordHash),
		IsVerified:                false,
		VerificationCode:          sql.NullString{String: code, Valid: true},
		VerificationCodeExpiresAt: sql.NullTime{Time: time.Now().Add(otpTTL), Valid: true},
	}

	if err := s.agents.Create(ctx, a); err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	s.logger.Info("agent signed up", zap.String("agent_id", a.ID))

	s.sendVerificationCode(ctx, req.Mobile, code)
	return nil
}

// VerifyOTP marks the agent verified and, on success, issues a token so the
// client is logged in immediately.
func (s *Service) VerifyOTP(ctx context.Context, req agent.VerifyOTPRequest) (*agent.LoginResponse, error) {
	a, err := s.agents.FindByMobileHash(ctx, agent.HashMobile(req.Mobile))
	if err != nil {
		return nil, err
	}

	if a.IsVerified {
		return nil, xerrors.ErrAlreadyVerified
	}
	if !a.VerificationCode.Valid || subtle.ConstantTimeCompare([]byte(a.VerificationCode.String), []byte(req.OTP)) != 1 {
		return nil, xerrors.ErrInvalidCode
	}
	if a.VerificationCodeExpiresAt.Valid && time.Now().After(a.VerificationCodeExpiresAt.Time) {
		return nil, xerrors.ErrCodeExpired
	}

	if err := s.agents.MarkVerified(ctx, a.ID); err != nil {
		return nil, fmt.Errorf("failed to mark agent verified: %w", err)
	}
	a.IsVerified = true

	if err := s.limiter.ResetOTPSends(ctx, req.Mobile); err != nil {
		s.logger.Warn("failed to reset otp rate limit", zap.Error(err))
	}

	s.logger.Info("agent verified", zap.String("agent_id", a.ID))
	return s.issueToken(a)
}

// ResendOTP replaces the pending verification code with a fresh one and
// resends it. Sends are rate limited per mobile.
func (s *Service) ResendOTP(ctx context.Context, req agent.ResendOTPRequest) error {
	a, err := s.agents.FindByMobileHash(ctx, agent.HashMobile(req.Mobile))
	if err != nil {
		return err
	}
	if a.IsVerified {
		return xerrors.ErrAlreadyVerified
	}

	allowed, remaining, err := s.limiter.CheckOTPSend(ctx, req.Mobile)
	if err != nil {
		return fmt.Errorf("failed to check otp rate limit: %w", err)
	}
	if !allowed {
		s.logger.Warn("otp resend rate limited", zap.String("agent_id", a.ID))
		return xerrors.ErrRateLimited
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}
	if err := s.agents.SetVerificationCode(ctx, a.ID, code, time.Now().Add(otpTTL)); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	s.logger.Info("verification code resent",
		zap.String("agent_id", a.ID),
		zap.Int64("sends_remaining", remaining))

	s.sendVerificationCode(ctx, req.Mobile, code)
	return nil
}

// Login authenticates an agent. Checks run in a fixed order: the lockout gate
// first, then verification status, then the password. A locked account never
// reveals whether the password was right.
func (s *Service) Login(ctx context.Context, req agent.LoginRequest) (*agent.LoginResponse, error) {
	now := time.Now()

	a, err := s.agents.FindByMobileHash(ctx, agent.HashMobile(req.Mobile))
	if xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, xerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if a.IsLocked(now) {
		return nil, xerrors.ErrAccountLocked
	}
	if !a.IsVerified {
		return nil, xerrors.ErrNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return nil, s.recordFailure(ctx, a, now)
	}

	// Only touch the row if there is something to clear.
	if a.FailedLoginAttempts > 0 || a.LockedUntil.Valid {
		if err := s.agents.ResetLoginFailures(ctx, a.ID); err != nil {
			return nil, fmt.Errorf("failed to reset login failures: %w", err)
		}
	}

	s.logger.Info("agent logged in", zap.String("agent_id", a.ID))
	return s.issueToken(a)
}

func (s *Service) recordFailure(ctx context.Context, a *agent.Agent, now time.Time) error {
	attempts := a.FailedLoginAttempts + 1

	var lockedUntil *time.Time
	if attempts >= maxFailedLogins {
		t := now.Add(lockoutDuration)
		lockedUntil = &t
		s.logger.Warn("agent account locked",
			zap.String("agent_id", a.ID),
			zap.Int("attempts", attempts),
			zap.Time("locked_until", t))
	}

	if err := s.agents.RecordLoginFailure(ctx, a.ID, attempts, lockedUntil); err != nil {
		return fmt.Errorf("failed to record login failure: %w", err)
	}

	return xerrors.ErrInvalidCredentials
}

// AdminLogin exchanges the shared admin secret for an admin token.
func (s *Service) AdminLogin(req agent.AdminLoginRequest) (*agent.LoginResponse, error) {
	if s.adminSecret == "" {
		return nil, xerrors.ErrForbidden
	}
	if subtle.ConstantTimeCompare([]byte(req.SecretKey), []byte(s.adminSecret)) != 1 {
		return nil, xerrors.ErrUnauthorized
	}

	accessToken, err := s.tokens.Generate(token.AdminSubject)
	if err != nil {
		return nil, fmt.Errorf("failed to issue admin token: %w", err)
	}

	s.logger.Info("admin logged in")
	return &agent.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresAt:   time.Now().Add(s.tokens.Ttl),
	}, nil
}

// Authenticate resolves a raw token string to the live agent it belongs to.
// Admin tokens return a nil agent and isAdmin true.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*agent.Agent, bool, error) {
	claims, err := s.verifier.Verify(tokenString)
	if err != nil {
		return nil, false, xerrors.ErrUnauthorized
	}

	if claims.IsAdmin() {
		return nil, true, nil
	}

	a, err := s.agents.FindByID(ctx, claims.Subject)
	if xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, false, xerrors.ErrUnauthorized
	}
	if err != nil {
		return nil, false, err
	}
	return a, false, nil
}

// TokenTTL exposes the access token lifetime for cookie expiry.
func (s *Service) TokenTTL() time.Duration {
	return s.tokens.Ttl
}

// AgentInfo shapes an agent for API responses, decrypting the mobile when it
// is stored as ciphertext.
func (s *Service) AgentInfo(a *agent.Agent) agent.AgentInfo {
	mobile := a.Mobile
	if s.encryptMobile {
		mobile = s.codec.Decrypt(a.Mobile)
	}
	return agent.AgentInfo{
		ID:         a.ID,
		Name:       a.Name,
		Mobile:     mobile,
		IsVerified: a.IsVerified,
		CreatedAt:  a.CreatedAt,
	}
}

func (s *Service) issueToken(a *agent.Agent) (*agent.LoginResponse, error) {
	accessToken, err := s.tokens.Generate(a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &agent.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresAt:   time.Now().Add(s.tokens.Ttl),
		Agent:       s.AgentInfo(a),
	}, nil
}

// sendVerificationCode fires the SMS without failing the calling operation;
// the code is already persisted and resend covers a lost message.
func (s *Service) sendVerificationCode(ctx context.Context, mobile, code string) {
	if !s.sms.SendSMS(ctx, mobile, notify.VerificationCodeBody(code)) {
		s.logger.Error("failed to send verification sms")
	}
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
