// internal/service/auth/auth_test.go
package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"postsaathi-service/internal/domain/agent"
	xerrors "postsaathi-service/internal/pkg/errors"
	"postsaathi-service/internal/pkg/fieldcrypt"
	"postsaathi-service/internal/pkg/ratelimit"
	"postsaathi-service/internal/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeAgentRepo struct {
	agents map[string]*agent.Agent // keyed by ID
}

func newFakeAgentRepo() *fakeAgentRepo {
	return &fakeAgentRepo{agents: make(map[string]*agent.Agent)}
}

func (r *fakeAgentRepo) Create(_ context.Context, a *agent.Agent) error {
	cp := *a
	cp.CreatedAt = time.Now()
	r.agents[a.ID] = &cp
	a.CreatedAt = cp.CreatedAt
	return nil
}

func (r *fakeAgentRepo) FindByID(_ context.Context, id string) (*agent.Agent, error) {
	if a, ok := r.agents[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, xerrors.ErrNotFound
}

func (r *fakeAgentRepo) FindByMobileHash(_ context.Context, hash string) (*agent.Agent, error) {
	for _, a := range r.agents {
		if a.MobileHash == hash {
			cp := *a
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *fakeAgentRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.agents)), nil
}

func (r *fakeAgentRepo) SetVerificationCode(_ context.Context, id, code string, expiresAt time.Time) error {
	a, ok := r.agents[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	a.VerificationCode = sql.NullString{String: code, Valid: true}
	a.VerificationCodeExpiresAt = sql.NullTime{Time: expiresAt, Valid: true}
	return nil
}

func (r *fakeAgentRepo) MarkVerified(_ context.Context, id string) error {
	a, ok := r.agents[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	a.IsVerified = true
	a.VerificationCode = sql.NullString{}
	a.VerificationCodeExpiresAt = sql.NullTime{}
	return nil
}

func (r *fakeAgentRepo) RecordLoginFailure(_ context.Context, id string, attempts int, lockedUntil *time.Time) error {
	a, ok := r.agents[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	a.FailedLoginAttempts = attempts
	if lockedUntil != nil {
		a.LockedUntil = sql.NullTime{Time: *lockedUntil, Valid: true}
	} else {
		a.LockedUntil = sql.NullTime{}
	}
	return nil
}

func (r *fakeAgentRepo) ResetLoginFailures(_ context.Context, id string) error {
	a, ok := r.agents[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	a.FailedLoginAttempts = 0
	a.LockedUntil = sql.NullTime{}
	return nil
}

type recordingSMS struct {
	sent []string
}

func (s *recordingSMS) SendSMS(_ context.Context, to, body string) bool {
	s.sent = append(s.sent, to+"|"+body)
	return true
}

func newTestService(t *testing.T, repo *fakeAgentRepo) (*Service, *recordingSMS) {
	t.Helper()

	codec, err := fieldcrypt.NewWithKey([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	secret := []byte("test-signing-secret")
	sms := &recordingSMS{}

	svc := NewService(
		repo,
		codec,
		token.NewGenerator(secret, "postsaathi", time.Hour),
		token.NewVerifier(secret, "postsaathi"),
		sms,
		ratelimit.NewLimiter(nil),
		"admin-secret",
		false,
		zap.NewNop(),
	)
	return svc, sms
}

func seedAgent(t *testing.T, repo *fakeAgentRepo, mobile, password string, verified bool) *agent.Agent {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	a := &agent.Agent{
		ID:           "agent-" + mobile,
		Name:         "Test Agent",
		Mobile:       mobile,
		MobileHash:   agent.HashMobile(mobile),
		PasswordHash: string(hash),
		IsVerified:   verified,
		CreatedAt:    time.Now(),
	}
	repo.agents[a.ID] = a
	return a
}

func TestSignupSendsCodeAndStoresUnverified(t *testing.T) {
	repo := newFakeAgentRepo()
	svc, sms := newTestService(t, repo)

	err := svc.Signup(context.Background(), agent.SignupRequest{
		Name:     "Asha",
		Mobile:   "9876543210",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	a, err := repo.FindByMobileHash(context.Background(), agent.HashMobile("9876543210"))
	require.NoError(t, err)
	assert.False(t, a.IsVerified)
	assert.True(t, a.VerificationCode.Valid)
	assert.Len(t, a.VerificationCode.String, 6)
	assert.NotEqual(t, "s3cret-pass", a.PasswordHash)
	require.Len(t, sms.sent, 1)
	assert.Contains(t, sms.sent[0], a.VerificationCode.String)
}

func TestSignupRejectsDuplicateMobile(t *testing.T) {
	repo := newFakeAgentRepo()
	svc, _ := newTestService(t, repo)
	seedAgent(t, repo, "9876543210", "whatever1", true)

	err := svc.Signup(context.Background(), agent.SignupRequest{
		Name:     "Asha",
		Mobile:   "9876543210",
		Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, xerrors.ErrDuplicateEntry)
}

func TestVerifyOTPAutoLogsIn(t *testing.T) {
	repo := newFakeAgentRepo()
	svc, _ := newTestService(t, repo)

	a := seedAgent(t, repo, "9876543210", "s3cret-pass", false)
	a.VerificationCode = sql.NullString{String: "123456", Valid: true}
	a.VerificationCodeExpiresAt = sql.NullTime{Time: time.Now().Add(10 * time.Minute), Valid: true}

	resp, err := svc.VerifyOTP(context.Background(), agent.VerifyOTPRequest{
		Mobile: "9876543210",
		OTP:    "123456",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.True(t, resp.Agent.IsVerified)

	stored := repo.agents[a.ID]
	assert.True(t, stored.IsVerified)
	assert.False(t, stored.VerificationCode.Valid)
}

func TestVerifyOTPRejections(t *testing.T) {
	repo := newFakeAgentRepo()
	svc, _ := newTestService(t, repo)

	a := seedAgent(t, repo, "9876543210", "s3cret-pass", false)
	a.VerificationCode = sql.NullString{String: "123456", Valid: true}
	a.VerificationCodeExpiresAt = sql.NullTime{Time: time.Now().Add(10 * time.Minute), Valid: true}

	_, err := svc.VerifyOTP(context.Background(), agent.VerifyOTPRequest{Mobile: "9876543210", OTP: "000000"})
	assert.ErrorIs(t, err, xerrors.ErrInvalidCode)

	a.VerificationCodeExpiresAt = sql.NullTime{Time: time.Now().Add(-time.Minute), Valid: true}
	_, err = svc.VerifyOTP(context.Background(), agent.VerifyOTPRequest{Mobile: "9876543210", OTP: "123456"})
	assert.ErrorIs(t, err, xerrors.ErrCodeExpired)

	a.IsVerified = true
	_, err = svc.VerifyOTP(context.Background(), agent.VerifyOTPRequest{Mobile: "9876543210", OTP: "123456"})
	assert.ErrorIs(t, err, xerrors.ErrAlreadyVerified)
}

func TestLoginHappyPath(t *testing.T) {
	repo := newFakeAgentRepo()
	svc, _ := newTestService(t, repo)
	seedAgent(t, repo, "9876543210", "s3cret-pass", true)

	resp, err := svc.Login(context.Background(), agent.LoginRequest{
		Mobile:   "9876543210",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "9876543210", resp.Agent.Mobile)
}

func TestLoginUnknownMobileCollapsesToInvalidCredentials(t *testing.T) {
	repo := newFakeAgentRepo()
	svc, _ := newTestService(t, repo)

	_, err := svc.Login(context.Background(), agent.LoginRequest{
		Mobile:   "0000000000",
		Password: "whatever1",
	})
	assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
}

func TestLoginRejectsUnverified(t *testing.T) {
	repo := newFakeAgentRepo()
	svc, _ := newTestService(t, repo)
	seedAgent(t, repo, "9876543210", "s3cret-pass", false)

	_, err := svc.Login(context.Background(), agent.LoginRequest{
		Mobile:   "9876543210",
		Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, xerrors.ErrNotVerified)

	// Wrong password on an unverified account must not burn an attempt.
	_, err = svc.Login(context.Background(), agent.LoginRequest{
		Mobile:   "9876543210",
		Password: "wrong-pass",
	})
	assert.ErrorIs(t, err, xerrors.ErrNotVerified)
	assert.Zero(t, repo.agents["agent-9876543210"].FailedLoginAttempts)
}

func TestLoginLocksAfterFiveFailures(t *testing.T) {
	repo := newFakeAgentRepo()
	svc, _ := newTestService(t, repo)
	a := seedAgent(t, repo, "9876543210", "s3cret-pass", true)

	for i := 0; i < 5; i++ {
		_, err := svc.Login(context.Background(), agent.LoginRequest{
			Mobile:   "9876543210",
			Password: "wrong-pass",
		})
		assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
	}

	stored := repo.agents[a.ID]
	assert.Equal(t, 5, stored.FailedLoginAttempts)
	require.True(t, stored.LockedUntil.Valid)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), stored.LockedUntil.Time, time.Minute)

	// Even the correct password is refused while the lock holds.
	_, err := svc.Login(context.Background(), agent.LoginRequest{
		Mobile:   "9876543210",
		Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, xerrors.ErrAccountLocked)
}

func TestLoginExpiredLockClearsOnSuccess(t *testing.T) {
	repo := newFakeAgentRepo()
	svc, _ := newTestService(t, repo)
	a := seedAgent(t, repo, "9876543210", "s3cret-pass", true)
	a.FailedLoginAttempts = 5
	a.LockedUntil = sql.NullTime{Time: time.Now().Add(-time.Minute), Valid: true}

	resp, err := svc.Login(context.Background(), agent.LoginRequest{
		Mobile:   "9876543210",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	stored := repo.agents[a.ID]
	assert.Zero(t, stored.FailedLoginAttempts)
	assert.False(t, stored.LockedUntil.Valid)
}

func TestResendOTPReplacesCode(t *testing.T) {
	repo := newFakeAgentRepo()
	svc, sms := newTestService(t, repo)

	a := seedAgent(t, repo, "9876543210", "s3cret-pass", false)
	a.VerificationCode = sql.NullString{String: "111111", Valid: true}
	a.VerificationCodeExpiresAt = sql.NullTime{Time: time.Now().Add(-time.Minute), Valid: true}

	err := svc.ResendOTP(context.Background(), agent.ResendOTPRequest{Mobile: "9876543210"})
	require.NoError(t, err)

	stored := repo.agents[a.ID]
	assert.True(t, stored.VerificationCode.Valid)
	assert.NotEqual(t, "111111", stored.VerificationCode.String)
	assert.True(t, stored.VerificationCodeExpiresAt.Time.After(time.Now()))
	require.Len(t, sms.sent, 1)
}

func TestResendOTPRejectsVerified(t *testing.T) {
	repo := newFakeAgentRepo()
	svc, _ := newTestService(t, repo)
	seedAgent(t, repo, "9876543210", "s3cret-pass", true)

	err := svc.ResendOTP(context.Background(), agent.ResendOTPRequest{Mobile: "9876543210"})
	assert.ErrorIs(t, err, xerrors.ErrAlreadyVerified)
}

func TestAdminLogin(t *testing.T) {
	repo := newFakeAgentRepo()
	svc, _ := newTestService(t, repo)

	resp, err := svc.AdminLogin(agent.AdminLoginRequest{SecretKey: "admin-secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, isAdmin, err := svc.Authenticate(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	_, err = svc.AdminLogin(agent.AdminLoginRequest{SecretKey: "wrong"})
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestAuthenticateResolvesLiveAgent(t *testing.T) {
	repo := newFakeAgentRepo()
	svc, _ := newTestService(t, repo)
	seeded := seedAgent(t, repo, "9876543210", "s3cret-pass", true)

	resp, err := svc.Login(context.Background(), agent.LoginRequest{
		Mobile:   "9876543210",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	a, isAdmin, err := svc.Authenticate(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.False(t, isAdmin)
	assert.Equal(t, seeded.ID, a.ID)

	// Token whose subject no longer exists must be refused.
	delete(repo.agents, seeded.ID)
	_, _, err = svc.Authenticate(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)

	_, _, err = svc.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestEncryptedMobileMode(t *testing.T) {
	repo := newFakeAgentRepo()
	codec, err := fieldcrypt.NewWithKey([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	secret := []byte("test-signing-secret")
	svc := NewService(
		repo, codec,
		token.NewGenerator(secret, "postsaathi", time.Hour),
		token.NewVerifier(secret, "postsaathi"),
		&recordingSMS{}, ratelimit.NewLimiter(nil),
		"admin-secret", true, zap.NewNop(),
	)

	require.NoError(t, svc.Signup(context.Background(), agent.SignupRequest{
		Name:     "Asha",
		Mobile:   "9876543210",
		Password: "s3cret-pass",
	}))

	a, err := repo.FindByMobileHash(context.Background(), agent.HashMobile("9876543210"))
	require.NoError(t, err)
	assert.NotEqual(t, "9876543210", a.Mobile)
	assert.Equal(t, "9876543210", codec.Decrypt(a.Mobile))

	// Login still works through the hash lookup and returns the plaintext.
	require.NoError(t, repo.MarkVerified(context.Background(), a.ID))
	resp, err := svc.Login(context.Background(), agent.LoginRequest{
		Mobile:   "9876543210",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "9876543210", resp.Agent.Mobile)
}
