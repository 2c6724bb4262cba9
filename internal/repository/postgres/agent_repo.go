// internal/repository/postgres/agent_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"postsaathi-service/internal/domain/agent"
	xerrors "postsaathi-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AgentRepository struct {
	db *pgxpool.Pool
}

func NewAgentRepository(db *pgxpool.Pool) *AgentRepository {
	return &AgentRepository{db: db}
}

// Create inserts a new agent row.
func (r *AgentRepository) Create(ctx context.Context, a *agent.Agent) error {
	query := `
		INSERT INTO agents (
			agent_id, name, mobile, mobile_hash, password_hash,
			is_verified, verification_code, verification_code_expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		a.ID, a.Name, a.Mobile, a.MobileHash, a.PasswordHash,
		a.IsVerified, a.VerificationCode, a.VerificationCodeExpiresAt,
	).Scan(&a.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	return nil
}

// FindByID retrieves an agent by ID.
func (r *AgentRepository) FindByID(ctx context.Context, id string) (*agent.Agent, error) {
	return r.findOne(ctx, `WHERE agent_id = $1`, id)
}

// FindByMobileHash retrieves an agent by the deterministic mobile lookup hash.
func (r *AgentRepository) FindByMobileHash(ctx context.Context, mobileHash string) (*agent.Agent, error) {
	return r.findOne(ctx, `WHERE mobile_hash = $1`, mobileHash)
}

func (r *AgentRepository) findOne(ctx context.Context, where string, arg any) (*agent.Agent, error) {
	query := `
		SELECT agent_id, name, mobile, mobile_hash, password_hash,
		       is_verified, verification_code, verification_code_expires_at,
		       failed_login_attempts, locked_until, created_at
		FROM agents
	` + where

	var a agent.Agent
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&a.ID, &a.Name, &a.Mobile, &a.MobileHash, &a.PasswordHash,
		&a.IsVerified, &a.VerificationCode, &a.VerificationCodeExpiresAt,
		&a.FailedLoginAttempts, &a.LockedUntil, &a.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find agent: %w", err)
	}

	return &a, nil
}

// Count returns the total number of agents.
func (r *AgentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM agents`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count agents: %w", err)
	}
	return count, nil
}

// SetVerificationCode replaces any prior code and expiry. Exactly one code is
// active per agent at a time.
func (r *AgentRepository) SetVerificationCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	query := `
		UPDATE agents
		SET verification_code = $1, verification_code_expires_at = $2
		WHERE agent_id = $3
	`

	tag, err := r.db.Exec(ctx, query, code, expiresAt, id)
	if err != nil {
		return fmt.Errorf("failed to set verification code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// MarkVerified flips the verified flag and clears the code and its expiry.
func (r *AgentRepository) MarkVerified(ctx context.Context, id string) error {
	query := `
		UPDATE agents
		SET is_verified = TRUE, verification_code = NULL, verification_code_expires_at = NULL
		WHERE agent_id = $1
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark agent verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// RecordLoginFailure persists the incremented failure counter and, once the
// threshold is reached, the lockout deadline.
func (r *AgentRepository) RecordLoginFailure(ctx context.Context, id string, attempts int, lockedUntil *time.Time) error {
	query := `
		UPDATE agents
		SET failed_login_attempts = $1, locked_until = $2
		WHERE agent_id = $3
	`

	tag, err := r.db.Exec(ctx, query, attempts, lockedUntil, id)
	if err != nil {
		return fmt.Errorf("failed to record login failure: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// ResetLoginFailures zeroes the counter and clears any lockout.
func (r *AgentRepository) ResetLoginFailures(ctx context.Context, id string) error {
	query := `
		UPDATE agents
		SET failed_login_attempts = 0, locked_until = NULL
		WHERE agent_id = $1
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to reset login failures: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
