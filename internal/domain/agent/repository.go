// internal/domain/agent/repository.go
package agent

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a *Agent) error
	FindByID(ctx context.Context, id string) (*Agent, error)
	FindByMobileHash(ctx context.Context, mobileHash string) (*Agent, error)
	Count(ctx context.Context) (int64, error)

	// Verification
	SetVerificationCode(ctx context.Context, id, code string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, id string) error

	// Lockout bookkeeping
	RecordLoginFailure(ctx context.Context, id string, attempts int, lockedUntil *time.Time) error
	ResetLoginFailures(ctx context.Context, id string) error
}
