// internal/pkg/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter throttles OTP sends per mobile. Login lockout itself lives on the
// agent row; this only stops a hot loop of resend requests from burning SMS
// credit.
type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

const (
	maxOTPSends = 3
	otpWindow   = 10 * time.Minute
)

// CheckOTPSend reports whether another OTP may be sent to the mobile, along
// with the remaining allowance. A nil client (Redis not configured) allows
// everything.
func (l *Limiter) CheckOTPSend(ctx context.Context, mobile string) (bool, int64, error) {
	if l.client == nil {
		return true, maxOTPSends, nil
	}

	key := fmt.Sprintf("ratelimit:otp:%s", mobile)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment otp counter: %w", err)
	}

	// Set expiration on first attempt
	if count == 1 {
		l.client.Expire(ctx, key, otpWindow)
	}

	remaining := maxOTPSends - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= maxOTPSends, remaining, nil
}

// ResetOTPSends clears the counter, used once verification succeeds.
func (l *Limiter) ResetOTPSends(ctx context.Context, mobile string) error {
	if l.client == nil {
		return nil
	}
	key := fmt.Sprintf("ratelimit:otp:%s", mobile)
	return l.client.Del(ctx, key).Err()
}
