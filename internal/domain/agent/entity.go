// internal/domain/agent/entity.go
package agent

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"
)

type Agent struct {
	ID           string `json:"agent_id" db:"agent_id"`
	Name         string `json:"name" db:"name"`
	Mobile       string `json:"mobile" db:"mobile"`
	MobileHash   string `json:"-" db:"mobile_hash"`
	PasswordHash string `json:"-" db:"password_hash"`

	// Verification
	IsVerified                bool           `json:"is_verified" db:"is_verified"`
	VerificationCode          sql.NullString `json:"-" db:"verification_code"`
	VerificationCodeExpiresAt sql.NullTime   `json:"-" db:"verification_code_expires_at"`

	// Lockout
	FailedLoginAttempts int          `json:"-" db:"failed_login_attempts"`
	LockedUntil         sql.NullTime `json:"-" db:"locked_until"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsLocked reports whether the lockout window is still open at now.
func (a *Agent) IsLocked(now time.Time) bool {
	return a.LockedUntil.Valid && a.LockedUntil.Time.After(now)
}

// HashMobile derives the deterministic lookup key for a mobile number. The
// mobile column itself may hold either plaintext or a ciphertext token
// (ENCRYPT_AGENT_MOBILE); the hash column is what logins resolve against in
// both modes.
func HashMobile(mobile string) string {
	sum := sha256.Sum256([]byte(mobile))
	return hex.EncodeToString(sum[:])
}
