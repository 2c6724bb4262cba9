// internal/pkg/token/claims.go
package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// AdminSubject is the reserved subject for operator tokens issued against the
// shared admin secret instead of an agent record.
const AdminSubject = "admin"

// Claims is the signed payload: the subject is an agent ID (or AdminSubject)
// and expiry bounds the session.
type Claims struct {
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token was issued for the admin subject.
func (c *Claims) IsAdmin() bool {
	return c.Subject == AdminSubject
}
