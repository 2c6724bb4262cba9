// internal/pkg/token/generator.go
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Generator struct {
	secret []byte
	issuer string
	Ttl    time.Duration
}

func NewGenerator(secret []byte, issuer string, ttl time.Duration) *Generator {
	return &Generator{
		secret: secret,
		issuer: issuer,
		Ttl:    ttl,
	}
}

// Generate creates a signed token for the given subject. It is a pure
// function of subject, clock and configuration - no transport concerns.
func (g *Generator) Generate(subject string) (string, error) {
	if len(g.secret) == 0 {
		return "", fmt.Errorf("token generator has no signing secret")
	}
	if subject == "" {
		return "", fmt.Errorf("token subject must not be empty")
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(g.Ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        ulid.Make().String(),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(g.secret)
}
