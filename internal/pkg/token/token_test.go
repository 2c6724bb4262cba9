package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	secret := []byte("test-secret")
	gen := NewGenerator(secret, "postsaathi", 7*24*time.Hour)
	ver := NewVerifier(secret, "postsaathi")

	signed, err := gen.Generate("agent-123")
	require.NoError(t, err)

	claims, err := ver.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "agent-123", claims.Subject)
	assert.False(t, claims.IsAdmin())
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestAdminSubject(t *testing.T) {
	secret := []byte("test-secret")
	gen := NewGenerator(secret, "postsaathi", time.Hour)
	ver := NewVerifier(secret, "postsaathi")

	signed, err := gen.Generate(AdminSubject)
	require.NoError(t, err)

	claims, err := ver.Verify(signed)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}

func TestVerifyExpired(t *testing.T) {
	secret := []byte("test-secret")
	gen := NewGenerator(secret, "postsaathi", -time.Minute)
	ver := NewVerifier(secret, "postsaathi")

	signed, err := gen.Generate("agent-123")
	require.NoError(t, err)

	_, err = ver.Verify(signed)
	assert.Error(t, err)
}

func TestVerifyWrongSecret(t *testing.T) {
	gen := NewGenerator([]byte("secret-a"), "postsaathi", time.Hour)
	ver := NewVerifier([]byte("secret-b"), "postsaathi")

	signed, err := gen.Generate("agent-123")
	require.NoError(t, err)

	_, err = ver.Verify(signed)
	assert.Error(t, err)
}

func TestVerifyWrongIssuer(t *testing.T) {
	secret := []byte("test-secret")
	gen := NewGenerator(secret, "someone-else", time.Hour)
	ver := NewVerifier(secret, "postsaathi")

	signed, err := gen.Generate("agent-123")
	require.NoError(t, err)

	_, err = ver.Verify(signed)
	assert.Error(t, err)
}

func TestGenerateEmptySubject(t *testing.T) {
	gen := NewGenerator([]byte("test-secret"), "postsaathi", time.Hour)

	_, err := gen.Generate("")
	assert.Error(t, err)
}
