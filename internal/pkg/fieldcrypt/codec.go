// internal/pkg/fieldcrypt/codec.go
package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	keySize   = 32
	nonceSize = 12
	tagSize   = 16
)

// Codec encrypts and decrypts individual string fields with AES-256-GCM.
// The key is fixed at construction time; there is no package-level state.
//
// Tokens look like "b64url(nonce):b64url(tag):b64url(ciphertext)". The nonce
// is freshly random on every Encrypt call - reusing one under the same key
// breaks GCM, so tokens are never deterministic.
type Codec struct {
	key []byte
}

// New builds a Codec from a base64url-encoded 256-bit key.
//
// If the value does not decode to exactly 32 bytes, the raw string is padded
// or truncated to 32 bytes and a warning is logged. That keeps dev setups with
// a plain-text key working; production keys must be proper base64url. An empty
// key is rejected outright.
func New(encodedKey string, logger *zap.Logger) (*Codec, error) {
	if encodedKey == "" {
		return nil, fmt.Errorf("fieldcrypt: encryption key is not configured")
	}

	key, err := base64.URLEncoding.DecodeString(encodedKey)
	if err != nil || len(key) != keySize {
		logger.Warn("encryption key is not base64url-encoded 32 bytes, deriving padded key (not for production)",
			zap.Int("decoded_len", len(key)),
		)
		key = padKey([]byte(encodedKey))
	}

	return &Codec{key: key}, nil
}

// NewWithKey builds a Codec from raw key bytes. Used by tests and callers
// that manage key material themselves.
func NewWithKey(key []byte) (*Codec, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("fieldcrypt: key must be %d bytes, got %d", keySize, len(key))
	}
	k := make([]byte, keySize)
	copy(k, key)
	return &Codec{key: k}, nil
}

// Encrypt returns the ciphertext token for plaintext. Empty input is passed
// through untouched - an empty field stays an empty field.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("fieldcrypt: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("fieldcrypt: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("fieldcrypt: %w", err)
	}

	sealed := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	return strings.Join([]string{
		base64.URLEncoding.EncodeToString(nonce),
		base64.URLEncoding.EncodeToString(tag),
		base64.URLEncoding.EncodeToString(ciphertext),
	}, ":"), nil
}

// Decrypt recovers the plaintext from a token produced by Encrypt.
//
// Any failure - empty input, wrong segment count, bad base64, tampered data,
// wrong key - yields "" rather than an error. A corrupted PII field degrades
// to a blank value instead of failing whole reads.
func (c *Codec) Decrypt(token string) string {
	if token == "" {
		return ""
	}

	parts := strings.Split(token, ":")
	if len(parts) != 3 {
		return ""
	}

	nonce, err := base64.URLEncoding.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceSize {
		return ""
	}
	tag, err := base64.URLEncoding.DecodeString(parts[1])
	if err != nil || len(tag) != tagSize {
		return ""
	}
	ciphertext, err := base64.URLEncoding.DecodeString(parts[2])
	if err != nil {
		return ""
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return ""
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return ""
	}

	plaintext, err := aesgcm.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return ""
	}
	return string(plaintext)
}

func padKey(raw []byte) []byte {
	key := make([]byte, keySize)
	for i := range key {
		key[i] = '0'
	}
	copy(key, raw)
	return key
}
