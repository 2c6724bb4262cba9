package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	// Server
	HTTPAddr  string
	RedisAddr string
	RedisPass string

	// Auth
	JWTSecret   string
	JWTIssuer   string
	TokenTTL    time.Duration
	AdminSecret string

	// Field encryption
	EncryptionKey      string
	EncryptAgentMobile bool

	// Notification sinks
	WhatsAppToken    string
	WhatsAppPhoneID  string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// Follow-up scan
	ScanHour    int
	ScanUseLock bool
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8000"),
		RedisAddr: getEnv("REDIS_ADDR", ""),
		RedisPass: getEnv("REDIS_PASS", ""),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTIssuer:   getEnv("JWT_ISSUER", "postsaathi"),
		TokenTTL:    getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		AdminSecret: getEnv("ADMIN_SECRET", ""),

		EncryptionKey:      getEnv("ENCRYPTION_KEY", ""),
		EncryptAgentMobile: getEnvBool("ENCRYPT_AGENT_MOBILE", false),

		WhatsAppToken:    getEnv("WHATSAPP_TOKEN", ""),
		WhatsAppPhoneID:  getEnv("WHATSAPP_PHONE_ID", ""),
		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),

		ScanHour:    getEnvInt("FOLLOWUP_SCAN_HOUR", 9),
		ScanUseLock: getEnvBool("FOLLOWUP_SCAN_LOCK", true),
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.ToLower(v) == "true" || v == "1"
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
