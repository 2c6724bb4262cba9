// internal/service/notify/sms.go
package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioSender delivers SMS through the Twilio Messages API. With missing
// credentials it runs in mock mode: sends are logged and reported successful.
type TwilioSender struct {
	accountSID string
	authToken  string
	fromNumber string
	client     *http.Client
	logger     *zap.Logger
}

func NewTwilioSender(accountSID, authToken, fromNumber string, logger *zap.Logger) *TwilioSender {
	if accountSID == "" || authToken == "" {
		logger.Warn("twilio credentials missing, sms sender running in mock mode")
	}
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		client:     &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) bool {
	if s.accountSID == "" || s.authToken == "" {
		s.logger.Info("mock sms send", zap.String("to", to), zap.String("body", body))
		return true
	}

	// Bare 10-digit numbers default to the Indian country code.
	if !strings.HasPrefix(to, "+") {
		to = "+91" + to
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.fromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioAPIBase, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		s.logger.Error("failed to build twilio request", zap.Error(err))
		return false
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("twilio request failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error("twilio api error", zap.Int("status", resp.StatusCode), zap.String("to", to))
		return false
	}

	s.logger.Info("sms sent", zap.String("to", to))
	return true
}

// VerificationCodeBody formats the OTP message sent during signup and resend.
func VerificationCodeBody(code string) string {
	return fmt.Sprintf("Your verification code is: %s. Do not share this with anyone.", code)
}
