// internal/service/notify/whatsapp.go
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const graphAPIBase = "https://graph.facebook.com/v17.0"

// WhatsAppNotifier sends template messages through the WhatsApp Cloud API.
// With missing credentials it runs in mock mode: every send is logged and
// reported as successful.
type WhatsAppNotifier struct {
	token   string
	phoneID string
	client  *http.Client
	logger  *zap.Logger
}

func NewWhatsAppNotifier(token, phoneID string, logger *zap.Logger) *WhatsAppNotifier {
	return &WhatsAppNotifier{
		token:   token,
		phoneID: phoneID,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

type templatePayload struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Template         templateSection `json:"template"`
}

type templateSection struct {
	Name       string              `json:"name"`
	Language   templateLanguage    `json:"language"`
	Components []templateComponent `json:"components"`
}

type templateLanguage struct {
	Code string `json:"code"`
}

type templateComponent struct {
	Type       string              `json:"type"`
	Parameters []templateParameter `json:"parameters"`
}

type templateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (n *WhatsAppNotifier) Send(ctx context.Context, to, templateName string, params []string) bool {
	if n.token == "" || n.phoneID == "" {
		n.logger.Info("mock whatsapp send",
			zap.String("to", to),
			zap.String("template", templateName),
			zap.Strings("params", params))
		return true
	}

	payload := templatePayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template: templateSection{
			Name:     templateName,
			Language: templateLanguage{Code: "en_US"},
		},
	}
	if len(params) > 0 {
		parameters := make([]templateParameter, 0, len(params))
		for _, p := range params {
			parameters = append(parameters, templateParameter{Type: "text", Text: p})
		}
		payload.Template.Components = []templateComponent{
			{Type: "body", Parameters: parameters},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("failed to marshal whatsapp payload", zap.Error(err))
		return false
	}

	url := fmt.Sprintf("%s/%s/messages", graphAPIBase, n.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("failed to build whatsapp request", zap.Error(err))
		return false
	}
	req.Header.Set("Authorization", "Bearer "+n.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("whatsapp api request failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		n.logger.Error("whatsapp api error",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(respBody)))
		return false
	}

	return true
}
