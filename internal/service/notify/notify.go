// internal/service/notify/notify.go
package notify

import "context"

// Notifier is the outbound template-message sink. Implementations report
// plain success/failure; callers decide what a failed send means.
type Notifier interface {
	Send(ctx context.Context, to, templateName string, params []string) bool
}

// SMSSender delivers short plain-text messages (verification codes).
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) bool
}

// TemplateMaturityAlert is the WhatsApp template used by the follow-up
// engine. Its body takes exactly five ordered parameters: agent name,
// customer name, scheme type, principal, days-remaining-or-"Overdue".
const TemplateMaturityAlert = "investment_maturity_alert"
