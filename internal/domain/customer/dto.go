// internal/domain/customer/dto.go
package customer

import "time"

type CreateCustomerRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	Mobile      string `json:"mobile" binding:"required"`
	ConsentFlag bool   `json:"consent_flag"`
}

// CustomerResponse is a detached read: PII fields are decrypted copies built
// for display and never persisted.
type CustomerResponse struct {
	ID          string     `json:"customer_id"`
	AgentID     string     `json:"agent_id"`
	FullName    string     `json:"full_name"`
	Mobile      string     `json:"mobile"`
	ConsentFlag bool       `json:"consent_flag"`
	ConsentTime *time.Time `json:"consent_time,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
