// internal/domain/customer/entity.go
package customer

import (
	"database/sql"
	"time"
)

// Customer is the stored form of a customer record. FullName and Mobile hold
// ciphertext tokens and only pass through the field codec at the service
// boundary; nothing below the service layer sees plaintext PII.
type Customer struct {
	ID          string       `json:"customer_id" db:"customer_id"`
	AgentID     string       `json:"agent_id" db:"agent_id"`
	FullName    string       `json:"full_name" db:"full_name"`
	Mobile      string       `json:"mobile" db:"mobile"`
	ConsentFlag bool         `json:"consent_flag" db:"consent_flag"`
	ConsentTime sql.NullTime `json:"consent_time,omitempty" db:"consent_time"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

// Detached returns a copy safe to decrypt in place. The original keeps its
// ciphertext so it can never be written back with plaintext fields.
func (c *Customer) Detached() *Customer {
	copied := *c
	return &copied
}
