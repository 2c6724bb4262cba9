// internal/domain/investment/entity.go
package investment

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Scheme is the closed set of postal-savings products we track.
type Scheme string

const (
	SchemeNSC Scheme = "NSC"
	SchemeMIS Scheme = "MIS"
	SchemeFD  Scheme = "FD"
	SchemeKVP Scheme = "KVP"
)

// ParseScheme maps free-form input (bulk uploads, API payloads) onto a Scheme.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToUpper(strings.TrimSpace(s))) {
	case SchemeNSC:
		return SchemeNSC, nil
	case SchemeMIS:
		return SchemeMIS, nil
	case SchemeFD:
		return SchemeFD, nil
	case SchemeKVP:
		return SchemeKVP, nil
	}
	return "", fmt.Errorf("unknown scheme type %q", s)
}

// Status is the investment lifecycle. The follow-up engine only ever moves
// ACTIVE/FOLLOWUP forward; REINVESTED and CLOSED are reached by manual action.
type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusFollowup   Status = "FOLLOWUP"
	StatusMatured    Status = "MATURED"
	StatusReinvested Status = "REINVESTED"
	StatusClosed     Status = "CLOSED"
)

// Stage is a follow-up checkpoint relative to maturity: F10/F5/F3/F1 days
// before, MT on the day, P30 thirty days past.
type Stage string

const (
	StageF10 Stage = "F10"
	StageF5  Stage = "F5"
	StageF3  Stage = "F3"
	StageF1  Stage = "F1"
	StageMT  Stage = "MT"
	StageP30 Stage = "P30"
)

type Investment struct {
	ID           string          `json:"investment_id" db:"investment_id"`
	CustomerID   string          `json:"customer_id" db:"customer_id"`
	SchemeType   Scheme          `json:"scheme_type" db:"scheme_type"`
	Principal    decimal.Decimal `json:"principal" db:"principal"`
	StartDate    time.Time       `json:"start_date" db:"start_date"`
	MaturityDate time.Time       `json:"maturity_date" db:"maturity_date"`
	Status       Status          `json:"status" db:"status"`
	CurrentStage sql.NullString  `json:"current_stage,omitempty" db:"current_stage"`
}

// FollowupLog is an immutable audit row. At most one exists per
// (investment, stage) pair; that uniqueness is what makes the scan idempotent.
type FollowupLog struct {
	ID           string    `json:"log_id" db:"log_id"`
	InvestmentID string    `json:"investment_id" db:"investment_id"`
	Stage        Stage     `json:"stage" db:"stage"`
	SentOn       time.Time `json:"sent_on" db:"sent_on"`
}

// DueRow is one result of the scan's three-way join: the investment together
// with the owning customer's (still encrypted) name and the owning agent's
// identity. No relationship traversal, one query.
type DueRow struct {
	Investment Investment

	CustomerID       string
	CustomerFullName string // ciphertext token
	AgentID          string
	AgentName        string
	AgentMobile      string
}

// Stats is the aggregate block behind the dashboard and admin views.
type Stats struct {
	TotalAgents          int64           `json:"total_agents"`
	TotalCustomers       int64           `json:"total_customers"`
	TotalInvestments     int64           `json:"total_investments"`
	TotalInvestmentValue decimal.Decimal `json:"total_investment_value"`
	PendingFollowups     int64           `json:"pending_followups"`
}
