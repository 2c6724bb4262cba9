// internal/domain/investment/dto.go
package investment

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateInvestmentRequest struct {
	CustomerID   string          `json:"customer_id" binding:"required"`
	SchemeType   string          `json:"scheme_type" binding:"required"`
	Principal    decimal.Decimal `json:"principal" binding:"required"`
	StartDate    time.Time       `json:"start_date" binding:"required" time_format:"2006-01-02"`
	MaturityDate time.Time       `json:"maturity_date" binding:"required" time_format:"2006-01-02"`
}

type InvestmentResponse struct {
	ID           string          `json:"investment_id"`
	CustomerID   string          `json:"customer_id"`
	SchemeType   Scheme          `json:"scheme_type"`
	Principal    decimal.Decimal `json:"principal"`
	StartDate    string          `json:"start_date"`
	MaturityDate string          `json:"maturity_date"`
	Status       Status          `json:"status"`
	CurrentStage string          `json:"current_stage,omitempty"`
}

// NewInvestmentResponse flattens the stored row into API shape with dates as
// plain YYYY-MM-DD strings.
func NewInvestmentResponse(inv *Investment) InvestmentResponse {
	resp := InvestmentResponse{
		ID:           inv.ID,
		CustomerID:   inv.CustomerID,
		SchemeType:   inv.SchemeType,
		Principal:    inv.Principal,
		StartDate:    inv.StartDate.Format("2006-01-02"),
		MaturityDate: inv.MaturityDate.Format("2006-01-02"),
		Status:       inv.Status,
	}
	if inv.CurrentStage.Valid {
		resp.CurrentStage = inv.CurrentStage.String
	}
	return resp
}
