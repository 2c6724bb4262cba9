// internal/handlers/investment/investment_handler.go
package investment

import (
	"net/http"

	"postsaathi-service/internal/domain/investment"
	"postsaathi-service/internal/middleware"
	xerrors "postsaathi-service/internal/pkg/errors"
	"postsaathi-service/internal/pkg/response"
	service "postsaathi-service/internal/service/investment"

	"github.com/gin-gonic/gin"
)

type InvestmentHandler struct {
	investmentService *service.Service
}

func NewInvestmentHandler(investmentService *service.Service) *InvestmentHandler {
	return &InvestmentHandler{
		investmentService: investmentService,
	}
}

// CreateInvestment records a new investment under one of the agent's customers.
func (h *InvestmentHandler) CreateInvestment(c *gin.Context) {
	a := middleware.MustGetAgent(c)

	var req investment.CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.investmentService.Create(c.Request.Context(), a.ID, req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "customer not found")
		case xerrors.Is(err, xerrors.ErrForbidden):
			response.Forbidden(c, "customer belongs to another agent")
		case xerrors.Is(err, xerrors.ErrInvalidInput):
			response.ValidationError(c, "invalid investment", err)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to create investment", nil)
		}
		return
	}

	response.Success(c, http.StatusCreated, "investment created successfully", result)
}

// ListInvestments lists investments, either for one customer
// (?customer_id=...) or across all of the agent's customers.
func (h *InvestmentHandler) ListInvestments(c *gin.Context) {
	a := middleware.MustGetAgent(c)

	var (
		result []investment.InvestmentResponse
		err    error
	)

	if customerID := c.Query("customer_id"); customerID != "" {
		result, err = h.investmentService.ListByCustomer(c.Request.Context(), a.ID, customerID)
	} else {
		result, err = h.investmentService.ListByAgent(c.Request.Context(), a.ID)
	}

	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "customer not found")
		case xerrors.Is(err, xerrors.ErrForbidden):
			response.Forbidden(c, "customer belongs to another agent")
		default:
			response.Error(c, http.StatusInternalServerError, "failed to list investments", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, "investments retrieved", result)
}
