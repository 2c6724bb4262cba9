// internal/service/investment/investment.go
package investment

import (
	"context"
	"fmt"
	"time"

	"postsaathi-service/internal/domain/agent"
	"postsaathi-service/internal/domain/customer"
	"postsaathi-service/internal/domain/investment"
	xerrors "postsaathi-service/internal/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles investment creation and listing. Ownership is enforced
// here: an agent can only touch investments under their own customers.
type Service struct {
	investments investment.Repository
	customers   customer.Repository
	agents      agent.Repository
	logger      *zap.Logger
}

func NewService(
	investments investment.Repository,
	customers customer.Repository,
	agents agent.Repository,
	logger *zap.Logger,
) *Service {
	return &Service{
		investments: investments,
		customers:   customers,
		agents:      agents,
		logger:      logger,
	}
}

// Create records a new investment under one of the agent's customers.
func (s *Service) Create(ctx context.Context, agentID string, req investment.CreateInvestmentRequest) (*investment.InvestmentResponse, error) {
	c, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if agentID != "" && c.AgentID != agentID {
		return nil, xerrors.ErrForbidden
	}

	scheme, err := investment.ParseScheme(req.SchemeType)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
	}
	if !req.MaturityDate.After(req.StartDate) {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "maturity date must be after start date")
	}
	if req.Principal.IsNegative() || req.Principal.IsZero() {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "principal must be positive")
	}

	inv := &investment.Investment{
		ID:           uuid.NewString(),
		CustomerID:   req.CustomerID,
		SchemeType:   scheme,
		Principal:    req.Principal,
		StartDate:    truncateToDate(req.StartDate),
		MaturityDate: truncateToDate(req.MaturityDate),
		Status:       investment.StatusActive,
	}

	if err := s.investments.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create investment: %w", err)
	}

	s.logger.Info("investment created",
		zap.String("investment_id", inv.ID),
		zap.String("customer_id", inv.CustomerID),
		zap.String("scheme", string(inv.SchemeType)))

	resp := investment.NewInvestmentResponse(inv)
	return &resp, nil
}

// ListByCustomer returns a customer's investments after checking the caller
// owns that customer. Empty agentID (admin) bypasses the check.
func (s *Service) ListByCustomer(ctx context.Context, agentID, customerID string) ([]investment.InvestmentResponse, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if agentID != "" && c.AgentID != agentID {
		return nil, xerrors.ErrForbidden
	}

	stored, err := s.investments.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return toResponses(stored), nil
}

// ListByAgent returns every investment across the agent's customers.
func (s *Service) ListByAgent(ctx context.Context, agentID string) ([]investment.InvestmentResponse, error) {
	stored, err := s.investments.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return toResponses(stored), nil
}

// Stats aggregates the dashboard block. An empty agentID produces the
// system-wide admin view, including the agent count.
func (s *Service) Stats(ctx context.Context, agentID string) (*investment.Stats, error) {
	stats := &investment.Stats{}
	var err error

	if agentID == "" {
		if stats.TotalAgents, err = s.agents.Count(ctx); err != nil {
			return nil, err
		}
		if stats.TotalCustomers, err = s.customers.Count(ctx); err != nil {
			return nil, err
		}
	} else {
		if stats.TotalCustomers, err = s.customers.CountByAgent(ctx, agentID); err != nil {
			return nil, err
		}
	}

	if stats.TotalInvestments, err = s.investments.CountByAgent(ctx, agentID); err != nil {
		return nil, err
	}
	if stats.TotalInvestmentValue, err = s.investments.SumPrincipalByAgent(ctx, agentID); err != nil {
		return nil, err
	}
	if stats.PendingFollowups, err = s.investments.CountPendingFollowupsByAgent(ctx, agentID); err != nil {
		return nil, err
	}

	return stats, nil
}

func toResponses(stored []*investment.Investment) []investment.InvestmentResponse {
	responses := make([]investment.InvestmentResponse, 0, len(stored))
	for _, inv := range stored {
		responses = append(responses, investment.NewInvestmentResponse(inv))
	}
	return responses
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
