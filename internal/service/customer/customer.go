// internal/service/customer/customer.go
package customer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"postsaathi-service/internal/domain/customer"
	xerrors "postsaathi-service/internal/pkg/errors"
	"postsaathi-service/internal/pkg/fieldcrypt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service owns the customer PII boundary: fields are encrypted before they
// reach the repository and decrypted only into detached response copies.
type Service struct {
	customers customer.Repository
	codec     *fieldcrypt.Codec
	logger    *zap.Logger
}

func NewService(customers customer.Repository, codec *fieldcrypt.Codec, logger *zap.Logger) *Service {
	return &Service{
		customers: customers,
		codec:     codec,
		logger:    logger,
	}
}

// Create stores a new customer under the agent, encrypting name and mobile.
// ConsentTime is stamped only when consent was actually given.
func (s *Service) Create(ctx context.Context, agentID string, req customer.CreateCustomerRequest) (*customer.CustomerResponse, error) {
	encryptedName, err := s.codec.Encrypt(req.FullName)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt customer name: %w", err)
	}
	encryptedMobile, err := s.codec.Encrypt(req.Mobile)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt customer mobile: %w", err)
	}

	c := &customer.Customer{
		ID:          uuid.NewString(),
		AgentID:     agentID,
		FullName:    encryptedName,
		Mobile:      encryptedMobile,
		ConsentFlag: req.ConsentFlag,
	}
	if req.ConsentFlag {
		c.ConsentTime = sql.NullTime{Time: time.Now(), Valid: true}
	}

	if err := s.customers.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Info("customer created",
		zap.String("customer_id", c.ID),
		zap.String("agent_id", agentID))

	resp := s.toResponse(c)
	return &resp, nil
}

// Get returns one customer, decrypted. Agents only see their own customers;
// an empty callerAgentID (admin) bypasses the ownership check.
func (s *Service) Get(ctx context.Context, callerAgentID, customerID string) (*customer.CustomerResponse, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if callerAgentID != "" && c.AgentID != callerAgentID {
		return nil, xerrors.ErrForbidden
	}

	resp := s.toResponse(c)
	return &resp, nil
}

// List returns all of the agent's customers, decrypted.
func (s *Service) List(ctx context.Context, agentID string) ([]customer.CustomerResponse, error) {
	stored, err := s.customers.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	responses := make([]customer.CustomerResponse, 0, len(stored))
	for _, c := range stored {
		responses = append(responses, s.toResponse(c))
	}
	return responses, nil
}

// toResponse decrypts into a fresh response value; the stored entity keeps
// its ciphertext untouched.
func (s *Service) toResponse(c *customer.Customer) customer.CustomerResponse {
	detached := c.Detached()
	resp := customer.CustomerResponse{
		ID:          detached.ID,
		AgentID:     detached.AgentID,
		FullName:    s.codec.Decrypt(detached.FullName),
		Mobile:      s.codec.Decrypt(detached.Mobile),
		ConsentFlag: detached.ConsentFlag,
		CreatedAt:   detached.CreatedAt,
	}
	if detached.ConsentTime.Valid {
		t := detached.ConsentTime.Time
		resp.ConsentTime = &t
	}
	return resp
}
