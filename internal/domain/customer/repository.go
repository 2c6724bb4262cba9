// internal/domain/customer/repository.go
package customer

import "context"

type Repository interface {
	Create(ctx context.Context, c *Customer) error
	FindByID(ctx context.Context, id string) (*Customer, error)
	ListByAgent(ctx context.Context, agentID string) ([]*Customer, error)
	CountByAgent(ctx context.Context, agentID string) (int64, error)
	Count(ctx context.Context) (int64, error)
}
