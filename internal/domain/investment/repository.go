// internal/domain/investment/repository.go
package investment

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, inv *Investment) error
	FindByID(ctx context.Context, id string) (*Investment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*Investment, error)
	ListByAgent(ctx context.Context, agentID string) ([]*Investment, error)

	// Aggregates for dashboard/admin stats. An empty agentID means system-wide.
	CountByAgent(ctx context.Context, agentID string) (int64, error)
	SumPrincipalByAgent(ctx context.Context, agentID string) (decimal.Decimal, error)
	CountPendingFollowupsByAgent(ctx context.Context, agentID string) (int64, error)
}

// ScanStore opens the transaction a follow-up pass runs in. The whole pass
// commits or rolls back as one unit; there are no per-row commits.
type ScanStore interface {
	BeginScan(ctx context.Context) (ScanTx, error)
}

// ScanTx is the scoped handle for one pass. Rollback after Commit is a no-op,
// so callers can defer it unconditionally.
type ScanTx interface {
	DueInvestments(ctx context.Context) ([]DueRow, error)
	HasFollowupLog(ctx context.Context, investmentID string, stage Stage) (bool, error)
	InsertFollowupLog(ctx context.Context, log *FollowupLog) error
	UpdateStatusAndStage(ctx context.Context, investmentID string, status Status, stage Stage) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
