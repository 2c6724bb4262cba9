// internal/repository/postgres/scan_store.go
package postgres

import (
	"context"
	"fmt"

	"postsaathi-service/internal/domain/investment"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScanStore backs one follow-up pass with a single transaction. All reads and
// writes of a pass share the transaction; the engine commits or rolls back
// the whole thing.
type ScanStore struct {
	db *pgxpool.Pool
}

func NewScanStore(db *pgxpool.Pool) *ScanStore {
	return &ScanStore{db: db}
}

func (s *ScanStore) BeginScan(ctx context.Context) (investment.ScanTx, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin scan transaction: %w", err)
	}
	return &scanTx{tx: tx}, nil
}

type scanTx struct {
	tx pgx.Tx
}

// DueInvestments selects every ACTIVE/FOLLOWUP investment joined to its
// owning customer and that customer's owning agent. One three-way join, no
// relationship traversal.
func (t *scanTx) DueInvestments(ctx context.Context) ([]investment.DueRow, error) {
	query := `
		SELECT i.investment_id, i.customer_id, i.scheme_type, i.principal,
		       i.start_date, i.maturity_date, i.status, i.current_stage,
		       c.customer_id, c.full_name,
		       a.agent_id, a.name, a.mobile
		FROM investments i
		JOIN customers c ON i.customer_id = c.customer_id
		JOIN agents a ON c.agent_id = a.agent_id
		WHERE i.status = ANY($1)
		ORDER BY i.maturity_date
	`

	statuses := []string{string(investment.StatusActive), string(investment.StatusFollowup)}

	rows, err := t.tx.Query(ctx, query, statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to select due investments: %w", err)
	}
	defer rows.Close()

	var due []investment.DueRow
	for rows.Next() {
		var row investment.DueRow
		inv := &row.Investment
		if err := rows.Scan(
			&inv.ID, &inv.CustomerID, &inv.SchemeType, &inv.Principal,
			&inv.StartDate, &inv.MaturityDate, &inv.Status, &inv.CurrentStage,
			&row.CustomerID, &row.CustomerFullName,
			&row.AgentID, &row.AgentName, &row.AgentMobile,
		); err != nil {
			return nil, fmt.Errorf("failed to scan due investment: %w", err)
		}
		due = append(due, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate due investments: %w", err)
	}

	return due, nil
}

// HasFollowupLog reports whether a (investment, stage) pair was already
// triggered. This check-before-insert is the engine's only dedup mechanism.
func (t *scanTx) HasFollowupLog(ctx context.Context, investmentID string, stage investment.Stage) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM followup_logs WHERE investment_id = $1 AND stage = $2)`

	var exists bool
	if err := t.tx.QueryRow(ctx, query, investmentID, stage).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check followup log: %w", err)
	}
	return exists, nil
}

func (t *scanTx) InsertFollowupLog(ctx context.Context, log *investment.FollowupLog) error {
	query := `
		INSERT INTO followup_logs (log_id, investment_id, stage, sent_on)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := t.tx.Exec(ctx, query, log.ID, log.InvestmentID, log.Stage, log.SentOn); err != nil {
		return fmt.Errorf("failed to insert followup log: %w", err)
	}
	return nil
}

func (t *scanTx) UpdateStatusAndStage(ctx context.Context, investmentID string, status investment.Status, stage investment.Stage) error {
	query := `
		UPDATE investments
		SET status = $1, current_stage = $2
		WHERE investment_id = $3
	`

	if _, err := t.tx.Exec(ctx, query, status, stage, investmentID); err != nil {
		return fmt.Errorf("failed to update investment state: %w", err)
	}
	return nil
}

func (t *scanTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback after a successful Commit is a no-op (pgx returns ErrTxClosed,
// which we swallow), so the engine can defer it on every path.
func (t *scanTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
		return err
	}
	return nil
}
