// internal/repository/postgres/investment_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"postsaathi-service/internal/domain/investment"
	xerrors "postsaathi-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type InvestmentRepository struct {
	db *pgxpool.Pool
}

func NewInvestmentRepository(db *pgxpool.Pool) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

// Create inserts a new investment.
func (r *InvestmentRepository) Create(ctx context.Context, inv *investment.Investment) error {
	query := `
		INSERT INTO investments (
			investment_id, customer_id, scheme_type, principal,
			start_date, maturity_date, status, current_stage
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		ctx, query,
		inv.ID, inv.CustomerID, inv.SchemeType, inv.Principal,
		inv.StartDate, inv.MaturityDate, inv.Status, inv.CurrentStage,
	)

	if err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}

	return nil
}

const investmentColumns = `
	investment_id, customer_id, scheme_type, principal,
	start_date, maturity_date, status, current_stage
`

func scanInvestment(row pgx.Row) (*investment.Investment, error) {
	var inv investment.Investment
	err := row.Scan(
		&inv.ID, &inv.CustomerID, &inv.SchemeType, &inv.Principal,
		&inv.StartDate, &inv.MaturityDate, &inv.Status, &inv.CurrentStage,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindByID retrieves an investment by ID.
func (r *InvestmentRepository) FindByID(ctx context.Context, id string) (*investment.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE investment_id = $1`

	inv, err := scanInvestment(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find investment: %w", err)
	}

	return inv, nil
}

// ListByCustomer retrieves all investments of one customer.
func (r *InvestmentRepository) ListByCustomer(ctx context.Context, customerID string) ([]*investment.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE customer_id = $1
		ORDER BY maturity_date
	`
	return r.list(ctx, query, customerID)
}

// ListByAgent retrieves all investments across an agent's customers with an
// explicit join, no relationship traversal.
func (r *InvestmentRepository) ListByAgent(ctx context.Context, agentID string) ([]*investment.Investment, error) {
	query := `
		SELECT i.investment_id, i.customer_id, i.scheme_type, i.principal,
		       i.start_date, i.maturity_date, i.status, i.current_stage
		FROM investments i
		JOIN customers c ON i.customer_id = c.customer_id
		WHERE c.agent_id = $1
		ORDER BY i.maturity_date
	`
	return r.list(ctx, query, agentID)
}

func (r *InvestmentRepository) list(ctx context.Context, query string, arg any) ([]*investment.Investment, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	defer rows.Close()

	var investments []*investment.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate investments: %w", err)
	}

	return investments, nil
}

// CountByAgent counts investments across an agent's customers; empty agentID
// counts system-wide.
func (r *InvestmentRepository) CountByAgent(ctx context.Context, agentID string) (int64, error) {
	var count int64
	var err error

	if agentID == "" {
		err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM investments`).Scan(&count)
	} else {
		query := `
			SELECT COUNT(*)
			FROM investments i
			JOIN customers c ON i.customer_id = c.customer_id
			WHERE c.agent_id = $1
		`
		err = r.db.QueryRow(ctx, query, agentID).Scan(&count)
	}

	if err != nil {
		return 0, fmt.Errorf("failed to count investments: %w", err)
	}
	return count, nil
}

// SumPrincipalByAgent totals principal across an agent's customers; empty
// agentID totals system-wide.
func (r *InvestmentRepository) SumPrincipalByAgent(ctx context.Context, agentID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	var err error

	if agentID == "" {
		err = r.db.QueryRow(ctx, `SELECT COALESCE(SUM(principal), 0) FROM investments`).Scan(&total)
	} else {
		query := `
			SELECT COALESCE(SUM(i.principal), 0)
			FROM investments i
			JOIN customers c ON i.customer_id = c.customer_id
			WHERE c.agent_id = $1
		`
		err = r.db.QueryRow(ctx, query, agentID).Scan(&total)
	}

	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum principal: %w", err)
	}
	return total, nil
}

// CountPendingFollowupsByAgent counts investments currently in FOLLOWUP;
// empty agentID counts system-wide.
func (r *InvestmentRepository) CountPendingFollowupsByAgent(ctx context.Context, agentID string) (int64, error) {
	var count int64
	var err error

	if agentID == "" {
		err = r.db.QueryRow(ctx,
			`SELECT COUNT(*) FROM investments WHERE status = $1`,
			investment.StatusFollowup,
		).Scan(&count)
	} else {
		query := `
			SELECT COUNT(*)
			FROM investments i
			JOIN customers c ON i.customer_id = c.customer_id
			WHERE c.agent_id = $1 AND i.status = $2
		`
		err = r.db.QueryRow(ctx, query, agentID, investment.StatusFollowup).Scan(&count)
	}

	if err != nil {
		return 0, fmt.Errorf("failed to count pending followups: %w", err)
	}
	return count, nil
}
