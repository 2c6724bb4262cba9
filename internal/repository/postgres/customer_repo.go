// internal/repository/postgres/customer_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"postsaathi-service/internal/domain/customer"
	xerrors "postsaathi-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create inserts a new customer. FullName and Mobile are expected to already
// be ciphertext tokens; this layer never encrypts or decrypts.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (
			customer_id, agent_id, full_name, mobile, consent_flag, consent_time
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		c.ID, c.AgentID, c.FullName, c.Mobile, c.ConsentFlag, c.ConsentTime,
	).Scan(&c.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// FindByID retrieves a customer by ID.
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*customer.Customer, error) {
	query := `
		SELECT customer_id, agent_id, full_name, mobile, consent_flag, consent_time, created_at
		FROM customers
		WHERE customer_id = $1
	`

	var c customer.Customer
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.AgentID, &c.FullName, &c.Mobile, &c.ConsentFlag, &c.ConsentTime, &c.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	return &c, nil
}

// ListByAgent retrieves all customers owned by an agent.
func (r *CustomerRepository) ListByAgent(ctx context.Context, agentID string) ([]*customer.Customer, error) {
	query := `
		SELECT customer_id, agent_id, full_name, mobile, consent_flag, consent_time, created_at
		FROM customers
		WHERE agent_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*customer.Customer
	for rows.Next() {
		var c customer.Customer
		if err := rows.Scan(
			&c.ID, &c.AgentID, &c.FullName, &c.Mobile, &c.ConsentFlag, &c.ConsentTime, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}

	return customers, nil
}

// CountByAgent returns the number of customers owned by an agent.
func (r *CustomerRepository) CountByAgent(ctx context.Context, agentID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE agent_id = $1`, agentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}

// Count returns the total number of customers across all agents.
func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}
