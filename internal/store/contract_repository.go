package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/rentix/backend/internal/contracts"
)

// ErrContractNotFound is returned when a contract id does not exist
var ErrContractNotFound = errors.New("contract not found")

// ContractRepository implements contracts.ContractRepository on PostgreSQL
type ContractRepository struct {
	pool *pgxpool.Pool
}

// NewContractRepository creates a new contract repository
func NewContractRepository(pool *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{pool: pool}
}

const contractColumns = `id, name, start_date, end_date, payment_day, frequency, status, linkage, notice, rent_steps, updated_at`

// GetContract loads one contract by id
func (r *ContractRepository) GetContract(ctx context.Context, id string) (*contracts.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM rentix.contracts WHERE id = $1`

	c, err := scanContract(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query contract %s: %w", id, err)
	}
	return c, nil
}

// ListActiveContracts returns every contract with status active, by id
func (r *ContractRepository) ListActiveContracts(ctx context.Context) ([]*contracts.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM rentix.contracts WHERE status = 'active' ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active contracts: %w", err)
	}
	defer rows.Close()

	var out []*contracts.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveContract inserts or replaces a contract
func (r *ContractRepository) SaveContract(ctx context.Context, c *contracts.Contract) error {
	if err := c.Validate(); err != nil {
		return err
	}

	linkage, err := json.Marshal(c.Linkage)
	if err != nil {
		return fmt.Errorf("marshal linkage: %w", err)
	}
	notice, err := json.Marshal(c.Notice)
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}
	steps, err := json.Marshal(c.RentSteps)
	if err != nil {
		return fmt.Errorf("marshal rent steps: %w", err)
	}
	status := c.Status
	if status == "" {
		status = contracts.ContractActive
	}

	query := `
		INSERT INTO rentix.contracts (id, name, start_date, end_date, payment_day, frequency, status, linkage, notice, rent_steps, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			payment_day = EXCLUDED.payment_day,
			frequency = EXCLUDED.frequency,
			status = EXCLUDED.status,
			linkage = EXCLUDED.linkage,
			notice = EXCLUDED.notice,
			rent_steps = EXCLUDED.rent_steps,
			updated_at = NOW()
	`

	_, err = r.pool.Exec(ctx, query,
		c.ID, c.Name, c.StartDate, c.EndDate, c.PaymentDay, string(c.Frequency), string(status),
		linkage, notice, steps,
	)
	if err != nil {
		return fmt.Errorf("upsert contract %s: %w", c.ID, err)
	}
	return nil
}

// UpdateCurrentRent stores the derived current rent after a recompute
func (r *ContractRepository) UpdateCurrentRent(ctx context.Context, id string, rent int64, at time.Time) error {
	query := `
		UPDATE rentix.contracts
		SET current_rent = $2,
		    linkage = CASE WHEN jsonb_typeof(linkage) = 'object'
		        THEN jsonb_set(linkage, '{current_rent_amount}', to_jsonb($2::text))
		        ELSE linkage END,
		    updated_at = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, rent, at)
	if err != nil {
		return fmt.Errorf("update current rent %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrContractNotFound, id)
	}
	return nil
}

func scanContract(row pgx.Row) (*contracts.Contract, error) {
	var (
		c                      contracts.Contract
		frequency, status      string
		linkage, notice, steps []byte
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.StartDate, &c.EndDate, &c.PaymentDay, &frequency, &status,
		&linkage, &notice, &steps, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Frequency = contracts.PaymentFrequency(frequency)
	c.Status = contracts.ContractStatus(status)

	if len(linkage) > 0 && string(linkage) != "null" {
		c.Linkage = &contracts.LinkageSpec{}
		if err := json.Unmarshal(linkage, c.Linkage); err != nil {
			return nil, fmt.Errorf("unmarshal linkage: %w", err)
		}
	}
	if err := json.Unmarshal(notice, &c.Notice); err != nil {
		return nil, fmt.Errorf("unmarshal notice: %w", err)
	}
	if err := json.Unmarshal(steps, &c.RentSteps); err != nil {
		return nil, fmt.Errorf("unmarshal rent steps: %w", err)
	}
	return &c, nil
}
