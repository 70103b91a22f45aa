package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/rentix/backend/internal/contracts"
)

// AuditRepository implements contracts.AuditRepository on PostgreSQL
// ⭐ SSOT: 계산 감사 기록 저장소
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// SaveCalculation stores the full record as JSON next to its lookup columns
func (r *AuditRepository) SaveCalculation(ctx context.Context, calc *contracts.Calculation) error {
	payload, err := json.Marshal(calc)
	if err != nil {
		return fmt.Errorf("marshal calculation: %w", err)
	}

	query := `
		INSERT INTO rentix.calculations (id, contract_id, series, base_period, current_period, adjusted_rent, policy_hash, payload, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = r.pool.Exec(ctx, query,
		calc.ID, calc.ContractID, string(calc.Series), calc.BasePeriod.Start(), calc.CurrentPeriod.Start(),
		calc.AdjustedRent, calc.PolicyHash, payload, calc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert calculation: %w", err)
	}
	return nil
}

// ListCalculations returns the newest records of a contract first
func (r *AuditRepository) ListCalculations(ctx context.Context, contractID string, limit int) ([]*contracts.Calculation, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT payload
		FROM rentix.calculations
		WHERE contract_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, contractID, limit)
	if err != nil {
		return nil, fmt.Errorf("query calculations: %w", err)
	}
	defer rows.Close()

	var out []*contracts.Calculation
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan calculation: %w", err)
		}
		var calc contracts.Calculation
		if err := json.Unmarshal(payload, &calc); err != nil {
			return nil, fmt.Errorf("unmarshal calculation: %w", err)
		}
		out = append(out, &calc)
	}
	return out, rows.Err()
}

// SaveDeadlineAlert records an alert once per contract/kind/deadline/window
func (r *AuditRepository) SaveDeadlineAlert(ctx context.Context, alert *contracts.DeadlineAlert) error {
	query := `
		INSERT INTO rentix.deadline_alerts (contract_id, kind, deadline, window_state, days_left, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (contract_id, kind, deadline, window_state) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		alert.ContractID, alert.Kind, alert.Deadline, alert.Window, alert.DaysLeft, alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert deadline alert: %w", err)
	}
	return nil
}
