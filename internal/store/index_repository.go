// Package store implements the index, contract and audit collaborators:
// PostgreSQL (pgx), SQLite (offline), an in-memory store and a Redis
// read-through cache in front of any IndexStore.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/wonny/rentix/backend/internal/contracts"
)

// IndexRepository implements contracts.IndexRepository on PostgreSQL
// ⭐ SSOT: 지수 데이터 저장소는 여기서만
type IndexRepository struct {
	pool *pgxpool.Pool
}

// NewIndexRepository creates a new index repository
func NewIndexRepository(pool *pgxpool.Pool) *IndexRepository {
	return &IndexRepository{pool: pool}
}

// GetIndexPoint returns the canonical point for a series/month.
// official first, then newest recorded_at, then last appended (id)
func (r *IndexRepository) GetIndexPoint(ctx context.Context, series contracts.SeriesType, period contracts.Period) (contracts.IndexPoint, bool, error) {
	query := `
		SELECT value::text, source, official, recorded_at
		FROM rentix.index_points
		WHERE series = $1 AND period = $2
		ORDER BY official DESC, recorded_at DESC, id DESC
		LIMIT 1
	`

	p := contracts.IndexPoint{Series: series, Period: period}
	var value string
	err := r.pool.QueryRow(ctx, query, string(series), period.Start()).Scan(
		&value, &p.Source, &p.Official, &p.RecordedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return contracts.IndexPoint{}, false, nil
	}
	if err != nil {
		return contracts.IndexPoint{}, false, fmt.Errorf("query index point: %w", err)
	}

	if p.Value, err = decimal.NewFromString(value); err != nil {
		return contracts.IndexPoint{}, false, fmt.Errorf("parse index value %q: %w", value, err)
	}
	return p, true, nil
}

// ListBases returns every base of a series, ascending by start
func (r *IndexRepository) ListBases(ctx context.Context, series contracts.SeriesType) ([]contracts.IndexBase, error) {
	query := `
		SELECT base_period_start, base_value::text, chain_factor::text, description
		FROM rentix.index_bases
		WHERE series = $1
		ORDER BY base_period_start ASC
	`

	rows, err := r.pool.Query(ctx, query, string(series))
	if err != nil {
		return nil, fmt.Errorf("query index bases: %w", err)
	}
	defer rows.Close()

	var bases []contracts.IndexBase
	for rows.Next() {
		var (
			b             = contracts.IndexBase{Series: series}
			start         time.Time
			value, factor string
		)
		if err := rows.Scan(&start, &value, &factor, &b.Description); err != nil {
			return nil, fmt.Errorf("scan index base: %w", err)
		}
		b.BasePeriodStart = contracts.PeriodOf(start)
		if b.BaseValue, err = decimal.NewFromString(value); err != nil {
			return nil, fmt.Errorf("parse base value %q: %w", value, err)
		}
		if b.ChainFactor, err = decimal.NewFromString(factor); err != nil {
			return nil, fmt.Errorf("parse chain factor %q: %w", factor, err)
		}
		bases = append(bases, b)
	}
	return bases, rows.Err()
}

// AppendIndexPoint inserts a new point; existing points are never updated
func (r *IndexRepository) AppendIndexPoint(ctx context.Context, p contracts.IndexPoint) error {
	if err := p.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO rentix.index_points (series, period, value, source, official, recorded_at)
		VALUES ($1, $2, $3::numeric, $4, $5, COALESCE($6, NOW()))
	`

	var recordedAt interface{}
	if !p.RecordedAt.IsZero() {
		recordedAt = p.RecordedAt
	}
	_, err := r.pool.Exec(ctx, query,
		string(p.Series), p.Period.Start(), p.Value.String(), p.Source, p.Official, recordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert index point: %w", err)
	}
	return nil
}

// UpsertBase inserts or corrects a base definition
func (r *IndexRepository) UpsertBase(ctx context.Context, b contracts.IndexBase) error {
	if !b.ChainFactor.IsPositive() {
		return contracts.Invalid("chain_factor", "must be positive, got %s", b.ChainFactor)
	}

	query := `
		INSERT INTO rentix.index_bases (series, base_period_start, base_value, chain_factor, description)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5)
		ON CONFLICT (series, base_period_start) DO UPDATE SET
			base_value = EXCLUDED.base_value,
			chain_factor = EXCLUDED.chain_factor,
			description = EXCLUDED.description
	`

	_, err := r.pool.Exec(ctx, query,
		string(b.Series), b.BasePeriodStart.Start(), b.BaseValue.String(), b.ChainFactor.String(), b.Description,
	)
	if err != nil {
		return fmt.Errorf("upsert index base: %w", err)
	}
	return nil
}

// LatestPeriod returns the newest month with any point for a series
func (r *IndexRepository) LatestPeriod(ctx context.Context, series contracts.SeriesType) (contracts.Period, bool, error) {
	query := `SELECT MAX(period) FROM rentix.index_points WHERE series = $1`

	var latest *time.Time
	if err := r.pool.QueryRow(ctx, query, string(series)).Scan(&latest); err != nil {
		return contracts.Period{}, false, fmt.Errorf("query latest period: %w", err)
	}
	if latest == nil {
		return contracts.Period{}, false, nil
	}
	return contracts.PeriodOf(*latest), true, nil
}
