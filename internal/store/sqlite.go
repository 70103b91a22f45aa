package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/rentix/backend/internal/contracts"
)

// SQLiteStore is the offline index store (CLI calculations, fixtures).
// It implements contracts.IndexRepository and the calculation part of auditing.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database and creates the tables
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	for i, stmt := range SQLiteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("sqlite schema statement %d: %w", i, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// GetIndexPoint implements contracts.IndexStore
func (s *SQLiteStore) GetIndexPoint(ctx context.Context, series contracts.SeriesType, period contracts.Period) (contracts.IndexPoint, bool, error) {
	query := `
		SELECT value, source, official, recorded_at
		FROM index_points
		WHERE series = ? AND period = ?
		ORDER BY official DESC, recorded_at DESC, id DESC
		LIMIT 1
	`

	var (
		value      string
		official   int
		recordedAt int64
	)
	p := contracts.IndexPoint{Series: series, Period: period}
	err := s.db.QueryRowContext(ctx, query, string(series), period.String()).Scan(&value, &p.Source, &official, &recordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return contracts.IndexPoint{}, false, nil
	}
	if err != nil {
		return contracts.IndexPoint{}, false, fmt.Errorf("query index point: %w", err)
	}

	if p.Value, err = decimal.NewFromString(value); err != nil {
		return contracts.IndexPoint{}, false, fmt.Errorf("parse index value %q: %w", value, err)
	}
	p.Official = official == 1
	p.RecordedAt = time.Unix(0, recordedAt).UTC()
	return p, true, nil
}

// ListBases implements contracts.IndexStore
func (s *SQLiteStore) ListBases(ctx context.Context, series contracts.SeriesType) ([]contracts.IndexBase, error) {
	query := `
		SELECT base_period_start, base_value, chain_factor, description
		FROM index_bases
		WHERE series = ?
		ORDER BY base_period_start ASC
	`

	rows, err := s.db.QueryContext(ctx, query, string(series))
	if err != nil {
		return nil, fmt.Errorf("query index bases: %w", err)
	}
	defer rows.Close()

	var bases []contracts.IndexBase
	for rows.Next() {
		var start, value, factor string
		b := contracts.IndexBase{Series: series}
		if err := rows.Scan(&start, &value, &factor, &b.Description); err != nil {
			return nil, fmt.Errorf("scan index base: %w", err)
		}
		if b.BasePeriodStart, err = contracts.ParsePeriod(start); err != nil {
			return nil, err
		}
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

// AppendIndexPoint implements contracts.IndexWriter
func (s *SQLiteStore) AppendIndexPoint(ctx context.Context, p contracts.IndexPoint) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.RecordedAt.IsZero() {
		p.RecordedAt = time.Now().UTC()
	}
	official := 0
	if p.Official {
		official = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO index_points (series, period, value, source, official, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(p.Series), p.Period.String(), p.Value.String(), p.Source, official, p.RecordedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert index point: %w", err)
	}
	return nil
}

// UpsertBase implements contracts.IndexWriter
func (s *SQLiteStore) UpsertBase(ctx context.Context, b contracts.IndexBase) error {
	if !b.ChainFactor.IsPositive() {
		return contracts.Invalid("chain_factor", "must be positive, got %s", b.ChainFactor)
	}

	query := `
		INSERT INTO index_bases (series, base_period_start, base_value, chain_factor, description)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (series, base_period_start) DO UPDATE SET
			base_value = excluded.base_value,
			chain_factor = excluded.chain_factor,
			description = excluded.description
	`
	_, err := s.db.ExecContext(ctx, query,
		string(b.Series), b.BasePeriodStart.String(), b.BaseValue.String(), b.ChainFactor.String(), b.Description,
	)
	if err != nil {
		return fmt.Errorf("upsert index base: %w", err)
	}
	return nil
}

// LatestPeriod returns the newest month with any point for a series
func (s *SQLiteStore) LatestPeriod(ctx context.Context, series contracts.SeriesType) (contracts.Period, bool, error) {
	var latest sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MAX(period) FROM index_points WHERE series = ?`, string(series)).Scan(&latest)
	if err != nil {
		return contracts.Period{}, false, fmt.Errorf("query latest period: %w", err)
	}
	if !latest.Valid {
		return contracts.Period{}, false, nil
	}
	p, err := contracts.ParsePeriod(latest.String)
	if err != nil {
		return contracts.Period{}, false, err
	}
	return p, true, nil
}

// SaveCalculation stores an audit record as JSON
func (s *SQLiteStore) SaveCalculation(ctx context.Context, calc *contracts.Calculation) error {
	payload, err := json.Marshal(calc)
	if err != nil {
		return fmt.Errorf("marshal calculation: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO calculations (id, contract_id, payload, created_at) VALUES (?, ?, ?, ?)`,
		calc.ID, calc.ContractID, string(payload), calc.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert calculation: %w", err)
	}
	return nil
}

// ListCalculations returns the newest records of a contract first
func (s *SQLiteStore) ListCalculations(ctx context.Context, contractID string, limit int) ([]*contracts.Calculation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM calculations WHERE contract_id = ? ORDER BY created_at DESC LIMIT ?`,
		contractID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query calculations: %w", err)
	}
	defer rows.Close()

	var out []*contracts.Calculation
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan calculation: %w", err)
		}
		var calc contracts.Calculation
		if err := json.Unmarshal([]byte(payload), &calc); err != nil {
			return nil, fmt.Errorf("unmarshal calculation: %w", err)
		}
		out = append(out, &calc)
	}
	return out, rows.Err()
}
