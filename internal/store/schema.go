package store

// PostgresSchema creates the rentix schema; every statement is idempotent
var PostgresSchema = []string{
	`CREATE SCHEMA IF NOT EXISTS rentix`,
	`CREATE TABLE IF NOT EXISTS rentix.index_points (
		id          BIGSERIAL PRIMARY KEY,
		series      TEXT        NOT NULL,
		period      DATE        NOT NULL,
		value       NUMERIC     NOT NULL CHECK (value > 0),
		source      TEXT        NOT NULL,
		official    BOOLEAN     NOT NULL DEFAULT FALSE,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_index_points_series_period
		ON rentix.index_points (series, period)`,
	`CREATE TABLE IF NOT EXISTS rentix.index_bases (
		series            TEXT    NOT NULL,
		base_period_start DATE    NOT NULL,
		base_value        NUMERIC NOT NULL,
		chain_factor      NUMERIC NOT NULL CHECK (chain_factor > 0),
		description       TEXT    NOT NULL DEFAULT '',
		PRIMARY KEY (series, base_period_start)
	)`,
	`CREATE TABLE IF NOT EXISTS rentix.contracts (
		id           TEXT PRIMARY KEY,
		name         TEXT        NOT NULL DEFAULT '',
		start_date   DATE        NOT NULL,
		end_date     DATE        NOT NULL,
		payment_day  INT         NOT NULL DEFAULT 1,
		frequency    TEXT        NOT NULL DEFAULT 'monthly',
		status       TEXT        NOT NULL DEFAULT 'active',
		linkage      JSONB,
		notice       JSONB       NOT NULL DEFAULT '{}',
		rent_steps   JSONB       NOT NULL DEFAULT '[]',
		current_rent BIGINT,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS rentix.calculations (
		id             UUID PRIMARY KEY,
		contract_id    TEXT,
		series         TEXT        NOT NULL,
		base_period    DATE        NOT NULL,
		current_period DATE        NOT NULL,
		adjusted_rent  BIGINT      NOT NULL,
		policy_hash    TEXT        NOT NULL DEFAULT '',
		payload        JSONB       NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_calculations_contract
		ON rentix.calculations (contract_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS rentix.deadline_alerts (
		contract_id  TEXT        NOT NULL,
		kind         TEXT        NOT NULL,
		deadline     DATE        NOT NULL,
		window_state TEXT        NOT NULL,
		days_left    INT         NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (contract_id, kind, deadline, window_state)
	)`,
}

// SQLiteSchema mirrors the index tables for the offline store.
// Values stay TEXT so decimals round-trip exactly.
var SQLiteSchema = []string{
	`CREATE TABLE IF NOT EXISTS index_points (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		series      TEXT    NOT NULL,
		period      TEXT    NOT NULL,
		value       TEXT    NOT NULL,
		source      TEXT    NOT NULL,
		official    INTEGER NOT NULL DEFAULT 0,
		recorded_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_index_points_series_period
		ON index_points (series, period)`,
	`CREATE TABLE IF NOT EXISTS index_bases (
		series            TEXT NOT NULL,
		base_period_start TEXT NOT NULL,
		base_value        TEXT NOT NULL,
		chain_factor      TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (series, base_period_start)
	)`,
	`CREATE TABLE IF NOT EXISTS calculations (
		id          TEXT PRIMARY KEY,
		contract_id TEXT,
		payload     TEXT    NOT NULL,
		created_at  INTEGER NOT NULL
	)`,
}
