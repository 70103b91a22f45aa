package contracts

import (
	"context"
	"time"
)

// IndexStore supplies published index data to the resolver.
// ⭐ SSOT: 지수 조회 인터페이스 (엔진은 이것만 의존)
type IndexStore interface {
	// GetIndexPoint returns the canonical point; found=false when none exists
	GetIndexPoint(ctx context.Context, series SeriesType, period Period) (IndexPoint, bool, error)
	// ListBases returns every base of the series, ascending by start
	ListBases(ctx context.Context, series SeriesType) ([]IndexBase, error)
}

// IndexWriter appends points and bases (feeds, corrections, seeding)
type IndexWriter interface {
	AppendIndexPoint(ctx context.Context, point IndexPoint) error
	UpsertBase(ctx context.Context, base IndexBase) error
}

// IndexRepository is a full read/write index store
type IndexRepository interface {
	IndexStore
	IndexWriter
}

// ContractRepository loads and updates contracts
type ContractRepository interface {
	GetContract(ctx context.Context, id string) (*Contract, error)
	ListActiveContracts(ctx context.Context) ([]*Contract, error)
	SaveContract(ctx context.Context, c *Contract) error
	UpdateCurrentRent(ctx context.Context, id string, rent int64, at time.Time) error
}

// AuditRepository persists calculation and alert records
type AuditRepository interface {
	SaveCalculation(ctx context.Context, calc *Calculation) error
	ListCalculations(ctx context.Context, contractID string, limit int) ([]*Calculation, error)
	SaveDeadlineAlert(ctx context.Context, alert *DeadlineAlert) error
}
