package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/rentix/backend/internal/contracts"
)

type pointKey struct {
	series contracts.SeriesType
	period contracts.Period
}

// MemoryStore keeps index data, contracts and audit records in process.
// Used by tests, the CLI without a database, and as a seedable fixture.
type MemoryStore struct {
	mu           sync.RWMutex
	points       map[pointKey][]contracts.IndexPoint
	bases        map[contracts.SeriesType][]contracts.IndexBase
	contracts    map[string]*contracts.Contract
	calculations []*contracts.Calculation
	alerts       map[string]*contracts.DeadlineAlert
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		points:    make(map[pointKey][]contracts.IndexPoint),
		bases:     make(map[contracts.SeriesType][]contracts.IndexBase),
		contracts: make(map[string]*contracts.Contract),
		alerts:    make(map[string]*contracts.DeadlineAlert),
	}
}

// GetIndexPoint implements contracts.IndexStore
func (m *MemoryStore) GetIndexPoint(_ context.Context, series contracts.SeriesType, period contracts.Period) (contracts.IndexPoint, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := contracts.CanonicalPoint(m.points[pointKey{series, period}])
	return p, ok, nil
}

// ListBases implements contracts.IndexStore
func (m *MemoryStore) ListBases(_ context.Context, series contracts.SeriesType) ([]contracts.IndexBase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]contracts.IndexBase, len(m.bases[series]))
	copy(out, m.bases[series])
	return out, nil
}

// AppendIndexPoint implements contracts.IndexWriter
func (m *MemoryStore) AppendIndexPoint(_ context.Context, p contracts.IndexPoint) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.RecordedAt.IsZero() {
		p.RecordedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	k := pointKey{p.Series, p.Period}
	m.points[k] = append(m.points[k], p)
	return nil
}

// PutRaw appends a point without validation (seeding degenerate data in tests)
func (m *MemoryStore) PutRaw(p contracts.IndexPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := pointKey{p.Series, p.Period}
	m.points[k] = append(m.points[k], p)
}

// UpsertBase implements contracts.IndexWriter
func (m *MemoryStore) UpsertBase(_ context.Context, b contracts.IndexBase) error {
	if !b.ChainFactor.IsPositive() {
		return contracts.Invalid("chain_factor", "must be positive, got %s", b.ChainFactor)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	bases := m.bases[b.Series]
	for i := range bases {
		if bases[i].BasePeriodStart == b.BasePeriodStart {
			bases[i] = b
			return nil
		}
	}
	bases = append(bases, b)
	contracts.SortBases(bases)
	m.bases[b.Series] = bases
	return nil
}

// LatestPeriod returns the newest month with any point for a series
func (m *MemoryStore) LatestPeriod(_ context.Context, series contracts.SeriesType) (contracts.Period, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest contracts.Period
	found := false
	for k := range m.points {
		if k.series == series && (!found || k.period.After(latest)) {
			latest, found = k.period, true
		}
	}
	return latest, found, nil
}

// GetContract implements contracts.ContractRepository
func (m *MemoryStore) GetContract(_ context.Context, id string) (*contracts.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.contracts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, id)
	}
	cp := *c
	return &cp, nil
}

// ListActiveContracts implements contracts.ContractRepository
func (m *MemoryStore) ListActiveContracts(_ context.Context) ([]*contracts.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*contracts.Contract
	for _, c := range m.contracts {
		if c.IsActive() {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveContract implements contracts.ContractRepository
func (m *MemoryStore) SaveContract(_ context.Context, c *contracts.Contract) error {
	if err := c.Validate(); err != nil {
		return err
	}
	cp := *c
	if cp.Linkage != nil {
		l := *cp.Linkage
		cp.Linkage = &l
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts[c.ID] = &cp
	return nil
}

// UpdateCurrentRent implements contracts.ContractRepository
func (m *MemoryStore) UpdateCurrentRent(_ context.Context, id string, rent int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contracts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrContractNotFound, id)
	}
	if c.Linkage != nil {
		l := *c.Linkage
		l.CurrentRentAmount = decimal.NewFromInt(rent)
		c.Linkage = &l
	}
	c.UpdatedAt = at
	return nil
}

// SaveCalculation implements contracts.AuditRepository
func (m *MemoryStore) SaveCalculation(_ context.Context, calc *contracts.Calculation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calculations = append(m.calculations, calc)
	return nil
}

// ListCalculations implements contracts.AuditRepository (newest first)
func (m *MemoryStore) ListCalculations(_ context.Context, contractID string, limit int) ([]*contracts.Calculation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*contracts.Calculation
	for i := len(m.calculations) - 1; i >= 0; i-- {
		if m.calculations[i].ContractID == contractID {
			out = append(out, m.calculations[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// SaveDeadlineAlert implements contracts.AuditRepository; duplicates are ignored
func (m *MemoryStore) SaveDeadlineAlert(_ context.Context, alert *contracts.DeadlineAlert) error {
	key := fmt.Sprintf("%s|%s|%s|%s", alert.ContractID, alert.Kind, alert.Deadline.Format("2006-01-02"), alert.Window)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.alerts[key]; !ok {
		m.alerts[key] = alert
	}
	return nil
}

// Alerts returns every stored alert (tests, CLI output)
func (m *MemoryStore) Alerts() []*contracts.DeadlineAlert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*contracts.DeadlineAlert, 0, len(m.alerts))
	for _, a := range m.alerts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ContractID != out[j].ContractID {
			return out[i].ContractID < out[j].ContractID
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}
