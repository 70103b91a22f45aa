package indexation

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/wonny/rentix/backend/internal/contracts"
)

// fakeStore is a minimal IndexStore keyed by series/period
type fakeStore struct {
	points map[contracts.SeriesType]map[contracts.Period]decimal.Decimal
	bases  map[contracts.SeriesType][]contracts.IndexBase
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		points: make(map[contracts.SeriesType]map[contracts.Period]decimal.Decimal),
		bases:  make(map[contracts.SeriesType][]contracts.IndexBase),
	}
}

func (f *fakeStore) put(series contracts.SeriesType, period, value string) *fakeStore {
	if f.points[series] == nil {
		f.points[series] = make(map[contracts.Period]decimal.Decimal)
	}
	f.points[series][contracts.MustParsePeriod(period)] = decimal.RequireFromString(value)
	return f
}

func (f *fakeStore) rebase(series contracts.SeriesType, start, factor string) *fakeStore {
	f.bases[series] = append(f.bases[series], contracts.IndexBase{
		Series:          series,
		BasePeriodStart: contracts.MustParsePeriod(start),
		BaseValue:       decimal.NewFromInt(100),
		ChainFactor:     decimal.RequireFromString(factor),
	})
	return f
}

func (f *fakeStore) GetIndexPoint(_ context.Context, series contracts.SeriesType, period contracts.Period) (contracts.IndexPoint, bool, error) {
	if f.err != nil {
		return contracts.IndexPoint{}, false, f.err
	}
	v, ok := f.points[series][period]
	if !ok {
		return contracts.IndexPoint{}, false, nil
	}
	return contracts.IndexPoint{Series: series, Period: period, Value: v, Official: true}, true, nil
}

func (f *fakeStore) ListBases(_ context.Context, series contracts.SeriesType) ([]contracts.IndexBase, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bases[series], nil
}

var errStoreDown = errors.New("store unavailable")
