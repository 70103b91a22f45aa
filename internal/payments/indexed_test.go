package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/internal/indexation"
	"github.com/wonny/rentix/backend/internal/store"
)

type brokenStore struct{}

func (brokenStore) GetIndexPoint(context.Context, contracts.SeriesType, contracts.Period) (contracts.IndexPoint, bool, error) {
	return contracts.IndexPoint{}, false, errors.New("connection refused")
}

func (brokenStore) ListBases(context.Context, contracts.SeriesType) ([]contracts.IndexBase, error) {
	return nil, errors.New("connection refused")
}

func seeded(t *testing.T) *store.MemoryStore {
	t.Helper()
	m := store.NewMemoryStore()
	for period, value := range map[string]string{"2023-12": "100", "2024-01": "102", "2024-02": "103.5"} {
		require.NoError(t, m.AppendIndexPoint(context.Background(), contracts.IndexPoint{
			Series:   contracts.SeriesCPI,
			Period:   contracts.MustParsePeriod(period),
			Value:    decimal.RequireFromString(value),
			Source:   contracts.SourceManual,
			Official: true,
		}))
	}
	return m
}

func linkedSpec() contracts.LinkageSpec {
	return contracts.LinkageSpec{
		Series:         contracts.SeriesCPI,
		BaseDate:       contracts.MustParsePeriod("2023-12"),
		BaseRentAmount: decimal.NewFromInt(5000),
		Mode:           contracts.IndexModeRespectOf,
	}
}

func TestIndexSchedule(t *testing.T) {
	schedule, err := GenerateSchedule(ScheduleParams{
		ContractID: "c-1",
		StartDate:  day("2024-01-01"),
		EndDate:    day("2024-03-31"),
		BaseRent:   decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	require.Len(t, schedule, 3)

	calc := indexation.NewCalculator(indexation.NewResolver(seeded(t), nil), "policy")
	records, err := IndexSchedule(context.Background(), calc, linkedSpec(), schedule)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.NotNil(t, schedule[0].IndexedAmount)
	assert.Equal(t, int64(5100), *schedule[0].IndexedAmount)
	assert.Equal(t, "2024-01", schedule[0].IndexPeriod.String())
	assert.Equal(t, records[0].ID, schedule[0].CalculationID)
	assert.Equal(t, "c-1", records[0].ContractID)

	require.NotNil(t, schedule[1].IndexedAmount)
	assert.Equal(t, int64(5175), *schedule[1].IndexedAmount)

	// March not published: no guessed amount
	assert.Nil(t, schedule[2].IndexedAmount)
	assert.Nil(t, schedule[2].IndexPeriod)
	assert.Contains(t, schedule[2].IndexError, "2024-03")
}

func TestIndexSchedule_KnownMode(t *testing.T) {
	schedule, err := GenerateSchedule(ScheduleParams{
		StartDate:  day("2024-03-01"),
		EndDate:    day("2024-04-30"),
		BaseRent:   decimal.NewFromInt(5000),
		PaymentDay: 20,
	})
	require.NoError(t, err)

	spec := linkedSpec()
	spec.Mode = contracts.IndexModeKnown
	calc := indexation.NewCalculator(indexation.NewResolver(seeded(t), nil), "")

	_, err = IndexSchedule(context.Background(), calc, spec, schedule)
	require.NoError(t, err)
	// due 20 March: February is known; due 20 April: March is not in the store
	require.NotNil(t, schedule[0].IndexedAmount)
	assert.Equal(t, int64(5175), *schedule[0].IndexedAmount)
	assert.Nil(t, schedule[1].IndexedAmount)
}

func TestIndexSchedule_StoreFailureAborts(t *testing.T) {
	schedule, err := GenerateSchedule(ScheduleParams{
		StartDate: day("2024-01-01"),
		EndDate:   day("2024-02-28"),
		BaseRent:  decimal.NewFromInt(5000),
	})
	require.NoError(t, err)

	calc := indexation.NewCalculator(indexation.NewResolver(brokenStore{}, nil), "")
	_, err = IndexSchedule(context.Background(), calc, linkedSpec(), schedule)
	require.Error(t, err)
	assert.NotErrorIs(t, err, contracts.ErrNoData)
	assert.Contains(t, err.Error(), "connection refused")
}
