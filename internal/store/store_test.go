package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/pkg/database"
)

// indexRepo is what every backend in this package offers for index data
type indexRepo interface {
	contracts.IndexRepository
	LatestPeriod(ctx context.Context, series contracts.SeriesType) (contracts.Period, bool, error)
}

func backends(t *testing.T) map[string]indexRepo {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlite, err := NewSQLiteStore(context.Background(), db)
	require.NoError(t, err)

	return map[string]indexRepo{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func point(series contracts.SeriesType, period, value string, official bool, at time.Time) contracts.IndexPoint {
	return contracts.IndexPoint{
		Series:     series,
		Period:     contracts.MustParsePeriod(period),
		Value:      decimal.RequireFromString(value),
		Source:     contracts.SourceCBS,
		Official:   official,
		RecordedAt: at,
	}
}

func TestIndexStores_CanonicalPoint(t *testing.T) {
	t0 := time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC)

	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.AppendIndexPoint(ctx, point(contracts.SeriesCPI, "2024-01", "101.1", true, t0)))
			require.NoError(t, repo.AppendIndexPoint(ctx, point(contracts.SeriesCPI, "2024-01", "101.9", false, t0.Add(time.Hour))))
			require.NoError(t, repo.AppendIndexPoint(ctx, point(contracts.SeriesCPI, "2024-01", "101.3", true, t0.Add(time.Minute))))
			require.NoError(t, repo.AppendIndexPoint(ctx, point(contracts.SeriesCPI, "2024-01", "101.4", true, t0.Add(time.Minute))))

			got, found, err := repo.GetIndexPoint(ctx, contracts.SeriesCPI, contracts.MustParsePeriod("2024-01"))
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "101.4", got.Value.String(), "official, newest, last appended")
			assert.True(t, got.Official)

			_, found, err = repo.GetIndexPoint(ctx, contracts.SeriesCPI, contracts.MustParsePeriod("2024-02"))
			require.NoError(t, err)
			assert.False(t, found)

			_, found, err = repo.GetIndexPoint(ctx, contracts.SeriesHousing, contracts.MustParsePeriod("2024-01"))
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestIndexStores_Bases(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := func(start, factor string) contracts.IndexBase {
				return contracts.IndexBase{
					Series:          contracts.SeriesCPI,
					BasePeriodStart: contracts.MustParsePeriod(start),
					BaseValue:       decimal.NewFromInt(100),
					ChainFactor:     decimal.RequireFromString(factor),
				}
			}

			require.NoError(t, repo.UpsertBase(ctx, base("2023-01", "1.1846")))
			require.NoError(t, repo.UpsertBase(ctx, base("2021-01", "1.02")))
			// correction replaces the factor
			require.NoError(t, repo.UpsertBase(ctx, base("2021-01", "1.025")))

			bases, err := repo.ListBases(ctx, contracts.SeriesCPI)
			require.NoError(t, err)
			require.Len(t, bases, 2)
			assert.Equal(t, "2021-01", bases[0].BasePeriodStart.String())
			assert.Equal(t, "1.025", bases[0].ChainFactor.String())
			assert.Equal(t, "2023-01", bases[1].BasePeriodStart.String())

			assert.ErrorIs(t, repo.UpsertBase(ctx, base("2024-01", "0")), contracts.ErrInvalidInput)
		})
	}
}

func TestIndexStores_RejectInvalidPoint(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := repo.AppendIndexPoint(context.Background(), point(contracts.SeriesCPI, "2024-01", "0", true, time.Now()))
			assert.ErrorIs(t, err, contracts.ErrInvalidInput)
		})
	}
}

func TestIndexStores_LatestPeriod(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, found, err := repo.LatestPeriod(ctx, contracts.SeriesUSD)
			require.NoError(t, err)
			assert.False(t, found)

			for _, p := range []string{"2024-03", "2023-12", "2024-05"} {
				require.NoError(t, repo.AppendIndexPoint(ctx, point(contracts.SeriesUSD, p, "3.71", true, time.Now())))
			}
			latest, found, err := repo.LatestPeriod(ctx, contracts.SeriesUSD)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "2024-05", latest.String())
		})
	}
}

func TestSQLiteStore_Calculations(t *testing.T) {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	s, err := NewSQLiteStore(ctx, db)
	require.NoError(t, err)

	now := time.Now().UTC()
	for i, id := range []string{"a", "b"} {
		require.NoError(t, s.SaveCalculation(ctx, &contracts.Calculation{
			ID:           id,
			ContractID:   "c-1",
			Series:       contracts.SeriesCPI,
			BasePeriod:   contracts.MustParsePeriod("2024-01"),
			BaseRent:     decimal.NewFromInt(5000),
			AdjustedRent: int64(5050 + i),
			CreatedAt:    now.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := s.ListCalculations(ctx, "c-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, int64(5051), got[0].AdjustedRent)
	assert.True(t, got[0].BaseRent.Equal(decimal.NewFromInt(5000)))
	assert.True(t, got[0].CurrentPeriod.IsZero(), "unset period survives the payload round trip")
}
