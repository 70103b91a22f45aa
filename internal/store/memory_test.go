package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rentix/backend/internal/contracts"
)

func testContract(id string) *contracts.Contract {
	return &contracts.Contract{
		ID:         id,
		Name:       "Herzl 12, Tel Aviv",
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		PaymentDay: 1,
		Frequency:  contracts.FrequencyMonthly,
		Linkage: &contracts.LinkageSpec{
			Series:         contracts.SeriesCPI,
			BaseDate:       contracts.MustParsePeriod("2023-12"),
			BaseRentAmount: decimal.NewFromInt(5000),
		},
		Notice: contracts.NoticePolicy{EndDate: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)},
	}
}

func TestMemoryStore_Contracts(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.SaveContract(ctx, testContract("c-2")))
	require.NoError(t, m.SaveContract(ctx, testContract("c-1")))
	ended := testContract("c-3")
	ended.Status = contracts.ContractExpired
	require.NoError(t, m.SaveContract(ctx, ended))

	active, err := m.ListActiveContracts(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "c-1", active[0].ID)

	now := time.Now()
	require.NoError(t, m.UpdateCurrentRent(ctx, "c-1", 5050, now))
	got, err := m.GetContract(ctx, "c-1")
	require.NoError(t, err)
	assert.True(t, got.Linkage.CurrentRentAmount.Equal(decimal.NewFromInt(5050)))

	_, err = m.GetContract(ctx, "missing")
	assert.ErrorIs(t, err, ErrContractNotFound)
	assert.ErrorIs(t, m.UpdateCurrentRent(ctx, "missing", 1, now), ErrContractNotFound)

	bad := testContract("")
	assert.ErrorIs(t, m.SaveContract(ctx, bad), contracts.ErrInvalidInput)
}

func TestMemoryStore_SaveCopiesContract(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	c := testContract("c-1")
	require.NoError(t, m.SaveContract(ctx, c))
	c.Linkage.BaseRentAmount = decimal.NewFromInt(1)

	got, err := m.GetContract(ctx, "c-1")
	require.NoError(t, err)
	assert.True(t, got.Linkage.BaseRentAmount.Equal(decimal.NewFromInt(5000)))
}

func TestMemoryStore_Audit(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	for _, id := range []string{"x", "y", "z"} {
		require.NoError(t, m.SaveCalculation(ctx, &contracts.Calculation{ID: id, ContractID: "c-1"}))
	}
	require.NoError(t, m.SaveCalculation(ctx, &contracts.Calculation{ID: "other", ContractID: "c-2"}))

	got, err := m.ListCalculations(ctx, "c-1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "z", got[0].ID)
	assert.Equal(t, "y", got[1].ID)

	alert := &contracts.DeadlineAlert{ContractID: "c-1", Kind: "decision", Deadline: time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC), Window: "overdue"}
	require.NoError(t, m.SaveDeadlineAlert(ctx, alert))
	require.NoError(t, m.SaveDeadlineAlert(ctx, alert))
	assert.Len(t, m.Alerts(), 1)
}

func TestMemoryStore_PutRawKeepsZero(t *testing.T) {
	m := NewMemoryStore()
	m.PutRaw(contracts.IndexPoint{Series: contracts.SeriesCPI, Period: contracts.MustParsePeriod("2024-01"), Value: decimal.Zero})

	p, found, err := m.GetIndexPoint(context.Background(), contracts.SeriesCPI, contracts.MustParsePeriod("2024-01"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, p.Value.IsZero())
}
