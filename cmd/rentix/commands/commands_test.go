package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/pkg/config"
)

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "postgresql://rentix:***@db:5432/rentix",
		maskPassword("postgresql://rentix:secret@db:5432/rentix"))
	assert.Equal(t, "postgresql://db:5432/rentix", maskPassword("postgresql://db:5432/rentix"))
	assert.Equal(t, "postgresql://rentix@db:5432/rentix", maskPassword("postgresql://rentix@db:5432/rentix"))
	assert.Equal(t, "postgres://ops%40corp:***@db/rentix?sslmode=disable",
		maskPassword("postgres://ops%40corp:p%40ss@db/rentix?sslmode=disable"))
}

func TestStorageMode(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, "memory", storageMode(cfg))

	cfg.SQLitePath = "/tmp/rentix.db"
	assert.Equal(t, "sqlite", storageMode(cfg))

	cfg.Database.URL = "postgresql://localhost/rentix"
	assert.Equal(t, "postgres", storageMode(cfg))
}

func TestParseTerms(t *testing.T) {
	calcPartial, calcCeiling, calcFloor = "50", "", true
	t.Cleanup(func() { calcPartial, calcCeiling, calcFloor = "", "", false })

	terms, err := parseTerms()
	require.NoError(t, err)
	assert.True(t, terms.BaseIsFloor)
	assert.True(t, terms.PartialPct.Valid)
	assert.Equal(t, "50", terms.PartialPct.Decimal.String())
	assert.False(t, terms.AnnualCeilingPct.Valid)

	calcPartial = "150"
	_, err = parseTerms()
	assert.ErrorIs(t, err, contracts.ErrInvalidInput)

	calcPartial, calcCeiling = "", "abc"
	_, err = parseTerms()
	assert.ErrorIs(t, err, contracts.ErrInvalidInput)
}
