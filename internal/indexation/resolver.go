// Package indexation computes index-linked rent.
//
// The resolver produces an exact ratio between two months of a series,
// compensating for every rebasing of the series in between. Adjusted rent is
// derived from that ratio with a single half-up rounding at the end.
package indexation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/pkg/logger"
)

// Resolution is a resolved ratio together with the inputs that produced it
type Resolution struct {
	Series        contracts.SeriesType `json:"series"`
	BasePeriod    contracts.Period     `json:"base_period"`
	CurrentPeriod contracts.Period     `json:"current_period"`
	BaseValue     decimal.Decimal      `json:"base_value"`
	CurrentValue  decimal.Decimal      `json:"current_value"`
	// ChainFactor multiplies the value of the later period
	ChainFactor decimal.Decimal `json:"chain_factor"`
	Ratio       Ratio           `json:"ratio"`
}

// ComputeRatio is the lookup-free core of ResolveRatio.
//
// Both raw values are brought into the base that was active at the earlier of
// the two periods: the later value is multiplied by the chain factor of every
// base whose start lies in (earlier, later]. A base starting exactly at a
// period already applies to that period.
func ComputeRatio(
	series contracts.SeriesType,
	basePeriod, currentPeriod contracts.Period,
	baseValue, currentValue decimal.Decimal,
	bases []contracts.IndexBase,
) (*Resolution, error) {
	if baseValue.IsNegative() {
		return nil, contracts.Invalid("base_value", "index value must not be negative, got %s", baseValue)
	}
	if !currentValue.IsPositive() {
		return nil, contracts.Invalid("current_value", "index value must be positive, got %s", currentValue)
	}
	if err := contracts.ValidateBases(series, bases); err != nil {
		return nil, err
	}

	earlier, later := basePeriod, currentPeriod
	if currentPeriod.Before(basePeriod) {
		earlier, later = currentPeriod, basePeriod
	}
	factor := chainFactor(bases, earlier, later)

	normBase, normCurrent := baseValue, currentValue.Mul(factor)
	if currentPeriod.Before(basePeriod) {
		normBase, normCurrent = baseValue.Mul(factor), currentValue
	}
	if normBase.IsZero() {
		return nil, &contracts.ZeroBaseError{Series: series, Period: basePeriod}
	}

	return &Resolution{
		Series:        series,
		BasePeriod:    basePeriod,
		CurrentPeriod: currentPeriod,
		BaseValue:     baseValue,
		CurrentValue:  currentValue,
		ChainFactor:   factor,
		Ratio:         NewRatio(normCurrent, normBase),
	}, nil
}

// chainFactor multiplies the factors of bases starting in (earlier, later]
func chainFactor(bases []contracts.IndexBase, earlier, later contracts.Period) decimal.Decimal {
	factor := decimal.NewFromInt(1)
	for _, b := range bases {
		if b.BasePeriodStart.After(earlier) && !b.BasePeriodStart.After(later) {
			factor = factor.Mul(b.ChainFactor)
		}
	}
	return factor
}

// Resolver reads index data from an IndexStore and computes ratios.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	store  contracts.IndexStore
	logger *logger.Logger
}

// NewResolver creates a resolver over store
func NewResolver(store contracts.IndexStore, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{
		store:  store,
		logger: log.WithComponent("resolver"),
	}
}

// ResolveRatio returns the exact ratio current/base for a series
func (r *Resolver) ResolveRatio(ctx context.Context, series contracts.SeriesType, basePeriod, currentPeriod contracts.Period) (Ratio, error) {
	res, err := r.Resolve(ctx, series, basePeriod, currentPeriod)
	if err != nil {
		return Ratio{}, err
	}
	return res.Ratio, nil
}

// Resolve is ResolveRatio keeping the inputs for audit and display
func (r *Resolver) Resolve(ctx context.Context, series contracts.SeriesType, basePeriod, currentPeriod contracts.Period) (*Resolution, error) {
	if !series.Valid() {
		return nil, contracts.Invalid("series", "unknown series %q", series)
	}
	if basePeriod.IsZero() || currentPeriod.IsZero() {
		return nil, contracts.Invalid("period", "base and current period are required")
	}

	basePoint, err := r.point(ctx, series, basePeriod)
	if err != nil {
		return nil, err
	}
	currentPoint, err := r.point(ctx, series, currentPeriod)
	if err != nil {
		return nil, err
	}

	bases, err := r.store.ListBases(ctx, series)
	if err != nil {
		return nil, fmt.Errorf("list %s bases: %w", series, err)
	}
	sorted := make([]contracts.IndexBase, len(bases))
	copy(sorted, bases)
	contracts.SortBases(sorted)

	res, err := ComputeRatio(series, basePeriod, currentPeriod, basePoint.Value, currentPoint.Value, sorted)
	if err != nil {
		return nil, err
	}

	r.logger.WithFields(map[string]interface{}{
		"series":  series,
		"base":    basePeriod.String(),
		"current": currentPeriod.String(),
		"chain":   res.ChainFactor.String(),
		"ratio":   res.Ratio.String(),
	}).Debug("ratio resolved")

	return res, nil
}

func (r *Resolver) point(ctx context.Context, series contracts.SeriesType, period contracts.Period) (contracts.IndexPoint, error) {
	p, found, err := r.store.GetIndexPoint(ctx, series, period)
	if err != nil {
		return contracts.IndexPoint{}, fmt.Errorf("get %s index %s: %w", series, period, err)
	}
	if !found {
		return contracts.IndexPoint{}, &contracts.NoDataError{Series: series, Period: period}
	}
	return p, nil
}
