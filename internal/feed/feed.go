// Package feed fetches published index values from the statistics bureau
// (CBS price indices) and the central bank (BOI exchange rates) and appends
// them to the index store.
package feed

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/rentix/backend/internal/contracts"
)

// Source fetches recent points for the series it supports
type Source interface {
	Name() string
	Supports(series contracts.SeriesType) bool
	Fetch(ctx context.Context, series contracts.SeriesType) ([]contracts.IndexPoint, error)
}

// DefaultCBSSeries maps price indices to CBS series codes
var DefaultCBSSeries = map[contracts.SeriesType]string{
	contracts.SeriesCPI:          "120010", // 소비자물가지수 (일반)
	contracts.SeriesHousing:      "40010",
	contracts.SeriesConstruction: "200010",
}

// DefaultBOICurrencies maps exchange-rate series to BOI currency codes
var DefaultBOICurrencies = map[contracts.SeriesType]string{
	contracts.SeriesUSD: "US",
	contracts.SeriesEUR: "EU",
}

// Router picks the source responsible for a series
type Router struct {
	sources []Source
}

// NewRouter tries sources in order
func NewRouter(sources ...Source) *Router {
	return &Router{sources: sources}
}

// For returns the first source supporting series
func (r *Router) For(series contracts.SeriesType) (Source, error) {
	for _, s := range r.sources {
		if s.Supports(series) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no feed source for series %q", series)
}

// periodFromDate takes "2024-01", "2024-01-15" or "2024-01-15T00:00:00"
func periodFromDate(date string) (contracts.Period, error) {
	date = strings.TrimSpace(date)
	if len(date) < 7 {
		return contracts.Period{}, fmt.Errorf("date %q too short", date)
	}
	return contracts.ParsePeriod(date[:7])
}
