package feed

import (
	"context"
	"fmt"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/pkg/logger"
)

// Invalidator drops cached values of a series after new points land
type Invalidator interface {
	Invalidate(ctx context.Context, series contracts.SeriesType) error
}

// IngestResult summarises one series ingestion
type IngestResult struct {
	Series   contracts.SeriesType `json:"series"`
	Source   string               `json:"source"`
	Fetched  int                  `json:"fetched"`
	Appended int                  `json:"appended"`
	Skipped  int                  `json:"skipped"`
	Latest   *contracts.Period    `json:"latest,omitempty"`
}

// Ingester appends fetched points to the repository. A point whose value
// already is the official canonical value is skipped, so reruns do not grow
// the table.
type Ingester struct {
	router      *Router
	repo        contracts.IndexRepository
	invalidator Invalidator
	logger      *logger.Logger
}

// NewIngester creates an ingester; invalidator may be nil
func NewIngester(router *Router, repo contracts.IndexRepository, invalidator Invalidator, log *logger.Logger) *Ingester {
	if log == nil {
		log = logger.Nop()
	}
	return &Ingester{
		router:      router,
		repo:        repo,
		invalidator: invalidator,
		logger:      log.WithComponent("ingest"),
	}
}

// Ingest fetches and stores one series
func (g *Ingester) Ingest(ctx context.Context, series contracts.SeriesType) (*IngestResult, error) {
	src, err := g.router.For(series)
	if err != nil {
		return nil, err
	}

	points, err := src.Fetch(ctx, series)
	if err != nil {
		return nil, err
	}

	res := &IngestResult{Series: series, Source: src.Name(), Fetched: len(points)}
	for _, p := range points {
		current, found, err := g.repo.GetIndexPoint(ctx, p.Series, p.Period)
		if err != nil {
			return res, fmt.Errorf("read %s %s: %w", p.Series, p.Period, err)
		}
		if found && current.Official && current.Value.Equal(p.Value) {
			res.Skipped++
		} else {
			if err := g.repo.AppendIndexPoint(ctx, p); err != nil {
				return res, fmt.Errorf("append %s %s: %w", p.Series, p.Period, err)
			}
			res.Appended++
		}

		if res.Latest == nil || p.Period.After(*res.Latest) {
			period := p.Period
			res.Latest = &period
		}
	}

	if res.Appended > 0 && g.invalidator != nil {
		if err := g.invalidator.Invalidate(ctx, series); err != nil {
			g.logger.WithError(err).Warn("cache invalidation failed")
		}
	}

	g.logger.WithFields(map[string]interface{}{
		"series":   series,
		"source":   res.Source,
		"fetched":  res.Fetched,
		"appended": res.Appended,
		"skipped":  res.Skipped,
	}).Info("index ingested")
	return res, nil
}

// IngestAll ingests every series, continuing past failures
func (g *Ingester) IngestAll(ctx context.Context, series []contracts.SeriesType) ([]*IngestResult, map[contracts.SeriesType]error) {
	var results []*IngestResult
	failures := make(map[contracts.SeriesType]error)

	for _, s := range series {
		res, err := g.Ingest(ctx, s)
		if err != nil {
			failures[s] = err
			g.logger.WithError(err).WithField("series", s).Error("index ingestion failed")
			continue
		}
		results = append(results, res)
	}
	return results, failures
}
