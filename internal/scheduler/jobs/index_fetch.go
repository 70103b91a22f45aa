package jobs

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/internal/feed"
	"github.com/wonny/rentix/backend/pkg/logger"
)

// IndexFetchJob pulls newly published index values into the store
type IndexFetchJob struct {
	ingester *feed.Ingester
	series   []contracts.SeriesType
	schedule string
	logger   *logger.Logger
}

// NewIndexFetchJob creates a new index fetch job
func NewIndexFetchJob(ingester *feed.Ingester, series []contracts.SeriesType, schedule string, log *logger.Logger) *IndexFetchJob {
	return &IndexFetchJob{
		ingester: ingester,
		series:   series,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *IndexFetchJob) Name() string {
	return "index_fetch"
}

// Schedule returns the cron schedule
func (j *IndexFetchJob) Schedule() string {
	return j.schedule
}

// Retry: 외부 API 호출이므로 재시도
func (j *IndexFetchJob) Retry() bool {
	return true
}

// Run fetches every configured series; any failed series fails the run
func (j *IndexFetchJob) Run(ctx context.Context) error {
	results, failures := j.ingester.IngestAll(ctx, j.series)

	appended := 0
	for _, r := range results {
		appended += r.Appended
	}
	j.logger.WithFields(map[string]interface{}{
		"series":   len(j.series),
		"appended": appended,
		"failed":   len(failures),
	}).Info("Index fetch completed")

	if len(failures) == 0 {
		return nil
	}
	names := make([]string, 0, len(failures))
	for s, err := range failures {
		names = append(names, fmt.Sprintf("%s: %v", s, err))
	}
	sort.Strings(names)
	return fmt.Errorf("index fetch failed for %d series: %s", len(failures), strings.Join(names, "; "))
}
