package jobs

import (
	"context"
	"time"

	"github.com/wonny/rentix/backend/internal/recompute"
	"github.com/wonny/rentix/backend/pkg/logger"
)

// RecomputeJob re-derives current rents after new index data
type RecomputeJob struct {
	recomputer *recompute.Recomputer
	schedule   string
	now        func() time.Time
	logger     *logger.Logger
}

// NewRecomputeJob creates a new nightly recompute job
func NewRecomputeJob(r *recompute.Recomputer, schedule string, log *logger.Logger) *RecomputeJob {
	return &RecomputeJob{
		recomputer: r,
		schedule:   schedule,
		now:        time.Now,
		logger:     log,
	}
}

// Name returns the job name
func (j *RecomputeJob) Name() string {
	return "rent_recompute"
}

// Schedule returns the cron schedule
func (j *RecomputeJob) Schedule() string {
	return j.schedule
}

// Run recomputes all contracts; per-contract failures are logged, not returned
func (j *RecomputeJob) Run(ctx context.Context) error {
	summary, err := j.recomputer.Run(ctx, j.now())
	if err != nil {
		return err
	}

	for _, f := range summary.Failures() {
		j.logger.WithError(f.Error).WithFields(map[string]interface{}{
			"contract_id": f.ContractID,
			"outcome":     f.Outcome,
		}).Warn("Contract not recomputed")
	}
	return nil
}
