package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/internal/deadline"
	"github.com/wonny/rentix/backend/pkg/logger"
)

// DeadlineScanJob records an alert for every deadline inside its notice
// window or overdue. Alerts are idempotent per (contract, kind, date, window).
type DeadlineScanJob struct {
	repo     contracts.ContractRepository
	audit    contracts.AuditRepository
	planner  *deadline.Planner
	schedule string
	now      func() time.Time
	logger   *logger.Logger
}

// NewDeadlineScanJob creates a new deadline scan job
func NewDeadlineScanJob(repo contracts.ContractRepository, audit contracts.AuditRepository, planner *deadline.Planner, schedule string, log *logger.Logger) *DeadlineScanJob {
	return &DeadlineScanJob{
		repo:     repo,
		audit:    audit,
		planner:  planner,
		schedule: schedule,
		now:      time.Now,
		logger:   log,
	}
}

// Name returns the job name
func (j *DeadlineScanJob) Name() string {
	return "deadline_scan"
}

// Schedule returns the cron schedule
func (j *DeadlineScanJob) Schedule() string {
	return j.schedule
}

// Run plans every active contract and saves alerts
func (j *DeadlineScanJob) Run(ctx context.Context) error {
	list, err := j.repo.ListActiveContracts(ctx)
	if err != nil {
		return fmt.Errorf("list active contracts: %w", err)
	}

	now := j.now()
	today := deadline.Date(now)
	alerts, invalid := 0, 0

	for _, c := range list {
		policy := c.Notice
		if policy.EndDate.IsZero() {
			policy.EndDate = c.EndDate
		}

		plan, err := j.planner.Plan(policy, today)
		if err != nil {
			invalid++
			j.logger.WithError(err).WithField("contract_id", c.ID).Warn("Cannot plan deadlines")
			continue
		}

		for _, d := range plan.Deadlines() {
			if !d.Window.NeedsAttention() {
				continue
			}
			alert := &contracts.DeadlineAlert{
				ContractID: c.ID,
				Kind:       string(d.Kind),
				Deadline:   d.Date,
				Window:     string(d.Window),
				DaysLeft:   d.DaysLeft,
				CreatedAt:  now.UTC(),
			}
			if err := j.audit.SaveDeadlineAlert(ctx, alert); err != nil {
				return fmt.Errorf("save alert for %s: %w", c.ID, err)
			}
			alerts++
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"contracts": len(list),
		"alerts":    alerts,
		"invalid":   invalid,
	}).Info("Deadline scan completed")
	return nil
}
