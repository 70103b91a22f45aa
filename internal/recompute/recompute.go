// Package recompute re-derives the current rent of every linked contract
// from the latest published index and records each calculation.
package recompute

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/internal/indexation"
	"github.com/wonny/rentix/backend/pkg/logger"
)

// Outcome of a single contract
const (
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeSkipped   = "skipped" // not linked
	OutcomeNoData    = "no-data" // index month not published yet
	OutcomeFailed    = "failed"
)

// Result represents the recomputation of one contract
type Result struct {
	ContractID    string `json:"contract_id"`
	Outcome       string `json:"outcome"`
	PreviousRent  int64  `json:"previous_rent"`
	AdjustedRent  int64  `json:"adjusted_rent,omitempty"`
	CalculationID string `json:"calculation_id,omitempty"`
	Error         error  `json:"-"`
}

// Summary aggregates a batch run
type Summary struct {
	AsOf     time.Time
	Results  []Result
	Counts   map[string]int
	Duration time.Duration
}

// Failures returns the contracts whose recomputation errored
func (s *Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Error != nil {
			out = append(out, r)
		}
	}
	return out
}

// Recomputer runs the batch
// ⭐ SSOT: 계약 임대료 재계산은 여기서만
type Recomputer struct {
	repo    contracts.ContractRepository
	audit   contracts.AuditRepository
	calc    *indexation.Calculator
	workers int
	logger  *logger.Logger
}

// New creates a Recomputer; workers < 1 means sequential
func New(repo contracts.ContractRepository, audit contracts.AuditRepository, calc *indexation.Calculator, workers int, log *logger.Logger) *Recomputer {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Recomputer{
		repo:    repo,
		audit:   audit,
		calc:    calc,
		workers: workers,
		logger:  log.WithField("module", "recompute"),
	}
}

// Run recomputes every active contract as of asOf. A failing contract does
// not stop the others; only listing contracts or a cancelled context fails
// the run.
func (r *Recomputer) Run(ctx context.Context, asOf time.Time) (*Summary, error) {
	start := time.Now()

	list, err := r.repo.ListActiveContracts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active contracts: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"contracts": len(list),
		"as_of":     asOf.Format("2006-01-02"),
		"workers":   r.workers,
	}).Info("Starting rent recomputation")

	results := make([]Result, len(list))
	var mu sync.Mutex
	counts := make(map[string]int)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, c := range list {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := r.Contract(gctx, c, asOf)
			results[i] = res

			mu.Lock()
			counts[res.Outcome]++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{
		AsOf:     asOf,
		Results:  results,
		Counts:   counts,
		Duration: time.Since(start),
	}

	r.logger.WithFields(map[string]interface{}{
		"updated":   counts[OutcomeUpdated],
		"unchanged": counts[OutcomeUnchanged],
		"skipped":   counts[OutcomeSkipped],
		"no_data":   counts[OutcomeNoData],
		"failed":    counts[OutcomeFailed],
		"duration":  summary.Duration,
	}).Info("Rent recomputation completed")

	return summary, nil
}

// Contract recomputes one contract: calculation for the payment due in
// asOf's month, audit record, then the stored current rent if it moved.
func (r *Recomputer) Contract(ctx context.Context, c *contracts.Contract, asOf time.Time) Result {
	res := Result{ContractID: c.ID}
	if !c.IsLinked() {
		res.Outcome = OutcomeSkipped
		return res
	}
	res.PreviousRent = c.Linkage.CurrentRentAmount.Round(0).IntPart()

	calc, err := r.calc.CalculateForDue(ctx, *c.Linkage, DueDateIn(asOf, c.PaymentDay))
	if err != nil {
		res.Error = err
		res.Outcome = OutcomeFailed
		if errors.Is(err, contracts.ErrNoData) {
			res.Outcome = OutcomeNoData
		}
		r.logger.WithError(err).WithField("contract_id", c.ID).Warn("Recomputation failed")
		return res
	}
	calc.ContractID = c.ID

	if err := r.audit.SaveCalculation(ctx, calc); err != nil {
		res.Error = fmt.Errorf("save calculation: %w", err)
		res.Outcome = OutcomeFailed
		return res
	}
	res.CalculationID = calc.ID
	res.AdjustedRent = calc.AdjustedRent

	if !c.Linkage.CurrentRentAmount.IsZero() && calc.AdjustedRent == res.PreviousRent {
		res.Outcome = OutcomeUnchanged
		return res
	}
	if err := r.repo.UpdateCurrentRent(ctx, c.ID, calc.AdjustedRent, calc.CreatedAt); err != nil {
		res.Error = fmt.Errorf("update current rent: %w", err)
		res.Outcome = OutcomeFailed
		return res
	}
	res.Outcome = OutcomeUpdated
	return res
}

// DueDateIn is the payment date of asOf's month (day clamped, 0 → 1st)
func DueDateIn(asOf time.Time, paymentDay int) time.Time {
	if paymentDay < 1 {
		paymentDay = 1
	}
	last := time.Date(asOf.Year(), asOf.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if paymentDay > last {
		paymentDay = last
	}
	return time.Date(asOf.Year(), asOf.Month(), paymentDay, 0, 0, 0, 0, time.UTC)
}
