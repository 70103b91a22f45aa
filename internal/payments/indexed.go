package payments

import (
	"context"
	"errors"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/internal/indexation"
)

// IndexSchedule fills IndexedAmount for each payment of a linked contract.
// Payments whose index month is not published yet keep a nil amount and an
// IndexError; they are never filled with a guessed value. Only store
// failures abort the run.
func IndexSchedule(ctx context.Context, calc *indexation.Calculator, spec contracts.LinkageSpec, schedule []Payment) ([]*contracts.Calculation, error) {
	var records []*contracts.Calculation

	for i := range schedule {
		p := &schedule[i]
		s := spec
		s.BaseRentAmount = p.Amount

		rec, err := calc.CalculateForDue(ctx, s, p.DueDate)
		if err != nil {
			if isDataError(err) {
				p.IndexError = err.Error()
				continue
			}
			return records, err
		}

		rec.ContractID = p.ContractID
		rent, period := rec.AdjustedRent, rec.CurrentPeriod
		p.IndexedAmount = &rent
		p.IndexPeriod = &period
		p.CalculationID = rec.ID
		records = append(records, rec)
	}
	return records, nil
}

func isDataError(err error) bool {
	return errors.Is(err, contracts.ErrNoData) ||
		errors.Is(err, contracts.ErrZeroBase) ||
		errors.Is(err, contracts.ErrInvalidInput)
}
