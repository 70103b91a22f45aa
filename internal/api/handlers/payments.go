package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/internal/indexation"
	"github.com/wonny/rentix/backend/internal/payments"
	"github.com/wonny/rentix/backend/pkg/logger"
)

// PaymentHandler handles payment schedule endpoints
type PaymentHandler struct {
	calc   *indexation.Calculator
	logger *logger.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(calc *indexation.Calculator, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		calc:   calc,
		logger: log,
	}
}

// ScheduleRequest describes the contract; Linkage adds indexed amounts
type ScheduleRequest struct {
	ContractID string                     `json:"contract_id,omitempty"`
	StartDate  string                     `json:"start_date"`
	EndDate    string                     `json:"end_date"`
	BaseRent   decimal.Decimal            `json:"base_rent"`
	Currency   string                     `json:"currency,omitempty"`
	Frequency  contracts.PaymentFrequency `json:"frequency,omitempty"`
	PaymentDay int                        `json:"payment_day,omitempty"`
	RentSteps  []RentStepRequest          `json:"rent_steps,omitempty"`
	Linkage    *contracts.LinkageSpec     `json:"linkage,omitempty"`
}

// RentStepRequest is a scheduled rent change
type RentStepRequest struct {
	StartDate string          `json:"start_date"`
	Amount    decimal.Decimal `json:"amount"`
}

// Schedule generates the payment schedule
// POST /api/payments/schedule
func (h *PaymentHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	params, err := req.params()
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	schedule, err := payments.GenerateSchedule(params)
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	var records []*contracts.Calculation
	if req.Linkage != nil {
		spec := *req.Linkage
		spec.BaseRentAmount = params.BaseRent
		if records, err = payments.IndexSchedule(r.Context(), h.calc, spec, schedule); err != nil {
			respondEngineError(w, h.logger, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"data":         schedule,
		"count":        len(schedule),
		"calculations": records,
	})
}

func (req ScheduleRequest) params() (payments.ScheduleParams, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return payments.ScheduleParams{}, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return payments.ScheduleParams{}, err
	}

	steps := make([]contracts.RentStep, 0, len(req.RentSteps))
	for _, s := range req.RentSteps {
		at, err := parseDate("rent_steps.start_date", s.StartDate)
		if err != nil {
			return payments.ScheduleParams{}, err
		}
		steps = append(steps, contracts.RentStep{StartDate: at, Amount: s.Amount})
	}

	return payments.ScheduleParams{
		ContractID: req.ContractID,
		StartDate:  start,
		EndDate:    end,
		BaseRent:   req.BaseRent,
		Currency:   req.Currency,
		Frequency:  req.Frequency,
		PaymentDay: req.PaymentDay,
		RentSteps:  steps,
	}, nil
}
