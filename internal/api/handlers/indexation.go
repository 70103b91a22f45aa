package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/internal/indexation"
	"github.com/wonny/rentix/backend/pkg/logger"
)

// IndexationHandler handles ratio, rent and reconciliation endpoints
// ⭐ SSOT: 연동 계산 API 핸들러는 이 구조체에서만
type IndexationHandler struct {
	resolver *indexation.Resolver
	calc     *indexation.Calculator
	audit    contracts.AuditRepository
	logger   *logger.Logger
}

// NewIndexationHandler creates a new indexation handler; audit may be nil
func NewIndexationHandler(resolver *indexation.Resolver, calc *indexation.Calculator, audit contracts.AuditRepository, log *logger.Logger) *IndexationHandler {
	return &IndexationHandler{
		resolver: resolver,
		calc:     calc,
		audit:    audit,
		logger:   log,
	}
}

// RatioRequest asks for the comparable ratio between two months
type RatioRequest struct {
	Series        contracts.SeriesType `json:"series"`
	BasePeriod    contracts.Period     `json:"base_period"`
	CurrentPeriod contracts.Period     `json:"current_period"`
}

// RatioResponse carries the exact fraction and its display value
type RatioResponse struct {
	*indexation.Resolution
	Value string `json:"value"` // 6dp
}

// Ratio resolves the index ratio between two periods
// POST /api/indexation/ratio
func (h *IndexationHandler) Ratio(w http.ResponseWriter, r *http.Request) {
	var req RatioRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondEngineError(w, h.logger, err)
		return
	}
	if err := requirePeriods(req.Series, req.BasePeriod, req.CurrentPeriod); err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	res, err := h.resolver.Resolve(r.Context(), req.Series, req.BasePeriod, req.CurrentPeriod)
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    RatioResponse{Resolution: res, Value: res.Ratio.String()},
	})
}

// RentRequest computes the adjusted rent. Either CurrentPeriod or DueDate
// (with Mode selecting the index month) must be given.
type RentRequest struct {
	ContractID    string                 `json:"contract_id,omitempty"`
	Series        contracts.SeriesType   `json:"series"`
	BasePeriod    contracts.Period       `json:"base_period"`
	CurrentPeriod contracts.Period       `json:"current_period"`
	DueDate       string                 `json:"due_date,omitempty"`
	Mode          string                 `json:"mode,omitempty"`
	BaseRent      decimal.Decimal        `json:"base_rent"`
	Terms         contracts.LinkageTerms `json:"terms"`
}

// Rent computes the indexed rent with its explainable calculation record
// POST /api/indexation/rent
func (h *IndexationHandler) Rent(w http.ResponseWriter, r *http.Request) {
	var req RentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	mode, err := contracts.ParseIndexMode(req.Mode)
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}
	due, err := parseDate("due_date", req.DueDate)
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}
	if req.CurrentPeriod.IsZero() && due.IsZero() {
		respondEngineError(w, h.logger, contracts.Invalid("current_period", "current_period or due_date is required"))
		return
	}

	spec := contracts.LinkageSpec{
		Series:         req.Series,
		BaseDate:       req.BasePeriod,
		BaseRentAmount: req.BaseRent,
		Terms:          req.Terms,
		Mode:           mode,
	}

	var calc *contracts.Calculation
	if !req.CurrentPeriod.IsZero() {
		calc, err = h.calc.Calculate(r.Context(), spec, req.CurrentPeriod)
	} else {
		calc, err = h.calc.CalculateForDue(r.Context(), spec, due)
	}
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	if req.ContractID != "" && h.audit != nil {
		calc.ContractID = req.ContractID
		if err := h.audit.SaveCalculation(r.Context(), calc); err != nil {
			respondEngineError(w, h.logger, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    calc,
	})
}

// Reconcile compares owed against paid rent over a month range
// POST /api/indexation/reconcile
func (h *IndexationHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req indexation.ReconciliationInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	res, err := h.resolver.Reconcile(r.Context(), req)
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    res,
	})
}

func requirePeriods(series contracts.SeriesType, base, current contracts.Period) error {
	if !series.Valid() {
		return contracts.Invalid("series", "unknown series %q", series)
	}
	if base.IsZero() {
		return contracts.Invalid("base_period", "required")
	}
	if current.IsZero() {
		return contracts.Invalid("current_period", "required")
	}
	return nil
}
