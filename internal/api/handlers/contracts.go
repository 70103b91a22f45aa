package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/internal/deadline"
	"github.com/wonny/rentix/backend/internal/recompute"
	"github.com/wonny/rentix/backend/pkg/logger"
)

// ContractHandler serves stored contracts, their audit trail and deadlines
type ContractHandler struct {
	repo       contracts.ContractRepository
	audit      contracts.AuditRepository
	planner    *deadline.Planner
	recomputer *recompute.Recomputer
	now        func() time.Time
	logger     *logger.Logger
}

// NewContractHandler creates a new contract handler
func NewContractHandler(repo contracts.ContractRepository, audit contracts.AuditRepository, planner *deadline.Planner, recomputer *recompute.Recomputer, log *logger.Logger) *ContractHandler {
	return &ContractHandler{
		repo:       repo,
		audit:      audit,
		planner:    planner,
		recomputer: recomputer,
		now:        time.Now,
		logger:     log,
	}
}

// Get returns one contract
// GET /api/contracts/{id}
func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.repo.GetContract(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    c,
	})
}

// Save creates or replaces a contract
// PUT /api/contracts/{id}
func (h *ContractHandler) Save(w http.ResponseWriter, r *http.Request) {
	var c contracts.Contract
	if err := decodeJSON(w, r, &c); err != nil {
		respondEngineError(w, h.logger, err)
		return
	}
	c.ID = mux.Vars(r)["id"]
	c.UpdatedAt = h.now().UTC()

	if err := h.repo.SaveContract(r.Context(), &c); err != nil {
		respondEngineError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    c,
	})
}

// Calculations lists the audit trail, newest first
// GET /api/contracts/{id}/calculations?limit=20
func (h *ContractHandler) Calculations(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	calcs, err := h.audit.ListCalculations(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    calcs,
		"count":   len(calcs),
	})
}

// Deadlines plans a stored contract as of today
// GET /api/contracts/{id}/deadlines
func (h *ContractHandler) Deadlines(w http.ResponseWriter, r *http.Request) {
	c, err := h.repo.GetContract(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	policy := c.Notice
	if policy.EndDate.IsZero() {
		policy.EndDate = c.EndDate
	}
	plan, err := h.planner.Plan(policy, h.now())
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    plan,
	})
}

// Recompute recalculates one contract's current rent now
// POST /api/contracts/{id}/recompute
func (h *ContractHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	c, err := h.repo.GetContract(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	res := h.recomputer.Contract(r.Context(), c, h.now())
	if res.Error != nil {
		respondEngineError(w, h.logger, res.Error)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    res,
	})
}
