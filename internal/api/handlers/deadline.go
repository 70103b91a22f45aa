package handlers

import (
	"net/http"
	"time"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/internal/deadline"
	"github.com/wonny/rentix/backend/pkg/logger"
)

// DeadlineHandler handles notice deadline endpoints
type DeadlineHandler struct {
	planner *deadline.Planner
	now     func() time.Time
	logger  *logger.Logger
}

// NewDeadlineHandler creates a new deadline handler
func NewDeadlineHandler(planner *deadline.Planner, log *logger.Logger) *DeadlineHandler {
	return &DeadlineHandler{
		planner: planner,
		now:     time.Now,
		logger:  log,
	}
}

// DeadlineRequest carries the contract notice terms. Defaults, when given,
// replace the server's global defaults for this call only.
type DeadlineRequest struct {
	EndDate            string                    `json:"end_date"`
	ContractNoticeDays *int                      `json:"contract_notice_days"`
	OptionNoticeDays   *int                      `json:"option_notice_days"`
	HasOption          bool                      `json:"has_option"`
	Today              string                    `json:"today,omitempty"`
	Defaults           *contracts.GlobalDefaults `json:"defaults,omitempty"`
}

// Plan computes decision and option deadlines with their window state
// POST /api/deadlines
func (h *DeadlineHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req DeadlineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}
	today, err := parseDate("today", req.Today)
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}
	if today.IsZero() {
		today = h.now()
	}

	planner := h.planner
	if req.Defaults != nil {
		if planner, err = deadline.NewPlanner(*req.Defaults); err != nil {
			respondEngineError(w, h.logger, err)
			return
		}
	}

	plan, err := planner.Plan(contracts.NoticePolicy{
		ContractNoticeDays: req.ContractNoticeDays,
		OptionNoticeDays:   req.OptionNoticeDays,
		EndDate:            end,
		HasOption:          req.HasOption,
	}, today)
	if err != nil {
		respondEngineError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"data":     plan,
		"defaults": planner.Defaults(),
	})
}
