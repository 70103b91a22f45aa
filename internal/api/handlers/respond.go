package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/internal/store"
	"github.com/wonny/rentix/backend/pkg/logger"
)

// maxBodyBytes bounds request bodies (a reconciliation with monthly actuals is the largest)
const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondEngineError maps the engine's error taxonomy to HTTP status codes
func respondEngineError(w http.ResponseWriter, log *logger.Logger, err error) {
	var (
		noData   *contracts.NoDataError
		zeroBase *contracts.ZeroBaseError
		invalid  *contracts.InvalidInputError
	)
	switch {
	case errors.As(err, &noData):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":  fmt.Sprintf("cannot compute — missing index data for period %s", noData.Period),
			"series": string(noData.Series),
			"period": noData.Period.String(),
		})
	case errors.As(err, &zeroBase):
		respondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &invalid):
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
			"field": invalid.Field,
		})
	case errors.Is(err, store.ErrContractNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		log.WithError(err).Error("Request failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a JSON body, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return contracts.Invalid("body", "%v", err)
	}
	return nil
}

// parseDate parses YYYY-MM-DD; empty returns the zero time
func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, contracts.Invalid(field, "expected YYYY-MM-DD, got %q", s)
	}
	return t, nil
}
