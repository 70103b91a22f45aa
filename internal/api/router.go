package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/rentix/backend/internal/api/handlers"
	"github.com/wonny/rentix/backend/pkg/logger"
)

// Handlers groups the endpoint handlers; Contracts may be nil when no
// contract repository is configured
type Handlers struct {
	Indexation *handlers.IndexationHandler
	Deadlines  *handlers.DeadlineHandler
	Payments   *handlers.PaymentHandler
	Contracts  *handlers.ContractHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Indexation endpoints
	api.HandleFunc("/indexation/ratio", h.Indexation.Ratio).Methods("POST")
	api.HandleFunc("/indexation/rent", h.Indexation.Rent).Methods("POST")
	api.HandleFunc("/indexation/reconcile", h.Indexation.Reconcile).Methods("POST")

	// Deadline / payment endpoints
	api.HandleFunc("/deadlines", h.Deadlines.Plan).Methods("POST")
	api.HandleFunc("/payments/schedule", h.Payments.Schedule).Methods("POST")

	// Contract endpoints
	if h.Contracts != nil {
		api.HandleFunc("/contracts/{id}", h.Contracts.Get).Methods("GET")
		api.HandleFunc("/contracts/{id}", h.Contracts.Save).Methods("PUT")
		api.HandleFunc("/contracts/{id}/calculations", h.Contracts.Calculations).Methods("GET")
		api.HandleFunc("/contracts/{id}/deadlines", h.Contracts.Deadlines).Methods("GET")
		api.HandleFunc("/contracts/{id}/recompute", h.Contracts.Recompute).Methods("POST")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "rentix-api",
	})
}

// statusRecorder captures the status code for request logs
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
