package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rentix/backend/internal/api/handlers"
	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/internal/deadline"
	"github.com/wonny/rentix/backend/internal/indexation"
	"github.com/wonny/rentix/backend/internal/recompute"
	"github.com/wonny/rentix/backend/internal/store"
	"github.com/wonny/rentix/backend/pkg/logger"
)

func newTestRouter(t *testing.T) (http.Handler, *store.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemoryStore()
	for period, value := range map[string]string{"2023-12": "100", "2024-01": "102", "2024-02": "103.5"} {
		require.NoError(t, m.AppendIndexPoint(ctx, contracts.IndexPoint{
			Series:   contracts.SeriesCPI,
			Period:   contracts.MustParsePeriod(period),
			Value:    decimal.RequireFromString(value),
			Source:   contracts.SourceManual,
			Official: true,
		}))
	}
	m.PutRaw(contracts.IndexPoint{
		Series:   contracts.SeriesHousing,
		Period:   contracts.MustParsePeriod("2023-12"),
		Value:    decimal.Zero,
		Official: true,
	})
	m.PutRaw(contracts.IndexPoint{
		Series:   contracts.SeriesHousing,
		Period:   contracts.MustParsePeriod("2024-01"),
		Value:    decimal.NewFromInt(101),
		Official: true,
	})

	log := logger.Nop()
	planner, err := deadline.NewPlanner(contracts.GlobalDefaults{
		DefaultNoticeDays:       100,
		DefaultOptionNoticeDays: 60,
		SafetyBufferDays:        10,
		AlertLeadDays:           30,
	})
	require.NoError(t, err)

	resolver := indexation.NewResolver(m, log)
	calc := indexation.NewCalculator(resolver, "test-hash")

	return NewRouter(Handlers{
		Indexation: handlers.NewIndexationHandler(resolver, calc, m, log),
		Deadlines:  handlers.NewDeadlineHandler(planner, log),
		Payments:   handlers.NewPaymentHandler(calc, log),
		Contracts:  handlers.NewContractHandler(m, m, planner, recompute.New(m, m, calc, 2, log), log),
	}, log), m
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func data(t *testing.T, out map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := out["data"].(map[string]interface{})
	require.True(t, ok, "missing data in %v", out)
	return d
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)
	code, out := do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, "rentix-api", out["service"])
}

func TestRatio(t *testing.T) {
	h, _ := newTestRouter(t)

	code, out := do(t, h, "POST", "/api/indexation/ratio",
		`{"series":"cpi","base_period":"2023-12","current_period":"2024-02"}`)
	require.Equal(t, http.StatusOK, code)
	d := data(t, out)
	assert.Equal(t, "1.035000", d["value"])
	assert.Equal(t, "2023-12", d["base_period"])
}

func TestRatio_Errors(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		name   string
		body   string
		status int
		check  func(t *testing.T, out map[string]interface{})
	}{
		{
			name:   "missing month",
			body:   `{"series":"cpi","base_period":"2023-12","current_period":"2024-05"}`,
			status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, out map[string]interface{}) {
				assert.Contains(t, out["error"], "missing index data for period 2024-05")
				assert.Equal(t, "2024-05", out["period"])
			},
		},
		{
			name:   "zero base",
			body:   `{"series":"housing","base_period":"2023-12","current_period":"2024-01"}`,
			status: http.StatusConflict,
		},
		{
			name:   "unknown series",
			body:   `{"series":"gold","base_period":"2023-12","current_period":"2024-01"}`,
			status: http.StatusBadRequest,
			check: func(t *testing.T, out map[string]interface{}) {
				assert.Equal(t, "series", out["field"])
			},
		},
		{
			name:   "unknown field",
			body:   `{"series":"cpi","base_period":"2023-12","current_period":"2024-01","extra":1}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "missing current period",
			body:   `{"series":"cpi","base_period":"2023-12"}`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := do(t, h, "POST", "/api/indexation/ratio", tt.body)
			assert.Equal(t, tt.status, code)
			assert.NotEmpty(t, out["error"])
			if tt.check != nil {
				tt.check(t, out)
			}
		})
	}
}

func TestRent(t *testing.T) {
	h, m := newTestRouter(t)

	code, out := do(t, h, "POST", "/api/indexation/rent",
		`{"contract_id":"c-1","series":"cpi","base_period":"2023-12","current_period":"2024-02","base_rent":"5000","terms":{}}`)
	require.Equal(t, http.StatusOK, code)
	d := data(t, out)
	assert.Equal(t, float64(5175), d["adjusted_rent"])
	assert.Equal(t, "test-hash", d["policy_hash"])
	assert.NotEmpty(t, d["formula"])

	calcs, err := m.ListCalculations(context.Background(), "c-1", 10)
	require.NoError(t, err)
	assert.Len(t, calcs, 1)
}

func TestRent_DueDateKnownMode(t *testing.T) {
	h, _ := newTestRouter(t)

	// due on the 20th of March: known index is February
	code, out := do(t, h, "POST", "/api/indexation/rent",
		`{"series":"cpi","base_period":"2023-12","due_date":"2024-03-20","mode":"known","base_rent":"5000","terms":{}}`)
	require.Equal(t, http.StatusOK, code)
	d := data(t, out)
	assert.Equal(t, "2024-02", d["current_period"])
	assert.Equal(t, float64(5175), d["adjusted_rent"])
}

func TestRent_RequiresPeriodOrDueDate(t *testing.T) {
	h, _ := newTestRouter(t)

	code, out := do(t, h, "POST", "/api/indexation/rent",
		`{"series":"cpi","base_period":"2023-12","base_rent":"5000","terms":{}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "current_period", out["field"])
}

func TestReconcile_MissingMonthFails(t *testing.T) {
	h, _ := newTestRouter(t)

	code, out := do(t, h, "POST", "/api/indexation/reconcile",
		`{"series":"cpi","base_period":"2023-12","mode":"respect_of","terms":{},"base_rent":"5000",
		  "period_start":"2024-01","period_end":"2024-04","update_frequency":"monthly","actual_per_month":"5000"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, out["error"], "missing index data for period 2024-03")
}

func TestReconcile(t *testing.T) {
	h, _ := newTestRouter(t)

	code, out := do(t, h, "POST", "/api/indexation/reconcile",
		`{"series":"cpi","base_period":"2023-12","mode":"respect_of","terms":{},"base_rent":"5000",
		  "period_start":"2024-01","period_end":"2024-02","update_frequency":"monthly","actual_per_month":"5000"}`)
	require.Equal(t, http.StatusOK, code)
	d := data(t, out)
	assert.Equal(t, float64(2), d["total_months"])
	assert.Equal(t, float64(5100+5175), d["total_should_have_paid"])
}

func TestDeadlines(t *testing.T) {
	h, _ := newTestRouter(t)

	code, out := do(t, h, "POST", "/api/deadlines",
		`{"end_date":"2025-12-31","has_option":true,"today":"2025-09-01"}`)
	require.Equal(t, http.StatusOK, code)
	d := data(t, out)

	decision := d["decision"].(map[string]interface{})
	assert.Equal(t, "2025-09-12T00:00:00Z", decision["date"])
	assert.Equal(t, "inside-notice-window", decision["window"])
	assert.Equal(t, float64(11), decision["days_left"])

	option := d["option"].(map[string]interface{})
	assert.Equal(t, "2025-10-22T00:00:00Z", option["date"])
	assert.Equal(t, "more-than-notice-away", option["window"])
}

func TestDeadlines_ContractNoticeAndOverride(t *testing.T) {
	h, _ := newTestRouter(t)

	// explicit contract notice wins over any default
	code, out := do(t, h, "POST", "/api/deadlines",
		`{"end_date":"2025-12-31","contract_notice_days":90,"today":"2025-01-01",
		  "defaults":{"default_notice_days":30,"default_option_notice_days":30,"safety_buffer_days":5,"alert_lead_days":0}}`)
	require.Equal(t, http.StatusOK, code)
	decision := data(t, out)["decision"].(map[string]interface{})
	assert.Equal(t, "2025-09-27T00:00:00Z", decision["date"])

	defaults := out["defaults"].(map[string]interface{})
	assert.Equal(t, float64(5), defaults["safety_buffer_days"])

	code, _ = do(t, h, "POST", "/api/deadlines",
		`{"end_date":"2025-12-31","defaults":{"default_notice_days":0,"default_option_notice_days":30,"safety_buffer_days":5}}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, out = do(t, h, "POST", "/api/deadlines", `{"end_date":"31/12/2025"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "end_date", out["field"])
}

func TestPaymentSchedule(t *testing.T) {
	h, _ := newTestRouter(t)

	code, out := do(t, h, "POST", "/api/payments/schedule",
		`{"contract_id":"c-1","start_date":"2024-01-01","end_date":"2024-03-31","base_rent":"5000",
		  "linkage":{"series":"cpi","base_date":"2023-12","base_rent_amount":"0","current_rent_amount":"0","terms":{},"mode":"respect_of"}}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), out["count"])

	payments := out["data"].([]interface{})
	require.Len(t, payments, 3)
	assert.Equal(t, float64(5100), payments[0].(map[string]interface{})["indexed_amount"])
	assert.Equal(t, float64(5175), payments[1].(map[string]interface{})["indexed_amount"])
	assert.Nil(t, payments[2].(map[string]interface{})["indexed_amount"])
	assert.Contains(t, payments[2].(map[string]interface{})["index_error"], "2024-03")

	assert.Len(t, out["calculations"], 2)
}

func TestPaymentSchedule_Unlinked(t *testing.T) {
	h, _ := newTestRouter(t)

	code, out := do(t, h, "POST", "/api/payments/schedule",
		`{"start_date":"2024-01-31","end_date":"2024-12-31","base_rent":"4000","frequency":"quarterly","payment_day":31}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(4), out["count"])
	assert.Nil(t, out["calculations"])
}

func TestContracts(t *testing.T) {
	h, m := newTestRouter(t)

	code, _ := do(t, h, "GET", "/api/contracts/missing", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, out := do(t, h, "PUT", "/api/contracts/c-9",
		`{"name":"Herzl 12","start_date":"2024-01-01T00:00:00Z","end_date":"2025-12-31T00:00:00Z",
		  "payment_day":1,"frequency":"monthly","status":"active",
		  "linkage":{"series":"cpi","base_date":"2023-12","base_rent_amount":"5000","current_rent_amount":"5000","terms":{},"mode":"respect_of"},
		  "notice":{"contract_notice_days":null,"option_notice_days":null,"end_date":"0001-01-01T00:00:00Z","has_option":false},
		  "updated_at":"0001-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusOK, code, out)

	code, out = do(t, h, "GET", "/api/contracts/c-9", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Herzl 12", data(t, out)["name"])

	code, out = do(t, h, "GET", "/api/contracts/c-9/deadlines", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2025-12-31T00:00:00Z", data(t, out)["end_date"])

	c, err := m.GetContract(context.Background(), "c-9")
	require.NoError(t, err)
	res := recompute.New(m, m, indexation.NewCalculator(indexation.NewResolver(m, nil), ""), 1, nil).
		Contract(context.Background(), c, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, res.Error)
	assert.Equal(t, int64(5175), res.AdjustedRent)

	code, out = do(t, h, "GET", "/api/contracts/c-9/calculations?limit=5", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), out["count"])
}

func TestContracts_RecomputeNoData(t *testing.T) {
	h, m := newTestRouter(t)
	require.NoError(t, m.SaveContract(context.Background(), &contracts.Contract{
		ID:        "c-1",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC),
		Status:    contracts.ContractActive,
		Linkage: &contracts.LinkageSpec{
			Series:         contracts.SeriesEUR,
			BaseDate:       contracts.MustParsePeriod("2023-12"),
			BaseRentAmount: decimal.NewFromInt(5000),
		},
	}))

	code, out := do(t, h, "POST", "/api/contracts/c-1/recompute", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "eur", out["series"])
}
