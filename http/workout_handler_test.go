package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-workout/domain"
	"loan-workout/observability"
	"loan-workout/repository"
	"loan-workout/service"
)

func newTestRouter(t *testing.T, rateLimit int) *mux.Router {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	repo := repository.NewOptionRepositoryMemory()
	sessions := service.NewSessionStore()
	metrics := observability.NewMetrics()
	workouts := service.NewWorkoutService(sessions, repo, log, metrics)
	options := service.NewOptionService(sessions, repo, log, service.DefaultMaxOptions)
	suggestions := service.NewSuggestionService(sessions, service.NewAIService("", log), log, domain.SuggestionInput{
		RateMin: 4, RateMax: 8, AvailableTerms: []int{240, 360},
	})
	calculation := service.NewCalculationService(repository.NewMockCache(), log, metrics, false)

	limiter := NewRateLimiter(rateLimit, time.Minute)
	t.Cleanup(limiter.Stop)

	return NewRouter(
		NewWorkoutHandler(workouts, options, suggestions, log),
		NewCalculationHandler(calculation, log),
		limiter,
		metrics,
	)
}

const openBody = `{
	"loan": {
		"loan_number": "LN-1001",
		"unpaid_principal_balance": 100000,
		"senior_unpaid_principal_balance": 50000,
		"purchase_price": 50000,
		"purchase_date": "2024-02-10",
		"original_interest_rate": 12,
		"servicer": "FCI",
		"next_due_date": "2024-02-01",
		"fair_market_value": 250000
	},
	"request": {
		"loan_number": "LN-1001",
		"payoff_total": 104000,
		"payoff_date": "2024-03-01",
		"requested_monthly_payment": 650
	}
}`

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) SessionResponse {
	t.Helper()
	var resp SessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func openWorkout(t *testing.T, router http.Handler) SessionResponse {
	t.Helper()
	w := do(t, router, http.MethodPost, "/workouts", openBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeSession(t, w)
}

func TestOpenWorkout_RendersUndefinedMetricsAsNull(t *testing.T) {
	router := newTestRouter(t, 100)
	w := do(t, router, http.MethodPost, "/workouts", openBody)
	require.Equal(t, http.StatusCreated, w.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	var metrics map[string]any
	require.NoError(t, json.Unmarshal(raw["metrics"], &metrics))

	assert.Nil(t, metrics["monthly_payment"], "zero term has no payment")
	assert.Equal(t, 33.33, metrics["per_diem"])
	assert.Equal(t, "2024-04-01", metrics["first_payment_due"])
	assert.Equal(t, true, mustBool(t, raw["save_required"]))
}

func mustBool(t *testing.T, raw json.RawMessage) bool {
	var b bool
	require.NoError(t, json.Unmarshal(raw, &b))
	return b
}

func TestWorkoutFlow(t *testing.T) {
	router := newTestRouter(t, 100)
	session := openWorkout(t, router)
	base := "/workouts/" + session.ID

	w := do(t, router, http.MethodPatch, base+"/inputs",
		`{"legal_fees": 1000, "late_fees": 500, "option": {"term": 360, "interest_rate": 6}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s := decodeSession(t, w)
	require.NotNil(t, s.Metrics.Discrepancy)
	assert.Equal(t, 500.2, *s.Metrics.Discrepancy)
	require.NotNil(t, s.Metrics.MonthlyPayment)

	w = do(t, router, http.MethodPost, base+"/discrepancy/legal", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s = decodeSession(t, w)
	assert.Equal(t, 0.0, *s.Metrics.Discrepancy)
	assert.InDelta(t, 1500.2, s.Inputs.LegalFees, 1e-9)

	w = do(t, router, http.MethodPost, base+"/discrepancy/legal", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodPut, base+"/options/current", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s = decodeSession(t, w)
	require.Len(t, s.Options, 1)
	assert.False(t, s.SaveRequired)

	w = do(t, router, http.MethodPost, base+"/options", "")
	require.Equal(t, http.StatusCreated, w.Code)
	s = decodeSession(t, w)
	assert.Equal(t, 1, s.CurrentOption)
	assert.True(t, s.SaveRequired)

	w = do(t, router, http.MethodPost, base+"/options/0/select", "")
	require.Equal(t, http.StatusOK, w.Code)
	s = decodeSession(t, w)
	assert.Equal(t, 360, s.Inputs.Option.Term)

	w = do(t, router, http.MethodPost, base+"/suggestions", `{"limit": 2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var suggestions domain.SuggestionResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&suggestions))
	assert.Len(t, suggestions.Suggestions, 2)

	w = do(t, router, http.MethodDelete, base+"/options/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	s = decodeSession(t, w)
	assert.Empty(t, s.Options)
	assert.True(t, s.SaveRequired)

	w = do(t, router, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestWorkoutErrors(t *testing.T) {
	router := newTestRouter(t, 100)
	session := openWorkout(t, router)
	base := "/workouts/" + session.ID

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown session", http.MethodGet, "/workouts/nope", "", http.StatusNotFound},
		{"unknown option", http.MethodPost, base + "/options/2/select", "", http.StatusNotFound},
		{"unknown action", http.MethodPost, base + "/discrepancy/refund", "", http.StatusBadRequest},
		{"invalid json", http.MethodPatch, base + "/inputs", `{invalid-json}`, http.StatusBadRequest},
		{"invalid input", http.MethodPatch, base + "/inputs", `{"option": {"term": -3}}`, http.StatusBadRequest},
		{"method not allowed", http.MethodGet, "/calculate", "", http.StatusMethodNotAllowed},
		{"missing loan number", http.MethodPost, "/workouts", `{}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, router, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestOpenWorkout_RequiresJSONContentType(t *testing.T) {
	router := newTestRouter(t, 100)
	req := httptest.NewRequest(http.MethodPost, "/workouts", strings.NewReader(openBody))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestCalculate(t *testing.T) {
	router := newTestRouter(t, 100)
	body := `{
		"loan": {"loan_number": "LN-1", "unpaid_principal_balance": 100000, "purchase_price": 50000,
			"purchase_date": "2024-02-10", "original_interest_rate": 12, "servicer": "FCI",
			"next_due_date": "2024-02-01", "fair_market_value": 250000},
		"request": {"payoff_total": 104000, "payoff_date": "2024-03-01"},
		"inputs": {"legal_fees": 1000, "late_fees": 500, "option": {"term": 360, "interest_rate": 6}}
	}`
	w := do(t, router, http.MethodPost, "/calculate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var m MetricsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&m))
	require.NotNil(t, m.TotalDebt)
	assert.Equal(t, 103499.8, *m.TotalDebt)
	assert.Equal(t, 51250.0, *m.TotalExpenses)
}

func TestRateLimitOnMutatingRoutes(t *testing.T) {
	router := newTestRouter(t, 1)
	session := openWorkout(t, router)

	w := do(t, router, http.MethodPost, "/workouts", openBody)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	w = do(t, router, http.MethodGet, "/workouts/"+session.ID, "")
	assert.Equal(t, http.StatusOK, w.Code, "reads are not limited")
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, 100)
	openWorkout(t, router)

	w := do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `loan_workout_http_requests_total{method="POST",route="/workouts",status="201"} 1`)
	assert.Contains(t, w.Body.String(), `loan_workout_engine_passes_total{kind="full"} 1`)
}
