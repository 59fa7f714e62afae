package handlers

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedeck/tradedeck/internal/modules/portfolio"
	"github.com/tradedeck/tradedeck/internal/modules/risk"
)

func newTestRouter(t *testing.T) (*chi.Mux, *portfolio.Ledger, *risk.Registry) {
	t.Helper()

	ledger := portfolio.NewLedger(zerolog.Nop())
	service := portfolio.NewService(ledger, 100000, rand.New(rand.NewSource(1)), zerolog.Nop())
	calculator := risk.NewCalculator(rand.New(rand.NewSource(1)), zerolog.Nop())
	registry := risk.NewRegistry(zerolog.Nop())
	handler := NewHandler(calculator, registry, ledger, service, zerolog.Nop())

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})
	return router, ledger, registry
}

func TestMetricsEndpoint(t *testing.T) {
	router, ledger, _ := newTestRouter(t)
	require.NoError(t, portfolio.SeedSamplePositions(ledger))

	req := httptest.NewRequest("GET", "/api/risk/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var metrics risk.Metrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Positive(t, metrics.PortfolioValue)
	assert.Positive(t, metrics.TotalExposure)
	assert.Len(t, metrics.Correlation, 4)
}

func TestPositionRiskEndpoint(t *testing.T) {
	router, ledger, _ := newTestRouter(t)

	sl := 1.0780
	pos, err := ledger.Add(portfolio.Position{
		Pair: "EUR/USD", Direction: portfolio.Long, EntryPrice: 1.0825,
		Quantity: 100000, StopLoss: &sl, Market: portfolio.MarketForex,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/risk/positions/"+pos.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var pr risk.PositionRisk
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pr))
	assert.Equal(t, pos.ID, pr.PositionID)
	assert.InDelta(t, 450.0, pr.RiskAmount, 0.0001)

	req = httptest.NewRequest("GET", "/api/risk/positions/missing", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExposureEndpoint(t *testing.T) {
	router, ledger, _ := newTestRouter(t)
	require.NoError(t, portfolio.SeedSamplePositions(ledger))

	req := httptest.NewRequest("GET", "/api/risk/exposure", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var analysis risk.ExposureAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Contains(t, analysis.ByMarket, "forex")
	assert.Contains(t, analysis.ByCurrency, "USD")
	assert.NotEmpty(t, analysis.CorrelationMatrix)
}

func TestPositionSizingEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest("GET",
		"/api/risk/position-sizing?account_balance=100000&risk_percent=2&entry_price=1.085&stop_loss=1.080", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var sizing risk.PositionSizing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sizing))
	assert.InDelta(t, 2000.0, sizing.RiskAmount, 0.0001)
	assert.NotEmpty(t, sizing.Reasoning)
}

func TestPositionSizingEndpointValidation(t *testing.T) {
	router, _, _ := newTestRouter(t)

	tests := []struct {
		name  string
		query string
	}{
		{"missing balance", "risk_percent=2&entry_price=1.085&stop_loss=1.080"},
		{"negative risk", "account_balance=100000&risk_percent=-2&entry_price=1.085&stop_loss=1.080"},
		{"equal entry and stop", "account_balance=100000&risk_percent=2&entry_price=1.085&stop_loss=1.085"},
		{"bad leverage", "account_balance=100000&risk_percent=2&entry_price=1.085&stop_loss=1.080&leverage=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/risk/position-sizing?"+tt.query, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAlertsEndpoints(t *testing.T) {
	router, _, registry := newTestRouter(t)

	body := `{"type":"high_risk","severity":"high","message":"Portfolio risk elevated"}`
	req := httptest.NewRequest("POST", "/api/risk/alerts/", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created risk.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Portfolio risk elevated", created.Message)

	req = httptest.NewRequest("GET", "/api/risk/alerts/?severity=high", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var list []risk.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	req = httptest.NewRequest("POST", "/api/risk/alerts/"+created.ID+"/acknowledge", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, registry.Alerts(""), 1)
	assert.True(t, registry.Alerts("")[0].Acknowledged)
}

func TestAlertsEndpointValidation(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/risk/alerts/?severity=extreme", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest("POST", "/api/risk/alerts/",
		bytes.NewBufferString(`{"type":"weather","severity":"high"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest("POST", "/api/risk/alerts/nope/acknowledge", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLimitsEndpoints(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/risk/limits/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var limits risk.Limits
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &limits))
	assert.Equal(t, risk.DefaultLimits(), limits)

	req = httptest.NewRequest("PUT", "/api/risk/limits/",
		bytes.NewBufferString(`{"max_leverage":5,"max_drawdown":20}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &limits))
	assert.Equal(t, 5.0, limits.MaxLeverage)
	assert.Equal(t, 20.0, limits.MaxDrawdown)
}

func TestCheckLimitsEndpoint(t *testing.T) {
	router, ledger, _ := newTestRouter(t)

	pos, err := ledger.Add(portfolio.Position{
		Pair: "BTC/USD", Direction: portfolio.Long, EntryPrice: 45000,
		Quantity: 50, Market: portfolio.MarketCrypto,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/risk/limits/check/"+pos.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		PositionID string   `json:"position_id"`
		Violations []string `json:"violations"`
		Compliant  bool     `json:"compliant"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, pos.ID, result.PositionID)
	assert.False(t, result.Compliant)
	assert.Contains(t, result.Violations, "Stop loss is required but not set")

	req = httptest.NewRequest("GET", "/api/risk/limits/check/missing", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
