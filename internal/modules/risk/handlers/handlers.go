// Package handlers provides HTTP handlers for risk analysis operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/tradedeck/tradedeck/internal/modules/portfolio"
	"github.com/tradedeck/tradedeck/internal/modules/risk"
)

// Handler handles risk HTTP requests
type Handler struct {
	calculator *risk.Calculator
	registry   *risk.Registry
	ledger     *portfolio.Ledger
	service    *portfolio.Service
	log        zerolog.Logger
}

// NewHandler creates a new risk handler
func NewHandler(
	calculator *risk.Calculator,
	registry *risk.Registry,
	ledger *portfolio.Ledger,
	service *portfolio.Service,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		calculator: calculator,
		registry:   registry,
		ledger:     ledger,
		service:    service,
		log:        log.With().Str("handler", "risk").Logger(),
	}
}

// HandleGetMetrics handles GET /api/risk/metrics
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	portfolioValue := h.service.Metrics().TotalValue
	positions := h.ledger.List(portfolio.StatusOpen)

	h.writeJSON(w, http.StatusOK, h.calculator.Metrics(portfolioValue, positions))
}

// HandleGetPositionRisk handles GET /api/risk/positions/{id}
func (h *Handler) HandleGetPositionRisk(w http.ResponseWriter, r *http.Request, id string) {
	pos, err := h.ledger.Get(id)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Position not found")
		return
	}

	portfolioValue := h.service.Metrics().TotalValue
	h.writeJSON(w, http.StatusOK, h.calculator.PositionRisk(pos, portfolioValue))
}

// HandleGetExposure handles GET /api/risk/exposure
func (h *Handler) HandleGetExposure(w http.ResponseWriter, r *http.Request) {
	portfolioValue := h.service.Metrics().TotalValue
	positions := h.ledger.List(portfolio.StatusOpen)

	h.writeJSON(w, http.StatusOK, h.calculator.AnalyzeExposure(positions, portfolioValue))
}

// HandleGetPositionSizing handles GET /api/risk/position-sizing
func (h *Handler) HandleGetPositionSizing(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	balance, err := parsePositiveFloat(q.Get("account_balance"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid account_balance")
		return
	}
	riskPercent, err := parsePositiveFloat(q.Get("risk_percent"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid risk_percent")
		return
	}
	entryPrice, err := parsePositiveFloat(q.Get("entry_price"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid entry_price")
		return
	}
	stopLoss, err := parsePositiveFloat(q.Get("stop_loss"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid stop_loss")
		return
	}

	leverage := 1.0
	if raw := q.Get("leverage"); raw != "" {
		leverage, err = parsePositiveFloat(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid leverage")
			return
		}
	}

	sizing, err := h.calculator.PositionSizing(balance, riskPercent, entryPrice, stopLoss, leverage, h.registry.Limits())
	if err != nil {
		if errors.Is(err, risk.ErrZeroStopDistance) {
			h.writeError(w, http.StatusBadRequest, "Entry price and stop loss must differ")
			return
		}
		h.log.Error().Err(err).Msg("Position sizing failed")
		h.writeError(w, http.StatusInternalServerError, "Position sizing failed")
		return
	}

	h.writeJSON(w, http.StatusOK, sizing)
}

// HandleListAlerts handles GET /api/risk/alerts
func (h *Handler) HandleListAlerts(w http.ResponseWriter, r *http.Request) {
	severity := risk.Severity(r.URL.Query().Get("severity"))
	switch severity {
	case "", risk.SeverityLow, risk.SeverityMedium, risk.SeverityHigh, risk.SeverityCritical:
	default:
		h.writeError(w, http.StatusBadRequest, "Invalid severity filter: "+string(severity))
		return
	}

	h.writeJSON(w, http.StatusOK, h.registry.Alerts(severity))
}

// HandleGenerateAlert handles POST /api/risk/alerts
func (h *Handler) HandleGenerateAlert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type     risk.AlertType `json:"type"`
		Severity risk.Severity  `json:"severity"`
		Message  string         `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	switch req.Type {
	case risk.AlertHighRisk, risk.AlertMarginCall, risk.AlertCorrelation,
		risk.AlertConcentration, risk.AlertVolatility, risk.AlertDrawdown:
	default:
		h.writeError(w, http.StatusBadRequest, "Unknown alert type: "+string(req.Type))
		return
	}
	switch req.Severity {
	case risk.SeverityLow, risk.SeverityMedium, risk.SeverityHigh, risk.SeverityCritical:
	default:
		h.writeError(w, http.StatusBadRequest, "Unknown severity: "+string(req.Severity))
		return
	}

	h.writeJSON(w, http.StatusCreated, h.registry.Generate(req.Type, req.Severity, req.Message))
}

// HandleAcknowledgeAlert handles POST /api/risk/alerts/{id}/acknowledge
func (h *Handler) HandleAcknowledgeAlert(w http.ResponseWriter, r *http.Request, id string) {
	alert, err := h.registry.Acknowledge(id)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Alert not found")
		return
	}
	h.writeJSON(w, http.StatusOK, alert)
}

// HandleGetLimits handles GET /api/risk/limits
func (h *Handler) HandleGetLimits(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.registry.Limits())
}

// HandleUpdateLimits handles PUT /api/risk/limits
func (h *Handler) HandleUpdateLimits(w http.ResponseWriter, r *http.Request) {
	var req risk.LimitsUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, h.registry.UpdateLimits(req))
}

// HandleCheckLimits handles GET /api/risk/limits/check/{positionId}
func (h *Handler) HandleCheckLimits(w http.ResponseWriter, r *http.Request, id string) {
	pos, err := h.ledger.Get(id)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Position not found")
		return
	}

	portfolioValue := h.service.Metrics().TotalValue
	violations := h.calculator.CheckLimits(pos, portfolioValue, h.registry.Limits())

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"position_id": id,
		"violations":  violations,
		"compliant":   len(violations) == 0,
	})
}

func parsePositiveFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, errors.New("must be positive")
	}
	return v, nil
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
