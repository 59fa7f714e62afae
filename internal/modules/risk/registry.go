package risk

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrAlertNotFound is returned when the referenced alert id does not exist.
var ErrAlertNotFound = errors.New("alert not found")

// alertTemplate supplies the title/message/recommendation for a generated
// alert when the caller does not override the message.
type alertTemplate struct {
	title          string
	message        string
	recommendation string
}

var alertTemplates = map[AlertType]alertTemplate{
	AlertHighRisk: {
		title:          "High Risk Position Detected",
		message:        "Position risk exceeds recommended levels",
		recommendation: "Consider reducing position size or tightening stop loss",
	},
	AlertMarginCall: {
		title:          "Margin Call Warning",
		message:        "Account approaching margin call levels",
		recommendation: "Add funds or close positions to maintain margin requirements",
	},
	AlertCorrelation: {
		title:          "High Correlation Risk",
		message:        "Multiple positions showing high correlation",
		recommendation: "Diversify positions to reduce correlation risk",
	},
	AlertConcentration: {
		title:          "Concentration Risk Alert",
		message:        "Portfolio concentration exceeds recommended limits",
		recommendation: "Rebalance portfolio across different markets",
	},
	AlertVolatility: {
		title:          "Volatility Alert",
		message:        "Market volatility has increased significantly",
		recommendation: "Monitor positions closely and consider risk adjustments",
	},
	AlertDrawdown: {
		title:          "Drawdown Alert",
		message:        "Portfolio drawdown approaching maximum limit",
		recommendation: "Review and close losing positions",
	},
}

// Registry owns the advisory alert list and the risk-limit configuration.
// Alerts are prepended on generation so reads come back newest-first without
// sorting.
type Registry struct {
	mu     sync.RWMutex
	alerts []*Alert
	limits Limits
	log    zerolog.Logger
}

// NewRegistry creates an alert registry with default limits and no alerts
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		alerts: make([]*Alert, 0),
		limits: DefaultLimits(),
		log:    log.With().Str("component", "alert_registry").Logger(),
	}
}

// Alerts returns alerts newest-first, optionally filtered by severity.
func (r *Registry) Alerts(severity Severity) []Alert {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		if severity != "" && a.Severity != severity {
			continue
		}
		result = append(result, *a)
	}
	return result
}

// Acknowledge marks an alert acknowledged. Acknowledging twice is a no-op,
// not an error.
func (r *Registry) Acknowledge(id string) (Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.alerts {
		if a.ID == id {
			a.Acknowledged = true
			return *a, nil
		}
	}
	return Alert{}, ErrAlertNotFound
}

// Generate creates an alert from the type's template. A non-empty message
// overrides the template message; an unknown type still produces an alert
// with the message as given.
func (r *Registry) Generate(alertType AlertType, severity Severity, message string) Alert {
	tmpl := alertTemplates[alertType]
	if message == "" {
		message = tmpl.message
	}

	alert := &Alert{
		ID:             uuid.New().String(),
		Type:           alertType,
		Severity:       severity,
		Title:          tmpl.title,
		Message:        message,
		Recommendation: tmpl.recommendation,
		Timestamp:      time.Now().UTC(),
		Acknowledged:   false,
	}

	r.mu.Lock()
	r.alerts = append([]*Alert{alert}, r.alerts...)
	r.mu.Unlock()

	r.log.Info().
		Str("id", alert.ID).
		Str("type", string(alertType)).
		Str("severity", string(severity)).
		Msg("Risk alert generated")

	return *alert
}

// Limits returns a copy of the current risk limits.
func (r *Registry) Limits() Limits {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.limits
}

// UpdateLimits merges the non-nil fields into the limits and returns the
// result.
func (r *Registry) UpdateLimits(update LimitsUpdate) Limits {
	r.mu.Lock()
	defer r.mu.Unlock()

	if update.MaxPositionSize != nil {
		r.limits.MaxPositionSize = *update.MaxPositionSize
	}
	if update.MaxDailyLoss != nil {
		r.limits.MaxDailyLoss = *update.MaxDailyLoss
	}
	if update.MaxDrawdown != nil {
		r.limits.MaxDrawdown = *update.MaxDrawdown
	}
	if update.MaxLeverage != nil {
		r.limits.MaxLeverage = *update.MaxLeverage
	}
	if update.MaxCorrelation != nil {
		r.limits.MaxCorrelation = *update.MaxCorrelation
	}
	if update.MaxConcentration != nil {
		r.limits.MaxConcentration = *update.MaxConcentration
	}
	if update.StopLossRequired != nil {
		r.limits.StopLossRequired = *update.StopLossRequired
	}
	if update.MaxOpenPositions != nil {
		r.limits.MaxOpenPositions = *update.MaxOpenPositions
	}

	r.log.Info().Msg("Risk limits updated")
	return r.limits
}

// SnapshotAlerts returns a copy of all alerts for state persistence.
func (r *Registry) SnapshotAlerts() []Alert {
	return r.Alerts("")
}

// Restore replaces the registry contents with a previously snapshotted state.
func (r *Registry) Restore(alerts []Alert, limits Limits) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.alerts = make([]*Alert, 0, len(alerts))
	for _, a := range alerts {
		stored := a
		r.alerts = append(r.alerts, &stored)
	}
	r.limits = limits

	r.log.Info().Int("alerts", len(alerts)).Msg("Alert registry restored from snapshot")
}

// SeedSampleAlerts loads the demo alerts shown on first start. Timestamps are
// spread over the last day so the newest-first ordering is visible.
func SeedSampleAlerts(r *Registry, rng *rand.Rand) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := time.Now().UTC()

	samples := []Alert{
		{
			Type:              AlertHighRisk,
			Severity:          SeverityHigh,
			Title:             "High Portfolio Risk Detected",
			Message:           "Current portfolio risk exceeds recommended levels",
			Recommendation:    "Consider reducing position sizes or closing some positions",
			AffectedPositions: []string{"pos_1", "pos_2"},
		},
		{
			Type:              AlertCorrelation,
			Severity:          SeverityMedium,
			Title:             "High Correlation Risk",
			Message:           "Multiple positions show high correlation (>0.8)",
			Recommendation:    "Diversify positions across different asset classes",
			AffectedPositions: []string{"pos_1", "pos_3"},
		},
		{
			Type:           AlertConcentration,
			Severity:       SeverityMedium,
			Title:          "Market Concentration Risk",
			Message:        "Over 40% of portfolio concentrated in crypto market",
			Recommendation: "Consider rebalancing across forex and stocks",
			Acknowledged:   true,
		},
		{
			Type:           AlertVolatility,
			Severity:       SeverityLow,
			Title:          "Increased Market Volatility",
			Message:        "Market volatility has increased by 25% in the last 24 hours",
			Recommendation: "Monitor positions closely and consider tightening stop losses",
		},
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.alerts = make([]*Alert, 0, len(samples))
	for i := range samples {
		a := samples[i]
		a.ID = uuid.New().String()
		a.Timestamp = now.Add(-time.Duration((i+1)*4) * time.Hour).Add(-time.Duration(rng.Intn(3600)) * time.Second)
		r.alerts = append(r.alerts, &a)
	}
}
