// Package risk holds the risk calculator, risk limits and the alert registry.
package risk

import "time"

// AlertType is the taxonomy of advisory alerts.
type AlertType string

const (
	AlertHighRisk      AlertType = "high_risk"
	AlertMarginCall    AlertType = "margin_call"
	AlertCorrelation   AlertType = "correlation"
	AlertConcentration AlertType = "concentration"
	AlertVolatility    AlertType = "volatility"
	AlertDrawdown      AlertType = "drawdown"
)

// Severity is the advisory severity scale.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Metrics is the portfolio-level risk figure set. TotalExposure is computed
// from positions; the statistical fields are placeholder-sampled within
// plausible ranges (no price history exists to derive them from).
type Metrics struct {
	PortfolioValue  float64            `json:"portfolio_value"`
	TotalExposure   float64            `json:"total_exposure"`
	MaxDrawdown     float64            `json:"max_drawdown"`
	CurrentDrawdown float64            `json:"current_drawdown"`
	ValueAtRisk     float64            `json:"value_at_risk"`
	SharpeRatio     float64            `json:"sharpe_ratio"`
	SortinoRatio    float64            `json:"sortino_ratio"`
	Volatility      float64            `json:"volatility"`
	Beta            float64            `json:"beta"`
	Correlation     map[string]float64 `json:"correlation"`
}

// PositionRisk is the per-position risk breakdown.
type PositionRisk struct {
	PositionID        string   `json:"position_id"`
	Pair              string   `json:"pair"`
	Market            string   `json:"market"`
	PositionSize      float64  `json:"position_size"`
	RiskAmount        float64  `json:"risk_amount"`
	RiskPercent       float64  `json:"risk_percent"`
	LeverageUsed      float64  `json:"leverage_used"`
	MarginRequired    float64  `json:"margin_required"`
	LiquidationPrice  *float64 `json:"liquidation_price,omitempty"`
	RiskRewardRatio   float64  `json:"risk_reward_ratio"`
	ProbabilityOfLoss float64  `json:"probability_of_loss"`
	MaxLoss           float64  `json:"max_loss"`
	TimeAtRisk        float64  `json:"time_at_risk"` // hours since entry
}

// ExposureBucket is one group of the exposure breakdown.
type ExposureBucket struct {
	Exposure   float64 `json:"exposure"`
	Percentage float64 `json:"percentage"`
	Risk       float64 `json:"risk"`
}

// ExposureAnalysis groups exposure three ways and reports concentration risk.
// ConcentrationRisk is the largest per-market percentage when it exceeds 30%,
// otherwise 0 (a step function, not a continuous score).
type ExposureAnalysis struct {
	ByMarket          map[string]*ExposureBucket    `json:"by_market"`
	ByCurrency        map[string]*ExposureBucket    `json:"by_currency"`
	ByAssetClass      map[string]*ExposureBucket    `json:"by_asset_class"`
	CorrelationMatrix map[string]map[string]float64 `json:"correlation_matrix"`
	ConcentrationRisk float64                       `json:"concentration_risk"`
}

// PositionSizing is the result of the position-sizing calculator.
type PositionSizing struct {
	RecommendedSize  float64  `json:"recommended_size"`
	MaxSize          float64  `json:"max_size"`
	RiskAmount       float64  `json:"risk_amount"`
	RiskPercent      float64  `json:"risk_percent"`
	StopLossDistance float64  `json:"stop_loss_distance"`
	LeverageRequired float64  `json:"leverage_required"`
	MarginRequired   float64  `json:"margin_required"`
	Reasoning        []string `json:"reasoning"`
}

// Alert is an advisory risk record. Alerts are never deleted; acknowledging
// is the only mutation and is one-way.
type Alert struct {
	ID                string    `json:"id"`
	Type              AlertType `json:"type"`
	Severity          Severity  `json:"severity"`
	Title             string    `json:"title"`
	Message           string    `json:"message"`
	Recommendation    string    `json:"recommendation"`
	Timestamp         time.Time `json:"timestamp"`
	Acknowledged      bool      `json:"acknowledged"`
	AffectedPositions []string  `json:"affected_positions,omitempty"`
}

// Limits is the singleton risk-limit configuration.
type Limits struct {
	MaxPositionSize  float64 `json:"max_position_size"` // percent of portfolio per position
	MaxDailyLoss     float64 `json:"max_daily_loss"`    // percent
	MaxDrawdown      float64 `json:"max_drawdown"`      // percent
	MaxLeverage      float64 `json:"max_leverage"`
	MaxCorrelation   float64 `json:"max_correlation"`
	MaxConcentration float64 `json:"max_concentration"` // max percent in a single market
	StopLossRequired bool    `json:"stop_loss_required"`
	MaxOpenPositions int     `json:"max_open_positions"`
}

// LimitsUpdate is a partial merge of the limits record; nil fields are kept.
type LimitsUpdate struct {
	MaxPositionSize  *float64 `json:"max_position_size,omitempty"`
	MaxDailyLoss     *float64 `json:"max_daily_loss,omitempty"`
	MaxDrawdown      *float64 `json:"max_drawdown,omitempty"`
	MaxLeverage      *float64 `json:"max_leverage,omitempty"`
	MaxCorrelation   *float64 `json:"max_correlation,omitempty"`
	MaxConcentration *float64 `json:"max_concentration,omitempty"`
	StopLossRequired *bool    `json:"stop_loss_required,omitempty"`
	MaxOpenPositions *int     `json:"max_open_positions,omitempty"`
}

// DefaultLimits returns the limits applied on a fresh start.
func DefaultLimits() Limits {
	return Limits{
		MaxPositionSize:  10,
		MaxDailyLoss:     2,
		MaxDrawdown:      15,
		MaxLeverage:      10,
		MaxCorrelation:   0.7,
		MaxConcentration: 30,
		StopLossRequired: true,
		MaxOpenPositions: 15,
	}
}
