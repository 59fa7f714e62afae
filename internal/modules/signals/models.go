// Package signals holds the advisory trading-signal store.
package signals

import "time"

// Type is the signal direction.
type Type string

const (
	TypeBuy  Type = "buy"
	TypeSell Type = "sell"
)

// Strength is the conviction scale of a signal.
type Strength string

const (
	StrengthWeak       Strength = "weak"
	StrengthModerate   Strength = "moderate"
	StrengthStrong     Strength = "strong"
	StrengthVeryStrong Strength = "very_strong"
)

// Status is the lifecycle state of a signal.
type Status string

const (
	StatusActive    Status = "active"
	StatusTriggered Status = "triggered"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// TechnicalIndicators is the indicator snapshot attached to a signal. RSI and
// MACD are computed over a synthesized close series; the rest are sampled.
type TechnicalIndicators struct {
	RSI           float64 `json:"rsi"`
	MACD          float64 `json:"macd"`
	Bollinger     string  `json:"bollinger"`      // upper / middle / lower
	MovingAverage string  `json:"moving_average"` // above / below
	Volume        string  `json:"volume"`         // high / normal / low
}

// ExpectedMove describes the anticipated price move.
type ExpectedMove struct {
	Direction  string  `json:"direction"` // up / down
	Percentage float64 `json:"percentage"`
	Timeframe  string  `json:"timeframe"`
}

// Alerts holds the optional price alert attached to a signal.
type Alerts struct {
	PriceAlert *float64 `json:"price_alert,omitempty"`
	Triggered  bool     `json:"triggered"`
}

// Signal is one advisory trading signal.
type Signal struct {
	ID                  string              `json:"id"`
	Pair                string              `json:"pair"`
	Market              string              `json:"market"`
	Type                Type                `json:"type"`
	Strength            Strength            `json:"strength"`
	Confidence          float64             `json:"confidence"` // 0-100
	EntryPrice          float64             `json:"entry_price"`
	CurrentPrice        float64             `json:"current_price"`
	StopLoss            float64             `json:"stop_loss"`
	TakeProfit          []float64           `json:"take_profit"`
	Timeframe           string              `json:"timeframe"`
	Timestamp           time.Time           `json:"timestamp"`
	Status              Status              `json:"status"`
	Reasoning           []string            `json:"reasoning"`
	TechnicalIndicators TechnicalIndicators `json:"technical_indicators"`
	RiskReward          float64             `json:"risk_reward"`
	ExpectedMove        ExpectedMove        `json:"expected_move"`
	Alerts              Alerts              `json:"alerts"`
}

// Filters narrows a signal listing. Zero values match everything.
type Filters struct {
	Market        string
	Type          Type
	Strength      Strength
	Status        Status
	MinConfidence float64
}

// Stats is the aggregate view over all signals. Win/loss figures cover
// signals that have left the active state.
type Stats struct {
	TotalSignals      int            `json:"total_signals"`
	ActiveSignals     int            `json:"active_signals"`
	WinRate           float64        `json:"win_rate"`
	AvgPnL            float64        `json:"avg_pnl"`
	BestSignal        float64        `json:"best_signal"`
	WorstSignal       float64        `json:"worst_signal"`
	AvgDuration       float64        `json:"avg_duration"` // hours
	SignalsByStrength map[string]int `json:"signals_by_strength"`
	SignalsByMarket   map[string]int `json:"signals_by_market"`
}
