// Package portfolio holds the position ledger and portfolio analytics.
package portfolio

import "time"

// Direction is the side of a position.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Status is the lifecycle state of a position.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Market is the market category a position belongs to.
type Market string

const (
	MarketForex  Market = "forex"
	MarketCrypto Market = "crypto"
	MarketStocks Market = "stocks"
)

// Markets lists all known market categories in presentation order.
var Markets = []Market{MarketForex, MarketCrypto, MarketStocks}

// Position is a single trade record. PnL and PnLPercent are derived fields,
// recomputed on every price change; they are never set directly.
//
// PnL is net of fees. PnLPercent is computed on the gross (pre-fee) P&L over
// the entry notional.
type Position struct {
	ID           string    `json:"id"`
	Pair         string    `json:"pair"`
	Direction    Direction `json:"direction"`
	EntryPrice   float64   `json:"entry_price"`
	CurrentPrice float64   `json:"current_price"`
	Quantity     float64   `json:"quantity"`
	EntryDate    time.Time `json:"entry_date"`
	Status       Status    `json:"status"`
	StopLoss     *float64  `json:"stop_loss,omitempty"`
	TakeProfit   *float64  `json:"take_profit,omitempty"`
	Fees         float64   `json:"fees"`
	Market       Market    `json:"market"`
	PnL          float64   `json:"pnl"`
	PnLPercent   float64   `json:"pnl_percent"`
}

// PositionUpdate is a partial update of the editable risk fields.
type PositionUpdate struct {
	StopLoss   *float64 `json:"stop_loss,omitempty"`
	TakeProfit *float64 `json:"take_profit,omitempty"`
}

// Metrics is a snapshot of portfolio-level statistics, recomputed from the
// ledger on every call.
type Metrics struct {
	TotalValue      float64 `json:"total_value"`
	TotalPnL        float64 `json:"total_pnl"`
	TotalPnLPercent float64 `json:"total_pnl_percent"`
	DayPnL          float64 `json:"day_pnl"`
	DayPnLPercent   float64 `json:"day_pnl_percent"`
	OpenPositions   int     `json:"open_positions"`
	ClosedPositions int     `json:"closed_positions"`
	WinRate         float64 `json:"win_rate"`
	AvgWin          float64 `json:"avg_win"`
	AvgLoss         float64 `json:"avg_loss"`
	SharpeRatio     float64 `json:"sharpe_ratio"`
	MaxDrawdown     float64 `json:"max_drawdown"`
	TotalFees       float64 `json:"total_fees"`
}

// Allocation is one row of the per-market allocation breakdown. Percentages
// use total portfolio value as denominator, so rows need not sum to 100.
type Allocation struct {
	Market     Market  `json:"market"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
	PnL        float64 `json:"pnl"`
	Positions  int     `json:"positions"`
}

// PerformancePoint is one day of the synthesized equity curve.
type PerformancePoint struct {
	Date           time.Time `json:"date"`
	PortfolioValue float64   `json:"portfolio_value"`
	PnL            float64   `json:"pnl"`
	Drawdown       float64   `json:"drawdown"`
}
