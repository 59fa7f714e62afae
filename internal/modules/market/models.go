// Package market simulates real-time quote boards for forex, crypto and stocks.
package market

import "time"

// Trend is the direction of the latest tick.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// Quote is one instrument on the board. Change fields describe the latest
// simulated tick, not a 24h window.
type Quote struct {
	Pair          string    `json:"pair"`
	Market        string    `json:"market"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Trend         Trend     `json:"trend"`
	Volume        float64   `json:"volume,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Board groups quotes by market in presentation order.
type Board struct {
	Forex  []Quote `json:"forex"`
	Crypto []Quote `json:"crypto"`
	Stocks []Quote `json:"stocks"`
}

// Candle is one synthesized OHLCV bar.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Timeframe selects the candle interval for historical data.
type Timeframe string

const (
	Timeframe1H Timeframe = "1h"
	Timeframe4H Timeframe = "4h"
	Timeframe1D Timeframe = "1d"
	Timeframe1W Timeframe = "1w"
)

// timeframeSpec maps a timeframe to its bar count and interval.
var timeframeSpec = map[Timeframe]struct {
	intervals int
	step      time.Duration
}{
	Timeframe1H: {24, time.Hour},
	Timeframe4H: {24, 4 * time.Hour},
	Timeframe1D: {30, 24 * time.Hour},
	Timeframe1W: {52, 7 * 24 * time.Hour},
}
