// Package comparison offers cross-asset metric comparison and correlation
// analysis over simulated data.
package comparison

import "time"

// Metrics is the per-symbol comparison row. Statistical fields are sampled;
// RSI/MACD are computed over a synthesized close series.
type Metrics struct {
	Symbol           string             `json:"symbol"`
	Market           string             `json:"market"`
	CurrentPrice     float64            `json:"current_price"`
	Change24H        float64            `json:"change_24h"`
	ChangePercent24H float64            `json:"change_percent_24h"`
	Volume24H        float64            `json:"volume_24h"`
	MarketCap        *float64           `json:"market_cap,omitempty"`
	Volatility       float64            `json:"volatility"`
	SharpeRatio      float64            `json:"sharpe_ratio"`
	MaxDrawdown      float64            `json:"max_drawdown"`
	Correlation      float64            `json:"correlation"`
	Beta             float64            `json:"beta"`
	RSI              float64            `json:"rsi"`
	MACD             float64            `json:"macd"`
	Performance      map[string]float64 `json:"performance"` // 1d/7d/30d/90d/1y
}

// Comparison is the full multi-asset comparison result.
type Comparison struct {
	Assets            []Metrics                     `json:"assets"`
	CorrelationMatrix map[string]map[string]float64 `json:"correlation_matrix"`
	BestPerformers    map[string][]Metrics          `json:"best_performers"`  // 1d/7d/30d
	WorstPerformers   map[string][]Metrics          `json:"worst_performers"` // 1d/7d/30d
	MarketSummary     MarketSummary                 `json:"market_summary"`
}

// MarketSummary aggregates the compared assets.
type MarketSummary struct {
	TotalMarketCap  float64 `json:"total_market_cap"`
	AvgVolatility   float64 `json:"avg_volatility"`
	AvgCorrelation  float64 `json:"avg_correlation"`
	MarketSentiment string  `json:"market_sentiment"` // bullish / neutral / bearish
}

// CorrelationPoint is one day of the pairwise correlation history.
type CorrelationPoint struct {
	Date        time.Time `json:"date"`
	Correlation float64   `json:"correlation"`
}

// PairCorrelation is the pairwise correlation result.
type PairCorrelation struct {
	Symbol1        string             `json:"symbol1"`
	Symbol2        string             `json:"symbol2"`
	Correlation    float64            `json:"correlation"`
	Strength       string             `json:"strength"`  // weak / moderate / strong
	Direction      string             `json:"direction"` // positive / negative
	HistoricalData []CorrelationPoint `json:"historical_data"`
}
