package market

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Per-market tick volatility. Each board read applies one random tick of at
// most this fraction in either direction.
var marketVolatility = map[string]float64{
	"forex":  0.01,
	"stocks": 0.03,
	"crypto": 0.05,
}

// historicalVolatility is the per-bar amplitude of synthesized candles.
const historicalVolatility = 0.02

// Service is the simulated market-data feed. The board random-walks in place:
// every read advances all prices by one tick, so consecutive reads look like
// live data.
type Service struct {
	mu    sync.Mutex
	board []Quote
	rng   *rand.Rand
	log   zerolog.Logger
}

// NewService creates a market data service seeded with the default board.
// A nil rng gets a time-based seed; tests pass a fixed seed.
func NewService(rng *rand.Rand, log zerolog.Logger) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Service{
		rng: rng,
		log: log.With().Str("service", "market").Logger(),
	}
	s.board = seedBoard()
	return s
}

func seedBoard() []Quote {
	now := time.Now().UTC()
	quotes := []Quote{
		{Pair: "EUR/USD", Market: "forex", Price: 1.0847},
		{Pair: "GBP/USD", Market: "forex", Price: 1.2634},
		{Pair: "USD/JPY", Market: "forex", Price: 149.82},
		{Pair: "AUD/USD", Market: "forex", Price: 0.6543},
		{Pair: "USD/CHF", Market: "forex", Price: 0.8765},
		{Pair: "BTC/USD", Market: "crypto", Price: 43247, Volume: 2.4e9},
		{Pair: "ETH/USD", Market: "crypto", Price: 2587, Volume: 1.8e9},
		{Pair: "ADA/USD", Market: "crypto", Price: 0.4821, Volume: 456e6},
		{Pair: "SOL/USD", Market: "crypto", Price: 98.45, Volume: 892e6},
		{Pair: "DOT/USD", Market: "crypto", Price: 7.23, Volume: 234e6},
		{Pair: "AAPL", Market: "stocks", Price: 189.47, Volume: 45.2e6},
		{Pair: "TSLA", Market: "stocks", Price: 248.91, Volume: 67.8e6},
		{Pair: "NVDA", Market: "stocks", Price: 456.78, Volume: 89.1e6},
		{Pair: "GOOGL", Market: "stocks", Price: 142.56, Volume: 23.4e6},
		{Pair: "MSFT", Market: "stocks", Price: 378.92, Volume: 34.7e6},
	}
	for i := range quotes {
		quotes[i].Trend = TrendUp
		quotes[i].Timestamp = now
	}
	return quotes
}

// tick advances every quote by one random move. Caller holds the lock.
func (s *Service) tick() {
	now := time.Now().UTC()
	for i := range s.board {
		q := &s.board[i]
		volatility := marketVolatility[q.Market]
		changePercent := (s.rng.Float64() - 0.5) * volatility * 2
		newPrice := q.Price * (1 + changePercent)

		q.Change = newPrice - q.Price
		q.ChangePercent = changePercent * 100
		q.Price = newPrice
		q.Timestamp = now
		if q.Change >= 0 {
			q.Trend = TrendUp
		} else {
			q.Trend = TrendDown
		}
	}
}

// Board advances all prices by one tick and returns the full board.
func (s *Service) Board() Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tick()

	var board Board
	for _, q := range s.board {
		switch q.Market {
		case "forex":
			board.Forex = append(board.Forex, q)
		case "crypto":
			board.Crypto = append(board.Crypto, q)
		case "stocks":
			board.Stocks = append(board.Stocks, q)
		}
	}
	return board
}

// ByMarket advances all prices by one tick and returns one market's quotes.
func (s *Service) ByMarket(market string) ([]Quote, error) {
	if _, ok := marketVolatility[market]; !ok {
		return nil, fmt.Errorf("unknown market %q", market)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tick()

	quotes := make([]Quote, 0, 5)
	for _, q := range s.board {
		if q.Market == market {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}

// Prices returns the current price per pair without advancing the walk. Used
// by the ledger price-refresh job.
func (s *Service) Prices() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	prices := make(map[string]float64, len(s.board))
	for _, q := range s.board {
		prices[q.Pair] = q.Price
	}
	return prices
}

// Historical synthesizes OHLCV candles for a pair. The walk starts at the
// pair's current board price, or 100 for unknown symbols, and each bar closes
// within the historical volatility band of its open.
func (s *Service) Historical(pair string, timeframe Timeframe) ([]Candle, error) {
	spec, ok := timeframeSpec[timeframe]
	if !ok {
		return nil, fmt.Errorf("unknown timeframe %q", timeframe)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	basePrice := 100.0
	for _, q := range s.board {
		if q.Pair == pair {
			basePrice = q.Price
			break
		}
	}

	now := time.Now().UTC()
	candles := make([]Candle, 0, spec.intervals)
	for i := 0; i < spec.intervals; i++ {
		change := (s.rng.Float64() - 0.5) * historicalVolatility
		open := basePrice
		close := basePrice * (1 + change)
		high := math.Max(open, close) * (1 + s.rng.Float64()*0.01)
		low := math.Min(open, close) * (1 - s.rng.Float64()*0.01)

		candles = append(candles, Candle{
			Timestamp: now.Add(-time.Duration(spec.intervals-i) * spec.step),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    s.rng.Float64() * 1e6,
		})
		basePrice = close
	}

	return candles, nil
}
