package signals

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tradedeck/tradedeck/pkg/formulas"
)

// ErrSignalNotFound is returned when the referenced signal id does not exist.
var ErrSignalNotFound = errors.New("signal not found")

var marketPairs = map[string][]string{
	"forex":  {"EUR/USD", "GBP/USD", "USD/JPY", "AUD/USD", "USD/CHF"},
	"crypto": {"BTC/USD", "ETH/USD", "ADA/USD", "SOL/USD", "DOT/USD"},
	"stocks": {"AAPL", "TSLA", "NVDA", "GOOGL", "MSFT"},
}

var buyReasons = []string{
	"RSI showing oversold recovery",
	"MACD bullish crossover confirmed",
	"Price breaking above key resistance",
	"Volume increasing on upward moves",
	"Bullish divergence detected",
	"Support level holding strong",
	"Moving averages aligning bullishly",
	"Momentum indicators turning positive",
}

var sellReasons = []string{
	"RSI showing overbought conditions",
	"MACD bearish crossover confirmed",
	"Price failing at resistance level",
	"Volume decreasing on rallies",
	"Bearish divergence detected",
	"Resistance level acting as ceiling",
	"Moving averages turning bearish",
	"Momentum indicators weakening",
}

// Service is the in-memory signal store. New signals are prepended so reads
// come back newest-first; the seeded batch is ordered by confidence instead.
type Service struct {
	mu      sync.RWMutex
	signals []*Signal
	rng     *rand.Rand
	log     zerolog.Logger
}

// NewService creates a signal service. A nil rng gets a time-based seed.
func NewService(rng *rand.Rand, log zerolog.Logger) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		signals: make([]*Signal, 0),
		rng:     rng,
		log:     log.With().Str("service", "signals").Logger(),
	}
}

// SeedSampleSignals generates the demo batch: three signals per market,
// ordered by confidence descending.
func (s *Service) SeedSampleSignals() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.signals = s.signals[:0]
	for _, market := range []string{"forex", "crypto", "stocks"} {
		for _, pair := range marketPairs[market][:3] {
			sig := s.synthesize(pair, market, false)
			s.signals = append(s.signals, sig)
		}
	}

	sort.Slice(s.signals, func(i, j int) bool {
		return s.signals[i].Confidence > s.signals[j].Confidence
	})
}

// synthesize builds one signal. Indicator values come from a synthesized
// close series so RSI/MACD/Bollinger are internally consistent rather than
// independent random draws. Caller holds the lock (for the shared RNG).
func (s *Service) synthesize(pair, market string, fresh bool) *Signal {
	sigType := TypeSell
	if s.rng.Float64() > 0.5 {
		sigType = TypeBuy
	}

	strengths := []Strength{StrengthWeak, StrengthModerate, StrengthStrong, StrengthVeryStrong}
	strength := strengths[s.rng.Intn(len(strengths))]
	confidence := math.Round(60 + s.rng.Float64()*40)
	if fresh {
		strength = strengths[1+s.rng.Intn(3)]
		confidence = math.Round(70 + s.rng.Float64()*30)
	}

	currentPrice := 100 + s.rng.Float64()*400
	entryPrice := currentPrice * (1 + (s.rng.Float64()-0.5)*0.02)

	stopDistance := 0.02 + s.rng.Float64()*0.03
	profitDistance := 0.03 + s.rng.Float64()*0.05

	stopLoss := entryPrice * (1 + stopDistance)
	takeProfit := []float64{
		entryPrice * (1 - profitDistance),
		entryPrice * (1 - profitDistance*1.5),
		entryPrice * (1 - profitDistance*2),
	}
	if sigType == TypeBuy {
		stopLoss = entryPrice * (1 - stopDistance)
		takeProfit = []float64{
			entryPrice * (1 + profitDistance),
			entryPrice * (1 + profitDistance*1.5),
			entryPrice * (1 + profitDistance*2),
		}
	}

	closes := s.syntheticCloses(currentPrice, 60)
	indicators := TechnicalIndicators{
		RSI:           50,
		Bollinger:     "middle",
		MovingAverage: "below",
		Volume:        []string{"high", "normal", "low"}[s.rng.Intn(3)],
	}
	if rsi := formulas.CalculateRSI(closes, 14); rsi != nil {
		indicators.RSI = *rsi
	}
	if macd := formulas.CalculateMACD(closes); macd != nil {
		indicators.MACD = *macd
	}
	if zone := formulas.CalculateBollingerZone(closes); zone != "" {
		indicators.Bollinger = zone
	}
	if s.rng.Float64() > 0.5 {
		indicators.MovingAverage = "above"
	}

	timestamp := time.Now().UTC()
	status := StatusActive
	timeframe := []string{"4h", "1d"}[s.rng.Intn(2)]
	moveTimeframe := "1-3 days"
	if !fresh {
		timestamp = timestamp.Add(-time.Duration(s.rng.Float64() * 24 * float64(time.Hour)))
		if s.rng.Float64() > 0.8 {
			status = StatusTriggered
		}
		timeframe = []string{"1h", "4h", "1d", "1w"}[s.rng.Intn(4)]
		moveTimeframe = []string{"1-2 days", "3-5 days", "1 week"}[s.rng.Intn(3)]
	}

	direction := "down"
	if sigType == TypeBuy {
		direction = "up"
	}

	var priceAlert *float64
	if !fresh && s.rng.Float64() > 0.5 {
		alert := entryPrice * (1 + (s.rng.Float64()-0.5)*0.01)
		priceAlert = &alert
	}

	return &Signal{
		ID:                  uuid.New().String(),
		Pair:                pair,
		Market:              market,
		Type:                sigType,
		Strength:            strength,
		Confidence:          confidence,
		EntryPrice:          round4(entryPrice),
		CurrentPrice:        round4(currentPrice),
		StopLoss:            round4(stopLoss),
		TakeProfit:          []float64{round4(takeProfit[0]), round4(takeProfit[1]), round4(takeProfit[2])},
		Timeframe:           timeframe,
		Timestamp:           timestamp,
		Status:              status,
		Reasoning:           s.reasoning(sigType, strength),
		TechnicalIndicators: indicators,
		RiskReward:          round2(math.Abs(takeProfit[0]-entryPrice) / math.Abs(entryPrice-stopLoss)),
		ExpectedMove: ExpectedMove{
			Direction:  direction,
			Percentage: 2 + s.rng.Float64()*8,
			Timeframe:  moveTimeframe,
		},
		Alerts: Alerts{PriceAlert: priceAlert},
	}
}

// syntheticCloses random-walks a close series ending near the given price.
func (s *Service) syntheticCloses(endPrice float64, bars int) []float64 {
	closes := make([]float64, bars)
	price := endPrice
	for i := bars - 1; i >= 0; i-- {
		closes[i] = price
		price /= 1 + (s.rng.Float64()-0.5)*0.04
	}
	return closes
}

// reasoning picks 2-4 lines from the type's pool depending on strength.
func (s *Service) reasoning(t Type, strength Strength) []string {
	pool := sellReasons
	if t == TypeBuy {
		pool = buyReasons
	}

	count := 2
	switch strength {
	case StrengthStrong:
		count = 3
	case StrengthVeryStrong:
		count = 4
	}

	picked := make([]string, len(pool))
	copy(picked, pool)
	s.rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:count]
}

// List returns signals matching the filters, in store order.
func (s *Service) List(f Filters) []Signal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Signal, 0, len(s.signals))
	for _, sig := range s.signals {
		if f.Market != "" && sig.Market != f.Market {
			continue
		}
		if f.Type != "" && sig.Type != f.Type {
			continue
		}
		if f.Strength != "" && sig.Strength != f.Strength {
			continue
		}
		if f.Status != "" && sig.Status != f.Status {
			continue
		}
		if f.MinConfidence > 0 && sig.Confidence < f.MinConfidence {
			continue
		}
		result = append(result, *sig)
	}
	return result
}

// Get returns a signal by id
func (s *Service) Get(id string) (Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sig := range s.signals {
		if sig.ID == id {
			return *sig, nil
		}
	}
	return Signal{}, ErrSignalNotFound
}

// Stats aggregates the signal book. Win/loss figures are derived from signals
// that have left the active state, scored on current vs entry price.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		SignalsByStrength: make(map[string]int),
		SignalsByMarket:   make(map[string]int),
	}

	var completed int
	var wins int
	var pnlSum, durationSum float64
	best, worst := math.Inf(-1), math.Inf(1)

	for _, sig := range s.signals {
		stats.TotalSignals++
		stats.SignalsByStrength[string(sig.Strength)]++
		stats.SignalsByMarket[string(sig.Market)]++

		if sig.Status == StatusActive {
			stats.ActiveSignals++
			continue
		}

		pnl := sig.CurrentPrice - sig.EntryPrice
		if sig.Type == TypeSell {
			pnl = -pnl
		}

		completed++
		if pnl > 0 {
			wins++
		}
		pnlSum += pnl
		durationSum += time.Since(sig.Timestamp).Hours()
		best = math.Max(best, pnl)
		worst = math.Min(worst, pnl)
	}

	if completed > 0 {
		stats.WinRate = float64(wins) / float64(completed) * 100
		stats.AvgPnL = pnlSum / float64(completed)
		stats.AvgDuration = durationSum / float64(completed)
		stats.BestSignal = best
		stats.WorstSignal = worst
	}

	return stats
}

// UpdatePrices applies market prices to active signals. Returns the number of
// signals updated.
func (s *Service) UpdatePrices(prices map[string]float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for _, sig := range s.signals {
		if sig.Status != StatusActive {
			continue
		}
		price, ok := prices[sig.Pair]
		if !ok {
			continue
		}
		sig.CurrentPrice = price
		updated++
	}
	return updated
}

// Trigger marks a signal as executed and fires its alert.
func (s *Service) Trigger(id string) (Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sig := range s.signals {
		if sig.ID == id {
			sig.Status = StatusTriggered
			sig.Alerts.Triggered = true
			s.log.Info().Str("id", id).Str("pair", sig.Pair).Msg("Signal triggered")
			return *sig, nil
		}
	}
	return Signal{}, ErrSignalNotFound
}

// Cancel marks a signal as cancelled.
func (s *Service) Cancel(id string) (Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sig := range s.signals {
		if sig.ID == id {
			sig.Status = StatusCancelled
			s.log.Info().Str("id", id).Str("pair", sig.Pair).Msg("Signal cancelled")
			return *sig, nil
		}
	}
	return Signal{}, ErrSignalNotFound
}

// Generate creates count fresh active signals and prepends them to the store.
func (s *Service) Generate(count int) []Signal {
	if count <= 0 {
		count = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	markets := []string{"forex", "crypto", "stocks"}
	created := make([]Signal, 0, count)
	fresh := make([]*Signal, 0, count)

	for i := 0; i < count; i++ {
		market := markets[s.rng.Intn(len(markets))]
		pair := marketPairs[market][s.rng.Intn(3)]
		sig := s.synthesize(pair, market, true)
		fresh = append(fresh, sig)
		created = append(created, *sig)
	}

	s.signals = append(fresh, s.signals...)

	s.log.Info().Int("count", count).Msg("Signals generated")
	return created
}

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
