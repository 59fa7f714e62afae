package comparison

import (
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradedeck/tradedeck/pkg/formulas"
)

// basePrices anchors the simulated price per known symbol substring. Unknown
// symbols start at 100.
var basePrices = []struct {
	substr string
	price  float64
}{
	{"BTC", 45000},
	{"ETH", 2800},
	{"EUR", 1.085},
	{"GBP", 1.27},
	{"AAPL", 175},
	{"GOOGL", 140},
	{"TSLA", 220},
}

var rankedPeriods = []string{"1d", "7d", "30d"}

// Service computes cross-asset comparisons. Correlations are Pearson
// coefficients over synthesized daily return series rather than raw random
// draws, so the matrix is symmetric with a unit diagonal.
type Service struct {
	rngMu sync.Mutex
	rng   *rand.Rand
	log   zerolog.Logger
}

// NewService creates a comparison service. A nil rng gets a time-based seed.
func NewService(rng *rand.Rand, log zerolog.Logger) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		rng: rng,
		log: log.With().Str("service", "comparison").Logger(),
	}
}

// Compare builds the full comparison for the given symbols.
func (s *Service) Compare(symbols []string) Comparison {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	assets := make([]Metrics, 0, len(symbols))
	returnsBySymbol := make(map[string][]float64, len(symbols))

	for _, symbol := range symbols {
		volatility := 0.1 + s.rng.Float64()*0.4
		basePrice := baseFor(symbol)
		currentPrice := basePrice * (1 + (s.rng.Float64()-0.5)*2*volatility)
		change24h := currentPrice * (s.rng.Float64() - 0.5) * 0.1

		closes := s.syntheticCloses(currentPrice, 60, volatility)
		returnsBySymbol[symbol] = formulas.CalculateReturns(closes)

		rsi := 50.0
		if v := formulas.CalculateRSI(closes, 14); v != nil {
			rsi = *v
		}
		macd := 0.0
		if v := formulas.CalculateMACD(closes); v != nil {
			macd = *v
		}

		var marketCap *float64
		if hasMarketCap(symbol) {
			mc := s.rng.Float64() * 2e12
			marketCap = &mc
		}

		assets = append(assets, Metrics{
			Symbol:           symbol,
			Market:           marketFor(symbol),
			CurrentPrice:     currentPrice,
			Change24H:        change24h,
			ChangePercent24H: change24h / currentPrice * 100,
			Volume24H:        s.rng.Float64() * 1e9,
			MarketCap:        marketCap,
			Volatility:       volatility,
			SharpeRatio:      -0.5 + s.rng.Float64()*3,
			MaxDrawdown:      -s.rng.Float64() * 30,
			Correlation:      s.rng.Float64()*0.8 - 0.4,
			Beta:             0.5 + s.rng.Float64()*1.5,
			RSI:              rsi,
			MACD:             macd,
			Performance: map[string]float64{
				"1d":  (s.rng.Float64() - 0.5) * 10,
				"7d":  (s.rng.Float64() - 0.5) * 20,
				"30d": (s.rng.Float64() - 0.5) * 40,
				"90d": (s.rng.Float64() - 0.5) * 60,
				"1y":  (s.rng.Float64() - 0.5) * 100,
			},
		})
	}

	matrix := make(map[string]map[string]float64, len(symbols))
	for _, a := range symbols {
		matrix[a] = make(map[string]float64, len(symbols))
		for _, b := range symbols {
			if a == b {
				matrix[a][b] = 1
				continue
			}
			matrix[a][b] = round3(formulas.Correlation(returnsBySymbol[a], returnsBySymbol[b]))
		}
	}

	best := make(map[string][]Metrics, len(rankedPeriods))
	worst := make(map[string][]Metrics, len(rankedPeriods))
	for _, period := range rankedPeriods {
		best[period] = rankByPerformance(assets, period, false)
		worst[period] = rankByPerformance(assets, period, true)
	}

	return Comparison{
		Assets:            assets,
		CorrelationMatrix: matrix,
		BestPerformers:    best,
		WorstPerformers:   worst,
		MarketSummary:     s.summarize(assets),
	}
}

// Correlation computes the pairwise correlation for two symbols over
// synthesized 31-day series, with a 30-day history wobbling around the
// headline figure.
func (s *Service) Correlation(symbol1, symbol2 string) PairCorrelation {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	closes1 := s.syntheticCloses(baseFor(symbol1), 31, 0.02)
	closes2 := s.syntheticCloses(baseFor(symbol2), 31, 0.02)
	correlation := round3(formulas.Correlation(
		formulas.CalculateReturns(closes1),
		formulas.CalculateReturns(closes2),
	))

	abs := math.Abs(correlation)
	strength := "strong"
	if abs < 0.3 {
		strength = "weak"
	} else if abs < 0.7 {
		strength = "moderate"
	}

	direction := "positive"
	if correlation < 0 {
		direction = "negative"
	}

	now := time.Now().UTC()
	history := make([]CorrelationPoint, 0, 30)
	for i := 0; i < 30; i++ {
		history = append(history, CorrelationPoint{
			Date:        now.AddDate(0, 0, -(29 - i)),
			Correlation: clamp(correlation+(s.rng.Float64()-0.5)*0.2, -1, 1),
		})
	}

	return PairCorrelation{
		Symbol1:        symbol1,
		Symbol2:        symbol2,
		Correlation:    correlation,
		Strength:       strength,
		Direction:      direction,
		HistoricalData: history,
	}
}

// syntheticCloses random-walks a close series ending at endPrice, with the
// given per-bar volatility. Caller holds the RNG lock.
func (s *Service) syntheticCloses(endPrice float64, bars int, volatility float64) []float64 {
	closes := make([]float64, bars)
	price := endPrice
	for i := bars - 1; i >= 0; i-- {
		closes[i] = price
		price /= 1 + (s.rng.Float64()-0.5)*2*volatility
	}
	return closes
}

func (s *Service) summarize(assets []Metrics) MarketSummary {
	var totalCap, volSum, corrSum float64
	for _, a := range assets {
		if a.MarketCap != nil {
			totalCap += *a.MarketCap
		}
		volSum += a.Volatility
		corrSum += math.Abs(a.Correlation)
	}

	summary := MarketSummary{TotalMarketCap: totalCap}
	if len(assets) > 0 {
		summary.AvgVolatility = volSum / float64(len(assets))
		summary.AvgCorrelation = corrSum / float64(len(assets))
	}

	switch roll := s.rng.Float64(); {
	case roll > 0.6:
		summary.MarketSentiment = "bullish"
	case roll > 0.3:
		summary.MarketSentiment = "neutral"
	default:
		summary.MarketSentiment = "bearish"
	}

	return summary
}

// rankByPerformance returns the top three assets for the period.
func rankByPerformance(assets []Metrics, period string, ascending bool) []Metrics {
	ranked := make([]Metrics, len(assets))
	copy(ranked, assets)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ascending {
			return ranked[i].Performance[period] < ranked[j].Performance[period]
		}
		return ranked[i].Performance[period] > ranked[j].Performance[period]
	})

	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	return ranked
}

func baseFor(symbol string) float64 {
	for _, bp := range basePrices {
		if strings.Contains(symbol, bp.substr) {
			return bp.price
		}
	}
	return 100
}

func marketFor(symbol string) string {
	switch {
	case strings.Contains(symbol, "BTC") || strings.Contains(symbol, "ETH"):
		return "crypto"
	case strings.Contains(symbol, "EUR") || strings.Contains(symbol, "GBP"):
		return "forex"
	default:
		return "stocks"
	}
}

func hasMarketCap(symbol string) bool {
	for _, s := range []string{"BTC", "ETH", "AAPL", "GOOGL", "TSLA"} {
		if strings.Contains(symbol, s) {
			return true
		}
	}
	return false
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
