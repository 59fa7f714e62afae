package risk

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradedeck/tradedeck/internal/modules/portfolio"
)

// ErrZeroStopDistance is returned by PositionSizing when entry and stop loss
// coincide, which would make the size division blow up.
var ErrZeroStopDistance = errors.New("entry price and stop loss must differ")

// marginRate is the assumed margin requirement for leverage arithmetic.
const marginRate = 0.10

// fallbackStopFraction stands in for a missing stop loss when estimating
// per-position risk: a 2% adverse move against entry.
const fallbackStopFraction = 0.02

// defaultRiskReward is reported when a position has no take-profit to derive
// the ratio from.
const defaultRiskReward = 1.5

// Calculator produces risk figures from ledger snapshots and caller-supplied
// parameters. It holds no position state; the only mutable piece is the RNG
// used for the sampled statistical fields.
type Calculator struct {
	rngMu sync.Mutex
	rng   *rand.Rand

	log zerolog.Logger
}

// NewCalculator creates a risk calculator. A nil rng gets a time-based seed;
// tests pass a fixed seed.
func NewCalculator(rng *rand.Rand, log zerolog.Logger) *Calculator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Calculator{
		rng: rng,
		log: log.With().Str("service", "risk").Logger(),
	}
}

// float64InRange samples uniformly from [min, max) under the RNG lock.
func (c *Calculator) float64InRange(min, max float64) float64 {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return min + c.rng.Float64()*(max-min)
}

// Metrics computes the portfolio-level risk snapshot. Total exposure is the
// sum of absolute entry notionals over the given positions; the statistical
// fields are sampled within fixed plausible ranges.
func (c *Calculator) Metrics(portfolioValue float64, positions []portfolio.Position) Metrics {
	totalExposure := 0.0
	for _, pos := range positions {
		totalExposure += math.Abs(pos.EntryPrice * pos.Quantity)
	}

	return Metrics{
		PortfolioValue:  portfolioValue,
		TotalExposure:   totalExposure,
		MaxDrawdown:     -c.float64InRange(12.5, 17.5),
		CurrentDrawdown: -c.float64InRange(3.2, 7.2),
		ValueAtRisk:     portfolioValue * c.float64InRange(0.02, 0.05),
		SharpeRatio:     c.float64InRange(0.8, 2.0),
		SortinoRatio:    c.float64InRange(1.1, 2.5),
		Volatility:      c.float64InRange(0.15, 0.25),
		Beta:            c.float64InRange(0.8, 1.4),
		Correlation: map[string]float64{
			"S&P 500":   c.float64InRange(0.3, 0.7),
			"USD Index": c.float64InRange(-0.2, 0.2),
			"VIX":       c.float64InRange(-0.4, -0.1),
			"Gold":      c.float64InRange(0.1, 0.4),
		},
	}
}

// PositionRisk breaks down the risk of a single position. Leverage assumes a
// 10% margin requirement against portfolio value; the liquidation price is
// only reported when effective leverage exceeds 1x.
func (c *Calculator) PositionRisk(pos portfolio.Position, portfolioValue float64) PositionRisk {
	positionSize := math.Abs(pos.EntryPrice * pos.Quantity)

	stopDistance := pos.EntryPrice * fallbackStopFraction
	if pos.StopLoss != nil {
		stopDistance = math.Abs(pos.EntryPrice - *pos.StopLoss)
	}
	riskAmount := stopDistance * pos.Quantity

	riskPercent := 0.0
	if portfolioValue > 0 {
		riskPercent = riskAmount / portfolioValue * 100
	}

	leverageUsed := 0.0
	marginRequired := positionSize
	if portfolioValue > 0 {
		leverageUsed = positionSize / (portfolioValue * marginRate)
		if leverageUsed > 0 {
			marginRequired = positionSize / leverageUsed
		}
	}

	var liquidationPrice *float64
	if leverageUsed > 1 {
		// Liquidation sits at 80% of the margin buffer from entry.
		liquidationDistance := (1 / leverageUsed) * 0.8
		price := pos.EntryPrice * (1 - liquidationDistance)
		if pos.Direction == portfolio.Short {
			price = pos.EntryPrice * (1 + liquidationDistance)
		}
		liquidationPrice = &price
	}

	riskReward := defaultRiskReward
	if pos.StopLoss != nil && pos.TakeProfit != nil && stopDistance > 0 {
		riskReward = math.Abs(*pos.TakeProfit-pos.EntryPrice) / stopDistance
	}

	return PositionRisk{
		PositionID:        pos.ID,
		Pair:              pos.Pair,
		Market:            string(pos.Market),
		PositionSize:      positionSize,
		RiskAmount:        riskAmount,
		RiskPercent:       riskPercent,
		LeverageUsed:      leverageUsed,
		MarginRequired:    marginRequired,
		LiquidationPrice:  liquidationPrice,
		RiskRewardRatio:   riskReward,
		ProbabilityOfLoss: c.float64InRange(45, 65),
		MaxLoss:           riskAmount,
		TimeAtRisk:        time.Since(pos.EntryDate).Hours(),
	}
}

// AnalyzeExposure groups exposure by market, quote currency and asset class.
// Per-bucket risk is the absolute P&L of the bucket's positions. The
// correlation matrix covers up to five pairs and is sampled, with 1.0 on the
// diagonal.
func (c *Calculator) AnalyzeExposure(positions []portfolio.Position, portfolioValue float64) ExposureAnalysis {
	byMarket := make(map[string]*ExposureBucket)
	byCurrency := make(map[string]*ExposureBucket)
	byAssetClass := make(map[string]*ExposureBucket)

	bucket := func(m map[string]*ExposureBucket, key string) *ExposureBucket {
		b, ok := m[key]
		if !ok {
			b = &ExposureBucket{}
			m[key] = b
		}
		return b
	}

	for _, pos := range positions {
		exposure := math.Abs(pos.EntryPrice * pos.Quantity)
		posRisk := math.Abs(pos.PnL)

		b := bucket(byMarket, string(pos.Market))
		b.Exposure += exposure
		b.Risk += posRisk

		b = bucket(byCurrency, quoteCurrency(pos.Pair))
		b.Exposure += exposure
		b.Risk += posRisk

		b = bucket(byAssetClass, assetClass(pos.Market))
		b.Exposure += exposure
		b.Risk += posRisk
	}

	if portfolioValue > 0 {
		for _, m := range []map[string]*ExposureBucket{byMarket, byCurrency, byAssetClass} {
			for _, b := range m {
				b.Percentage = b.Exposure / portfolioValue * 100
			}
		}
	}

	pairs := make([]string, 0, 5)
	for _, pos := range positions {
		if len(pairs) == 5 {
			break
		}
		pairs = append(pairs, pos.Pair)
	}
	matrix := make(map[string]map[string]float64, len(pairs))
	for _, a := range pairs {
		matrix[a] = make(map[string]float64, len(pairs))
		for _, b := range pairs {
			if a == b {
				matrix[a][b] = 1
			} else {
				matrix[a][b] = c.float64InRange(-0.5, 0.5)
			}
		}
	}

	// Concentration is a step function: report the largest market share only
	// once it crosses 30%.
	concentration := 0.0
	for _, b := range byMarket {
		if b.Percentage > 30 && b.Percentage > concentration {
			concentration = b.Percentage
		}
	}

	return ExposureAnalysis{
		ByMarket:          byMarket,
		ByCurrency:        byCurrency,
		ByAssetClass:      byAssetClass,
		CorrelationMatrix: matrix,
		ConcentrationRisk: concentration,
	}
}

// PositionSizing sizes a trade so the stop-loss hit loses riskPercent of the
// account, capped by the max position size limit. Leverage is capped at what
// the 10% margin allows.
func (c *Calculator) PositionSizing(accountBalance, riskPercent, entryPrice, stopLoss, leverage float64, limits Limits) (PositionSizing, error) {
	stopDistance := math.Abs(entryPrice - stopLoss)
	if stopDistance == 0 {
		return PositionSizing{}, ErrZeroStopDistance
	}
	if leverage <= 0 {
		leverage = 1
	}

	riskAmount := accountBalance * riskPercent / 100
	positionSize := riskAmount / stopDistance
	positionValue := positionSize * entryPrice

	leverageRequired := math.Min(leverage, positionValue/(accountBalance*marginRate))
	marginRequired := positionValue
	if leverageRequired > 0 {
		marginRequired = positionValue / leverageRequired
	}

	maxSize := accountBalance * limits.MaxPositionSize / 100 / entryPrice

	reasoning := []string{
		fmt.Sprintf("Risk amount: %.2f%% of account", riskAmount/accountBalance*100),
		fmt.Sprintf("Stop loss distance: %.2f%%", stopDistance/entryPrice*100),
		fmt.Sprintf("Position value: $%.2f", positionValue),
		fmt.Sprintf("Margin required: $%.2f", marginRequired),
	}
	if leverageRequired > limits.MaxLeverage {
		reasoning = append(reasoning, "Warning: required leverage exceeds the configured limit")
	}

	return PositionSizing{
		RecommendedSize:  math.Min(positionSize, maxSize),
		MaxSize:          maxSize,
		RiskAmount:       riskAmount,
		RiskPercent:      riskPercent,
		StopLossDistance: stopDistance,
		LeverageRequired: leverageRequired,
		MarginRequired:   marginRequired,
		Reasoning:        reasoning,
	}, nil
}

// CheckLimits returns the advisory limit violations for a position. An empty
// slice means the position is within limits.
func (c *Calculator) CheckLimits(pos portfolio.Position, portfolioValue float64, limits Limits) []string {
	violations := make([]string, 0)
	posRisk := c.PositionRisk(pos, portfolioValue)

	if posRisk.RiskPercent > limits.MaxPositionSize {
		violations = append(violations, "Position risk exceeds the max position size limit")
	}
	if posRisk.LeverageUsed > limits.MaxLeverage {
		violations = append(violations, "Leverage exceeds the configured limit")
	}
	if limits.StopLossRequired && pos.StopLoss == nil {
		violations = append(violations, "Stop loss is required but not set")
	}

	return violations
}

// quoteCurrency extracts the quote side of a pair. Anything quoted in or
// against USD buckets as USD; bare tickers bucket as themselves.
func quoteCurrency(pair string) string {
	if containsUSD(pair) {
		return "USD"
	}
	for i := 0; i < len(pair); i++ {
		if pair[i] == '/' {
			return pair[i+1:]
		}
	}
	return pair
}

func containsUSD(pair string) bool {
	for i := 0; i+3 <= len(pair); i++ {
		if pair[i:i+3] == "USD" {
			return true
		}
	}
	return false
}

func assetClass(m portfolio.Market) string {
	switch m {
	case portfolio.MarketForex:
		return "Currency"
	case portfolio.MarketCrypto:
		return "Crypto"
	default:
		return "Equity"
	}
}
