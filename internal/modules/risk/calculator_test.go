package risk

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedeck/tradedeck/internal/modules/portfolio"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	return NewCalculator(rand.New(rand.NewSource(42)), zerolog.Nop())
}

func ptr(v float64) *float64 { return &v }

func TestMetricsExposure(t *testing.T) {
	c := newTestCalculator(t)

	positions := []portfolio.Position{
		{Pair: "EUR/USD", EntryPrice: 1.0825, Quantity: 100000},
		{Pair: "BTC/USD", EntryPrice: 42000, Quantity: 0.5},
	}

	m := c.Metrics(100000, positions)

	assert.Equal(t, 100000.0, m.PortfolioValue)
	assert.InDelta(t, 108250+21000, m.TotalExposure, 0.0001)

	// Sampled fields stay inside their documented ranges
	assert.Less(t, m.MaxDrawdown, 0.0)
	assert.GreaterOrEqual(t, m.ValueAtRisk, 100000*0.02)
	assert.LessOrEqual(t, m.ValueAtRisk, 100000*0.05)
	assert.GreaterOrEqual(t, m.SharpeRatio, 0.8)
	assert.LessOrEqual(t, m.SharpeRatio, 2.0)
	assert.GreaterOrEqual(t, m.Volatility, 0.15)
	assert.LessOrEqual(t, m.Volatility, 0.25)
	assert.Len(t, m.Correlation, 4)
}

func TestPositionRisk(t *testing.T) {
	c := newTestCalculator(t)

	pos := portfolio.Position{
		ID:         "p1",
		Pair:       "EUR/USD",
		Market:     portfolio.MarketForex,
		Direction:  portfolio.Long,
		EntryPrice: 1.0825,
		Quantity:   100000,
		StopLoss:   ptr(1.0780),
		TakeProfit: ptr(1.0900),
		EntryDate:  time.Now().UTC().Add(-48 * time.Hour),
	}

	pr := c.PositionRisk(pos, 100000)

	assert.InDelta(t, 108250.0, pr.PositionSize, 0.0001)
	assert.InDelta(t, 450.0, pr.RiskAmount, 0.0001)
	assert.InDelta(t, 0.45, pr.RiskPercent, 0.0001)
	assert.InDelta(t, 10.825, pr.LeverageUsed, 0.0001)
	assert.InDelta(t, 10000.0, pr.MarginRequired, 0.0001)
	assert.Equal(t, pr.RiskAmount, pr.MaxLoss)
	assert.InDelta(t, 48.0, pr.TimeAtRisk, 0.1)

	// Reward: |1.0900-1.0825| / |1.0825-1.0780|
	assert.InDelta(t, 0.0075/0.0045, pr.RiskRewardRatio, 0.0001)

	// Liquidation below entry for a leveraged long
	require.NotNil(t, pr.LiquidationPrice)
	assert.Less(t, *pr.LiquidationPrice, pos.EntryPrice)

	assert.GreaterOrEqual(t, pr.ProbabilityOfLoss, 45.0)
	assert.LessOrEqual(t, pr.ProbabilityOfLoss, 65.0)
}

func TestPositionRiskShortLiquidationAboveEntry(t *testing.T) {
	c := newTestCalculator(t)

	pos := portfolio.Position{
		Pair:       "GBP/USD",
		Direction:  portfolio.Short,
		EntryPrice: 1.2680,
		Quantity:   50000,
		StopLoss:   ptr(1.2750),
	}

	pr := c.PositionRisk(pos, 100000)
	require.NotNil(t, pr.LiquidationPrice)
	assert.Greater(t, *pr.LiquidationPrice, pos.EntryPrice)
}

func TestPositionRiskWithoutStopLoss(t *testing.T) {
	c := newTestCalculator(t)

	pos := portfolio.Position{
		Pair:       "AAPL",
		Direction:  portfolio.Long,
		EntryPrice: 100,
		Quantity:   10,
	}

	pr := c.PositionRisk(pos, 100000)

	// Falls back to a 2% adverse move
	assert.InDelta(t, 20.0, pr.RiskAmount, 0.0001)
	assert.Equal(t, defaultRiskReward, pr.RiskRewardRatio)

	// 1000 / (100000 * 0.1) = 0.1x, no liquidation price
	assert.Nil(t, pr.LiquidationPrice)
}

func TestAnalyzeExposure(t *testing.T) {
	c := newTestCalculator(t)

	positions := []portfolio.Position{
		{Pair: "EUR/USD", Market: portfolio.MarketForex, EntryPrice: 1.0825, Quantity: 100000, PnL: 205},
		{Pair: "GBP/USD", Market: portfolio.MarketForex, EntryPrice: 1.2680, Quantity: 50000, PnL: -50},
		{Pair: "BTC/USD", Market: portfolio.MarketCrypto, EntryPrice: 42000, Quantity: 0.5, PnL: 500},
	}

	analysis := c.AnalyzeExposure(positions, 100000)

	forex := analysis.ByMarket["forex"]
	require.NotNil(t, forex)
	assert.InDelta(t, 108250+63400, forex.Exposure, 0.0001)
	assert.InDelta(t, 255.0, forex.Risk, 0.0001)
	assert.InDelta(t, 171.65, forex.Percentage, 0.0001)

	// All pairs quote in USD
	usd := analysis.ByCurrency["USD"]
	require.NotNil(t, usd)
	assert.InDelta(t, 108250+63400+21000, usd.Exposure, 0.0001)

	assert.Contains(t, analysis.ByAssetClass, "Currency")
	assert.Contains(t, analysis.ByAssetClass, "Crypto")

	// Matrix has unit diagonal
	for _, pair := range []string{"EUR/USD", "GBP/USD", "BTC/USD"} {
		require.Contains(t, analysis.CorrelationMatrix, pair)
		assert.Equal(t, 1.0, analysis.CorrelationMatrix[pair][pair])
	}

	// Forex share above 30% -> concentration reported
	assert.InDelta(t, forex.Percentage, analysis.ConcentrationRisk, 0.0001)
}

func TestAnalyzeExposureNoConcentration(t *testing.T) {
	c := newTestCalculator(t)

	positions := []portfolio.Position{
		{Pair: "EUR/USD", Market: portfolio.MarketForex, EntryPrice: 1.0, Quantity: 10000},
	}

	analysis := c.AnalyzeExposure(positions, 100000)
	assert.Zero(t, analysis.ConcentrationRisk)
}

func TestPositionSizing(t *testing.T) {
	c := newTestCalculator(t)

	sizing, err := c.PositionSizing(100000, 2, 1.085, 1.080, 1, DefaultLimits())
	require.NoError(t, err)

	assert.InDelta(t, 2000.0, sizing.RiskAmount, 0.0001)
	assert.InDelta(t, 0.005, sizing.StopLossDistance, 0.0000001)
	assert.InDelta(t, 1.0, sizing.LeverageRequired, 0.0001)

	// Raw size 400000 units, capped at 10% of account / entry
	maxSize := 100000 * 10.0 / 100 / 1.085
	assert.InDelta(t, maxSize, sizing.MaxSize, 0.0001)
	assert.InDelta(t, maxSize, sizing.RecommendedSize, 0.0001)

	assert.InDelta(t, 400000*1.085, sizing.MarginRequired, 0.0001)
	assert.NotEmpty(t, sizing.Reasoning)
}

func TestPositionSizingZeroStopDistance(t *testing.T) {
	c := newTestCalculator(t)

	_, err := c.PositionSizing(100000, 2, 1.085, 1.085, 1, DefaultLimits())
	assert.ErrorIs(t, err, ErrZeroStopDistance)
}

func TestPositionSizingLeverageWarning(t *testing.T) {
	c := newTestCalculator(t)

	limits := DefaultLimits()
	limits.MaxLeverage = 0.5

	sizing, err := c.PositionSizing(100000, 2, 1.085, 1.080, 1, limits)
	require.NoError(t, err)

	found := false
	for _, line := range sizing.Reasoning {
		if line == "Warning: required leverage exceeds the configured limit" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCheckLimits(t *testing.T) {
	c := newTestCalculator(t)
	limits := DefaultLimits()

	compliant := portfolio.Position{
		Pair: "EUR/USD", Market: portfolio.MarketForex, Direction: portfolio.Long,
		EntryPrice: 1.0, Quantity: 1000, StopLoss: ptr(0.99),
	}
	assert.Empty(t, c.CheckLimits(compliant, 100000, limits))

	noStop := compliant
	noStop.StopLoss = nil
	violations := c.CheckLimits(noStop, 100000, limits)
	assert.Contains(t, violations, "Stop loss is required but not set")

	leveraged := portfolio.Position{
		Pair: "BTC/USD", Market: portfolio.MarketCrypto, Direction: portfolio.Long,
		EntryPrice: 45000, Quantity: 50, StopLoss: ptr(44000),
	}
	violations = c.CheckLimits(leveraged, 100000, limits)
	assert.Contains(t, violations, "Leverage exceeds the configured limit")
}
