package comparison

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestComparison(t *testing.T) *Service {
	t.Helper()
	return NewService(rand.New(rand.NewSource(42)), zerolog.Nop())
}

func TestCompare(t *testing.T) {
	s := newTestComparison(t)
	symbols := []string{"BTC/USD", "ETH/USD", "EUR/USD", "AAPL"}

	c := s.Compare(symbols)
	require.Len(t, c.Assets, 4)

	for _, a := range c.Assets {
		assert.Positive(t, a.CurrentPrice)
		assert.GreaterOrEqual(t, a.Volatility, 0.1)
		assert.LessOrEqual(t, a.Volatility, 0.5)
		assert.LessOrEqual(t, a.MaxDrawdown, 0.0)
		assert.Len(t, a.Performance, 5)
	}

	assert.Equal(t, "crypto", c.Assets[0].Market)
	assert.Equal(t, "forex", c.Assets[2].Market)
	assert.Equal(t, "stocks", c.Assets[3].Market)
}

func TestCompareCorrelationMatrix(t *testing.T) {
	s := newTestComparison(t)
	symbols := []string{"BTC/USD", "ETH/USD", "EUR/USD"}

	c := s.Compare(symbols)
	require.Len(t, c.CorrelationMatrix, 3)

	for _, a := range symbols {
		require.Contains(t, c.CorrelationMatrix, a)
		assert.Equal(t, 1.0, c.CorrelationMatrix[a][a])
		for _, b := range symbols {
			v := c.CorrelationMatrix[a][b]
			assert.GreaterOrEqual(t, v, -1.0)
			assert.LessOrEqual(t, v, 1.0)
			// Pearson is symmetric
			assert.Equal(t, v, c.CorrelationMatrix[b][a])
		}
	}
}

func TestComparePerformers(t *testing.T) {
	s := newTestComparison(t)
	symbols := []string{"BTC/USD", "ETH/USD", "EUR/USD", "GBP/USD", "AAPL"}

	c := s.Compare(symbols)

	for _, period := range []string{"1d", "7d", "30d"} {
		best := c.BestPerformers[period]
		worst := c.WorstPerformers[period]
		require.Len(t, best, 3)
		require.Len(t, worst, 3)

		for i := 1; i < len(best); i++ {
			assert.GreaterOrEqual(t, best[i-1].Performance[period], best[i].Performance[period])
		}
		for i := 1; i < len(worst); i++ {
			assert.LessOrEqual(t, worst[i-1].Performance[period], worst[i].Performance[period])
		}
	}
}

func TestCompareMarketSummary(t *testing.T) {
	s := newTestComparison(t)

	c := s.Compare([]string{"BTC/USD", "EUR/USD"})

	assert.Positive(t, c.MarketSummary.AvgVolatility)
	assert.Contains(t, []string{"bullish", "neutral", "bearish"}, c.MarketSummary.MarketSentiment)

	// BTC has a cap, EUR does not
	assert.Positive(t, c.MarketSummary.TotalMarketCap)
}

func TestCompareMarketCapOnlyForKnownAssets(t *testing.T) {
	s := newTestComparison(t)

	c := s.Compare([]string{"BTC/USD", "EUR/USD"})
	require.Len(t, c.Assets, 2)
	assert.NotNil(t, c.Assets[0].MarketCap)
	assert.Nil(t, c.Assets[1].MarketCap)
}

func TestCorrelation(t *testing.T) {
	s := newTestComparison(t)

	pc := s.Correlation("BTC/USD", "ETH/USD")

	assert.Equal(t, "BTC/USD", pc.Symbol1)
	assert.Equal(t, "ETH/USD", pc.Symbol2)
	assert.GreaterOrEqual(t, pc.Correlation, -1.0)
	assert.LessOrEqual(t, pc.Correlation, 1.0)

	abs := pc.Correlation
	if abs < 0 {
		abs = -abs
	}
	switch pc.Strength {
	case "weak":
		assert.Less(t, abs, 0.3)
	case "moderate":
		assert.Less(t, abs, 0.7)
	case "strong":
		assert.GreaterOrEqual(t, abs, 0.7)
	default:
		t.Fatalf("unexpected strength %q", pc.Strength)
	}

	if pc.Correlation < 0 {
		assert.Equal(t, "negative", pc.Direction)
	} else {
		assert.Equal(t, "positive", pc.Direction)
	}

	require.Len(t, pc.HistoricalData, 30)
	for i, p := range pc.HistoricalData {
		assert.GreaterOrEqual(t, p.Correlation, -1.0)
		assert.LessOrEqual(t, p.Correlation, 1.0)
		if i > 0 {
			assert.True(t, p.Date.After(pc.HistoricalData[i-1].Date))
		}
	}
}

func TestBaseFor(t *testing.T) {
	assert.Equal(t, 45000.0, baseFor("BTC/USD"))
	assert.Equal(t, 1.085, baseFor("EUR/USD"))
	assert.Equal(t, 100.0, baseFor("XYZ"))
}
