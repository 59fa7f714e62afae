package portfolio

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, l *Ledger) *Service {
	t.Helper()
	return NewService(l, 100000, rand.New(rand.NewSource(42)), zerolog.Nop())
}

func TestMetricsEmptyLedger(t *testing.T) {
	l := newTestLedger(t)
	s := newTestService(t, l)

	m := s.Metrics()

	assert.Equal(t, 100000.0, m.TotalValue)
	assert.Zero(t, m.TotalPnL)
	assert.Zero(t, m.OpenPositions)
	assert.Zero(t, m.ClosedPositions)
	assert.Zero(t, m.WinRate)
}

func TestMetricsAggregation(t *testing.T) {
	l := newTestLedger(t)
	s := newTestService(t, l)

	_, err := l.Add(Position{
		Pair: "EUR/USD", Direction: Long, EntryPrice: 1.0825, CurrentPrice: 1.0847,
		Quantity: 100000, Fees: 15, Market: MarketForex,
		EntryDate: time.Now().UTC().Add(-48 * time.Hour),
	})
	require.NoError(t, err)

	win, err := l.Add(Position{
		Pair: "AAPL", Direction: Long, EntryPrice: 180, Quantity: 100, Fees: 10,
		Market: MarketStocks, EntryDate: time.Now().UTC().Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	_, err = l.Close(win.ID, 190)
	require.NoError(t, err)

	loss, err := l.Add(Position{
		Pair: "TSLA", Direction: Long, EntryPrice: 250, Quantity: 10, Fees: 5,
		Market: MarketStocks, EntryDate: time.Now().UTC().Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	_, err = l.Close(loss.ID, 240)
	require.NoError(t, err)

	m := s.Metrics()

	// 205 + 990 - 105
	assert.InDelta(t, 1090.0, m.TotalPnL, 0.0001)
	assert.InDelta(t, 101090.0, m.TotalValue, 0.0001)
	assert.InDelta(t, 1.09, m.TotalPnLPercent, 0.0001)
	assert.Equal(t, 1, m.OpenPositions)
	assert.Equal(t, 2, m.ClosedPositions)
	assert.InDelta(t, 50.0, m.WinRate, 0.0001)
	assert.InDelta(t, 990.0, m.AvgWin, 0.0001)
	assert.InDelta(t, 105.0, m.AvgLoss, 0.0001)
	assert.InDelta(t, 30.0, m.TotalFees, 0.0001)
}

func TestMetricsDayPnL(t *testing.T) {
	l := newTestLedger(t)
	s := newTestService(t, l)

	_, err := l.Add(Position{
		Pair: "EUR/USD", Direction: Long, EntryPrice: 1.08, CurrentPrice: 1.09,
		Quantity: 10000, Market: MarketForex, EntryDate: time.Now().UTC(),
	})
	require.NoError(t, err)

	_, err = l.Add(Position{
		Pair: "GBP/USD", Direction: Long, EntryPrice: 1.26, CurrentPrice: 1.27,
		Quantity: 10000, Market: MarketForex,
		EntryDate: time.Now().UTC().Add(-72 * time.Hour),
	})
	require.NoError(t, err)

	m := s.Metrics()
	assert.InDelta(t, 100.0, m.DayPnL, 0.0001)
}

func TestAllocation(t *testing.T) {
	l := newTestLedger(t)
	s := newTestService(t, l)
	require.NoError(t, SeedSamplePositions(l))

	allocation := s.Allocation()
	require.Len(t, allocation, 3)

	assert.Equal(t, MarketForex, allocation[0].Market)
	assert.Equal(t, MarketCrypto, allocation[1].Market)
	assert.Equal(t, MarketStocks, allocation[2].Market)

	// Only open positions count: 2 forex, 1 crypto, 1 stocks
	assert.Equal(t, 2, allocation[0].Positions)
	assert.Equal(t, 1, allocation[1].Positions)
	assert.Equal(t, 1, allocation[2].Positions)

	// EUR/USD + GBP/USD entry notionals
	assert.InDelta(t, 1.0825*100000+1.2680*50000, allocation[0].Value, 0.0001)
	assert.Positive(t, allocation[0].Percentage)
}

func TestAllocationEmptyLedger(t *testing.T) {
	l := newTestLedger(t)
	s := newTestService(t, l)

	allocation := s.Allocation()
	require.Len(t, allocation, 3)
	for _, a := range allocation {
		assert.Zero(t, a.Value)
		assert.Zero(t, a.Positions)
	}
}

func TestPerformanceHistory(t *testing.T) {
	l := newTestLedger(t)
	s := newTestService(t, l)

	history := s.PerformanceHistory(30)
	require.Len(t, history, 31)

	for i, p := range history {
		assert.Positive(t, p.PortfolioValue)
		assert.LessOrEqual(t, p.Drawdown, 0.0)
		assert.InDelta(t, p.PortfolioValue-100000, p.PnL, 0.0001)
		if i > 0 {
			assert.True(t, p.Date.After(history[i-1].Date))
		}
	}

	// Daily moves stay inside the 1% band
	for i := 1; i < len(history); i++ {
		ratio := history[i].PortfolioValue / history[i-1].PortfolioValue
		assert.InDelta(t, 1.0, ratio, 0.0101)
	}
}

func TestPerformanceHistoryDefaultsDays(t *testing.T) {
	l := newTestLedger(t)
	s := newTestService(t, l)

	assert.Len(t, s.PerformanceHistory(0), 31)
	assert.Len(t, s.PerformanceHistory(-5), 31)
	assert.Len(t, s.PerformanceHistory(7), 8)
}

func TestPerformanceHistoryDeterministicWithSeed(t *testing.T) {
	l := newTestLedger(t)

	s1 := NewService(l, 100000, rand.New(rand.NewSource(7)), zerolog.Nop())
	s2 := NewService(l, 100000, rand.New(rand.NewSource(7)), zerolog.Nop())

	h1 := s1.PerformanceHistory(10)
	h2 := s2.PerformanceHistory(10)

	require.Len(t, h2, len(h1))
	for i := range h1 {
		assert.Equal(t, h1[i].PortfolioValue, h2[i].PortfolioValue)
	}
}
