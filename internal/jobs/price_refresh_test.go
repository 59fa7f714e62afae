package jobs

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedeck/tradedeck/internal/modules/market"
	"github.com/tradedeck/tradedeck/internal/modules/portfolio"
	"github.com/tradedeck/tradedeck/internal/modules/signals"
)

func TestPriceRefreshRun(t *testing.T) {
	marketSvc := market.NewService(rand.New(rand.NewSource(42)), zerolog.Nop())
	ledger := portfolio.NewLedger(zerolog.Nop())
	signalSvc := signals.NewService(rand.New(rand.NewSource(42)), zerolog.Nop())

	pos, err := ledger.Add(portfolio.Position{
		Pair: "EUR/USD", Direction: portfolio.Long, EntryPrice: 1.0825,
		Quantity: 100000, Market: portfolio.MarketForex,
	})
	require.NoError(t, err)

	job := NewPriceRefreshJob(marketSvc, ledger, signalSvc, zerolog.Nop())
	assert.Equal(t, "price_refresh", job.Name())
	require.NoError(t, job.Run())

	refreshed, err := ledger.Get(pos.ID)
	require.NoError(t, err)
	assert.Equal(t, marketSvc.Prices()["EUR/USD"], refreshed.CurrentPrice)
}

func TestPriceRefreshSkipsClosedPositions(t *testing.T) {
	marketSvc := market.NewService(rand.New(rand.NewSource(42)), zerolog.Nop())
	ledger := portfolio.NewLedger(zerolog.Nop())
	signalSvc := signals.NewService(rand.New(rand.NewSource(42)), zerolog.Nop())

	pos, err := ledger.Add(portfolio.Position{
		Pair: "AAPL", Direction: portfolio.Long, EntryPrice: 180,
		Quantity: 100, Market: portfolio.MarketStocks,
	})
	require.NoError(t, err)
	_, err = ledger.Close(pos.ID, 190)
	require.NoError(t, err)

	job := NewPriceRefreshJob(marketSvc, ledger, signalSvc, zerolog.Nop())
	require.NoError(t, job.Run())

	closed, err := ledger.Get(pos.ID)
	require.NoError(t, err)
	assert.Equal(t, 190.0, closed.CurrentPrice)
}
