// Package jobs holds the scheduled background jobs.
package jobs

import (
	"github.com/rs/zerolog"

	"github.com/tradedeck/tradedeck/internal/modules/market"
	"github.com/tradedeck/tradedeck/internal/modules/portfolio"
	"github.com/tradedeck/tradedeck/internal/modules/signals"
)

// PriceRefreshJob pushes current board prices into the position ledger and
// the signal store, keeping their P&L figures moving with the simulated feed.
type PriceRefreshJob struct {
	market  *market.Service
	ledger  *portfolio.Ledger
	signals *signals.Service
	log     zerolog.Logger
}

// NewPriceRefreshJob creates a price refresh job
func NewPriceRefreshJob(
	marketSvc *market.Service,
	ledger *portfolio.Ledger,
	signalSvc *signals.Service,
	log zerolog.Logger,
) *PriceRefreshJob {
	return &PriceRefreshJob{
		market:  marketSvc,
		ledger:  ledger,
		signals: signalSvc,
		log:     log.With().Str("job", "price_refresh").Logger(),
	}
}

// Name returns the job name
func (j *PriceRefreshJob) Name() string {
	return "price_refresh"
}

// Run applies the current market prices to open positions and active signals.
func (j *PriceRefreshJob) Run() error {
	prices := j.market.Prices()

	positions := j.ledger.UpdatePrices(prices)
	updatedSignals := j.signals.UpdatePrices(prices)

	j.log.Debug().
		Int("positions", positions).
		Int("signals", updatedSignals).
		Msg("Prices refreshed")

	return nil
}
