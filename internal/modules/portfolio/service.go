package portfolio

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradedeck/tradedeck/pkg/formulas"
)

// Service derives portfolio-level statistics from the current ledger
// contents. It keeps no state of its own beyond the RNG used for the
// synthesized equity curve; every query is a fresh full scan.
type Service struct {
	ledger          *Ledger
	startingBalance float64

	rngMu sync.Mutex
	rng   *rand.Rand

	log zerolog.Logger
}

// NewService creates a portfolio service over the given ledger
func NewService(ledger *Ledger, startingBalance float64, rng *rand.Rand, log zerolog.Logger) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		ledger:          ledger,
		startingBalance: startingBalance,
		rng:             rng,
		log:             log.With().Str("service", "portfolio").Logger(),
	}
}

// Metrics computes the portfolio summary snapshot.
//
// Day P&L buckets positions whose entry date falls on the current UTC
// calendar date. Sharpe ratio and max drawdown are derived from the
// synthesized 30-day equity curve, not from position history.
func (s *Service) Metrics() Metrics {
	positions := s.ledger.List("")

	var totalPnL, totalFees float64
	var open, closed int
	var wins, losses []float64

	today := time.Now().UTC()
	var dayPnL float64

	for _, pos := range positions {
		totalPnL += pos.PnL
		totalFees += pos.Fees

		switch pos.Status {
		case StatusOpen:
			open++
		case StatusClosed:
			closed++
			if pos.PnL > 0 {
				wins = append(wins, pos.PnL)
			} else if pos.PnL < 0 {
				losses = append(losses, pos.PnL)
			}
		}

		if sameDay(pos.EntryDate.UTC(), today) {
			dayPnL += pos.PnL
		}
	}

	winRate := 0.0
	if closed > 0 {
		winRate = float64(len(wins)) / float64(closed) * 100
	}

	avgWin := 0.0
	if len(wins) > 0 {
		avgWin = formulas.Mean(wins)
	}
	avgLoss := 0.0
	if len(losses) > 0 {
		sum := 0.0
		for _, l := range losses {
			sum += l
		}
		avgLoss = -sum / float64(len(losses))
	}

	sharpe, maxDD := s.equityCurveStats()

	return Metrics{
		TotalValue:      s.startingBalance + totalPnL,
		TotalPnL:        totalPnL,
		TotalPnLPercent: totalPnL / s.startingBalance * 100,
		DayPnL:          dayPnL,
		DayPnLPercent:   dayPnL / s.startingBalance * 100,
		OpenPositions:   open,
		ClosedPositions: closed,
		WinRate:         winRate,
		AvgWin:          avgWin,
		AvgLoss:         avgLoss,
		SharpeRatio:     sharpe,
		MaxDrawdown:     maxDD,
		TotalFees:       totalFees,
	}
}

// Allocation groups open positions by market. The percentage denominator is
// total portfolio value, not open-position value.
func (s *Service) Allocation() []Allocation {
	totalValue := s.Metrics().TotalValue
	positions := s.ledger.List(StatusOpen)

	result := make([]Allocation, 0, len(Markets))
	for _, market := range Markets {
		var value, pnl float64
		count := 0
		for _, pos := range positions {
			if pos.Market != market {
				continue
			}
			value += pos.EntryPrice * pos.Quantity
			pnl += pos.PnL
			count++
		}

		percentage := 0.0
		if totalValue > 0 {
			percentage = value / totalValue * 100
		}

		result = append(result, Allocation{
			Market:     market,
			Value:      value,
			Percentage: percentage,
			PnL:        pnl,
			Positions:  count,
		})
	}

	return result
}

// PerformanceHistory synthesizes an equity curve of days+1 points by applying
// random daily returns in [-1%, +1%] to the starting balance. Presentation
// filler, not derived from actual position history.
func (s *Service) PerformanceHistory(days int) []PerformancePoint {
	if days <= 0 {
		days = 30
	}

	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	now := time.Now().UTC()
	history := make([]PerformancePoint, 0, days+1)

	value := s.startingBalance
	peak := s.startingBalance

	for i := days; i >= 0; i-- {
		dailyReturn := (s.rng.Float64() - 0.5) * 0.02
		value *= 1 + dailyReturn
		if value > peak {
			peak = value
		}

		drawdown := 0.0
		if peak > 0 && value < peak {
			drawdown = (value - peak) / peak * 100
		}

		history = append(history, PerformancePoint{
			Date:           now.AddDate(0, 0, -i),
			PortfolioValue: value,
			PnL:            value - s.startingBalance,
			Drawdown:       drawdown,
		})
	}

	return history
}

// equityCurveStats computes Sharpe ratio and max drawdown over a synthesized
// 30-day curve.
func (s *Service) equityCurveStats() (sharpe float64, maxDrawdown float64) {
	curve := s.PerformanceHistory(30)

	values := make([]float64, len(curve))
	for i, p := range curve {
		values[i] = p.PortfolioValue
	}

	if sr := formulas.CalculateSharpeFromPrices(values, 0.02); sr != nil {
		sharpe = *sr
	}
	if dd := formulas.CalculateMaxDrawdown(values); dd != nil {
		maxDrawdown = -*dd * 100
	}
	return sharpe, maxDrawdown
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
