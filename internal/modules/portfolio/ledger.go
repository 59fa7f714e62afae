package portfolio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrPositionNotFound is returned when the referenced position id does not exist.
	ErrPositionNotFound = errors.New("position not found")
	// ErrPositionClosed is returned when closing a position that is already closed.
	ErrPositionClosed = errors.New("position already closed")
)

// Ledger is the single source of truth for all positions. State is held in
// memory; every mutation takes the write lock because the HTTP server calls
// in concurrently.
type Ledger struct {
	mu        sync.RWMutex
	positions []*Position
	byID      map[string]*Position
	log       zerolog.Logger
}

// NewLedger creates an empty position ledger
func NewLedger(log zerolog.Logger) *Ledger {
	return &Ledger{
		positions: make([]*Position, 0),
		byID:      make(map[string]*Position),
		log:       log.With().Str("component", "ledger").Logger(),
	}
}

// Add validates and stores a new position. ID, PnL and PnLPercent on the
// input are ignored and recomputed. Status defaults to open, EntryDate to now.
func (l *Ledger) Add(p Position) (Position, error) {
	if p.Pair == "" {
		return Position{}, fmt.Errorf("invalid position: pair is required")
	}
	if p.EntryPrice <= 0 {
		return Position{}, fmt.Errorf("invalid position: entry price must be positive, got %v", p.EntryPrice)
	}
	if p.Quantity <= 0 {
		return Position{}, fmt.Errorf("invalid position: quantity must be positive, got %v", p.Quantity)
	}
	if p.Direction != Long && p.Direction != Short {
		return Position{}, fmt.Errorf("invalid position: unknown direction %q", p.Direction)
	}

	if p.Status == "" {
		p.Status = StatusOpen
	}
	if p.CurrentPrice == 0 {
		p.CurrentPrice = p.EntryPrice
	}
	if p.EntryDate.IsZero() {
		p.EntryDate = time.Now().UTC()
	}

	p.ID = uuid.New().String()
	recompute(&p)

	l.mu.Lock()
	defer l.mu.Unlock()

	stored := p
	l.positions = append(l.positions, &stored)
	l.byID[stored.ID] = &stored

	l.log.Debug().
		Str("id", stored.ID).
		Str("pair", stored.Pair).
		Str("direction", string(stored.Direction)).
		Float64("entry_price", stored.EntryPrice).
		Msg("Position added")

	return stored, nil
}

// Close closes a position at the supplied exit price, freezing its P&L.
// Closing an already-closed position is rejected.
func (l *Ledger) Close(id string, exitPrice float64) (Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, exists := l.byID[id]
	if !exists {
		return Position{}, ErrPositionNotFound
	}
	if pos.Status == StatusClosed {
		return Position{}, ErrPositionClosed
	}

	pos.Status = StatusClosed
	pos.CurrentPrice = exitPrice
	recompute(pos)

	l.log.Info().
		Str("id", id).
		Str("pair", pos.Pair).
		Float64("exit_price", exitPrice).
		Float64("pnl", pos.PnL).
		Msg("Position closed")

	return *pos, nil
}

// Update merges the stop-loss / take-profit fields into a position.
// Only fields present on the update are touched.
func (l *Ledger) Update(id string, update PositionUpdate) (Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, exists := l.byID[id]
	if !exists {
		return Position{}, ErrPositionNotFound
	}

	if update.StopLoss != nil {
		pos.StopLoss = update.StopLoss
	}
	if update.TakeProfit != nil {
		pos.TakeProfit = update.TakeProfit
	}

	return *pos, nil
}

// Get returns a position by id
func (l *Ledger) Get(id string) (Position, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pos, exists := l.byID[id]
	if !exists {
		return Position{}, ErrPositionNotFound
	}
	return *pos, nil
}

// List returns positions in insertion order, optionally filtered by status.
// An empty status returns everything.
func (l *Ledger) List(status Status) []Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]Position, 0, len(l.positions))
	for _, pos := range l.positions {
		if status != "" && pos.Status != status {
			continue
		}
		result = append(result, *pos)
	}
	return result
}

// UpdatePrices applies current market prices to open positions and recomputes
// their P&L. Closed positions are untouched. Returns the number of positions
// updated.
func (l *Ledger) UpdatePrices(prices map[string]float64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	updated := 0
	for _, pos := range l.positions {
		if pos.Status != StatusOpen {
			continue
		}
		price, ok := prices[pos.Pair]
		if !ok {
			continue
		}
		pos.CurrentPrice = price
		recompute(pos)
		updated++
	}

	return updated
}

// Snapshot returns a copy of all positions for state persistence.
func (l *Ledger) Snapshot() []Position {
	return l.List("")
}

// Restore replaces the ledger contents with a previously snapshotted state.
func (l *Ledger) Restore(positions []Position) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.positions = make([]*Position, 0, len(positions))
	l.byID = make(map[string]*Position, len(positions))
	for _, p := range positions {
		stored := p
		l.positions = append(l.positions, &stored)
		l.byID[stored.ID] = &stored
	}

	l.log.Info().Int("count", len(positions)).Msg("Ledger restored from snapshot")
}

// grossPnL is the P&L before fee subtraction.
func grossPnL(p *Position) float64 {
	diff := p.CurrentPrice - p.EntryPrice
	if p.Direction == Short {
		diff = -diff
	}
	return diff * p.Quantity
}

// recompute refreshes the derived P&L fields. The percentage is intentionally
// computed on the gross P&L (fees excluded) over entry notional.
func recompute(p *Position) {
	gross := grossPnL(p)
	p.PnL = gross - p.Fees

	notional := p.EntryPrice * p.Quantity
	if notional != 0 {
		p.PnLPercent = gross / notional * 100
	} else {
		p.PnLPercent = 0
	}
}
