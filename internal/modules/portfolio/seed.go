package portfolio

import "time"

func ptr(v float64) *float64 { return &v }

// SeedSamplePositions loads the demo book used on first start: four open
// positions across the three markets and one closed short.
func SeedSamplePositions(l *Ledger) error {
	now := time.Now().UTC()

	samples := []Position{
		{
			Pair:         "EUR/USD",
			Direction:    Long,
			EntryPrice:   1.0825,
			CurrentPrice: 1.0847,
			Quantity:     100000,
			EntryDate:    now.Add(-2 * 24 * time.Hour),
			Status:       StatusOpen,
			StopLoss:     ptr(1.0780),
			TakeProfit:   ptr(1.0900),
			Fees:         15,
			Market:       MarketForex,
		},
		{
			Pair:         "BTC/USD",
			Direction:    Long,
			EntryPrice:   42000,
			CurrentPrice: 43247,
			Quantity:     0.5,
			EntryDate:    now.Add(-5 * 24 * time.Hour),
			Status:       StatusOpen,
			StopLoss:     ptr(40000),
			TakeProfit:   ptr(48000),
			Fees:         85,
			Market:       MarketCrypto,
		},
		{
			Pair:         "AAPL",
			Direction:    Long,
			EntryPrice:   185.20,
			CurrentPrice: 189.47,
			Quantity:     100,
			EntryDate:    now.Add(-3 * 24 * time.Hour),
			Status:       StatusOpen,
			StopLoss:     ptr(180.00),
			TakeProfit:   ptr(200.00),
			Fees:         12,
			Market:       MarketStocks,
		},
		{
			Pair:         "GBP/USD",
			Direction:    Short,
			EntryPrice:   1.2680,
			CurrentPrice: 1.2634,
			Quantity:     50000,
			EntryDate:    now.Add(-1 * 24 * time.Hour),
			Status:       StatusOpen,
			StopLoss:     ptr(1.2750),
			TakeProfit:   ptr(1.2550),
			Fees:         8,
			Market:       MarketForex,
		},
		{
			Pair:         "TSLA",
			Direction:    Short,
			EntryPrice:   255.00,
			CurrentPrice: 248.91,
			Quantity:     50,
			EntryDate:    now.Add(-4 * 24 * time.Hour),
			Status:       StatusClosed,
			Fees:         18,
			Market:       MarketStocks,
		},
	}

	for _, s := range samples {
		if _, err := l.Add(s); err != nil {
			return err
		}
	}
	return nil
}
