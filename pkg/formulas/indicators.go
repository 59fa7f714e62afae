package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateRSI calculates the Relative Strength Index
//
// RSI Formula:
//
//	RSI = 100 - (100 / (1 + RS))
//	where RS = Average Gain / Average Loss over N periods
//
// Args:
//
//	closes: Array of closing prices
//	length: RSI period (typically 14)
//
// Returns:
//
//	Current RSI value (0-100) or nil if insufficient data
func CalculateRSI(closes []float64, length int) *float64 {
	if len(closes) < length+1 {
		return nil
	}

	rsi := talib.Rsi(closes, length)

	if len(rsi) > 0 && !isNaN(rsi[len(rsi)-1]) {
		result := rsi[len(rsi)-1]
		return &result
	}

	return nil
}

// CalculateMACD calculates the MACD line (12/26 EMA difference) for the most
// recent close. Returns nil if the series is too short for the slow period.
func CalculateMACD(closes []float64) *float64 {
	if len(closes) < 35 {
		return nil
	}

	macd, _, _ := talib.Macd(closes, 12, 26, 9)

	if len(macd) > 0 && !isNaN(macd[len(macd)-1]) {
		result := macd[len(macd)-1]
		return &result
	}

	return nil
}

// CalculateBollingerZone classifies the last close against 20-period, 2-sigma
// Bollinger Bands. Returns "upper", "middle" or "lower", or empty string when
// the series is too short.
func CalculateBollingerZone(closes []float64) string {
	if len(closes) < 21 {
		return ""
	}

	upper, _, lower := talib.BBands(closes, 20, 2, 2, talib.SMA)

	last := closes[len(closes)-1]
	u := upper[len(upper)-1]
	l := lower[len(lower)-1]
	if isNaN(u) || isNaN(l) {
		return ""
	}

	switch {
	case last >= u:
		return "upper"
	case last <= l:
		return "lower"
	default:
		return "middle"
	}
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
