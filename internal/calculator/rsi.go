package calculator

import (
	"errors"
	"fmt"
	"math"

	"RSIMonitor/internal/model"
)

// DefaultRSIPeriod is the conventional 14-period lookback.
const DefaultRSIPeriod = 14

var (
	ErrInvalidPeriod    = errors.New("period must be positive")
	ErrInsufficientData = errors.New("insufficient data for rsi")
	ErrInvalidPrice     = errors.New("series contains missing or non-numeric price")
)

// CalculateRSI computes the RSI of the latest window using simple moving
// averages of the last period gains and losses. It needs period+1 closes.
// A series with no losses in the window reports 100.
func CalculateRSI(series model.PriceSeries, period int) model.RSIValue {
	for _, p := range series.Points {
		if !p.Valid() {
			return model.UnavailableRSI(fmt.Errorf("%w: %s at %s", ErrInvalidPrice, series.Symbol, p.Time.Format("2006-01-02")))
		}
	}
	return CalculateRSIFromCloses(series.Closes(), period)
}

// CalculateRSIFromCloses is CalculateRSI over raw closes, oldest first.
func CalculateRSIFromCloses(closes []float64, period int) model.RSIValue {
	if period <= 0 {
		return model.UnavailableRSI(ErrInvalidPeriod)
	}
	for i, c := range closes {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return model.UnavailableRSI(fmt.Errorf("%w: index %d", ErrInvalidPrice, i))
		}
	}
	if len(closes) < period+1 {
		return model.UnavailableRSI(fmt.Errorf("%w: have %d points, need %d", ErrInsufficientData, len(closes), period+1))
	}

	window := closes[len(closes)-period-1:]
	gains := make([]float64, period)
	losses := make([]float64, period)
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}

	avgGain, err := CalculateSMA(gains, period)
	if err != nil {
		return model.UnavailableRSI(err)
	}
	avgLoss, err := CalculateSMA(losses, period)
	if err != nil {
		return model.UnavailableRSI(err)
	}

	if avgLoss == 0 {
		return model.NewRSI(100)
	}
	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	return model.NewRSI(math.Min(100, math.Max(0, rsi)))
}
