package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"RSIMonitor/internal/model"

	"github.com/shopspring/decimal"
)

// ErrDataUnavailable marks any failure to obtain a usable price series.
var ErrDataUnavailable = errors.New("price data unavailable")

// Provider fetches daily closes for a ticker over a lookback window.
type Provider interface {
	Fetch(ctx context.Context, ticker, lookback, interval string) (model.PriceSeries, error)
	Name() string
}

// tradingBars maps Yahoo-style ranges to a number of daily trading bars.
var tradingBars = map[string]int{
	"5d":  5,
	"1mo": 22,
	"3mo": 66,
	"6mo": 126,
	"1y":  252,
	"2y":  504,
	"5y":  1260,
}

// LookbackBars converts a lookback ("1mo", "6mo" or a plain bar count like
// "30") into the number of bars to request at the given interval.
func LookbackBars(lookback, interval string) (int, error) {
	lookback = strings.TrimSpace(lookback)
	n, ok := tradingBars[lookback]
	if !ok {
		v, err := strconv.Atoi(lookback)
		if err != nil || v <= 0 {
			return 0, fmt.Errorf("unsupported lookback %q", lookback)
		}
		return v, nil
	}
	if interval == "1wk" {
		n /= 5
		if n < 1 {
			n = 1
		}
	}
	return n, nil
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDataUnavailable, fmt.Sprintf(format, args...))
}

func nanIfNil(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// parseClose parses a textual price exactly; malformed input becomes NaN so
// the series fails closed instead of silently dropping the point.
func parseClose(s string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return math.NaN()
	}
	return d.InexactFloat64()
}
