package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"RSIMonitor/internal/model"

	"github.com/rs/zerolog"
)

// MockProvider returns controllable fixed data for development and testing.
type MockProvider struct {
	Closes []float64
	Err    error
	Calls  int
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Fetch(_ context.Context, ticker, _, interval string) (model.PriceSeries, error) {
	m.Calls++
	if m.Err != nil {
		return model.PriceSeries{}, m.Err
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]model.PricePoint, len(m.Closes))
	for i, c := range m.Closes {
		pts[i] = model.PricePoint{Time: start.AddDate(0, 0, i), Close: c}
	}
	return model.PriceSeries{Symbol: ticker, Interval: interval, Points: pts, FetchedAt: time.Now()}, nil
}

// Collector fetches the configured series and normalises it.
type Collector struct {
	Provider Provider
	Symbol   string
	Lookback string
	Interval string
	Log      zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(p Provider, symbol, lookback, interval string, log zerolog.Logger) *Collector {
	return &Collector{Provider: p, Symbol: symbol, Lookback: lookback, Interval: interval, Log: log}
}

// Collect fetches the series, guaranteeing a non-empty, oldest-first result.
func (c *Collector) Collect(ctx context.Context) (model.PriceSeries, error) {
	series, err := c.Provider.Fetch(ctx, c.Symbol, c.Lookback, c.Interval)
	if err != nil {
		if !errors.Is(err, ErrDataUnavailable) {
			err = fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}
		return model.PriceSeries{}, fmt.Errorf("fetch %s from %s: %w", c.Symbol, c.Provider.Name(), err)
	}
	if series.Len() == 0 {
		return model.PriceSeries{}, unavailable("%s returned no data for %s", c.Provider.Name(), c.Symbol)
	}
	if series.Symbol == "" {
		series.Symbol = c.Symbol
	}
	points := make([]model.PricePoint, len(series.Points))
	copy(points, series.Points)
	series.Points = points
	sort.SliceStable(series.Points, func(i, j int) bool { return series.Points[i].Time.Before(series.Points[j].Time) })

	c.Log.Debug().
		Str("provider", c.Provider.Name()).
		Str("symbol", series.Symbol).
		Int("points", series.Len()).
		Msg("price series collected")
	return series, nil
}
