package collector

import (
	"context"
	"fmt"
	"time"

	"RSIMonitor/internal/httpclient"
	"RSIMonitor/internal/model"

	"github.com/adshao/go-binance/v2"
)

// binanceIntervals maps Yahoo-style intervals to kline intervals.
var binanceIntervals = map[string]string{
	"1h":  "1h",
	"4h":  "4h",
	"1d":  "1d",
	"1wk": "1w",
}

// BinanceProvider implements Provider using Binance spot klines.
type BinanceProvider struct {
	Client *binance.Client
}

// NewBinanceProvider creates a spot kline provider. Keys may be empty, klines
// are a public endpoint.
func NewBinanceProvider(apiKey, secretKey, proxyURL string) *BinanceProvider {
	client := binance.NewClient(apiKey, secretKey)
	client.HTTPClient = httpclient.New(proxyURL)
	return &BinanceProvider{Client: client}
}

func (p *BinanceProvider) Name() string { return "binance" }

func (p *BinanceProvider) Fetch(ctx context.Context, ticker, lookback, interval string) (model.PriceSeries, error) {
	iv, ok := binanceIntervals[interval]
	if !ok {
		return model.PriceSeries{}, unavailable("binance: unsupported interval %q", interval)
	}
	limit, err := LookbackBars(lookback, interval)
	if err != nil {
		return model.PriceSeries{}, unavailable("binance: %v", err)
	}
	if limit > 1000 {
		limit = 1000
	}

	klines, err := p.Client.NewKlinesService().
		Symbol(ticker).Interval(iv).
		Limit(limit).Do(ctx)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("%w: binance klines: %w", ErrDataUnavailable, err)
	}
	if len(klines) == 0 {
		return model.PriceSeries{}, unavailable("binance: no klines for %s", ticker)
	}

	points := make([]model.PricePoint, len(klines))
	for i, k := range klines {
		points[i] = model.PricePoint{
			Time:  time.UnixMilli(k.OpenTime).UTC(),
			Close: parseClose(k.Close),
		}
	}
	return model.PriceSeries{Symbol: ticker, Interval: interval, Points: points, FetchedAt: time.Now()}, nil
}
