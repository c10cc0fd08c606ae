package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"RSIMonitor/internal/httpclient"
	"RSIMonitor/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider implements Provider using Yahoo Finance public API.
type YahooProvider struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooProvider creates a new Yahoo Finance provider.
func NewYahooProvider(proxyURL string) *YahooProvider {
	return &YahooProvider{
		BaseURL: yahooBaseURL,
		Client:  httpclient.New(proxyURL),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooProvider) Name() string { return "yahoo" }

func (f *YahooProvider) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// toFloat converts a JSON close; null or non-numeric values become NaN.
func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return math.NaN()
	}
}

// yahooRange resolves a lookback into a chart range and an optional trim count.
func yahooRange(lookback string) (rng string, keep int, err error) {
	if _, ok := tradingBars[lookback]; ok {
		return lookback, 0, nil
	}
	days, err := LookbackBars(lookback, "1d")
	if err != nil {
		return "", 0, err
	}
	switch {
	case days <= 22:
		rng = "1mo"
	case days <= 66:
		rng = "3mo"
	case days <= 126:
		rng = "6mo"
	case days <= 252:
		rng = "1y"
	default:
		rng = "2y"
	}
	return rng, days, nil
}

func (f *YahooProvider) Fetch(ctx context.Context, ticker, lookback, interval string) (model.PriceSeries, error) {
	rng, keep, err := yahooRange(lookback)
	if err != nil {
		return model.PriceSeries{}, unavailable("yahoo: %v", err)
	}
	points, err := f.fetchChart(ctx, ticker, interval, rng)
	if err != nil {
		return model.PriceSeries{}, err
	}
	if keep > 0 && len(points) > keep {
		points = points[len(points)-keep:]
	}
	return model.PriceSeries{
		Symbol:    ticker,
		Interval:  interval,
		Points:    points,
		FetchedAt: time.Now(),
	}, nil
}

func (f *YahooProvider) fetchChart(ctx context.Context, symbol, interval, rng string) ([]model.PricePoint, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), url.QueryEscape(interval), url.QueryEscape(rng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, unavailable("yahoo request: %v", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo fetch: %w", ErrDataUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo read body: %w", ErrDataUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unavailable("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("%w: yahoo decode: %w", ErrDataUnavailable, err)
	}
	if chart.Chart.Error != nil {
		return nil, unavailable("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, unavailable("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, unavailable("yahoo: no quote block")
	}
	closes := result.Indicators.Quote[0].Close
	points := make([]model.PricePoint, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		c := math.NaN()
		if i < len(closes) {
			c = toFloat(closes[i])
		}
		points = append(points, model.PricePoint{Time: time.Unix(ts, 0).UTC(), Close: c})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}
