package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"RSIMonitor/internal/httpclient"
	"RSIMonitor/internal/model"
)

// RESTProvider implements Provider against a generic bar REST API.
type RESTProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTProvider creates a new provider with optional proxy support.
func NewRESTProvider(baseURL, apiKey, proxyURL string) *RESTProvider {
	return &RESTProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  httpclient.New(proxyURL),
	}
}

func (f *RESTProvider) Name() string { return "rest" }

// restBar is the expected JSON shape from the bar API. Close is a pointer so
// a null close is distinguishable from zero.
type restBar struct {
	Timestamp int64    `json:"timestamp"`
	Close     *float64 `json:"close"`
}

func (f *RESTProvider) Fetch(ctx context.Context, ticker, lookback, interval string) (model.PriceSeries, error) {
	limit, err := LookbackBars(lookback, interval)
	if err != nil {
		return model.PriceSeries{}, unavailable("rest: %v", err)
	}
	points, err := f.fetchBars(ctx, ticker, interval, limit)
	if err != nil && interval == "1wk" {
		// API without a weekly endpoint: aggregate daily bars instead.
		daily, dailyErr := f.fetchBars(ctx, ticker, "1d", limit*5)
		if dailyErr != nil {
			return model.PriceSeries{}, fmt.Errorf("weekly fetch failed: %w; daily fallback also failed: %w", err, dailyErr)
		}
		points, err = aggregateDailyToWeekly(daily), nil
	}
	if err != nil {
		return model.PriceSeries{}, err
	}
	return model.PriceSeries{Symbol: ticker, Interval: interval, Points: points, FetchedAt: time.Now()}, nil
}

func (f *RESTProvider) fetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.PricePoint, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars?symbol=%s&interval=%s&limit=%d",
		f.BaseURL, url.QueryEscape(symbol), url.QueryEscape(interval), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, unavailable("rest request: %v", err)
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch bars: %w", ErrDataUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, unavailable("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var bars []restBar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return nil, fmt.Errorf("%w: decode bars: %w", ErrDataUnavailable, err)
	}
	if len(bars) == 0 {
		return nil, unavailable("fetch bars: empty result for %s", symbol)
	}
	points := make([]model.PricePoint, len(bars))
	for i, b := range bars {
		points[i] = model.PricePoint{Time: time.Unix(b.Timestamp, 0).UTC(), Close: nanIfNil(b.Close)}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}

// aggregateDailyToWeekly keeps the last close of each ISO week.
func aggregateDailyToWeekly(daily []model.PricePoint) []model.PricePoint {
	if len(daily) == 0 {
		return nil
	}
	var weekly []model.PricePoint
	week := daily[0]
	for _, d := range daily[1:] {
		y, w := d.Time.ISOWeek()
		cy, cw := week.Time.ISOWeek()
		if y != cy || w != cw {
			weekly = append(weekly, week)
		}
		week = d
	}
	return append(weekly, week)
}
