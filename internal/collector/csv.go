package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"RSIMonitor/internal/model"
)

var csvTimeLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// CSVProvider reads closes from a local "time,close" file, e.g. an export
// from a broker. An optional header row is skipped.
type CSVProvider struct {
	Path string
}

// NewCSVProvider creates a file-backed provider.
func NewCSVProvider(path string) *CSVProvider {
	return &CSVProvider{Path: path}
}

func (p *CSVProvider) Name() string { return "csv" }

func (p *CSVProvider) Fetch(_ context.Context, ticker, lookback, interval string) (model.PriceSeries, error) {
	keep, err := LookbackBars(lookback, interval)
	if err != nil {
		return model.PriceSeries{}, unavailable("csv: %v", err)
	}
	f, err := os.Open(p.Path)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("%w: open csv: %w", ErrDataUnavailable, err)
	}
	defer f.Close()

	points, err := readCSVPoints(f)
	if err != nil {
		return model.PriceSeries{}, err
	}
	if len(points) == 0 {
		return model.PriceSeries{}, unavailable("csv: %s has no rows", p.Path)
	}
	if len(points) > keep {
		points = points[len(points)-keep:]
	}
	return model.PriceSeries{Symbol: ticker, Interval: interval, Points: points, FetchedAt: time.Now()}, nil
}

func readCSVPoints(r io.Reader) ([]model.PricePoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var points []model.PricePoint
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read csv: %w", ErrDataUnavailable, err)
		}
		if len(rec) < 2 {
			return nil, unavailable("csv line %d: expected time,close", line)
		}
		ts, ok := parseCSVTime(rec[0])
		if !ok {
			if line == 1 && strings.EqualFold(strings.TrimSpace(rec[1]), "close") {
				continue
			}
			return nil, unavailable("csv line %d: bad time %q", line, rec[0])
		}
		points = append(points, model.PricePoint{Time: ts, Close: parseClose(rec[1])})
	}
	// Exports are often newest first; trimming to the lookback needs time order.
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}

func parseCSVTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
