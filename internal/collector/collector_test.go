package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"RSIMonitor/internal/model"

	"github.com/rs/zerolog"
)

func TestLookbackBars(t *testing.T) {
	tests := []struct {
		lookback, interval string
		want               int
		wantErr            bool
	}{
		{"1mo", "1d", 22, false},
		{"6mo", "1d", 126, false},
		{"1y", "1wk", 50, false},
		{"5d", "1wk", 1, false},
		{"30", "1d", 30, false},
		{"0", "1d", 0, true},
		{"forever", "1d", 0, true},
	}
	for _, tt := range tests {
		got, err := LookbackBars(tt.lookback, tt.interval)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s/%s: unexpected error state %v", tt.lookback, tt.interval, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s/%s: expected %d, got %d", tt.lookback, tt.interval, tt.want, got)
		}
	}
}

func TestCollector_WrapsProviderErrors(t *testing.T) {
	mock := &MockProvider{Err: errors.New("connection reset")}
	col := NewCollector(mock, "MSTR", "1mo", "1d", zerolog.Nop())
	_, err := col.Collect(context.Background())
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("expected cause in message, got %v", err)
	}
}

func TestCollector_EmptySeries(t *testing.T) {
	col := NewCollector(&MockProvider{}, "MSTR", "1mo", "1d", zerolog.Nop())
	if _, err := col.Collect(context.Background()); !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable for empty series, got %v", err)
	}
}

func TestCollector_Success(t *testing.T) {
	mock := &MockProvider{Closes: []float64{1, 2, 3}}
	col := NewCollector(mock, "MSTR", "1mo", "1d", zerolog.Nop())
	s, err := col.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if s.Symbol != "MSTR" || s.Len() != 3 || mock.Calls != 1 {
		t.Errorf("unexpected series %+v (calls=%d)", s, mock.Calls)
	}
}

// staticProvider returns a fixed series as-is.
type staticProvider struct {
	series model.PriceSeries
}

func (p staticProvider) Name() string { return "static" }

func (p staticProvider) Fetch(context.Context, string, string, string) (model.PriceSeries, error) {
	return p.series, nil
}

func TestCollector_SortsOutOfOrderPoints(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	shuffled := []model.PricePoint{
		{Time: day(3), Close: 103},
		{Time: day(1), Close: 101},
		{Time: day(4), Close: 104},
		{Time: day(2), Close: 102},
	}
	col := NewCollector(staticProvider{series: model.PriceSeries{Points: shuffled}}, "MSTR", "1mo", "1d", zerolog.Nop())
	s, err := col.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []float64{101, 102, 103, 104} {
		if s.Points[i].Close != want {
			t.Fatalf("point %d: expected %v, got %v", i, want, s.Points[i].Close)
		}
	}
	if last, ok := s.Last(); !ok || !last.Time.Equal(day(4)) {
		t.Errorf("expected last bar on 2024-01-04, got %+v", last)
	}
	if shuffled[0].Close != 103 {
		t.Error("collect must not reorder the provider's slice")
	}
}

func TestYahooProvider_Fetch(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		// Deliberately out of order, with a null close.
		fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[1700172800,1700000000,1700086400],
			"indicators":{"quote":[{"close":[103.5,101.25,null]}]}}],"error":null}}`)
	}))
	defer srv.Close()

	p := NewYahooProvider("")
	p.BaseURL = srv.URL
	s, err := p.Fetch(context.Background(), "SPX", "1mo", "1d")
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/v8/finance/chart/^GSPC" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotQuery != "interval=1d&range=1mo" {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", s.Len())
	}
	if s.Points[0].Close != 101.25 || s.Points[2].Close != 103.5 {
		t.Errorf("points not sorted oldest first: %+v", s.Points)
	}
	if !math.IsNaN(s.Points[1].Close) {
		t.Errorf("null close should be NaN, got %v", s.Points[1].Close)
	}
}

func TestYahooProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"status", http.StatusNotFound, `not found`},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`},
		{"empty", http.StatusOK, `{"chart":{"result":[],"error":null}}`},
		{"malformed", http.StatusOK, `{"chart":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			p := NewYahooProvider("")
			p.BaseURL = srv.URL
			if _, err := p.Fetch(context.Background(), "MSTR", "1mo", "1d"); !errors.Is(err, ErrDataUnavailable) {
				t.Errorf("expected ErrDataUnavailable, got %v", err)
			}
		})
	}
}

func TestYahooRange_NumericLookback(t *testing.T) {
	rng, keep, err := yahooRange("40")
	if err != nil {
		t.Fatal(err)
	}
	if rng != "3mo" || keep != 40 {
		t.Errorf("expected 3mo/40, got %s/%d", rng, keep)
	}
}

func TestRESTProvider_Fetch(t *testing.T) {
	var auth, query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		query = r.URL.RawQuery
		fmt.Fprint(w, `[{"timestamp":1700086400,"close":11},{"timestamp":1700000000,"close":10},{"timestamp":1700172800,"close":null}]`)
	}))
	defer srv.Close()

	p := NewRESTProvider(srv.URL, "secret", "")
	s, err := p.Fetch(context.Background(), "MSTR", "1mo", "1d")
	if err != nil {
		t.Fatal(err)
	}
	if auth != "Bearer secret" {
		t.Errorf("unexpected auth header %q", auth)
	}
	if query != "symbol=MSTR&interval=1d&limit=22" {
		t.Errorf("unexpected query %q", query)
	}
	if s.Points[0].Close != 10 || s.Points[1].Close != 11 || !math.IsNaN(s.Points[2].Close) {
		t.Errorf("unexpected points %+v", s.Points)
	}
}

func TestRESTProvider_WeeklyFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") == "1wk" {
			http.Error(w, "unsupported", http.StatusBadRequest)
			return
		}
		// Mon 2024-01-01 .. Wed 2024-01-10: two ISO weeks.
		fmt.Fprint(w, `[{"timestamp":1704067200,"close":1},{"timestamp":1704153600,"close":2},
			{"timestamp":1704672000,"close":3},{"timestamp":1704844800,"close":4}]`)
	}))
	defer srv.Close()

	s, err := NewRESTProvider(srv.URL, "", "").Fetch(context.Background(), "MSTR", "1y", "1wk")
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 || s.Points[0].Close != 2 || s.Points[1].Close != 4 {
		t.Errorf("expected weekly closes [2 4], got %+v", s.Points)
	}
}

func TestRESTProvider_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()
	if _, err := NewRESTProvider(srv.URL, "", "").Fetch(context.Background(), "MSTR", "1mo", "1d"); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable for empty result, got %v", err)
	}
}

func TestBinanceProvider_Fetch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `[
			[1704067200000,"42000.00","42500.00","41800.00","42283.58","100.0",1704153599999,"4200000.0",1000,"50.0","2100000.0","0"],
			[1704153600000,"42283.58","45000.00","42000.00","44179.55","120.0",1704239999999,"5200000.0",1100,"60.0","2600000.0","0"]
		]`)
	}))
	defer srv.Close()

	p := NewBinanceProvider("", "", "")
	p.Client.BaseURL = srv.URL
	s, err := p.Fetch(context.Background(), "BTCUSDT", "1mo", "1d")
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/api/v3/klines" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if s.Len() != 2 || s.Points[0].Close != 42283.58 || s.Points[1].Close != 44179.55 {
		t.Errorf("unexpected points %+v", s.Points)
	}
}

func TestBinanceProvider_UnsupportedInterval(t *testing.T) {
	p := NewBinanceProvider("", "", "")
	if _, err := p.Fetch(context.Background(), "BTCUSDT", "1mo", "3d"); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestCSVProvider_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mstr.csv")
	data := "date,close\n2024-01-01,100\n2024-01-02,101.5\n2024-01-03,n/a\n2024-01-04,103\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewCSVProvider(path).Fetch(context.Background(), "MSTR", "3", "1d")
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 {
		t.Fatalf("expected lookback trim to 3 points, got %d", s.Len())
	}
	if s.Points[0].Close != 101.5 || !math.IsNaN(s.Points[1].Close) || s.Points[2].Close != 103 {
		t.Errorf("unexpected points %+v", s.Points)
	}
}

func TestCSVProvider_NewestFirstKeepsLatestBars(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var b strings.Builder
	b.WriteString("date,close\n")
	for i := 39; i >= 0; i-- {
		fmt.Fprintf(&b, "%s,%d\n", start.AddDate(0, 0, i).Format("2006-01-02"), 100+i)
	}
	path := filepath.Join(t.TempDir(), "newest_first.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewCSVProvider(path).Fetch(context.Background(), "MSTR", "1mo", "1d")
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 22 {
		t.Fatalf("expected 22 points, got %d", s.Len())
	}
	if s.Points[0].Close != 118 {
		t.Errorf("expected window to start at close 118, got %v", s.Points[0].Close)
	}
	last, _ := s.Last()
	if last.Close != 139 || !last.Time.Equal(start.AddDate(0, 0, 39)) {
		t.Errorf("expected latest bar 2024-02-09 close 139, got %v %v", last.Time, last.Close)
	}
}

func TestCSVProvider_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(bad, []byte("2024-01-01,1\nyesterday,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{bad, filepath.Join(dir, "missing.csv")} {
		if _, err := NewCSVProvider(path).Fetch(context.Background(), "MSTR", "1mo", "1d"); !errors.Is(err, ErrDataUnavailable) {
			t.Errorf("%s: expected ErrDataUnavailable, got %v", path, err)
		}
	}
}
