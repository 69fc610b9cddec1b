package ratefeed

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

// Mock Repository
type mockRepo struct {
	upsertQuotesFunc      func(ctx context.Context, quotes []Quote) error
	cachedQuoteFunc       func(ctx context.Context, symbol string) (*Quote, error)
	lastDateFunc          func(ctx context.Context, symbol string) (string, error)
	upsertDailyQuotesFunc func(ctx context.Context, symbol string, prices []DailyQuote) error
	dailyQuotesFunc       func(ctx context.Context, symbol string) ([]DailyQuote, error)
}

func (m *mockRepo) UpsertQuotes(ctx context.Context, quotes []Quote) error {
	if m.upsertQuotesFunc != nil {
		return m.upsertQuotesFunc(ctx, quotes)
	}

	return nil
}

func (m *mockRepo) CachedQuote(ctx context.Context, symbol string) (*Quote, error) {
	if m.cachedQuoteFunc != nil {
		return m.cachedQuoteFunc(ctx, symbol)
	}

	return nil, ErrNotCached
}

func (m *mockRepo) LastDate(ctx context.Context, symbol string) (string, error) {
	if m.lastDateFunc != nil {
		return m.lastDateFunc(ctx, symbol)
	}

	return "", nil
}

func (m *mockRepo) UpsertDailyQuotes(ctx context.Context, symbol string, prices []DailyQuote) error {
	if m.upsertDailyQuotesFunc != nil {
		return m.upsertDailyQuotesFunc(ctx, symbol, prices)
	}

	return nil
}

func (m *mockRepo) DailyQuotes(ctx context.Context, symbol string) ([]DailyQuote, error) {
	if m.dailyQuotesFunc != nil {
		return m.dailyQuotesFunc(ctx, symbol)
	}

	return nil, nil
}

func chartBody(symbol string, price, previousClose float64) string {
	return fmt.Sprintf(
		`{"chart":{"result":[{"meta":{"symbol":%q,"regularMarketPrice":%v,"chartPreviousClose":%v,"currency":"USD"}}]}}`,
		symbol, price, previousClose)
}

func TestQuotes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("User-Agent"), "Mozilla") {
			t.Errorf("expected a browser user agent, got %q", r.Header.Get("User-Agent"))
		}

		switch r.URL.Path {
		case "/v8/finance/chart/VTI":
			fmt.Fprint(w, chartBody("VTI", 250.5, 248.0))
		case "/v8/finance/chart/EURUSD=X":
			fmt.Fprint(w, chartBody("EURUSD=X", 1.2, 1.2))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	var cached []Quote

	repo := &mockRepo{
		upsertQuotesFunc: func(_ context.Context, quotes []Quote) error {
			cached = append(cached, quotes...)
			return nil
		},
	}

	svc := NewService(repo, ts.URL, time.Second)

	quotes, err := svc.Quotes(context.Background(), []string{"VTI", "EURUSD=X"})
	if err != nil {
		t.Fatalf("Quotes returned error: %v", err)
	}

	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}

	bySymbol := map[string]Quote{}
	for _, q := range quotes {
		bySymbol[q.Symbol] = q
	}

	vti := bySymbol["VTI"]
	if vti.Price != 250.5 {
		t.Errorf("expected VTI price 250.5, got %v", vti.Price)
	}

	wantChange := (250.5 - 248.0) / 248.0 * 100
	if math.Abs(vti.ChangePercent-wantChange) > 1e-9 {
		t.Errorf("expected VTI change %v, got %v", wantChange, vti.ChangePercent)
	}

	if eur := bySymbol["EURUSD=X"]; eur.ChangePercent != 0 {
		t.Errorf("expected flat change for EURUSD=X, got %v", eur.ChangePercent)
	}

	if len(cached) != 2 {
		t.Errorf("expected both quotes cached, got %d", len(cached))
	}
}

func TestQuotesFallsBackToCache(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	repo := &mockRepo{
		cachedQuoteFunc: func(_ context.Context, symbol string) (*Quote, error) {
			if symbol == "VTI" {
				return &Quote{Symbol: "VTI", Price: 123.45}, nil
			}

			return nil, ErrNotCached
		},
	}

	svc := NewService(repo, ts.URL, time.Second)

	quotes, err := svc.Quotes(context.Background(), []string{"VTI", "UNKNOWN"})
	if err != nil {
		t.Fatalf("Quotes returned error: %v", err)
	}

	// The cached symbol survives the outage, the unknown one is dropped.
	if len(quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(quotes))
	}

	if quotes[0].Symbol != "VTI" || quotes[0].Price != 123.45 {
		t.Errorf("expected cached VTI at 123.45, got %+v", quotes[0])
	}

	if quotes[0].ChangePercent != 0 {
		t.Errorf("expected zero change from cache, got %v", quotes[0].ChangePercent)
	}
}

func TestQuotesEmptyInput(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty symbol list")
	}))
	defer ts.Close()

	svc := NewService(&mockRepo{}, ts.URL, time.Second)

	quotes, err := svc.Quotes(context.Background(), nil)
	if err != nil {
		t.Fatalf("Quotes returned error: %v", err)
	}

	if len(quotes) != 0 {
		t.Errorf("expected no quotes, got %d", len(quotes))
	}
}

func TestRates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/EURUSD=X":
			fmt.Fprint(w, chartBody("EURUSD=X", 1.2, 1.19))
		case "/v8/finance/chart/GBPUSD=X":
			fmt.Fprint(w, chartBody("GBPUSD=X", 1.5, 1.51))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	svc := NewService(&mockRepo{}, ts.URL, time.Second)

	rates, err := svc.Rates(context.Background(), []string{"EURUSD=X", "GBPUSD=X"})
	if err != nil {
		t.Fatalf("Rates returned error: %v", err)
	}

	if rates["EURUSD=X"] != 1.2 || rates["GBPUSD=X"] != 1.5 {
		t.Errorf("unexpected rate map: %v", rates)
	}
}

func TestHistoryInitialFetch(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day3 := day1.AddDate(0, 0, 2)

	var gotPeriod1, gotPeriod2 string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPeriod1 = r.URL.Query().Get("period1")
		gotPeriod2 = r.URL.Query().Get("period2")

		fmt.Fprintf(w,
			`{"chart":{"result":[{"meta":{"symbol":"VTI"},"timestamp":[%d,%d,%d],"indicators":{"quote":[{"close":[100.0,null,102.5]}]}}]}}`,
			day1.Unix(), day2.Unix(), day3.Unix())
	}))
	defer ts.Close()

	var stored []DailyQuote

	repo := &mockRepo{
		upsertDailyQuotesFunc: func(_ context.Context, symbol string, prices []DailyQuote) error {
			if symbol != "VTI" {
				t.Errorf("expected symbol VTI, got %s", symbol)
			}

			stored = append(stored, prices...)
			return nil
		},
		dailyQuotesFunc: func(_ context.Context, _ string) ([]DailyQuote, error) {
			return stored, nil
		},
	}

	svc := NewService(repo, ts.URL, time.Second)

	prices, err := svc.History(context.Background(), "VTI")
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}

	// A fresh symbol asks for roughly ten years of closes.
	p1, err := strconv.ParseInt(gotPeriod1, 10, 64)
	if err != nil {
		t.Fatalf("missing period1: %v", err)
	}

	p2, err := strconv.ParseInt(gotPeriod2, 10, 64)
	if err != nil {
		t.Fatalf("missing period2: %v", err)
	}

	if window := p2 - p1; window < 9*365*24*60*60 {
		t.Errorf("expected a multi-year window, got %d seconds", window)
	}

	// The null close is skipped.
	if len(prices) != 2 {
		t.Fatalf("expected 2 stored prices, got %d", len(prices))
	}

	if prices[0].Date != "2024-03-01" || prices[0].Price != 100 {
		t.Errorf("unexpected first price: %+v", prices[0])
	}

	if prices[1].Date != "2024-03-03" || prices[1].Price != 102.5 {
		t.Errorf("unexpected second price: %+v", prices[1])
	}
}

func TestHistoryResumesAfterLastDate(t *testing.T) {
	var gotPeriod1 string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPeriod1 = r.URL.Query().Get("period1")
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"symbol":"VTI"}}]}}`)
	}))
	defer ts.Close()

	repo := &mockRepo{
		lastDateFunc: func(_ context.Context, _ string) (string, error) {
			return "2024-03-01", nil
		},
	}

	svc := NewService(repo, ts.URL, time.Second)

	if _, err := svc.History(context.Background(), "VTI"); err != nil {
		t.Fatalf("History returned error: %v", err)
	}

	want := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC).Unix()
	if gotPeriod1 != strconv.FormatInt(want, 10) {
		t.Errorf("expected period1 %d (day after last close), got %s", want, gotPeriod1)
	}
}

func TestHistoryServesStoredOnFetchFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	repo := &mockRepo{
		dailyQuotesFunc: func(_ context.Context, _ string) ([]DailyQuote, error) {
			return []DailyQuote{{Date: "2024-03-01", Price: 100}}, nil
		},
	}

	svc := NewService(repo, ts.URL, time.Second)

	prices, err := svc.History(context.Background(), "VTI")
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}

	if len(prices) != 1 || prices[0].Price != 100 {
		t.Errorf("expected the stored series, got %+v", prices)
	}
}
