// Package ratefeed pulls market prices from a Yahoo-compatible chart API and
// keeps a local cache so balances survive the feed being down.
package ratefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// The chart endpoint rejects default library user agents.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// historyWindow is how far back the first history fetch reaches.
const historyWindow = 10 * 365 * 24 * time.Hour

type Repository interface {
	UpsertQuotes(ctx context.Context, quotes []Quote) error
	CachedQuote(ctx context.Context, symbol string) (*Quote, error)
	LastDate(ctx context.Context, symbol string) (string, error)
	UpsertDailyQuotes(ctx context.Context, symbol string, prices []DailyQuote) error
	DailyQuotes(ctx context.Context, symbol string) ([]DailyQuote, error)
}

type Service struct {
	repo    Repository
	client  *http.Client
	baseURL string
}

func NewService(repo Repository, baseURL string, timeout time.Duration) *Service {
	return &Service{
		repo:    repo,
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Quotes fetches current prices for all symbols concurrently. Fresh quotes
// are cached; a symbol whose fetch fails is served from the cache instead,
// and dropped when the cache has nothing either. Fetch failures never fail
// the batch.
func (s *Service) Quotes(ctx context.Context, symbols []string) ([]Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	results := make([]*Quote, len(symbols))

	g, gctx := errgroup.WithContext(ctx)

	for i, symbol := range symbols {
		g.Go(func() error {
			quote, err := s.fetchQuote(gctx, symbol)
			if err != nil {
				slog.Warn("fetching quote failed", "symbol", symbol, "error", err)

				return nil
			}

			results[i] = quote

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var fetched []Quote

	for _, quote := range results {
		if quote != nil {
			fetched = append(fetched, *quote)
		}
	}

	if len(fetched) > 0 {
		if err := s.repo.UpsertQuotes(ctx, fetched); err != nil {
			slog.Warn("caching quotes failed", "error", err)
		}
	}

	quotes := fetched

	for i, symbol := range symbols {
		if results[i] != nil {
			continue
		}

		cached, err := s.repo.CachedQuote(ctx, symbol)
		if err != nil {
			if !errors.Is(err, ErrNotCached) {
				slog.Warn("reading cached quote failed", "symbol", symbol, "error", err)
			}

			continue
		}

		quotes = append(quotes, *cached)
	}

	return quotes, nil
}

// Rates reduces Quotes to a symbol-to-price map for balance conversion.
func (s *Service) Rates(ctx context.Context, symbols []string) (map[string]float64, error) {
	quotes, err := s.Quotes(ctx, symbols)
	if err != nil {
		return nil, err
	}

	rates := make(map[string]float64, len(quotes))
	for _, quote := range quotes {
		rates[quote.Symbol] = quote.Price
	}

	return rates, nil
}

// History tops up the stored daily closes for the symbol and returns the
// full stored series, oldest first. The fetch starts the day after the last
// cached close, or ten years back for a fresh symbol; a failed fetch serves
// whatever is already stored.
func (s *Service) History(ctx context.Context, symbol string) ([]DailyQuote, error) {
	last, err := s.repo.LastDate(ctx, symbol)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	start := now.Add(-historyWindow)

	if last != "" {
		day, err := time.Parse(time.DateOnly, last)
		if err != nil {
			return nil, fmt.Errorf("parsing last cached date: %w", err)
		}

		start = day.AddDate(0, 0, 1)
	}

	if start.Unix() < now.Unix() {
		if err := s.fetchHistory(ctx, symbol, start.Unix(), now.Unix()); err != nil {
			slog.Warn("fetching history failed", "symbol", symbol, "error", err)
		}
	}

	return s.repo.DailyQuotes(ctx, symbol)
}

func (s *Service) fetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	result, err := s.chart(ctx, symbol, url.Values{
		"interval": {"1d"},
		"range":    {"1d"},
	})
	if err != nil {
		return nil, err
	}

	var price float64
	if result.Meta.RegularMarketPrice != nil {
		price = *result.Meta.RegularMarketPrice
	}

	previous := price

	switch {
	case result.Meta.ChartPreviousClose != nil:
		previous = *result.Meta.ChartPreviousClose
	case result.Meta.PreviousClose != nil:
		previous = *result.Meta.PreviousClose
	}

	var change float64
	if previous != 0 {
		change = (price - previous) / previous * 100
	}

	return &Quote{
		Symbol:        result.Meta.Symbol,
		Price:         price,
		ChangePercent: change,
		Currency:      result.Meta.Currency,
	}, nil
}

func (s *Service) fetchHistory(ctx context.Context, symbol string, period1, period2 int64) error {
	result, err := s.chart(ctx, symbol, url.Values{
		"period1":  {strconv.FormatInt(period1, 10)},
		"period2":  {strconv.FormatInt(period2, 10)},
		"interval": {"1d"},
	})
	if err != nil {
		return err
	}

	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	closes := result.Indicators.Quote[0].Close

	var prices []DailyQuote

	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}

		prices = append(prices, DailyQuote{
			Date:  time.Unix(ts, 0).UTC().Format(time.DateOnly),
			Price: *closes[i],
		})
	}

	if len(prices) == 0 {
		return nil
	}

	return s.repo.UpsertDailyQuotes(ctx, symbol, prices)
}

func (s *Service) chart(ctx context.Context, symbol string, query url.Values) (*chartResult, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", s.baseURL, url.PathEscape(symbol), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building chart request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching chart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart request returned %s", resp.Status)
	}

	var decoded chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding chart response: %w", err)
	}

	if len(decoded.Chart.Result) == 0 {
		return nil, errors.New("empty chart response")
	}

	return &decoded.Chart.Result[0], nil
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string   `json:"symbol"`
		RegularMarketPrice *float64 `json:"regularMarketPrice"`
		ChartPreviousClose *float64 `json:"chartPreviousClose"`
		PreviousClose      *float64 `json:"previousClose"`
		Currency           *string  `json:"currency"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}
