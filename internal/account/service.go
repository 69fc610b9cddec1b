package account

import (
	"context"
	"log/slog"
	"strings"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/fx"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=account
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Account, error)
	Rename(ctx context.Context, id int64, name string) (*Account, error)
	Update(ctx context.Context, id int64, name string, currency *string) (*Account, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*Account, error)

	CurrencySums(ctx context.Context, target string) ([]fx.Sum, error)
}

// RateFeed supplies live market rates for the summary path.
type RateFeed interface {
	Rates(ctx context.Context, symbols []string) (map[string]float64, error)
}

// OverrideSource supplies user-defined currency-to-USD rates that take
// precedence over fetched ones.
type OverrideSource interface {
	All(ctx context.Context) (map[string]float64, error)
}

type Service struct {
	repo      Repository
	feed      RateFeed
	overrides OverrideSource
	target    string
}

func NewService(repo Repository, feed RateFeed, overrides OverrideSource, targetCurrency string) *Service {
	return &Service{repo: repo, feed: feed, overrides: overrides, target: targetCurrency}
}

type CreateParams struct {
	Name     string
	Balance  float64
	Currency *string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Account, error) {
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return nil, ErrNameEmpty
	}

	return s.repo.Create(ctx, params)
}

func (s *Service) Rename(ctx context.Context, id int64, name string) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameEmpty
	}

	return s.repo.Rename(ctx, id, name)
}

func (s *Service) Update(ctx context.Context, id int64, name string, currency *string) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameEmpty
	}

	return s.repo.Update(ctx, id, name, currency)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List returns accounts with their stored balances and a neutral exchange
// rate. Callers wanting converted balances use Summary.
func (s *Service) List(ctx context.Context) ([]*Account, error) {
	return s.repo.List(ctx)
}

// Summary returns all accounts with balances converted into each account's
// own currency (the target for accounts without one) and the exchange rate
// from the account currency to the target. Live rates are fetched only for
// currency pairs not covered by overrides; a feed failure degrades to
// neutral rates rather than failing the summary.
func (s *Service) Summary(ctx context.Context, target string) ([]*Account, error) {
	if target == "" {
		target = s.target
	}

	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	sums, err := s.repo.CurrencySums(ctx, target)
	if err != nil {
		return nil, err
	}

	overrides, err := s.overrides.All(ctx)
	if err != nil {
		return nil, err
	}

	currencies := make(map[int64]string, len(accounts))
	for _, a := range accounts {
		if a.Currency != nil {
			currencies[a.ID] = *a.Currency
		}
	}

	live := map[string]float64{}
	if symbols := fx.Pairs(currencies, sums, target, overrides); len(symbols) > 0 {
		live, err = s.feed.Rates(ctx, symbols)
		if err != nil {
			slog.Warn("rate fetch failed, using neutral rates", "error", err)
			live = map[string]float64{}
		}
	}

	balances := fx.Balances(currencies, sums, target, live, overrides)

	for _, a := range accounts {
		if converted, ok := balances[a.ID]; ok {
			a.Balance = converted
		}

		a.ExchangeRate = fx.DisplayRate(currencies[a.ID], target, live, overrides)
	}

	return accounts, nil
}
