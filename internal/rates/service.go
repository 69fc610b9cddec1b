// Package rates stores user-pinned exchange rates to USD. A pinned rate
// beats whatever the market feed says for that currency during balance
// conversion.
package rates

import "context"

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=rates
type Repository interface {
	Set(ctx context.Context, currency string, rate float64) error
	Get(ctx context.Context, currency string) (float64, error)
	All(ctx context.Context) (map[string]float64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Set(ctx context.Context, currency string, rate float64) error {
	return s.repo.Set(ctx, currency, rate)
}

func (s *Service) Get(ctx context.Context, currency string) (float64, error) {
	return s.repo.Get(ctx, currency)
}

// All returns the override map keyed by currency code.
func (s *Service) All(ctx context.Context) (map[string]float64, error) {
	return s.repo.All(ctx)
}
