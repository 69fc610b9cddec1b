package rules

import "context"

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=rules
type Repository interface {
	List(ctx context.Context) ([]*Rule, error)
	Create(ctx context.Context, params Params) (*Rule, error)
	Update(ctx context.Context, id int64, params Params) (*Rule, error)
	Delete(ctx context.Context, id int64) error
	Reorder(ctx context.Context, ids []int64) error
}

// Params carries the matcher/action fields. Priority is managed separately
// through Reorder.
type Params struct {
	MatchField   string
	MatchPattern string
	ActionField  string
	ActionValue  string
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns rules in application order, highest priority first.
func (s *Service) List(ctx context.Context) ([]*Rule, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, params Params) (*Rule, error) {
	return s.repo.Create(ctx, params)
}

func (s *Service) Update(ctx context.Context, id int64, params Params) (*Rule, error) {
	return s.repo.Update(ctx, id, params)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Reorder rewrites priorities so the given ids sort in the given order.
func (s *Service) Reorder(ctx context.Context, ids []int64) error {
	return s.repo.Reorder(ctx, ids)
}
