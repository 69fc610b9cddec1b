package transaction

import (
	"context"
	"fmt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Transaction, error)
	CreateTrade(ctx context.Context, params CreateParams) (*Transaction, error)
	Update(ctx context.Context, id int64, params UpdateParams) (*Transaction, error)
	UpdateTrade(ctx context.Context, id int64, params CreateParams) (*Transaction, error)
	Delete(ctx context.Context, id int64) error

	ByAccount(ctx context.Context, accountID int64) ([]*Transaction, error)
	All(ctx context.Context) ([]*Transaction, error)
	Payees(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]string, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateParams carries the full transaction field set. Trade operations fill
// the instrument fields from TradeParams; plain creates pass them through.
type CreateParams struct {
	AccountID     int64
	Date          string
	Payee         string
	Notes         *string
	Category      *string
	Amount        float64
	Ticker        *string
	Shares        *float64
	PricePerShare *float64
	Fee           *float64
	Currency      *string
}

// UpdateParams covers the fields a plain update overwrites. Instrument
// fields are untouched by plain updates; trades overwrite everything.
type UpdateParams struct {
	AccountID int64
	Date      string
	Payee     string
	Notes     *string
	Category  *string
	Amount    float64
	Currency  *string
}

// TradeParams describes an investment trade in caller terms. Shares is the
// traded quantity and always positive; the stored sign encodes direction.
type TradeParams struct {
	AccountID     int64
	Date          string
	Ticker        string
	Shares        float64
	PricePerShare float64
	Fee           float64
	Buy           bool
	Notes         *string
	Currency      *string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	return s.repo.Create(ctx, params)
}

// CreateTrade derives the cash amount from the trade parameters and records
// it against the single owning account. Buys debit the total plus fee and
// store shares positive; sells credit the total minus fee and store shares
// negative.
func (s *Service) CreateTrade(ctx context.Context, params TradeParams) (*Transaction, error) {
	return s.repo.CreateTrade(ctx, tradeFields(params))
}

func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Transaction, error) {
	return s.repo.Update(ctx, id, params)
}

func (s *Service) UpdateTrade(ctx context.Context, id int64, params TradeParams) (*Transaction, error) {
	return s.repo.UpdateTrade(ctx, id, tradeFields(params))
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ByAccount(ctx context.Context, accountID int64) ([]*Transaction, error) {
	return s.repo.ByAccount(ctx, accountID)
}

func (s *Service) All(ctx context.Context) ([]*Transaction, error) {
	return s.repo.All(ctx)
}

func (s *Service) Payees(ctx context.Context) ([]string, error) {
	return s.repo.Payees(ctx)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func tradeFields(p TradeParams) CreateParams {
	total := p.Shares * p.PricePerShare

	amount := total - p.Fee
	payee := PayeeSell
	action := "Sold"
	shares := -p.Shares

	if p.Buy {
		amount = -(total + p.Fee)
		payee = PayeeBuy
		action = "Bought"
		shares = p.Shares
	}

	notes := p.Notes
	if notes == nil {
		formatted := fmt.Sprintf("%s %v shares of %s", action, p.Shares, p.Ticker)
		notes = &formatted
	}

	category := CategoryInvestment

	return CreateParams{
		AccountID:     p.AccountID,
		Date:          p.Date,
		Payee:         payee,
		Notes:         notes,
		Category:      &category,
		Amount:        amount,
		Ticker:        &p.Ticker,
		Shares:        &shares,
		PricePerShare: &p.PricePerShare,
		Fee:           &p.Fee,
		Currency:      p.Currency,
	}
}
