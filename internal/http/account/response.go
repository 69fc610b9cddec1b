package account

import (
	"github.com/FumingPower3925/HoneyBear-Folio/internal/account"
)

type accountResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Balance      float64 `json:"balance"`
	Currency     *string `json:"currency,omitempty"`
	ExchangeRate float64 `json:"exchange_rate"`
}

func toResponse(a *account.Account) accountResponse {
	return accountResponse{
		ID:           a.ID,
		Name:         a.Name,
		Balance:      a.Balance,
		Currency:     a.Currency,
		ExchangeRate: a.ExchangeRate,
	}
}

func toResponseList(accounts []*account.Account) []accountResponse {
	resp := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		resp[i] = toResponse(a)
	}

	return resp
}
