package transaction

import (
	"github.com/FumingPower3925/HoneyBear-Folio/internal/transaction"
)

type transactionResponse struct {
	ID            int64    `json:"id"`
	AccountID     int64    `json:"account_id"`
	Date          string   `json:"date"`
	Payee         string   `json:"payee"`
	Notes         *string  `json:"notes,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Amount        float64  `json:"amount"`
	Ticker        *string  `json:"ticker,omitempty"`
	Shares        *float64 `json:"shares,omitempty"`
	PricePerShare *float64 `json:"price_per_share,omitempty"`
	Fee           *float64 `json:"fee,omitempty"`
	Currency      *string  `json:"currency,omitempty"`
	LinkedID      *int64   `json:"linked_tx_id,omitempty"`
	IsTransfer    bool     `json:"is_transfer"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		AccountID:     tx.AccountID,
		Date:          tx.Date,
		Payee:         tx.Payee,
		Notes:         tx.Notes,
		Category:      tx.Category,
		Amount:        tx.Amount,
		Ticker:        tx.Ticker,
		Shares:        tx.Shares,
		PricePerShare: tx.PricePerShare,
		Fee:           tx.Fee,
		Currency:      tx.Currency,
		LinkedID:      tx.LinkedID,
		IsTransfer:    tx.Transfer,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
