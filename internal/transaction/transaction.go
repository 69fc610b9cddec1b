package transaction

// Values the engine assigns itself. CategoryTransfer marks both legs of a
// detected transfer and is never chosen by callers; trade rows get
// CategoryInvestment with PayeeBuy or PayeeSell.
const (
	CategoryTransfer   = "Transfer"
	CategoryInvestment = "Investment"

	PayeeBuy  = "Buy"
	PayeeSell = "Sell"
)

// Transaction is a single signed monetary event attributed to one account.
// A positive Amount credits the owning account. Dates are ISO 8601
// (YYYY-MM-DD) strings. LinkedID points at the counterpart leg of a
// transfer; the link is always symmetric.
type Transaction struct {
	ID            int64
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
	LinkedID      *int64
	Transfer      bool
}
