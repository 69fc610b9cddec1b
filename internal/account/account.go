package account

// Account is a named money container. Balance is denominated in the
// account's own currency; a nil Currency means the global target currency
// applies. ExchangeRate is derived on read relative to a requested target
// and never stored.
type Account struct {
	ID           int64
	Name         string
	Balance      float64
	Currency     *string
	ExchangeRate float64
}
