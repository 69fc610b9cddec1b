package ratefeed

// Quote is a point-in-time price for one symbol. ChangePercent is relative
// to the previous close; quotes served from the cache report zero change and
// no currency.
type Quote struct {
	Symbol        string
	Price         float64
	ChangePercent float64
	Currency      *string
}

// DailyQuote is one closing price in a symbol's history.
type DailyQuote struct {
	Date  string
	Price float64
}
