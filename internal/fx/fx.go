// Package fx resolves conversion rates between currencies and aggregates
// per-currency transaction sums into account balances. It is pure: callers
// supply live market rates and user overrides as maps, nothing here touches
// the store or the network.
package fx

import "sort"

// PairSuffix terminates every live-rate key, e.g. "EURUSD=X".
const PairSuffix = "=X"

// pivotCurrency is the currency all indirect conversions pivot through.
const pivotCurrency = "USD"

// Pair builds the live-rate key expressing one unit of src in dst.
func Pair(src, dst string) string {
	return src + dst + PairSuffix
}

// Rate resolves the conversion rate from src to dst. A direct pair in live
// always wins when positive; otherwise both sides are pivoted through USD,
// with overrides taking precedence over fetched USD rates and missing data
// defaulting to 1.0. Rate never fails: bad input degrades to a neutral rate.
func Rate(src, dst string, live, overrides map[string]float64) float64 {
	if src == dst {
		return 1.0
	}

	if direct, ok := live[Pair(src, dst)]; ok && direct > 0 {
		return direct
	}

	rSrc := rateToUSD(src, live, overrides)
	rDst := rateToUSD(dst, live, overrides)

	if rDst == 0 {
		return 1.0
	}

	return rSrc / rDst
}

func rateToUSD(currency string, live, overrides map[string]float64) float64 {
	if currency == pivotCurrency {
		return 1.0
	}

	if override, ok := overrides[currency]; ok {
		return override
	}

	if rate, ok := live[Pair(currency, pivotCurrency)]; ok {
		return rate
	}

	return 1.0
}

// Sum is one pre-aggregated amount for an account in one transaction
// currency, as produced by the store's GROUP BY projection.
type Sum struct {
	AccountID int64
	Currency  string
	Total     float64
}

// Balances converts every sum into its account's own currency (the target
// currency for accounts without one) and accumulates per account. Only
// accounts with at least one sum appear in the result; callers keep the
// stored balance for the rest.
func Balances(accountCurrencies map[int64]string, sums []Sum, target string, live, overrides map[string]float64) map[int64]float64 {
	balances := make(map[int64]float64, len(accountCurrencies))

	for _, s := range sums {
		accCurrency := currencyOr(accountCurrencies, s.AccountID, target)
		balances[s.AccountID] += s.Total * Rate(s.Currency, accCurrency, live, overrides)
	}

	return balances
}

// DisplayRate is the rate from an account's currency to the requested target,
// 1.0 for accounts without a currency.
func DisplayRate(accountCurrency, target string, live, overrides map[string]float64) float64 {
	if accountCurrency == "" {
		return 1.0
	}

	return Rate(accountCurrency, target, live, overrides)
}

// Pairs plans which live-rate symbols a summary needs: a USD leg for every
// involved currency that is neither USD nor overridden, a direct pair for
// every sum whose currency differs from its account's, and a direct pair from
// each account currency to the target. Direct pairs are only planned when
// both sides are USD or fetchable; overridden currencies never hit the feed.
// The result is sorted and duplicate-free.
func Pairs(accountCurrencies map[int64]string, sums []Sum, target string, overrides map[string]float64) []string {
	involved := map[string]bool{target: true}
	for _, c := range accountCurrencies {
		involved[c] = true
	}

	for _, s := range sums {
		involved[s.Currency] = true
	}

	feed := make(map[string]bool, len(involved))

	for c := range involved {
		if _, overridden := overrides[c]; c != pivotCurrency && !overridden {
			feed[c] = true
		}
	}

	fetchable := func(c string) bool {
		return c == pivotCurrency || feed[c]
	}

	symbols := make(map[string]bool, len(feed))
	for c := range feed {
		symbols[Pair(c, pivotCurrency)] = true
	}

	for _, s := range sums {
		accCurrency := currencyOr(accountCurrencies, s.AccountID, target)
		if s.Currency != accCurrency && fetchable(s.Currency) && fetchable(accCurrency) {
			symbols[Pair(s.Currency, accCurrency)] = true
		}
	}

	for _, c := range accountCurrencies {
		if c != target && fetchable(c) && fetchable(target) {
			symbols[Pair(c, target)] = true
		}
	}

	out := make([]string, 0, len(symbols))
	for s := range symbols {
		out = append(out, s)
	}

	sort.Strings(out)

	return out
}

func currencyOr(accountCurrencies map[int64]string, accountID int64, fallback string) string {
	if c, ok := accountCurrencies[accountID]; ok {
		return c
	}

	return fallback
}
