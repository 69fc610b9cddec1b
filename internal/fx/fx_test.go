package fx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/fx"
)

func TestRate(t *testing.T) {
	type testCase struct {
		name      string
		src       string
		dst       string
		live      map[string]float64
		overrides map[string]float64
		want      float64
	}

	tests := []testCase{
		{
			name: "same currency is neutral",
			src:  "EUR",
			dst:  "EUR",
			want: 1.0,
		},
		{
			name: "direct pair beats pivot",
			src:  "EUR",
			dst:  "GBP",
			live: map[string]float64{
				"EURGBP=X": 0.9,
				"EURUSD=X": 1.2,
				"GBPUSD=X": 1.5,
			},
			want: 0.9,
		},
		{
			name: "pivot through usd without direct pair",
			src:  "EUR",
			dst:  "GBP",
			live: map[string]float64{
				"EURUSD=X": 1.2,
				"GBPUSD=X": 1.5,
			},
			want: 0.8,
		},
		{
			name: "non positive direct pair is ignored",
			src:  "EUR",
			dst:  "GBP",
			live: map[string]float64{
				"EURGBP=X": 0,
				"EURUSD=X": 1.2,
				"GBPUSD=X": 1.5,
			},
			want: 0.8,
		},
		{
			name: "override wins over live usd leg",
			src:  "EUR",
			dst:  "USD",
			live: map[string]float64{
				"EURUSD=X": 1.2,
			},
			overrides: map[string]float64{"EUR": 1.1},
			want:      1.1,
		},
		{
			name: "override applies on the destination leg",
			src:  "USD",
			dst:  "EUR",
			live: map[string]float64{
				"EURUSD=X": 1.25,
			},
			overrides: map[string]float64{"EUR": 1.25},
			want:      0.8,
		},
		{
			name: "missing data degrades to neutral",
			src:  "EUR",
			dst:  "GBP",
			want: 1.0,
		},
		{
			name: "zero destination pivot degrades to neutral",
			src:  "EUR",
			dst:  "GBP",
			live: map[string]float64{
				"EURUSD=X": 1.2,
				"GBPUSD=X": 0,
			},
			want: 1.0,
		},
		{
			name: "usd source uses destination leg only",
			src:  "USD",
			dst:  "GBP",
			live: map[string]float64{
				"GBPUSD=X": 1.25,
			},
			want: 0.8,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := fx.Rate(tc.src, tc.dst, tc.live, tc.overrides)

			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestBalances(t *testing.T) {
	live := map[string]float64{
		"EURUSD=X": 1.2,
		"GBPUSD=X": 1.5,
	}

	t.Run("converts foreign sums into the account currency", func(t *testing.T) {
		currencies := map[int64]string{1: "GBP"}
		sums := []fx.Sum{{AccountID: 1, Currency: "EUR", Total: 100}}

		got := fx.Balances(currencies, sums, "USD", live, nil)

		assert.InDelta(t, 80.0, got[1], 1e-9)
	})

	t.Run("account without currency converts to the target", func(t *testing.T) {
		sums := []fx.Sum{{AccountID: 2, Currency: "EUR", Total: 100}}

		got := fx.Balances(nil, sums, "USD", live, nil)

		assert.InDelta(t, 120.0, got[2], 1e-9)
	})

	t.Run("accumulates across currencies", func(t *testing.T) {
		currencies := map[int64]string{3: "USD"}
		sums := []fx.Sum{
			{AccountID: 3, Currency: "USD", Total: 10},
			{AccountID: 3, Currency: "EUR", Total: 100},
			{AccountID: 3, Currency: "GBP", Total: 100},
		}

		got := fx.Balances(currencies, sums, "USD", live, nil)

		assert.InDelta(t, 10+120+150, got[3], 1e-9)
	})

	t.Run("accounts without sums are absent", func(t *testing.T) {
		currencies := map[int64]string{4: "EUR"}

		got := fx.Balances(currencies, nil, "USD", live, nil)

		_, ok := got[4]
		assert.False(t, ok)
	})
}

func TestDisplayRate(t *testing.T) {
	live := map[string]float64{"EURUSD=X": 1.2}

	assert.InDelta(t, 1.0, fx.DisplayRate("", "USD", live, nil), 1e-9)
	assert.InDelta(t, 1.2, fx.DisplayRate("EUR", "USD", live, nil), 1e-9)
	assert.InDelta(t, 1.1, fx.DisplayRate("EUR", "USD", live, map[string]float64{"EUR": 1.1}), 1e-9)
}

func TestPairs(t *testing.T) {
	type testCase struct {
		name       string
		currencies map[int64]string
		sums       []fx.Sum
		target     string
		overrides  map[string]float64
		want       []string
	}

	tests := []testCase{
		{
			name:   "usd only plans nothing",
			target: "USD",
			sums:   []fx.Sum{{AccountID: 1, Currency: "USD", Total: 5}},
			want:   []string{},
		},
		{
			name:       "usd legs for every feed currency",
			target:     "USD",
			currencies: map[int64]string{1: "GBP"},
			sums:       []fx.Sum{{AccountID: 1, Currency: "EUR", Total: 5}},
			want:       []string{"EURGBP=X", "EURUSD=X", "GBPUSD=X"},
		},
		{
			name:       "overridden currencies never hit the feed",
			target:     "USD",
			currencies: map[int64]string{1: "GBP"},
			sums:       []fx.Sum{{AccountID: 1, Currency: "EUR", Total: 5}},
			overrides:  map[string]float64{"EUR": 1.1},
			want:       []string{"GBPUSD=X"},
		},
		{
			name:       "account currency to target pair",
			target:     "EUR",
			currencies: map[int64]string{1: "GBP"},
			want:       []string{"EURUSD=X", "GBPEUR=X", "GBPUSD=X"},
		},
		{
			name:       "usd counts as fetchable for direct pairs",
			target:     "USD",
			currencies: map[int64]string{1: "EUR"},
			sums:       []fx.Sum{{AccountID: 1, Currency: "USD", Total: 5}},
			want:       []string{"EURUSD=X", "USDEUR=X"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := fx.Pairs(tc.currencies, tc.sums, tc.target, tc.overrides)

			assert.Equal(t, tc.want, got)
		})
	}
}
