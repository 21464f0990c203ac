package quant

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormCDFKnownValues(t *testing.T) {
	assert.InDelta(t, 0.5, NormCDF(0), 1e-12)
	assert.InDelta(t, 0.9750021049, NormCDF(1.96), 1e-9)
	assert.InDelta(t, 0.1586552539, NormCDF(-1), 1e-9)
	assert.InDelta(t, 1.0, NormCDF(0.3)+NormCDF(-0.3), 1e-14)
}

func TestNormPDFKnownValues(t *testing.T) {
	assert.InDelta(t, 0.3989422804, NormPDF(0), 1e-9)
	assert.InDelta(t, NormPDF(1.3), NormPDF(-1.3), 1e-15)
}

func TestPriceCallReferenceCase(t *testing.T) {
	// S=100, K=100, r=5%, q=2%, sigma=20%, T=1y.
	call, err := PriceCall(100, 100, 0.05, 0.02, 0.20, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 9.2270, call, 1e-3)

	put, err := PricePut(100, 100, 0.05, 0.02, 0.20, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 6.3301, put, 1e-3)
}

func TestPutCallParityAcrossGrid(t *testing.T) {
	spots := []float64{50, 100, 180}
	strikes := []float64{80, 100, 140}
	rates := []float64{0.0, 0.03, 0.07}
	yields := []float64{0.0, 0.02}
	vols := []float64{0.05, 0.2, 0.6}
	expiries := []float64{0.05, 1.0, 3.0}

	for _, S := range spots {
		for _, K := range strikes {
			for _, r := range rates {
				for _, q := range yields {
					for _, sigma := range vols {
						for _, T := range expiries {
							call, err := PriceCall(S, K, r, q, sigma, T)
							require.NoError(t, err)
							put, err := PricePut(S, K, r, q, sigma, T)
							require.NoError(t, err)

							want := S*math.Exp(-q*T) - K*math.Exp(-r*T)
							assert.InDeltaf(t, want, call-put, 1e-9,
								"parity violated at S=%v K=%v r=%v q=%v sigma=%v T=%v", S, K, r, q, sigma, T)
						}
					}
				}
			}
		}
	}
}

func TestDegenerateInputsCollapseToIntrinsic(t *testing.T) {
	// T = 0: plain intrinsic value, no discounting left.
	call, err := PriceCall(90, 100, 0.05, 0.02, 0.2, 0)
	require.NoError(t, err)
	assert.Zero(t, call)

	put, err := PricePut(90, 100, 0.05, 0.02, 0.2, 0)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, put, 1e-12)

	// sigma = 0: discounted intrinsic value.
	call, err = PriceCall(120, 100, 0.05, 0.02, 0, 1)
	require.NoError(t, err)
	want := 120*math.Exp(-0.02) - 100*math.Exp(-0.05)
	assert.InDelta(t, want, call, 1e-12)

	// Deep OTM call with sigma = 0 is worthless.
	call, err = PriceCall(80, 100, 0.05, 0.02, 0, 1)
	require.NoError(t, err)
	assert.Zero(t, call)
}

func TestZeroVolLimitMatchesDegenerateBranch(t *testing.T) {
	// As sigma -> 0 the smooth formula must converge to the explicit branch.
	cases := []struct{ S, K float64 }{{120, 100}, {80, 100}, {100, 100}}
	for _, tc := range cases {
		limit, err := PriceCall(tc.S, tc.K, 0.05, 0.02, 1e-9, 1.0)
		require.NoError(t, err)
		exact, err := PriceCall(tc.S, tc.K, 0.05, 0.02, 0, 1.0)
		require.NoError(t, err)
		assert.InDeltaf(t, exact, limit, 1e-6, "S=%v K=%v", tc.S, tc.K)
	}
}

func TestGreeksReferenceCase(t *testing.T) {
	g, err := Greeks(100, 100, 0.05, 0.02, 0.20, 1.0)
	require.NoError(t, err)

	assert.InDelta(t, 0.58685, g.Delta, 5e-4)
	assert.InDelta(t, 0.018951, g.Gamma, 5e-5)
	assert.InDelta(t, 0.37901, g.Vega, 5e-4)
	assert.InDelta(t, -5.08932, g.Theta, 5e-3)
	assert.InDelta(t, 0.49458, g.Rho, 5e-4)
	assert.Negative(t, g.Theta)
}

// Finite-difference cross-check: the analytic Greeks must agree with bumped
// reprices of PriceCall itself.
func TestGreeksFiniteDifferenceConsistency(t *testing.T) {
	S, K, r, q, sigma, T := 105.0, 98.0, 0.04, 0.015, 0.25, 0.75

	g, err := Greeks(S, K, r, q, sigma, T)
	require.NoError(t, err)

	price := func(S, K, r, q, sigma, T float64) float64 {
		p, err := PriceCall(S, K, r, q, sigma, T)
		require.NoError(t, err)
		return p
	}

	const h = 1e-4

	fdDelta := (price(S+h, K, r, q, sigma, T) - price(S-h, K, r, q, sigma, T)) / (2 * h)
	assert.InDelta(t, fdDelta, g.Delta, 1e-6)

	fdGamma := (price(S+h, K, r, q, sigma, T) - 2*price(S, K, r, q, sigma, T) + price(S-h, K, r, q, sigma, T)) / (h * h)
	assert.InDelta(t, fdGamma, g.Gamma, 1e-4)

	// Vega and Rho are quoted per 1% move; the raw derivative is 100x.
	fdVega := (price(S, K, r, q, sigma+h, T) - price(S, K, r, q, sigma-h, T)) / (2 * h)
	assert.InDelta(t, fdVega, 100*g.Vega, 1e-5)

	fdRho := (price(S, K, r+h, q, sigma, T) - price(S, K, r-h, q, sigma, T)) / (2 * h)
	assert.InDelta(t, fdRho, 100*g.Rho, 1e-5)

	// Theta is the calendar-time derivative, so it carries the opposite sign
	// of the maturity bump.
	fdMaturity := (price(S, K, r, q, sigma, T+h) - price(S, K, r, q, sigma, T-h)) / (2 * h)
	assert.InDelta(t, -fdMaturity, g.Theta, 1e-5)
}

func TestGreeksDegenerateInputs(t *testing.T) {
	// Expired ITM call: delta steps to the dividend discount factor.
	g, err := Greeks(120, 100, 0.05, 0.02, 0.2, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, g.Delta, 1e-12)
	assert.Zero(t, g.Gamma)
	assert.Zero(t, g.Vega)

	// Zero vol OTM: no sensitivity left anywhere.
	g, err = Greeks(80, 100, 0.05, 0.02, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, BSGreeks{}, g)
}

func TestDomainErrors(t *testing.T) {
	cases := []struct {
		name             string
		S, K, r, q, v, T float64
		want             error
	}{
		{"negative spot", -1, 100, 0.05, 0, 0.2, 1, ErrNonPositiveSpot},
		{"zero spot", 0, 100, 0.05, 0, 0.2, 1, ErrNonPositiveSpot},
		{"zero strike", 100, 0, 0.05, 0, 0.2, 1, ErrNonPositiveStrike},
		{"negative expiry", 100, 100, 0.05, 0, 0.2, -0.5, ErrNegativeExpiry},
		{"negative vol", 100, 100, 0.05, 0, -0.1, 1, ErrNegativeVolatility},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PriceCall(tc.S, tc.K, tc.r, tc.q, tc.v, tc.T)
			assert.ErrorIs(t, err, tc.want)
			_, err = PricePut(tc.S, tc.K, tc.r, tc.q, tc.v, tc.T)
			assert.ErrorIs(t, err, tc.want)
			_, err = Greeks(tc.S, tc.K, tc.r, tc.q, tc.v, tc.T)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
