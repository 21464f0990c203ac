// Package quant implements the closed-form European option pricing engine
// used by the annuity crediting pipeline: Black-Scholes-Merton prices with a
// continuous dividend yield, plus the five standard Greeks.
//
// All operations are pure functions over float64 inputs. Degenerate inputs
// (zero volatility or zero time to expiry) collapse to discounted intrinsic
// value through an explicit branch so no NaN ever leaves this package.
package quant

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors. Inputs outside the mathematical domain are rejected
// immediately, never clamped.
var (
	ErrNonPositiveSpot    = errors.New("spot price must be positive")
	ErrNonPositiveStrike  = errors.New("strike price must be positive")
	ErrNegativeExpiry     = errors.New("time to expiry must be non-negative")
	ErrNegativeVolatility = errors.New("volatility must be non-negative")
)

// BSGreeks holds the sensitivities of a European call computed from one
// consistent parameter set at one instant.
//
// Conventions: Vega and Rho are reported per 1% move in volatility and the
// risk-free rate respectively; Theta is per year and negative while the
// option still carries time value.
type BSGreeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

func checkDomain(S, K, sigma, T float64) error {
	if !(S > 0) {
		return fmt.Errorf("S=%v: %w", S, ErrNonPositiveSpot)
	}
	if !(K > 0) {
		return fmt.Errorf("K=%v: %w", K, ErrNonPositiveStrike)
	}
	if T < 0 || math.IsNaN(T) {
		return fmt.Errorf("T=%v: %w", T, ErrNegativeExpiry)
	}
	if sigma < 0 || math.IsNaN(sigma) {
		return fmt.Errorf("sigma=%v: %w", sigma, ErrNegativeVolatility)
	}
	return nil
}

// dTerms computes the d1/d2 terms. Callers must have excluded the
// degenerate sigma*sqrt(T) == 0 case first.
func dTerms(S, K, r, q, sigma, T float64) (d1, d2 float64) {
	sqrtT := math.Sqrt(T)
	d1 = (math.Log(S/K) + (r-q+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 = d1 - sigma*sqrtT
	return d1, d2
}

// PriceCall prices a European call under Black-Scholes-Merton with a
// continuous dividend yield q.
//
// When T == 0 or sigma == 0 the price is the discounted intrinsic value
// max(S*e^{-qT} - K*e^{-rT}, 0). The branch is deliberate: evaluating the
// d1/d2 terms there is 0/0.
func PriceCall(S, K, r, q, sigma, T float64) (float64, error) {
	if err := checkDomain(S, K, sigma, T); err != nil {
		return 0, err
	}
	fwd := S * math.Exp(-q*T)
	pvStrike := K * math.Exp(-r*T)
	if T == 0 || sigma == 0 {
		return math.Max(fwd-pvStrike, 0), nil
	}
	d1, d2 := dTerms(S, K, r, q, sigma, T)
	return fwd*NormCDF(d1) - pvStrike*NormCDF(d2), nil
}

// PricePut prices a European put under Black-Scholes-Merton with a
// continuous dividend yield q. Degenerate inputs collapse to
// max(K*e^{-rT} - S*e^{-qT}, 0), mirroring PriceCall.
func PricePut(S, K, r, q, sigma, T float64) (float64, error) {
	if err := checkDomain(S, K, sigma, T); err != nil {
		return 0, err
	}
	fwd := S * math.Exp(-q*T)
	pvStrike := K * math.Exp(-r*T)
	if T == 0 || sigma == 0 {
		return math.Max(pvStrike-fwd, 0), nil
	}
	d1, d2 := dTerms(S, K, r, q, sigma, T)
	return pvStrike*NormCDF(-d2) - fwd*NormCDF(-d1), nil
}

// Greeks computes the analytic call Greeks for one parameter set. The
// results are internally consistent with PriceCall; tests pin that down
// with finite differences.
//
// At T == 0 or sigma == 0 the option has no optionality left: Delta steps
// to the discounted in/out-of-the-money indicator and the remaining Greeks
// are zero.
func Greeks(S, K, r, q, sigma, T float64) (BSGreeks, error) {
	if err := checkDomain(S, K, sigma, T); err != nil {
		return BSGreeks{}, err
	}
	dfq := math.Exp(-q * T)
	dfr := math.Exp(-r * T)
	if T == 0 || sigma == 0 {
		g := BSGreeks{}
		if S*dfq > K*dfr {
			g.Delta = dfq
		}
		return g, nil
	}

	d1, d2 := dTerms(S, K, r, q, sigma, T)
	sqrtT := math.Sqrt(T)
	nd1 := NormCDF(d1)
	nd2 := NormCDF(d2)
	pd1 := NormPDF(d1)

	return BSGreeks{
		Delta: dfq * nd1,
		Gamma: dfq * pd1 / (S * sigma * sqrtT),
		Vega:  S * dfq * pd1 * sqrtT / 100,
		Theta: -S*dfq*pd1*sigma/(2*sqrtT) - r*K*dfr*nd2 + q*S*dfq*nd1,
		Rho:   K * T * dfr * nd2 / 100,
	}, nil
}
