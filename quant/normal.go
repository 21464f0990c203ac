package quant

import "math"

// NormCDF is the standard normal cumulative distribution function.
// P(X <= x) = 0.5 * (1 + erf(x / sqrt(2)))
func NormCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// NormPDF is the standard normal probability density function.
func NormPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
