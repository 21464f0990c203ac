// Package validation implements the no-arbitrage gate that certifies pricing
// and payoff outputs before downstream rate-setting uses them.
//
// Every check returns an Outcome value with a three-level verdict: Halt stops
// downstream use of the number, Warn surfaces a marginal tolerance breach
// that is numerically plausible (rounding noise), Pass asserts the check
// holds. Verdicts are ordinary return values, never panics or errors: a Halt
// is expected, routine data.
package validation

import (
	"errors"
	"fmt"
	"math"
)

// Status is the verdict level of one validation check.
type Status int

const (
	Pass Status = iota
	Warn
	Halt
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "PASS"
	case Warn:
		return "WARN"
	case Halt:
		return "HALT"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText lets outcomes serialize with their verdict name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the result of a single check. Produced fresh per call; it
// carries no identity beyond the check it represents.
type Outcome struct {
	Status   Status  `json:"status"`
	Message  string  `json:"message"`
	Measured float64 `json:"measured_value"`
	Bound    float64 `json:"bound"`
}

// Default tolerance bands. Deviations at or below the pass tolerance are
// floating-point noise; deviations above the halt tolerance are economically
// wrong. The band between them warns. Both are configuration, overridable
// through internal/config.
const (
	DefaultPassTolerance = 1e-10
	DefaultHaltTolerance = 1e-6
)

var ErrBadTolerances = errors.New("tolerances must satisfy 0 <= pass < halt")

// Checker grades measured deviations against its tolerance bands.
type Checker struct {
	PassTolerance float64
	HaltTolerance float64
}

// NewChecker builds a Checker with explicit tolerance bands.
func NewChecker(passTol, haltTol float64) (Checker, error) {
	if passTol < 0 || haltTol <= passTol || math.IsNaN(passTol) || math.IsNaN(haltTol) {
		return Checker{}, fmt.Errorf("pass=%v halt=%v: %w", passTol, haltTol, ErrBadTolerances)
	}
	return Checker{PassTolerance: passTol, HaltTolerance: haltTol}, nil
}

// DefaultChecker uses the documented default bands.
func DefaultChecker() Checker {
	return Checker{PassTolerance: DefaultPassTolerance, HaltTolerance: DefaultHaltTolerance}
}

// NoArbitrage checks the model-free price band for a vanilla option: the
// price can never be negative and can never exceed the spot.
func (c Checker) NoArbitrage(price, spot float64) Outcome {
	switch {
	case math.IsNaN(price) || math.IsNaN(spot):
		return Outcome{
			Status:   Halt,
			Message:  "no-arbitrage check received NaN",
			Measured: price,
			Bound:    spot,
		}
	case price > spot:
		return c.grade(price-spot, price, spot,
			fmt.Sprintf("option price %.10g exceeds spot %.10g", price, spot))
	case price < 0:
		return c.grade(-price, price, 0,
			fmt.Sprintf("option price %.10g is negative", price))
	}
	return Outcome{
		Status:   Pass,
		Message:  fmt.Sprintf("price %.10g within [0, spot=%.10g]", price, spot),
		Measured: price,
		Bound:    spot,
	}
}

// PutCallParity checks C - P = S*e^{-qT} - K*e^{-rT} within tolerance.
func (c Checker) PutCallParity(call, put, S, K, r, q, T float64) Outcome {
	want := S*math.Exp(-q*T) - K*math.Exp(-r*T)
	got := call - put
	dev := math.Abs(got - want)
	if math.IsNaN(dev) {
		return Outcome{Status: Halt, Message: "parity check received NaN", Measured: got, Bound: want}
	}
	return c.grade(dev, got, want,
		fmt.Sprintf("put-call parity: C-P=%.10g vs S*e^-qT - K*e^-rT=%.10g", got, want))
}

// NoArbitrage runs the model-free band check with the default tolerances.
func NoArbitrage(price, spot float64) Outcome {
	return DefaultChecker().NoArbitrage(price, spot)
}

// PutCallParity runs the parity check with the default tolerances.
func PutCallParity(call, put, S, K, r, q, T float64) Outcome {
	return DefaultChecker().PutCallParity(call, put, S, K, r, q, T)
}

func (c Checker) grade(deviation, measured, bound float64, detail string) Outcome {
	switch {
	case deviation <= c.PassTolerance:
		return Outcome{
			Status:   Pass,
			Message:  fmt.Sprintf("%s (deviation %.3g within pass tolerance %.3g)", detail, deviation, c.PassTolerance),
			Measured: measured,
			Bound:    bound,
		}
	case deviation <= c.HaltTolerance:
		return Outcome{
			Status:   Warn,
			Message:  fmt.Sprintf("%s (deviation %.3g inside warn band, halt at %.3g)", detail, deviation, c.HaltTolerance),
			Measured: measured,
			Bound:    bound,
		}
	}
	return Outcome{
		Status:   Halt,
		Message:  fmt.Sprintf("%s (deviation %.3g beyond halt tolerance %.3g)", detail, deviation, c.HaltTolerance),
		Measured: measured,
		Bound:    bound,
	}
}
