// Package payoff implements the catalogue of crediting-formula calculators
// for fixed-indexed and registered-index-linked annuity products.
//
// The variant set is closed: each crediting design is its own spec type with
// unexported, construction-validated parameters, and adding a variant is a
// deliberate schema change with its own truth-table coverage. Every spec is
// immutable once built and Calculate is referentially transparent, so specs
// can be shared freely across goroutines.
package payoff

import (
	"errors"
	"math"
)

// Uncapped marks an absent cap on variants where the cap is optional.
var Uncapped = math.Inf(1)

// Construction errors. Parameters are validated when a spec is built,
// never at calculation time.
var (
	ErrNegativeCap           = errors.New("cap rate must be non-negative")
	ErrNegativeParticipation = errors.New("participation rate must be non-negative")
	ErrNegativeSpread        = errors.New("spread rate must be non-negative")
	ErrNegativeStepRate      = errors.New("step rate must be non-negative")
	ErrBufferRange           = errors.New("buffer rate must lie in [0, 1]")
	ErrSecondaryRateRange    = errors.New("secondary rate must lie in [0, 1]")
	ErrPositiveFloor         = errors.New("floor rate must be non-positive")
	ErrFloorAboveCap         = errors.New("floor rate must not exceed cap rate")
	ErrFloorAboveTrigger     = errors.New("floor rate must not exceed trigger rate")
	ErrStepAboveCap          = errors.New("step rate must not exceed cap rate")
	ErrNaNParameter          = errors.New("parameters must not be NaN")
)

// Kind identifies a crediting-formula variant.
type Kind string

const (
	KindCappedCall      Kind = "capped_call"
	KindParticipation   Kind = "participation"
	KindSpread          Kind = "spread"
	KindTrigger         Kind = "trigger"
	KindBuffer          Kind = "buffer"
	KindFloor           Kind = "floor"
	KindBufferWithFloor Kind = "buffer_with_floor"
	KindStepRateBuffer  Kind = "step_rate_buffer"
)

// Flag names a boundary a calculation crossed, so downstream reporting and
// the validation gate can explain why a credited return was produced.
type Flag string

const (
	FlagCapped          Flag = "capped"
	FlagFloored         Flag = "floored"
	FlagFloorHit        Flag = "floor_hit"
	FlagBufferAbsorbed  Flag = "buffer_absorbed"
	FlagBufferExhausted Flag = "buffer_exhausted"
	FlagTriggerMet      Flag = "trigger_met"
	FlagStepApplied     Flag = "step_applied"
)

// Result is the pure output of a single crediting calculation.
type Result struct {
	Credited float64 `json:"credited_return"`
	Flags    []Flag  `json:"flags,omitempty"`
}

// Has reports whether the given diagnostic flag was set.
func (r Result) Has(f Flag) bool {
	for _, have := range r.Flags {
		if have == f {
			return true
		}
	}
	return false
}

// Spec is one crediting-period payoff calculator. Collaborators (rate
// setters, lifetime simulators) treat specs polymorphically through this
// single capability.
type Spec interface {
	// Calculate transforms one period's index return into the credited
	// return plus the diagnostic flags for every boundary it crossed.
	Calculate(indexReturn float64) Result
	// Kind names the variant.
	Kind() Kind
}

func validCap(cap float64) bool {
	// Uncapped (+Inf) is a legal cap wherever the cap is optional.
	return cap >= 0 && !math.IsNaN(cap)
}
