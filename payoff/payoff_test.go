package payoff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorValidation(t *testing.T) {
	cases := []struct {
		name  string
		build func() (Spec, error)
		want  error
	}{
		{"capped call negative cap", func() (Spec, error) { return NewCappedCall(-0.1, 0) }, ErrNegativeCap},
		{"capped call infinite cap", func() (Spec, error) { return NewCappedCall(Uncapped, 0) }, ErrNegativeCap},
		{"capped call floor above cap", func() (Spec, error) { return NewCappedCall(0.10, 0.20) }, ErrFloorAboveCap},
		{"participation negative rate", func() (Spec, error) { return NewParticipation(-0.5, Uncapped, 0) }, ErrNegativeParticipation},
		{"participation negative cap", func() (Spec, error) { return NewParticipation(1.0, -0.1, 0) }, ErrNegativeCap},
		{"spread negative spread", func() (Spec, error) { return NewSpread(-0.01, Uncapped, 0) }, ErrNegativeSpread},
		{"spread floor above cap", func() (Spec, error) { return NewSpread(0.01, 0.05, 0.10) }, ErrFloorAboveCap},
		{"trigger floor above rate", func() (Spec, error) { return NewTrigger(0.05, 0, 0.06) }, ErrFloorAboveTrigger},
		{"trigger nan rate", func() (Spec, error) { return NewTrigger(math.NaN(), 0, 0) }, ErrNaNParameter},
		{"trigger nan threshold", func() (Spec, error) { return NewTrigger(0.05, math.NaN(), 0) }, ErrNaNParameter},
		{"buffer below zero", func() (Spec, error) { return NewBuffer(-0.1, 0.2) }, ErrBufferRange},
		{"buffer infinite cap", func() (Spec, error) { return NewBuffer(0.1, Uncapped) }, ErrNegativeCap},
		{"buffer above one", func() (Spec, error) { return NewBuffer(1.1, 0.2) }, ErrBufferRange},
		{"buffer negative cap", func() (Spec, error) { return NewBuffer(0.1, -0.2) }, ErrNegativeCap},
		{"floor positive floor", func() (Spec, error) { return NewFloor(0.05, 0.2) }, ErrPositiveFloor},
		{"buffer with floor positive floor", func() (Spec, error) { return NewBufferWithFloor(0.1, 0.05, 0.2) }, ErrPositiveFloor},
		{"buffer with floor bad buffer", func() (Spec, error) { return NewBufferWithFloor(2, -0.2, 0.2) }, ErrBufferRange},
		{"step rate negative", func() (Spec, error) { return NewStepRateBuffer(-0.05, 0.1, 0.5, 0.2) }, ErrNegativeStepRate},
		{"step rate above cap", func() (Spec, error) { return NewStepRateBuffer(0.25, 0.1, 0.5, 0.2) }, ErrStepAboveCap},
		{"step secondary out of range", func() (Spec, error) { return NewStepRateBuffer(0.05, 0.1, 1.5, 0.2) }, ErrSecondaryRateRange},
		{"step infinite cap", func() (Spec, error) { return NewStepRateBuffer(0.05, 0.1, 0.5, Uncapped) }, ErrNegativeCap},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.build()
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestResultHas(t *testing.T) {
	r := Result{Credited: 0.1, Flags: []Flag{FlagCapped}}
	assert.True(t, r.Has(FlagCapped))
	assert.False(t, r.Has(FlagFloorHit))
	assert.False(t, Result{}.Has(FlagCapped))
}

// every variant at its extreme inputs: no NaN, no overflow, credited return
// stays within the variant's own declared limits.
func TestExtremeInputsStayBounded(t *testing.T) {
	specs := allSpecs(t)

	for _, s := range specs {
		for _, x := range []float64{-1.0, 0.0, 1.0} {
			got := s.Calculate(x)
			require.Falsef(t, math.IsNaN(got.Credited), "%s at x=%v produced NaN", s.Kind(), x)
			require.Falsef(t, math.IsInf(got.Credited, 0), "%s at x=%v produced Inf", s.Kind(), x)
			assert.GreaterOrEqualf(t, got.Credited, -1.0, "%s at x=%v credited below total loss", s.Kind(), x)
		}
	}
}

// Calculate must be referentially transparent: identical inputs give
// identical results on every call.
func TestCalculateIsPure(t *testing.T) {
	specs := allSpecs(t)
	for _, s := range specs {
		for _, x := range []float64{-0.42, -0.07, 0, 0.033, 0.8} {
			first := s.Calculate(x)
			second := s.Calculate(x)
			assert.Equal(t, first, second, "%s at x=%v", s.Kind(), x)
		}
	}
}

func TestMonotonicityBelowCap(t *testing.T) {
	capped, err := NewCappedCall(0.10, 0)
	require.NoError(t, err)
	part, err := NewParticipation(0.8, 0.12, 0)
	require.NoError(t, err)
	spread, err := NewSpread(0.02, 0.15, 0)
	require.NoError(t, err)

	for _, s := range []Spec{capped, part, spread} {
		prev := math.Inf(-1)
		for x := -1.0; x <= 1.0; x += 0.01 {
			got := s.Calculate(x).Credited
			assert.GreaterOrEqualf(t, got, prev, "%s not monotone at x=%v", s.Kind(), x)
			prev = got
		}
		// Constant at and above the cap.
		atCap := s.Calculate(5.0).Credited
		assert.Equal(t, atCap, s.Calculate(10.0).Credited, "%s not constant above cap", s.Kind())
		assert.True(t, s.Calculate(10.0).Has(FlagCapped))
	}
}

// allSpecs builds one representative spec per variant.
func allSpecs(t *testing.T) []Spec {
	t.Helper()

	capped, err := NewCappedCall(0.10, 0)
	require.NoError(t, err)
	part, err := NewParticipation(0.65, Uncapped, 0)
	require.NoError(t, err)
	spread, err := NewSpread(0.02, Uncapped, 0)
	require.NoError(t, err)
	trigger, err := NewTrigger(0.07, 0, 0)
	require.NoError(t, err)
	buffer, err := NewBuffer(0.10, 0.20)
	require.NoError(t, err)
	floor, err := NewFloor(-0.10, 0.12)
	require.NoError(t, err)
	bwf, err := NewBufferWithFloor(0.10, -0.25, 0.15)
	require.NoError(t, err)
	step, err := NewStepRateBuffer(0.05, 0.10, 0.5, 0.15)
	require.NoError(t, err)

	return []Spec{capped, part, spread, trigger, buffer, floor, bwf, step}
}
