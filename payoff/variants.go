package payoff

import "math"

// CappedCall credits the raw index return clamped to [floor, cap]. The
// classic FIA design uses floor 0.
type CappedCall struct {
	cap   float64
	floor float64
}

// NewCappedCall builds a capped-call spec. The floor defaults to 0 in
// product terms; callers pass it explicitly.
func NewCappedCall(cap, floor float64) (CappedCall, error) {
	if !validCap(cap) || math.IsInf(cap, 1) {
		return CappedCall{}, ErrNegativeCap
	}
	if floor > cap || math.IsNaN(floor) {
		return CappedCall{}, ErrFloorAboveCap
	}
	return CappedCall{cap: cap, floor: floor}, nil
}

func (p CappedCall) Kind() Kind { return KindCappedCall }

func (p CappedCall) Calculate(x float64) Result {
	return clampResult(x, p.floor, p.cap, FlagFloored)
}

// Participation credits participation*x, clamped to [floor, cap]. The cap
// is optional; Uncapped means unbounded upside.
type Participation struct {
	rate  float64
	cap   float64
	floor float64
}

func NewParticipation(rate, cap, floor float64) (Participation, error) {
	if rate < 0 || math.IsNaN(rate) {
		return Participation{}, ErrNegativeParticipation
	}
	if !validCap(cap) {
		return Participation{}, ErrNegativeCap
	}
	if floor > cap || math.IsNaN(floor) {
		return Participation{}, ErrFloorAboveCap
	}
	return Participation{rate: rate, cap: cap, floor: floor}, nil
}

func (p Participation) Kind() Kind { return KindParticipation }

func (p Participation) Calculate(x float64) Result {
	return clampResult(p.rate*x, p.floor, p.cap, FlagFloored)
}

// Spread credits x minus a fixed spread, clamped to [floor, cap]. The
// spread is subtracted before the floor and cap apply; the cap is optional.
type Spread struct {
	spread float64
	cap    float64
	floor  float64
}

func NewSpread(spread, cap, floor float64) (Spread, error) {
	if spread < 0 || math.IsNaN(spread) {
		return Spread{}, ErrNegativeSpread
	}
	if !validCap(cap) {
		return Spread{}, ErrNegativeCap
	}
	if floor > cap || math.IsNaN(floor) {
		return Spread{}, ErrFloorAboveCap
	}
	return Spread{spread: spread, cap: cap, floor: floor}, nil
}

func (p Spread) Kind() Kind { return KindSpread }

func (p Spread) Calculate(x float64) Result {
	return clampResult(x-p.spread, p.floor, p.cap, FlagFloored)
}

// Trigger credits a fixed rate once the index return meets the threshold
// (inclusive), regardless of the magnitude above it, and the floor rate
// otherwise.
type Trigger struct {
	rate      float64
	threshold float64
	floor     float64
}

func NewTrigger(rate, threshold, floor float64) (Trigger, error) {
	if math.IsNaN(rate) || math.IsNaN(threshold) || math.IsNaN(floor) {
		return Trigger{}, ErrNaNParameter
	}
	if floor > rate {
		return Trigger{}, ErrFloorAboveTrigger
	}
	return Trigger{rate: rate, threshold: threshold, floor: floor}, nil
}

func (p Trigger) Kind() Kind { return KindTrigger }

func (p Trigger) Calculate(x float64) Result {
	if x >= p.threshold {
		return Result{Credited: p.rate, Flags: []Flag{FlagTriggerMet}}
	}
	return Result{Credited: p.floor, Flags: []Flag{FlagFloored}}
}

// Buffer absorbs the first `buffer` fraction of index loss; losses beyond
// the buffer pass through reduced by the buffer amount. Gains are capped.
// The buffer is protection against the first slice of loss, not a hard
// floor on the credited return.
type Buffer struct {
	buffer float64
	cap    float64
}

func NewBuffer(buffer, cap float64) (Buffer, error) {
	if buffer < 0 || buffer > 1 || math.IsNaN(buffer) {
		return Buffer{}, ErrBufferRange
	}
	// The cap is a required finite parameter on buffered designs.
	if !validCap(cap) || math.IsInf(cap, 1) {
		return Buffer{}, ErrNegativeCap
	}
	return Buffer{buffer: buffer, cap: cap}, nil
}

func (p Buffer) Kind() Kind { return KindBuffer }

func (p Buffer) Calculate(x float64) Result {
	if x >= 0 {
		if x >= p.cap {
			return Result{Credited: p.cap, Flags: []Flag{FlagCapped}}
		}
		return Result{Credited: x}
	}
	if x >= -p.buffer {
		return Result{Credited: 0, Flags: []Flag{FlagBufferAbsorbed}}
	}
	return Result{Credited: x + p.buffer, Flags: []Flag{FlagBufferExhausted}}
}

// Floor credits the raw index return with a hard floor on the downside:
// any loss beyond the floor is fully absorbed by the insurer. Differs from
// CappedCall only in the sign convention of the protection parameter.
type Floor struct {
	floor float64
	cap   float64
}

func NewFloor(floor, cap float64) (Floor, error) {
	if floor > 0 || math.IsNaN(floor) {
		return Floor{}, ErrPositiveFloor
	}
	if !validCap(cap) || math.IsInf(cap, 1) {
		return Floor{}, ErrNegativeCap
	}
	return Floor{floor: floor, cap: cap}, nil
}

func (p Floor) Kind() Kind { return KindFloor }

func (p Floor) Calculate(x float64) Result {
	return clampResult(x, p.floor, p.cap, FlagFloorHit)
}

// BufferWithFloor combines buffer protection with a hard floor: the buffer
// absorbs the first slice of loss, losses beyond it pass through, and the
// floor dominates once the passed-through loss reaches it.
type BufferWithFloor struct {
	buffer float64
	floor  float64
	cap    float64
}

func NewBufferWithFloor(buffer, floor, cap float64) (BufferWithFloor, error) {
	if buffer < 0 || buffer > 1 || math.IsNaN(buffer) {
		return BufferWithFloor{}, ErrBufferRange
	}
	if floor > 0 || math.IsNaN(floor) {
		return BufferWithFloor{}, ErrPositiveFloor
	}
	if !validCap(cap) || math.IsInf(cap, 1) {
		return BufferWithFloor{}, ErrNegativeCap
	}
	return BufferWithFloor{buffer: buffer, floor: floor, cap: cap}, nil
}

func (p BufferWithFloor) Kind() Kind { return KindBufferWithFloor }

func (p BufferWithFloor) Calculate(x float64) Result {
	if x >= 0 {
		if x >= p.cap {
			return Result{Credited: p.cap, Flags: []Flag{FlagCapped}}
		}
		return Result{Credited: x}
	}
	reduced := x + p.buffer
	if reduced >= 0 {
		return Result{Credited: 0, Flags: []Flag{FlagBufferAbsorbed}}
	}
	if reduced <= p.floor {
		return Result{Credited: p.floor, Flags: []Flag{FlagBufferExhausted, FlagFloorHit}}
	}
	return Result{Credited: reduced, Flags: []Flag{FlagBufferExhausted}}
}

// StepRateBuffer pays a fixed step rate for any return inside the protected
// band (at or above -buffer) and partial participation in the loss beyond
// the buffer below it. The jump from the step rate down at the band edge is
// the intended product cliff; the loss tier itself starts continuously at
// zero loss beyond the buffer.
type StepRateBuffer struct {
	stepRate      float64
	buffer        float64
	secondaryRate float64
	cap           float64
}

func NewStepRateBuffer(stepRate, buffer, secondaryRate, cap float64) (StepRateBuffer, error) {
	if stepRate < 0 || math.IsNaN(stepRate) {
		return StepRateBuffer{}, ErrNegativeStepRate
	}
	if buffer < 0 || buffer > 1 || math.IsNaN(buffer) {
		return StepRateBuffer{}, ErrBufferRange
	}
	if secondaryRate < 0 || secondaryRate > 1 || math.IsNaN(secondaryRate) {
		return StepRateBuffer{}, ErrSecondaryRateRange
	}
	if !validCap(cap) || math.IsInf(cap, 1) {
		return StepRateBuffer{}, ErrNegativeCap
	}
	if stepRate > cap {
		return StepRateBuffer{}, ErrStepAboveCap
	}
	return StepRateBuffer{stepRate: stepRate, buffer: buffer, secondaryRate: secondaryRate, cap: cap}, nil
}

func (p StepRateBuffer) Kind() Kind { return KindStepRateBuffer }

func (p StepRateBuffer) Calculate(x float64) Result {
	if x >= -p.buffer {
		return Result{Credited: p.stepRate, Flags: []Flag{FlagStepApplied}}
	}
	return Result{Credited: p.secondaryRate * (x + p.buffer), Flags: []Flag{FlagBufferExhausted}}
}

// clampResult clamps v to [floor, cap] with inclusive boundary flags.
// floorFlag distinguishes the soft floor ("floored") from the hard one
// ("floor_hit"); the cap flag is always "capped".
func clampResult(v, floor, cap float64, floorFlag Flag) Result {
	switch {
	case v >= cap:
		return Result{Credited: cap, Flags: []Flag{FlagCapped}}
	case v <= floor:
		return Result{Credited: floor, Flags: []Flag{floorFlag}}
	}
	return Result{Credited: v}
}
