package dsp

import "math"

// RampTimeConstant is the smoothing time constant applied to every dynamic
// value in the chain (filter gains, width factor, output gain). Stepping these
// instantly produces audible clicks; 30ms is short enough to feel immediate.
const RampTimeConstant = 0.030 // seconds

// Ramp smooths a control value toward its target with a one-pole lowpass,
// advanced in sample-count steps between audio blocks.
type Ramp struct {
	current float64
	target  float64
	alpha   float64 // per-sample smoothing coefficient
}

// NewRamp creates a ramp settled at the given initial value.
func NewRamp(initial, sampleRate float64) *Ramp {
	return &Ramp{
		current: initial,
		target:  initial,
		alpha:   1 - math.Exp(-1/(RampTimeConstant*sampleRate)),
	}
}

// SetTarget sets the value the ramp converges toward.
func (r *Ramp) SetTarget(v float64) { r.target = v }

// Target returns the value the ramp is converging toward.
func (r *Ramp) Target() float64 { return r.target }

// Current returns the present smoothed value without advancing the ramp.
func (r *Ramp) Current() float64 { return r.current }

// Advance steps the ramp forward by n samples and returns the new value.
func (r *Ramp) Advance(n int) float64 {
	if r.current == r.target {
		return r.current
	}
	// (1-alpha)^n decay toward the target
	decay := math.Pow(1-r.alpha, float64(n))
	r.current = r.target + (r.current-r.target)*decay
	if math.Abs(r.current-r.target) < 1e-6 {
		r.current = r.target
	}
	return r.current
}

// Snap forces the ramp to a value immediately, with no smoothing.
func (r *Ramp) Snap(v float64) {
	r.current = v
	r.target = v
}
