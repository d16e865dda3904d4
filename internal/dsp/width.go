package dsp

// WidthFactor maps the soundstage slider to the per-channel gain applied after
// the equalizer. The same factor goes to both channels: this is a symmetric
// narrow/widen, not true mid/side processing - a deliberate perceptual
// simplification carried over from the product, not a bug to fix.
//
//	v <= 0.5: 0.7 → 1.0 (narrows toward mono feel as v → 0)
//	v >  0.5: 1.0 → 1.25 (widens as v → 1)
//
// Both branches meet at exactly 1.0 for v = 0.5.
func WidthFactor(v float64) float64 {
	v = clamp01(v)
	if v <= 0.5 {
		return 0.7 + v*0.6
	}
	return 1 + (v-0.5)*0.5
}

// WidthStage applies the smoothed width factor to an interleaved stereo block.
type WidthStage struct {
	factor *Ramp
}

// NewWidthStage starts at the neutral factor (slider 0.5 → 1.0).
func NewWidthStage(sampleRate float64) *WidthStage {
	return &WidthStage{factor: NewRamp(1, sampleRate)}
}

// SetWidth retargets the stage from a [0,1] soundstage slider value.
func (w *WidthStage) SetWidth(v float64) {
	w.factor.SetTarget(WidthFactor(v))
}

// Factor returns the current ramp target.
func (w *WidthStage) Factor() float64 { return w.factor.Target() }

// Process scales the block in place.
func (w *WidthStage) Process(buf []float32) {
	f := float32(w.factor.Advance(len(buf) / 2))
	for i := range buf {
		buf[i] *= f
	}
}
