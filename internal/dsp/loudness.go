package dsp

// Perceptual loudness weights per boost-contributing band. Bass dominates
// perceived loudness, detail barely registers.
const (
	bassLoudnessWeight   = 0.4
	midsLoudnessWeight   = 0.35
	trebleLoudnessWeight = 0.15
	detailLoudnessWeight = 0.1
)

// CompensationFactor computes the output-gain correction for a parameter
// snapshot. EQ boosts increase perceived loudness; attenuating the output
// keeps comparisons loudness-fair without fully normalizing them (full
// normalization would erase the audible effect under test). Cuts contribute
// nothing - only positive gains count.
//
// The result is always in [0.5, 1.0] and is exactly 1.0 when every
// boost-contributing slider sits at or below neutral.
func CompensationFactor(p Parameters) float64 {
	totalBoost := positive(SliderToDb(p.Bass))*bassLoudnessWeight +
		positive(SliderToDb(p.Mids))*midsLoudnessWeight +
		positive(SliderToDb(p.Treble))*trebleLoudnessWeight +
		positive(DetailSliderToDb(p.Detail))*detailLoudnessWeight

	factor := 1 / (1 + totalBoost/30)
	if factor < 0.5 {
		factor = 0.5
	}
	if factor > 1 {
		factor = 1
	}
	return factor
}

// OutputGain is the final gain stage: masterVolume × loudness compensation,
// recomputed on every parameter change and smoothed like the filters.
type OutputGain struct {
	master float64
	gain   *Ramp
}

// NewOutputGain starts at the given master volume with no compensation.
func NewOutputGain(master, sampleRate float64) *OutputGain {
	return &OutputGain{master: master, gain: NewRamp(master, sampleRate)}
}

// SetMasterVolume changes the user volume; compensation from the last
// parameter snapshot is preserved by the next Retarget call.
func (o *OutputGain) SetMasterVolume(v float64) {
	o.master = clamp01(v)
}

// Retarget recomputes the compensated output gain for a parameter snapshot.
func (o *OutputGain) Retarget(p Parameters) {
	o.gain.SetTarget(o.master * CompensationFactor(p))
}

// Target returns the gain the stage is converging toward.
func (o *OutputGain) Target() float64 { return o.gain.Target() }

// Process scales the block in place.
func (o *OutputGain) Process(buf []float32) {
	g := float32(o.gain.Advance(len(buf) / 2))
	for i := range buf {
		buf[i] *= g
	}
}

func positive(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
