package dsp

import "math"

// BandID identifies a band in the equalizer chain.
type BandID string

// Band identifiers, in chain order.
const (
	BandBass      BandID = "bass"       // 80Hz low-shelf
	BandLowMids   BandID = "low_mids"   // 350Hz peaking (mids leak)
	BandMids      BandID = "mids"       // 1500Hz peaking
	BandUpperMids BandID = "upper_mids" // 3000Hz peaking (mids leak)
	BandDetail    BandID = "detail"     // 4500Hz peaking, narrow Q
	BandTreble    BandID = "treble"     // 8000Hz high-shelf
	BandAir       BandID = "air"        // 12000Hz high-shelf (treble leak)
)

// bandSpec describes one equalizer stage. Frequency, shape and Q are fixed;
// only the gain changes at runtime.
type bandSpec struct {
	id    BandID
	shape FilterShape
	freq  float64
	q     float64
}

// ChainOrder is the declarative description of the equalizer topology. The
// seven stages stay connected in this series order regardless of which
// parameters are non-default; a disabled band simply sits at 0dB.
var ChainOrder = []bandSpec{
	{BandBass, LowShelf, 80, 0.707},
	{BandLowMids, Peaking, 350, 1.0},
	{BandMids, Peaking, 1500, 1.0},
	{BandUpperMids, Peaking, 3000, 1.0},
	{BandDetail, Peaking, 4500, 2.0},
	{BandTreble, HighShelf, 8000, 0.707},
	{BandAir, HighShelf, 12000, 0.707},
}

// BandInfo is the exported view of a stage, for display layers.
type BandInfo struct {
	ID   BandID
	Freq float64
}

// Bands lists the equalizer stages in chain order.
func Bands() []BandInfo {
	out := make([]BandInfo, len(ChainOrder))
	for i, s := range ChainOrder {
		out[i] = BandInfo{ID: s.id, Freq: s.freq}
	}
	return out
}

// Leak strengths: how much of an adjacent slider bleeds into secondary bands,
// modeling the perceptual spread of a single "mids" or "treble" adjustment.
const (
	lowMidsLeak   = 0.4 // mids slider → 350Hz
	upperMidsLeak = 0.3 // mids slider → 3000Hz
	airLeak       = 0.5 // treble slider → 12000Hz
)

// Parameters are the five user-facing sliders, each in [0,1] with 0.5 neutral.
type Parameters struct {
	Bass       float64
	Mids       float64
	Treble     float64
	Detail     float64
	Soundstage float64
}

// Neutral returns the all-flat parameter set.
func Neutral() Parameters {
	return Parameters{Bass: 0.5, Mids: 0.5, Treble: 0.5, Detail: 0.5, Soundstage: 0.5}
}

// Update carries a partial parameter change; nil fields are left untouched.
type Update struct {
	Bass       *float64
	Mids       *float64
	Treble     *float64
	Detail     *float64
	Soundstage *float64
}

// Float is a convenience for building Updates from literals.
func Float(v float64) *float64 { return &v }

// Merge applies an update onto a parameter snapshot, clamping to [0,1].
func (p Parameters) Merge(u Update) Parameters {
	if u.Bass != nil {
		p.Bass = clamp01(*u.Bass)
	}
	if u.Mids != nil {
		p.Mids = clamp01(*u.Mids)
	}
	if u.Treble != nil {
		p.Treble = clamp01(*u.Treble)
	}
	if u.Detail != nil {
		p.Detail = clamp01(*u.Detail)
	}
	if u.Soundstage != nil {
		p.Soundstage = clamp01(*u.Soundstage)
	}
	return p
}

// CompensationEQ is a headphone's inverse frequency response: per-band gains in
// dB added algebraically to the user's slider-derived gains. A nil profile
// means no compensation.
type CompensationEQ struct {
	Bass      float64
	LowMids   float64
	Mids      float64
	UpperMids float64
	Treble    float64
	Airiness  float64
}

// SliderToDb maps a [0,1] slider to a symmetric ±12dB gain. 0.5 is exactly 0dB.
func SliderToDb(v float64) float64 {
	return (v - 0.5) * 24
}

// DetailSliderToDb maps the detail slider to ±8dB. The 4500Hz presence band is
// perceptually sensitive to overshoot, so its range is half the others.
func DetailSliderToDb(v float64) float64 {
	return (v - 0.5) * 16
}

// BandGains computes every band's target gain from one parameter snapshot plus
// optional compensation. Compensation and user preference are independent
// additive contributions to the same filter.
func BandGains(p Parameters, comp *CompensationEQ) map[BandID]float64 {
	bassDB := SliderToDb(p.Bass)
	midsDB := SliderToDb(p.Mids)
	trebleDB := SliderToDb(p.Treble)
	detailDB := DetailSliderToDb(p.Detail)

	gains := map[BandID]float64{
		BandBass:      bassDB,
		BandLowMids:   midsDB * lowMidsLeak,
		BandMids:      midsDB,
		BandUpperMids: midsDB * upperMidsLeak,
		BandDetail:    detailDB,
		BandTreble:    trebleDB,
		BandAir:       trebleDB * airLeak,
	}

	if comp != nil {
		gains[BandBass] += comp.Bass
		gains[BandLowMids] += comp.LowMids
		gains[BandMids] += comp.Mids
		gains[BandUpperMids] += comp.UpperMids
		gains[BandTreble] += comp.Treble
		gains[BandAir] += comp.Airiness
	}

	return gains
}

// chainStage pairs a filter with its gain ramp.
type chainStage struct {
	spec   bandSpec
	filter *Biquad
	gain   *Ramp
}

// Chain is the fixed seven-band equalizer cascade. It is not safe for
// concurrent use; the owning engine serializes access.
type Chain struct {
	sampleRate float64
	stages     []*chainStage
	comp       *CompensationEQ
	params     Parameters
}

// NewChain builds the equalizer at a flat response.
func NewChain(sampleRate float64) *Chain {
	c := &Chain{
		sampleRate: sampleRate,
		params:     Neutral(),
	}
	for _, spec := range ChainOrder {
		c.stages = append(c.stages, &chainStage{
			spec:   spec,
			filter: NewBiquad(spec.shape, spec.freq, spec.q, sampleRate),
			gain:   NewRamp(0, sampleRate),
		})
	}
	return c
}

// SetCompensation installs a headphone correction profile (nil for none) and
// retargets every band from the current parameters.
func (c *Chain) SetCompensation(comp *CompensationEQ) {
	c.comp = comp
	c.retarget()
}

// SetParameters merges a partial update and recomputes every affected band's
// target gain from one consistent snapshot before any ramp is retargeted.
func (c *Chain) SetParameters(u Update) Parameters {
	c.params = c.params.Merge(u)
	c.retarget()
	return c.params
}

// Parameters returns the current slider snapshot.
func (c *Chain) Parameters() Parameters { return c.params }

// BandGainDB returns the ramp target for a band, for read-back and testing.
func (c *Chain) BandGainDB(id BandID) float64 {
	for _, s := range c.stages {
		if s.spec.id == id {
			return s.gain.Target()
		}
	}
	return 0
}

func (c *Chain) retarget() {
	gains := BandGains(c.params, c.comp)
	for _, s := range c.stages {
		s.gain.SetTarget(gains[s.spec.id])
	}
}

// Process runs an interleaved stereo block through the full cascade. Gain
// ramps advance once per block; coefficient updates are skipped while a band
// is settled. Silence in is silence out.
func (c *Chain) Process(buf []float32) {
	frames := len(buf) / 2
	for _, s := range c.stages {
		g := s.gain.Advance(frames)
		if math.Abs(g-s.filter.GainDB()) > 1e-4 {
			s.filter.SetGainDB(g)
		}
		s.filter.Process(buf)
	}
}

// Reset clears all filter history, for use when a fresh source starts.
func (c *Chain) Reset() {
	for _, s := range c.stages {
		s.filter.Reset()
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
