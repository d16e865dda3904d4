// Package profile turns recorded listening behavior - live slider positions
// or A/B comparison history - into a normalized preference vector, a sound
// signature and a confidence score.
package profile

import (
	"time"

	"github.com/sonicmatch/soundcheck/internal/dsp"
)

// Attribute names one of the five tested preference dimensions.
type Attribute string

const (
	AttrBass       Attribute = "bass"
	AttrMids       Attribute = "mids"
	AttrTreble     Attribute = "treble"
	AttrSoundstage Attribute = "soundstage"
	AttrDetail     Attribute = "detail"
)

// Attributes lists every dimension in canonical order.
var Attributes = []Attribute{AttrBass, AttrMids, AttrTreble, AttrSoundstage, AttrDetail}

// Choice is the user's pick in an A/B step.
type Choice string

const (
	ChoiceA    Choice = "A"
	ChoiceB    Choice = "B"
	ChoiceNone Choice = ""
)

// Strength qualifies how strongly the user preferred their choice.
type Strength string

const (
	StrengthSlight   Strength = "slight"
	StrengthModerate Strength = "moderate"
	StrengthStrong   Strength = "strong"
)

// strengthMultiplier maps a stated strength onto the score scale. An
// unspecified strength counts as moderate.
func strengthMultiplier(s Strength) float64 {
	switch s {
	case StrengthSlight:
		return 0.3
	case StrengthStrong:
		return 1.0
	default:
		return 0.6
	}
}

// ABComparison is the recorded behavior for one attribute's A/B step. It is
// created empty at step entry, mutated by play/stop/choice events, and
// finalized when the user leaves the step. Listen durations come from
// caller-managed timestamps; the player does not track them.
type ABComparison struct {
	Attribute Attribute

	PlaysA  int
	PlaysB  int
	ListenA time.Duration // cumulative
	ListenB time.Duration

	// BalancedIsTrackA records which physical track was presented as A for
	// this session+attribute.
	BalancedIsTrackA bool

	Choice   Choice
	Strength Strength // empty when the user skipped the strength question
}

// choseModified reports whether the user picked the modified variant.
func (c *ABComparison) choseModified() bool {
	switch c.Choice {
	case ChoiceA:
		return !c.BalancedIsTrackA
	case ChoiceB:
		return c.BalancedIsTrackA
	default:
		return false
	}
}

// Score maps the comparison onto [0.5, 1.0]. Choosing the balanced track, or
// making no choice, is exactly neutral; choosing the modified track scores
// 0.5 + multiplier·0.5. The test only detects preference toward the modified
// direction - preferring less of an attribute than balanced is
// indistinguishable from neutral, and that floor is intentional.
func (c *ABComparison) Score() float64 {
	if !c.choseModified() {
		return 0.5
	}
	return 0.5 + strengthMultiplier(c.Strength)*0.5
}

// Preferences is the canonical output vector, all values in [0,1].
type Preferences struct {
	Bass       float64
	Mids       float64
	Treble     float64
	Soundstage float64
	Detail     float64
}

// Get returns the value for a named attribute.
func (p Preferences) Get(a Attribute) float64 {
	switch a {
	case AttrBass:
		return p.Bass
	case AttrMids:
		return p.Mids
	case AttrTreble:
		return p.Treble
	case AttrSoundstage:
		return p.Soundstage
	case AttrDetail:
		return p.Detail
	default:
		return 0.5
	}
}

func (p *Preferences) set(a Attribute, v float64) {
	switch a {
	case AttrBass:
		p.Bass = v
	case AttrMids:
		p.Mids = v
	case AttrTreble:
		p.Treble = v
	case AttrSoundstage:
		p.Soundstage = v
	case AttrDetail:
		p.Detail = v
	}
}

// FromSliders uses the live slider state directly: the five values are
// already in [0,1] and already meaningful.
func FromSliders(params dsp.Parameters) Preferences {
	return Preferences{
		Bass:       params.Bass,
		Mids:       params.Mids,
		Treble:     params.Treble,
		Soundstage: params.Soundstage,
		Detail:     params.Detail,
	}
}

// FromComparisons scores each recorded A/B step; attributes without a
// comparison stay neutral.
func FromComparisons(comparisons []ABComparison) Preferences {
	p := Preferences{Bass: 0.5, Mids: 0.5, Treble: 0.5, Soundstage: 0.5, Detail: 0.5}
	for i := range comparisons {
		c := &comparisons[i]
		p.set(c.Attribute, c.Score())
	}
	return p
}

// ApplyRanking boosts attributes the user ranked as important:
// (rankLength − rankIndex) × 0.03, clamped to 1.0, so the top-ranked
// attribute gets the largest boost. An empty ranking changes nothing.
func ApplyRanking(p Preferences, ranking []Attribute) Preferences {
	for idx, attr := range ranking {
		boost := float64(len(ranking)-idx) * 0.03
		v := p.Get(attr) + boost
		if v > 1 {
			v = 1
		}
		p.set(attr, v)
	}
	return p
}

// Confidence buckets for per-attribute behavioral signals.
const (
	confBothPlayed    = 0.35
	confStrengthGiven = 0.25

	confListenLong    = 0.2 // ≥5s cumulative listening
	confListenShort   = 0.1 // ≥2s
	listenLongCutoff  = 5 * time.Second
	listenShortCutoff = 2 * time.Second

	confPlaysMany = 0.2 // ≥4 total plays
	confPlaysFew  = 0.1 // ≥2
	playsManyCut  = 4
	playsFewCut   = 2
)

// Confidence estimates how much to trust an A/B session: the mean over
// recorded comparisons of a per-attribute score built from behavioral
// signals. No comparisons means zero confidence.
func Confidence(comparisons []ABComparison) float64 {
	if len(comparisons) == 0 {
		return 0
	}
	var total float64
	for i := range comparisons {
		total += attributeConfidence(&comparisons[i])
	}
	return total / float64(len(comparisons))
}

func attributeConfidence(c *ABComparison) float64 {
	var score float64
	if c.PlaysA > 0 && c.PlaysB > 0 {
		score += confBothPlayed
	}
	if c.Strength != "" {
		score += confStrengthGiven
	}

	listened := c.ListenA + c.ListenB
	switch {
	case listened >= listenLongCutoff:
		score += confListenLong
	case listened >= listenShortCutoff:
		score += confListenShort
	}

	plays := c.PlaysA + c.PlaysB
	switch {
	case plays >= playsManyCut:
		score += confPlaysMany
	case plays >= playsFewCut:
		score += confPlaysFew
	}

	if score > 1 {
		score = 1
	}
	return score
}
