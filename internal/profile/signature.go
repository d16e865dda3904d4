package profile

import "github.com/sonicmatch/soundcheck/internal/dsp"

// Signature is a categorical label summarizing a tonal preference shape.
type Signature string

const (
	SignatureVShaped    Signature = "v_shaped"
	SignatureWarm       Signature = "warm"
	SignatureBright     Signature = "bright"
	SignatureAnalytical Signature = "analytical"
	SignatureBassHeavy  Signature = "bass_heavy"
	SignatureMidForward Signature = "mid_forward"
	SignatureBalanced   Signature = "balanced"
)

// Classify maps a preference vector onto a signature with fixed thresholds.
// The checks run in this exact order and the first match wins; reordering
// them changes the labels users see.
func Classify(p Preferences) Signature {
	switch {
	case p.Bass > 0.65 && p.Treble > 0.65 && p.Mids < 0.55:
		return SignatureVShaped
	case p.Bass > 0.65 && p.Treble < 0.5:
		return SignatureWarm
	case p.Treble > 0.65 && p.Bass < 0.5:
		return SignatureBright
	case p.Detail > 0.7 && p.Treble > 0.55:
		return SignatureAnalytical
	case p.Bass > 0.75:
		return SignatureBassHeavy
	case p.Mids > 0.65:
		return SignatureMidForward
	default:
		return SignatureBalanced
	}
}

// Analysis is the derived, read-only result handed to the recommendation
// layer: the label plus its human-readable metadata and the session's
// confidence. Computed once per session; the engine does not persist it.
type Analysis struct {
	Preferences     Preferences
	Signature       Signature
	Name            string
	Characteristics []string
	Genres          []string
	Confidence      float64
}

// signatureInfo carries the display metadata per label.
type signatureInfo struct {
	name            string
	characteristics []string
	genres          []string
}

var signatureTable = map[Signature]signatureInfo{
	SignatureVShaped: {
		name:            "V-Shaped",
		characteristics: []string{"Elevated bass and treble", "Recessed midrange", "Exciting, energetic presentation"},
		genres:          []string{"EDM", "Hip-Hop", "Metal", "Pop"},
	},
	SignatureWarm: {
		name:            "Warm",
		characteristics: []string{"Rich, full-bodied low end", "Smooth, relaxed treble", "Forgiving of harsh recordings"},
		genres:          []string{"Jazz", "R&B", "Soul", "Acoustic"},
	},
	SignatureBright: {
		name:            "Bright",
		characteristics: []string{"Sparkling, airy treble", "Lean low end", "Forward detail and energy"},
		genres:          []string{"Classical", "Indie", "Folk"},
	},
	SignatureAnalytical: {
		name:            "Analytical",
		characteristics: []string{"Maximum detail retrieval", "Precise imaging", "Unforgiving of poor recordings"},
		genres:          []string{"Classical", "Jazz", "Acoustic"},
	},
	SignatureBassHeavy: {
		name:            "Bass-Heavy",
		characteristics: []string{"Dominant, physical low end", "Strong rhythmic drive"},
		genres:          []string{"Hip-Hop", "EDM", "Electronic"},
	},
	SignatureMidForward: {
		name:            "Mid-Forward",
		characteristics: []string{"Vocals and instruments front and center", "Intimate presentation"},
		genres:          []string{"Rock", "Acoustic", "Indie", "Vocal"},
	},
	SignatureBalanced: {
		name:            "Balanced",
		characteristics: []string{"Even tonal balance", "Versatile across genres", "Nothing exaggerated"},
		genres:          []string{"Pop", "Rock", "Jazz", "Classical"},
	},
}

// Analyze classifies a preference vector and attaches its metadata.
func Analyze(p Preferences, confidence float64) Analysis {
	sig := Classify(p)
	info := signatureTable[sig]
	return Analysis{
		Preferences:     p,
		Signature:       sig,
		Name:            info.name,
		Characteristics: info.characteristics,
		Genres:          info.genres,
		Confidence:      confidence,
	}
}

// InferFromSliders produces the session result for slider mode. The slider
// state is the preference vector; slider mode carries no behavioral
// confidence signals, so confidence is reported as 1.
func InferFromSliders(params dsp.Parameters, ranking []Attribute) Analysis {
	p := ApplyRanking(FromSliders(params), ranking)
	return Analyze(p, 1.0)
}

// InferFromComparisons produces the session result for A/B mode.
func InferFromComparisons(comparisons []ABComparison, ranking []Attribute) Analysis {
	p := ApplyRanking(FromComparisons(comparisons), ranking)
	return Analyze(p, Confidence(comparisons))
}
