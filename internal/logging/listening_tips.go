package logging

import (
	"fmt"
	"sort"
	"time"

	"github.com/sonicmatch/soundcheck/internal/profile"
	"github.com/sonicmatch/soundcheck/internal/session"
)

// ListeningTip represents a single piece of actionable advice derived from
// the recorded session behavior.
type ListeningTip struct {
	Priority int    // Higher = more important (1-10)
	Message  string // Human-readable advice (1-2 sentences)
	RuleID   string // Identifier for testing/logging (e.g., "low_confidence")
}

// MaxListeningTips is the maximum number of tips to return.
const MaxListeningTips = 4

// GenerateListeningTips inspects a finished session and returns prioritised
// suggestions for getting a more trustworthy profile next time.
func GenerateListeningTips(rec *session.Record) []ListeningTip {
	if rec == nil {
		return nil
	}

	var tips []ListeningTip
	firedRules := make(map[string]bool)

	rules := []func(*session.Record) *ListeningTip{
		tipSliderMode,
		tipLowConfidence,
		tipUnplayedVariants,
		tipShortListens,
		tipNoStrength,
		tipNoHeadphone,
		tipExtremeProfile,
	}

	for _, rule := range rules {
		if tip := rule(rec); tip != nil {
			tips = append(tips, *tip)
			firedRules[tip.RuleID] = true
		}
	}

	tips = applyExclusions(tips, firedRules)

	// Sort by priority (descending)
	sort.Slice(tips, func(i, j int) bool {
		return tips[i].Priority > tips[j].Priority
	})

	if len(tips) > MaxListeningTips {
		tips = tips[:MaxListeningTips]
	}
	return tips
}

// applyExclusions removes tips made redundant by a higher-signal rule.
// Low confidence subsumes the individual behavior rules that feed it.
func applyExclusions(tips []ListeningTip, fired map[string]bool) []ListeningTip {
	if !fired["low_confidence"] {
		return tips
	}
	out := tips[:0]
	for _, tip := range tips {
		if tip.RuleID == "short_listens" || tip.RuleID == "no_strength" {
			continue
		}
		out = append(out, tip)
	}
	return out
}

func tipSliderMode(rec *session.Record) *ListeningTip {
	if rec.Mode != session.ModeSlider {
		return nil
	}
	return &ListeningTip{
		Priority: 3,
		Message:  "Slider mode reflects what you dialed in, not what you can hear. Run the A/B test for a profile with a measured confidence score.",
		RuleID:   "slider_mode",
	}
}

func tipLowConfidence(rec *session.Record) *ListeningTip {
	if rec.Mode != session.ModeAB || rec.Analysis.Confidence >= 0.5 {
		return nil
	}
	return &ListeningTip{
		Priority: 9,
		Message:  fmt.Sprintf("Confidence is only %.0f%%. Play both versions a few times per attribute and listen for several seconds before choosing.", rec.Analysis.Confidence*100),
		RuleID:   "low_confidence",
	}
}

func tipUnplayedVariants(rec *session.Record) *ListeningTip {
	var unplayed []string
	for i := range rec.Comparisons {
		c := &rec.Comparisons[i]
		if c.PlaysA == 0 || c.PlaysB == 0 {
			unplayed = append(unplayed, attributeLabel(c.Attribute))
		}
	}
	if len(unplayed) == 0 {
		return nil
	}
	return &ListeningTip{
		Priority: 8,
		Message:  fmt.Sprintf("You never heard both versions for: %s. A choice without hearing the alternative carries no weight.", joinWithComma(unplayed)),
		RuleID:   "unplayed_variants",
	}
}

func tipShortListens(rec *session.Record) *ListeningTip {
	short := 0
	for i := range rec.Comparisons {
		c := &rec.Comparisons[i]
		if c.ListenA+c.ListenB < 2*time.Second {
			short++
		}
	}
	if short == 0 || len(rec.Comparisons) == 0 {
		return nil
	}
	return &ListeningTip{
		Priority: 6,
		Message:  "Several comparisons got under two seconds of listening. Subtle tonal differences need a full musical phrase to register.",
		RuleID:   "short_listens",
	}
}

func tipNoStrength(rec *session.Record) *ListeningTip {
	missing := 0
	for i := range rec.Comparisons {
		c := &rec.Comparisons[i]
		if c.Choice != profile.ChoiceNone && c.Strength == "" {
			missing++
		}
	}
	if missing == 0 {
		return nil
	}
	return &ListeningTip{
		Priority: 4,
		Message:  "Rating how strongly you prefer a version sharpens the profile. Skipped ratings are assumed moderate.",
		RuleID:   "no_strength",
	}
}

func tipNoHeadphone(rec *session.Record) *ListeningTip {
	if rec.Headphone != "" {
		return nil
	}
	return &ListeningTip{
		Priority: 5,
		Message:  "No headphone model was selected, so the test ran uncompensated. Picking your model from the catalogue removes its tonal fingerprint from the results.",
		RuleID:   "no_headphone",
	}
}

// tipExtremeProfile flags profiles pinned at the extremes, which usually
// means the user chased the effect rather than their actual preference.
func tipExtremeProfile(rec *session.Record) *ListeningTip {
	p := rec.Analysis.Preferences
	extremes := 0
	for _, attr := range profile.Attributes {
		v := p.Get(attr)
		if v <= 0.05 || v >= 0.95 {
			extremes++
		}
	}
	if extremes < 3 {
		return nil
	}
	return &ListeningTip{
		Priority: 7,
		Message:  "Most attributes landed at the extreme ends of the scale. Maxed-out settings often sound impressive in isolation but fatiguing over a full album.",
		RuleID:   "extreme_profile",
	}
}

// joinWithComma joins items with commas and a final "and".
func joinWithComma(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		out := ""
		for i, item := range items[:len(items)-1] {
			if i > 0 {
				out += ", "
			}
			out += item
		}
		return out + " and " + items[len(items)-1]
	}
}
