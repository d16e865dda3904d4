package profile

import (
	"math"
	"testing"
	"time"

	"github.com/sonicmatch/soundcheck/internal/dsp"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestABScore(t *testing.T) {
	t.Run("choosing balanced is exactly neutral regardless of strength", func(t *testing.T) {
		for _, s := range []Strength{"", StrengthSlight, StrengthModerate, StrengthStrong} {
			c := ABComparison{BalancedIsTrackA: true, Choice: ChoiceA, Strength: s}
			if got := c.Score(); got != 0.5 {
				t.Errorf("balanced choice with strength %q scored %v, want 0.5", s, got)
			}
		}
	})

	t.Run("no choice is exactly neutral", func(t *testing.T) {
		c := ABComparison{BalancedIsTrackA: false, Choice: ChoiceNone, Strength: StrengthStrong}
		if got := c.Score(); got != 0.5 {
			t.Errorf("no choice scored %v, want 0.5", got)
		}
	})

	t.Run("modified choice scores by strength", func(t *testing.T) {
		cases := []struct {
			strength Strength
			want     float64
		}{
			{StrengthSlight, 0.65},
			{StrengthModerate, 0.8},
			{StrengthStrong, 1.0},
			{"", 0.8}, // unspecified defaults to moderate
		}
		for _, tc := range cases {
			c := ABComparison{BalancedIsTrackA: true, Choice: ChoiceB, Strength: tc.strength}
			if got := c.Score(); !approxEqual(got, tc.want, 1e-12) {
				t.Errorf("modified choice with strength %q scored %v, want %v", tc.strength, got, tc.want)
			}
		}
	})

	t.Run("score never drops below neutral", func(t *testing.T) {
		// The test only detects preference toward the modified direction.
		for _, choice := range []Choice{ChoiceA, ChoiceB, ChoiceNone} {
			for _, balancedA := range []bool{true, false} {
				c := ABComparison{BalancedIsTrackA: balancedA, Choice: choice}
				if c.Score() < 0.5 {
					t.Errorf("score %v below 0.5 for choice=%q balancedA=%v", c.Score(), choice, balancedA)
				}
			}
		}
	})
}

func TestFromComparisons(t *testing.T) {
	t.Run("unrecorded attributes stay neutral", func(t *testing.T) {
		p := FromComparisons([]ABComparison{
			{Attribute: AttrBass, BalancedIsTrackA: false, Choice: ChoiceA, Strength: StrengthStrong},
		})
		if p.Bass != 1.0 {
			t.Errorf("bass = %v, want 1.0", p.Bass)
		}
		for _, attr := range []Attribute{AttrMids, AttrTreble, AttrSoundstage, AttrDetail} {
			if p.Get(attr) != 0.5 {
				t.Errorf("%s = %v, want 0.5", attr, p.Get(attr))
			}
		}
	})
}

func TestApplyRanking(t *testing.T) {
	t.Run("top rank gets the largest boost", func(t *testing.T) {
		base := Preferences{Bass: 0.5, Mids: 0.5, Treble: 0.5, Soundstage: 0.5, Detail: 0.5}
		ranking := []Attribute{AttrBass, AttrTreble, AttrDetail}
		p := ApplyRanking(base, ranking)
		if !approxEqual(p.Bass, 0.5+3*0.03, 1e-12) {
			t.Errorf("bass = %v, want %v", p.Bass, 0.5+0.09)
		}
		if !approxEqual(p.Treble, 0.5+2*0.03, 1e-12) {
			t.Errorf("treble = %v, want %v", p.Treble, 0.5+0.06)
		}
		if !approxEqual(p.Detail, 0.5+1*0.03, 1e-12) {
			t.Errorf("detail = %v, want %v", p.Detail, 0.5+0.03)
		}
		if p.Mids != 0.5 {
			t.Errorf("unranked mids = %v, want 0.5", p.Mids)
		}
	})

	t.Run("boost clamps at 1", func(t *testing.T) {
		base := Preferences{Bass: 0.99}
		p := ApplyRanking(base, []Attribute{AttrBass})
		if p.Bass != 1.0 {
			t.Errorf("bass = %v, want clamped 1.0", p.Bass)
		}
	})
}

func TestConfidence(t *testing.T) {
	t.Run("zero with no comparisons", func(t *testing.T) {
		if got := Confidence(nil); got != 0 {
			t.Errorf("Confidence(nil) = %v, want 0", got)
		}
	})

	t.Run("grows monotonically with behavioral signals", func(t *testing.T) {
		base := ABComparison{Attribute: AttrBass, PlaysA: 1}
		prev := Confidence([]ABComparison{base})

		steps := []func(*ABComparison){
			func(c *ABComparison) { c.PlaysB = 1 },                  // both played (+0.35), 2 plays (+0.1)
			func(c *ABComparison) { c.Strength = StrengthModerate }, // +0.25
			func(c *ABComparison) { c.ListenA = 3 * time.Second },   // ≥2s (+0.1)
			func(c *ABComparison) { c.ListenB = 3 * time.Second },   // ≥5s total (+0.2)
			func(c *ABComparison) { c.PlaysA = 3 },                  // ≥4 plays (+0.2)
		}
		for i, step := range steps {
			step(&base)
			cur := Confidence([]ABComparison{base})
			if cur < prev {
				t.Fatalf("confidence decreased at step %d: %v -> %v", i, prev, cur)
			}
			prev = cur
		}
	})

	t.Run("per-attribute score caps at 1", func(t *testing.T) {
		c := ABComparison{
			Attribute: AttrBass,
			PlaysA:    10, PlaysB: 10,
			ListenA: time.Minute, ListenB: time.Minute,
			Strength: StrengthStrong,
		}
		if got := Confidence([]ABComparison{c}); got > 1 {
			t.Errorf("confidence = %v, want ≤ 1", got)
		}
	})

	t.Run("end-to-end bass scenario", func(t *testing.T) {
		// No headphone selected; A maps to the modified track; user plays A
		// twice (3s total) and B once (2s), chooses A at moderate strength.
		c := ABComparison{
			Attribute:        AttrBass,
			PlaysA:           2,
			PlaysB:           1,
			ListenA:          3 * time.Second,
			ListenB:          2 * time.Second,
			BalancedIsTrackA: false,
			Choice:           ChoiceA,
			Strength:         StrengthModerate,
		}
		if got := c.Score(); !approxEqual(got, 0.8, 1e-12) {
			t.Errorf("bass preference score = %v, want 0.8", got)
		}
		// 0.35 (both played) + 0.25 (strength) + 0.2 (5s total) + 0.1 (3 plays)
		if got := Confidence([]ABComparison{c}); !approxEqual(got, 0.90, 1e-12) {
			t.Errorf("confidence = %v, want 0.90", got)
		}
	})
}

func TestFromSliders(t *testing.T) {
	params := dsp.Parameters{Bass: 0.9, Mids: 0.3, Treble: 0.7, Detail: 0.6, Soundstage: 0.8}
	p := FromSliders(params)
	if p.Bass != 0.9 || p.Mids != 0.3 || p.Treble != 0.7 || p.Detail != 0.6 || p.Soundstage != 0.8 {
		t.Errorf("slider passthrough mismatch: %+v", p)
	}
}
