package ui

import (
	"time"

	"github.com/sonicmatch/soundcheck/internal/engine"
	"github.com/sonicmatch/soundcheck/internal/profile"
)

// ComparePair holds the two pre-rendered variants for one attribute's A/B
// step. Which one is presented as "Track A" is decided per session.
type ComparePair struct {
	BalancedURL string
	ModifiedURL string
}

// compareState tracks one A/B step while the user is in it: which physical
// track sits behind each label, what is currently audible, and the
// behavioral counters that feed the confidence score.
type compareState struct {
	attribute profile.Attribute
	pair      ComparePair

	balancedIsTrackA bool

	record profile.ABComparison

	// playing is "A", "B" or "" and playStart anchors the current listen.
	playing   string
	playStart time.Time

	preloaded  bool
	preloadErr error
}

// newCompareState seeds a step. The A/B assignment is a deterministic
// function of session and attribute so reloading a session keeps labels
// stable.
func newCompareState(sessionID string, attribute profile.Attribute, pair ComparePair) *compareState {
	balancedIsA := engine.ShouldBalancedBeTrackA(sessionID, string(attribute))
	return &compareState{
		attribute:        attribute,
		pair:             pair,
		balancedIsTrackA: balancedIsA,
		record: profile.ABComparison{
			Attribute:        attribute,
			BalancedIsTrackA: balancedIsA,
		},
	}
}

// urlFor maps a display label to the physical track URL.
func (s *compareState) urlFor(label string) string {
	if (label == "A") == s.balancedIsTrackA {
		return s.pair.BalancedURL
	}
	return s.pair.ModifiedURL
}

// notePlay records a play of the labeled track, closing out any listen in
// progress on the other one.
func (s *compareState) notePlay(label string, now time.Time) {
	s.noteStop(now)
	if label == "A" {
		s.record.PlaysA++
	} else {
		s.record.PlaysB++
	}
	s.playing = label
	s.playStart = now
}

// noteStop closes out the listen in progress, if any, accumulating its
// duration onto the right counter.
func (s *compareState) noteStop(now time.Time) {
	if s.playing == "" {
		return
	}
	d := now.Sub(s.playStart)
	if s.playing == "A" {
		s.record.ListenA += d
	} else {
		s.record.ListenB += d
	}
	s.playing = ""
}

// noteChoice records the user's pick.
func (s *compareState) noteChoice(c profile.Choice) {
	s.record.Choice = c
}

// noteStrength records how strongly they preferred it.
func (s *compareState) noteStrength(st profile.Strength) {
	s.record.Strength = st
}

// finalize closes the step and returns the completed comparison.
func (s *compareState) finalize(now time.Time) profile.ABComparison {
	s.noteStop(now)
	return s.record
}
