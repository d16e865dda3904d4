package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sonicmatch/soundcheck/internal/profile"
	"github.com/sonicmatch/soundcheck/internal/session"
)

func reportSession() session.Record {
	comparisons := []profile.ABComparison{
		{
			Attribute: profile.AttrBass,
			PlaysA:    2, PlaysB: 1,
			ListenA: 3 * time.Second, ListenB: 2 * time.Second,
			Choice: profile.ChoiceA, Strength: profile.StrengthModerate,
		},
	}
	return session.Record{
		ID:          "report-test",
		Mode:        session.ModeAB,
		CreatedAt:   time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC),
		Headphone:   "Sony WH-1000XM5",
		Analysis:    profile.InferFromComparisons(comparisons, nil),
		Comparisons: comparisons,
	}
}

func TestWriteReport(t *testing.T) {
	var sb strings.Builder
	WriteReport(&sb, reportSession())
	out := sb.String()

	sections := []string{
		"SoundCheck Session Report",
		"Preference Profile",
		"Sound Signature",
		"Equalizer Settings",
		"Comparison Behavior",
	}
	for _, section := range sections {
		if !strings.Contains(out, section) {
			t.Errorf("report missing section %q:\n%s", section, out)
		}
	}

	if !strings.Contains(out, "Sony WH-1000XM5") {
		t.Error("report missing headphone model")
	}
	if !strings.Contains(out, "80 Hz") || !strings.Contains(out, "12000 Hz") {
		t.Error("report missing band frequencies")
	}
	// Bass score 0.8 maps to a +7.2dB shelf.
	if !strings.Contains(out, "+7.2") {
		t.Errorf("report missing bass shelf gain:\n%s", out)
	}
}

func TestWriteReportSliderMode(t *testing.T) {
	rec := reportSession()
	rec.Mode = session.ModeSlider
	rec.Headphone = ""
	rec.Comparisons = nil

	var sb strings.Builder
	WriteReport(&sb, rec)
	out := sb.String()

	if strings.Contains(out, "Comparison Behavior") {
		t.Error("comparison section rendered with no comparisons")
	}
	if !strings.Contains(out, "none (no compensation)") {
		t.Error("missing headphone-absent note")
	}
}

func TestGenerateReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	if err := GenerateReport(path, reportSession()); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(data), "SoundCheck Session Report") {
		t.Error("written report missing header")
	}
}

func TestInterpretPreference(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{0.1, "strongly reduced"},
		{0.3, "reduced"},
		{0.5, "neutral"},
		{0.7, "elevated"},
		{0.95, "strongly elevated"},
	}
	for _, tc := range cases {
		if got := interpretPreference(tc.value); got != tc.want {
			t.Errorf("interpretPreference(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}
