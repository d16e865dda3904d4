// Package logging generates session result reports

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sonicmatch/soundcheck/internal/dsp"
	"github.com/sonicmatch/soundcheck/internal/profile"
	"github.com/sonicmatch/soundcheck/internal/session"
)

// writeSection writes a section header with title and dashed underline.
// The underline length matches the title length.
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

// GenerateReport creates a detailed session report and saves it at path.
//
// Report structure:
// 1. Header - session info and timestamp
// 2. Preference Profile - per-attribute table with gauges
// 3. Sound Signature - label, characteristics, suggested genres
// 4. Equalizer Settings - per-band gains derived from the profile
// 5. Comparison Behavior - A/B listening stats (A/B mode only)
func GenerateReport(path string, rec session.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	WriteReport(f, rec)
	return nil
}

// WriteReport renders the full session report to w.
func WriteReport(w io.Writer, rec session.Record) {
	writeReportHeader(w, rec)
	writePreferenceTable(w, rec.Analysis)
	writeSignature(w, rec.Analysis)
	writeBandTable(w, rec.Analysis.Preferences)
	if len(rec.Comparisons) > 0 {
		writeComparisonTable(w, rec.Comparisons)
	}
}

func writeReportHeader(w io.Writer, rec session.Record) {
	fmt.Fprintln(w, "SoundCheck Session Report")
	fmt.Fprintln(w, "=========================")
	fmt.Fprintf(w, "Session: %s\n", rec.ID)
	fmt.Fprintf(w, "Mode: %s\n", rec.Mode)
	fmt.Fprintf(w, "Completed: %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if rec.Headphone != "" {
		fmt.Fprintf(w, "Headphone: %s (compensation applied)\n", rec.Headphone)
	} else {
		fmt.Fprintln(w, "Headphone: none (no compensation)")
	}
	fmt.Fprintln(w, "")
}

// attributeLabel maps an attribute to its display name.
func attributeLabel(a profile.Attribute) string {
	switch a {
	case profile.AttrBass:
		return "Bass"
	case profile.AttrMids:
		return "Mids"
	case profile.AttrTreble:
		return "Treble"
	case profile.AttrSoundstage:
		return "Soundstage"
	case profile.AttrDetail:
		return "Detail"
	default:
		return string(a)
	}
}

// interpretPreference describes how far a [0,1] preference value sits from
// the 0.5 neutral midpoint.
func interpretPreference(v float64) string {
	switch {
	case v < 0.2:
		return "strongly reduced"
	case v < 0.4:
		return "reduced"
	case v <= 0.6:
		return "neutral"
	case v <= 0.8:
		return "elevated"
	default:
		return "strongly elevated"
	}
}

func writePreferenceTable(w io.Writer, a profile.Analysis) {
	writeSection(w, "Preference Profile")

	table := NewMetricTable("Value", "")
	for _, attr := range profile.Attributes {
		v := a.Preferences.Get(attr)
		table.AddRow(attributeLabel(attr),
			[]string{formatMetric(v, 2), preferenceBar(v, 20)},
			"", interpretPreference(v))
	}
	fmt.Fprint(w, table.String())
	fmt.Fprintf(w, "\nConfidence: %.0f%%\n", a.Confidence*100)
	fmt.Fprintln(w, "")
}

func writeSignature(w io.Writer, a profile.Analysis) {
	writeSection(w, "Sound Signature")
	fmt.Fprintf(w, "%s (%s)\n", a.Name, a.Signature)
	for _, c := range a.Characteristics {
		fmt.Fprintf(w, "  - %s\n", c)
	}
	fmt.Fprintf(w, "Suggested genres: %s\n", strings.Join(a.Genres, ", "))
	fmt.Fprintln(w, "")
}

// bandLabel maps a band to its display name.
func bandLabel(id dsp.BandID) string {
	switch id {
	case dsp.BandBass:
		return "Bass shelf"
	case dsp.BandLowMids:
		return "Low mids"
	case dsp.BandMids:
		return "Mids"
	case dsp.BandUpperMids:
		return "Upper mids"
	case dsp.BandDetail:
		return "Presence"
	case dsp.BandTreble:
		return "Treble shelf"
	case dsp.BandAir:
		return "Air shelf"
	default:
		return string(id)
	}
}

// writeBandTable outputs the equalizer gains the profile maps to, without
// headphone compensation so the values transfer to any playback device.
func writeBandTable(w io.Writer, p profile.Preferences) {
	writeSection(w, "Equalizer Settings")

	gains := dsp.BandGains(dsp.Parameters{
		Bass:       p.Bass,
		Mids:       p.Mids,
		Treble:     p.Treble,
		Detail:     p.Detail,
		Soundstage: p.Soundstage,
	}, nil)

	table := NewMetricTable("Freq", "Gain")
	for _, band := range dsp.Bands() {
		table.AddRow(bandLabel(band.ID),
			[]string{fmt.Sprintf("%.0f Hz", band.Freq), formatMetricSigned(gains[band.ID], 1)},
			"dB", "")
	}
	fmt.Fprint(w, table.String())

	width := widthPercent(p.Soundstage)
	fmt.Fprintf(w, "\nStereo width: %+.0f%%\n", width)
	fmt.Fprintln(w, "")
}

// widthPercent expresses the soundstage slider as deviation from natural
// stereo width.
func widthPercent(soundstage float64) float64 {
	return (dsp.WidthFactor(soundstage) - 1) * 100
}

func writeComparisonTable(w io.Writer, comparisons []profile.ABComparison) {
	writeSection(w, "Comparison Behavior")

	table := NewMetricTable("Plays A", "Plays B", "Listened", "Choice", "Strength")
	for i := range comparisons {
		c := &comparisons[i]
		choice := string(c.Choice)
		if choice == "" {
			choice = MissingValue
		}
		strength := string(c.Strength)
		if strength == "" {
			strength = MissingValue
		}
		table.AddRow(attributeLabel(c.Attribute),
			[]string{
				fmt.Sprintf("%d", c.PlaysA),
				fmt.Sprintf("%d", c.PlaysB),
				formatListenTime(c.ListenA + c.ListenB),
				choice,
				strength,
			},
			"", "")
	}
	fmt.Fprint(w, table.String())
	fmt.Fprintln(w, "")
}

// formatListenTime renders a cumulative listen duration compactly.
func formatListenTime(d time.Duration) string {
	if d == 0 {
		return MissingValue
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
