package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sonicmatch/soundcheck/internal/engine"
	"github.com/sonicmatch/soundcheck/internal/profile"
	"github.com/sonicmatch/soundcheck/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Width(64)

	keyHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA"))
)

// renderHeader renders the application header.
func renderHeader(m Model) string {
	title := titleStyle.Render("SoundCheck 🎧 - Listening Test")

	modeLabel := "Slider mode"
	if m.cfg.Mode == session.ModeAB {
		modeLabel = "A/B mode"
	}
	sub := modeLabel
	if m.cfg.Headphone != "" {
		sub += " | " + m.cfg.Headphone
	}

	return title + "\n" + subtitleStyle.Render(sub)
}

func renderIntro(m Model) string {
	var b strings.Builder
	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	var content strings.Builder
	if m.cfg.Mode == session.ModeSlider {
		content.WriteString("Adjust the five sliders until the music sounds best to you.\n")
		content.WriteString("Changes apply in real time while the track plays.\n")
	} else {
		content.WriteString("For each attribute you will hear two versions of the same\n")
		content.WriteString("track. Switch between them as often as you like, then pick\n")
		content.WriteString("the one you prefer.\n")
	}
	if m.cfg.Headphone == "" {
		content.WriteString("\n")
		content.WriteString(dimStyle.Render("No headphone selected; playback is uncompensated."))
		content.WriteString("\n")
	}
	b.WriteString(boxStyle.Render(content.String()))
	b.WriteString("\n\n")
	b.WriteString(keyHintStyle.Render("enter") + " start  " + keyHintStyle.Render("q") + " quit\n")
	return b.String()
}

func renderSliders(m Model) string {
	var b strings.Builder
	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	var content strings.Builder
	for i, attr := range sliderOrder {
		label := attributeName(attr)
		v := sliderValue(m.params, attr)
		line := fmt.Sprintf("%-10s %s %.2f", label, renderGauge(v, 30), v)
		if i == m.sliderIndex {
			content.WriteString(selectedStyle.Render("> " + line))
		} else {
			content.WriteString("  " + line)
		}
		content.WriteString("\n")
	}
	b.WriteString(boxStyle.Render(content.String()))
	b.WriteString("\n")

	b.WriteString(renderTransport(m))
	b.WriteString("\n")
	b.WriteString(keyHintStyle.Render("↑/↓") + " select  " +
		keyHintStyle.Render("←/→") + " adjust  " +
		keyHintStyle.Render("space") + " play/pause  " +
		keyHintStyle.Render("r") + " reset  " +
		keyHintStyle.Render("enter") + " done\n")
	return b.String()
}

// renderTransport shows playback state and the live waveform.
func renderTransport(m Model) string {
	var b strings.Builder
	switch {
	case m.loadErr != nil:
		b.WriteString(fmt.Sprintf("⚠ %v\n", m.loadErr))
	case !m.loaded:
		b.WriteString(spinnerFrames[m.spinnerIndex] + " Loading track...\n")
	case m.engState == engine.StatePlaying:
		pos := m.eng.Position()
		b.WriteString(fmt.Sprintf("▶ %02d:%02d  %s\n",
			int(pos.Minutes()), int(pos.Seconds())%60, renderWaveform(m.waveform)))
	default:
		b.WriteString("⏸ paused\n")
	}
	return b.String()
}

// renderWaveform maps visualization bytes onto block glyphs. 128 is silence.
func renderWaveform(data []byte) string {
	glyphs := []rune("▁▂▃▄▅▆▇█")
	var b strings.Builder
	for _, v := range data {
		d := int(v) - 128
		if d < 0 {
			d = -d
		}
		idx := d * (len(glyphs) - 1) / 127
		b.WriteRune(glyphs[idx])
	}
	return b.String()
}

func renderCompare(m Model) string {
	var b strings.Builder
	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	cs := m.currentCompare()
	if cs == nil {
		return b.String()
	}

	b.WriteString(accentStyle.Render(fmt.Sprintf("Attribute %d of %d: %s",
		m.compareIndex+1, len(m.compares), attributeName(cs.attribute))))
	b.WriteString("\n\n")

	var content strings.Builder
	switch {
	case cs.preloadErr != nil:
		content.WriteString(fmt.Sprintf("⚠ failed to load this comparison: %v\n", cs.preloadErr))
		content.WriteString("Press 0 to skip it.\n")
	case !cs.preloaded:
		content.WriteString(spinnerFrames[m.spinnerIndex] + " Downloading variants...\n")
	default:
		content.WriteString(renderTrackRow("A", cs, m))
		content.WriteString(renderTrackRow("B", cs, m))
		content.WriteString(fmt.Sprintf("\nPlays: A ×%d  B ×%d\n", cs.record.PlaysA, cs.record.PlaysB))
	}
	b.WriteString(boxStyle.Render(content.String()))
	b.WriteString("\n\n")

	b.WriteString(keyHintStyle.Render("a/b") + " play track  " +
		keyHintStyle.Render("space") + " stop  " +
		keyHintStyle.Render("1/2") + " prefer A/B  " +
		keyHintStyle.Render("0") + " no preference\n")
	return b.String()
}

func renderTrackRow(label string, cs *compareState, m Model) string {
	marker := "  "
	if cs.playing == label && m.refState == engine.StatePlaying {
		marker = "▶ "
	}
	return fmt.Sprintf("%sTrack %s\n", marker, label)
}

func renderStrength(m Model) string {
	var b strings.Builder
	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	cs := m.currentCompare()
	if cs == nil {
		return b.String()
	}

	b.WriteString(fmt.Sprintf("You preferred Track %s for %s. How strongly?\n\n",
		cs.record.Choice, attributeName(cs.attribute)))
	b.WriteString("  " + keyHintStyle.Render("1") + " slightly\n")
	b.WriteString("  " + keyHintStyle.Render("2") + " moderately\n")
	b.WriteString("  " + keyHintStyle.Render("3") + " strongly\n")
	b.WriteString("  " + keyHintStyle.Render("s") + " skip\n")
	return b.String()
}

func renderRanking(m Model) string {
	var b strings.Builder
	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	b.WriteString("Which attributes matter most to you? Pick them in order of\n")
	b.WriteString("importance, most important first.\n\n")

	var content strings.Builder
	for i, attr := range sliderOrder {
		rank := ""
		for r, ranked := range m.ranking {
			if ranked == attr {
				rank = fmt.Sprintf(" #%d", r+1)
			}
		}
		line := fmt.Sprintf("%s %s%s", keyHintStyle.Render(fmt.Sprintf("%d", i+1)), attributeName(attr), accentStyle.Render(rank))
		content.WriteString(line + "\n")
	}
	b.WriteString(boxStyle.Render(content.String()))
	b.WriteString("\n\n")
	b.WriteString(keyHintStyle.Render("1-5") + " rank  " +
		keyHintStyle.Render("u") + " undo  " +
		keyHintStyle.Render("enter") + " finish  " +
		keyHintStyle.Render("s") + " skip ranking\n")
	return b.String()
}

func renderResults(m Model) string {
	var b strings.Builder
	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	a := m.Analysis
	b.WriteString(titleStyle.Render("✨ Your sound signature: " + a.Name))
	b.WriteString("\n\n")

	var content strings.Builder
	for _, attr := range profile.Attributes {
		v := a.Preferences.Get(attr)
		content.WriteString(fmt.Sprintf("%-10s %s %.2f\n", attributeName(attr), renderGauge(v, 30), v))
	}
	content.WriteString("\n")
	for _, c := range a.Characteristics {
		content.WriteString("• " + c + "\n")
	}
	content.WriteString("\nGenres: " + strings.Join(a.Genres, ", ") + "\n")
	if m.cfg.Mode == session.ModeAB {
		content.WriteString(fmt.Sprintf("Confidence: %.0f%%\n", a.Confidence*100))
	}
	b.WriteString(boxStyle.Render(content.String()))
	b.WriteString("\n\n")
	b.WriteString(keyHintStyle.Render("enter") + " save and exit\n")
	return b.String()
}

// renderGauge renders a [0,1] value as a bar with the neutral midpoint marked.
func renderGauge(v float64, width int) string {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	filled := int(v*float64(width) + 0.5)
	bar := []rune(strings.Repeat("█", filled) + strings.Repeat("░", width-filled))
	mid := width / 2
	if bar[mid] == '░' {
		bar[mid] = '┃'
	}
	return string(bar)
}

// attributeName maps an attribute to its slider label.
func attributeName(a profile.Attribute) string {
	switch a {
	case profile.AttrBass:
		return "Bass"
	case profile.AttrMids:
		return "Mids"
	case profile.AttrTreble:
		return "Treble"
	case profile.AttrDetail:
		return "Detail"
	case profile.AttrSoundstage:
		return "Soundstage"
	default:
		return string(a)
	}
}
