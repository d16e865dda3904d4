// Package ui provides the Bubbletea terminal wizard for running a listening
// test session.
package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sonicmatch/soundcheck/internal/dsp"
	"github.com/sonicmatch/soundcheck/internal/engine"
	"github.com/sonicmatch/soundcheck/internal/profile"
	"github.com/sonicmatch/soundcheck/internal/session"
)

// Spinner frames for indeterminate progress
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// step identifies where the wizard is.
type step int

const (
	stepIntro step = iota
	stepSliders
	stepCompare
	stepStrength
	stepRanking
	stepResults
)

// Config describes one session for the wizard.
type Config struct {
	SessionID string
	Mode      session.Mode
	TrackURL  string                            // slider mode source
	Pairs     map[profile.Attribute]ComparePair // A/B mode sources, one per attribute
	Headphone string                            // display label, empty when none selected
}

// Model is the Bubbletea model for the listening test wizard.
type Model struct {
	cfg Config
	eng *engine.Engine
	ref *engine.ReferencePlayer

	step         step
	sliderIndex  int
	params       dsp.Parameters
	compares     []*compareState
	compareIndex int

	ranking []profile.Attribute

	engState engine.PlaybackState
	refState engine.PlaybackState
	loaded   bool
	loadErr  error

	spinnerIndex int
	waveform     []byte

	// Results, read by the caller after the program exits.
	Analysis    profile.Analysis
	Comparisons []profile.ABComparison
	Params      dsp.Parameters
	Ranking     []profile.Attribute
	Done        bool
	Aborted     bool

	Width  int
	Height int
}

// NewModel builds the wizard. For slider mode pass the live engine; for A/B
// mode pass the reference player. The unused one may be nil.
func NewModel(cfg Config, eng *engine.Engine, ref *engine.ReferencePlayer) Model {
	m := Model{
		cfg:      cfg,
		eng:      eng,
		ref:      ref,
		params:   dsp.Neutral(),
		waveform: make([]byte, 64),
	}
	if cfg.Mode == session.ModeAB {
		for _, attr := range profile.Attributes {
			pair, ok := cfg.Pairs[attr]
			if !ok {
				continue
			}
			m.compares = append(m.compares, newCompareState(cfg.SessionID, attr, pair))
		}
	}
	return m
}

// Init kicks off event listeners and source loading.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}

	if m.cfg.Mode == session.ModeSlider {
		cmds = append(cmds, waitForEngineEvent(m.eng.Events()))
		eng, url := m.eng, m.cfg.TrackURL
		cmds = append(cmds, func() tea.Msg {
			eng.LoadAudio(context.Background(), url)
			return nil
		})
	} else {
		cmds = append(cmds, waitForReferenceEvent(m.ref.Events()))
		for _, cs := range m.compares {
			cmds = append(cmds, preloadCmd(m.ref, cs.attribute, cs.pair))
		}
	}

	return tea.Batch(cmds...)
}

// preloadCmd fetches both variants for one attribute.
func preloadCmd(ref *engine.ReferencePlayer, attr profile.Attribute, pair ComparePair) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := ref.Preload(ctx, pair.BalancedURL); err != nil {
			return PreloadedMsg{Attribute: attr, Err: err}
		}
		if err := ref.Preload(ctx, pair.ModifiedURL); err != nil {
			return PreloadedMsg{Attribute: attr, Err: err}
		}
		return PreloadedMsg{Attribute: attr}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tickMsg:
		m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
		if m.cfg.Mode == session.ModeSlider && m.engState == engine.StatePlaying {
			m.eng.WaveformData(m.waveform)
		}
		return m, tickCmd()

	case EngineEventMsg:
		m = m.handleEngineEvent(msg.Event)
		return m, waitForEngineEvent(m.eng.Events())

	case ReferenceEventMsg:
		m = m.handleReferenceEvent(msg.Event)
		return m, waitForReferenceEvent(m.ref.Events())

	case PreloadedMsg:
		for _, cs := range m.compares {
			if cs.attribute == msg.Attribute {
				cs.preloaded = msg.Err == nil
				cs.preloadErr = msg.Err
			}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleEngineEvent(ev engine.Event) Model {
	switch ev := ev.(type) {
	case engine.StateChangedEvent:
		m.engState = ev.To
	case engine.LoadedEvent:
		m.loaded = true
	case engine.ErrorEvent:
		m.loadErr = ev.Err
	}
	return m
}

func (m Model) handleReferenceEvent(ev engine.Event) Model {
	now := time.Now()
	switch ev := ev.(type) {
	case engine.StateChangedEvent:
		m.refState = ev.To
		if ev.To == engine.StateIdle {
			// Track ran out or was stopped; close the listen window.
			if cs := m.currentCompare(); cs != nil {
				cs.noteStop(now)
			}
		}
	case engine.ErrorEvent:
		m.loadErr = ev.Err
	}
	return m
}

func (m Model) currentCompare() *compareState {
	if m.compareIndex < 0 || m.compareIndex >= len(m.compares) {
		return nil
	}
	return m.compares[m.compareIndex]
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.Aborted = !m.Done
		return m.shutdown()
	}

	switch m.step {
	case stepIntro:
		switch key {
		case "q":
			m.Aborted = true
			return m.shutdown()
		case "enter", " ":
			if m.cfg.Mode == session.ModeSlider {
				m.step = stepSliders
			} else {
				m.step = stepCompare
			}
		}

	case stepSliders:
		return m.handleSliderKey(key)

	case stepCompare:
		return m.handleCompareKey(key)

	case stepStrength:
		return m.handleStrengthKey(key)

	case stepRanking:
		return m.handleRankingKey(key)

	case stepResults:
		switch key {
		case "q", "enter":
			return m.shutdown()
		}
	}

	return m, nil
}

// sliderOrder matches the on-screen slider layout.
var sliderOrder = []profile.Attribute{
	profile.AttrBass,
	profile.AttrMids,
	profile.AttrTreble,
	profile.AttrDetail,
	profile.AttrSoundstage,
}

func (m Model) handleSliderKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		m.Aborted = true
		return m.shutdown()
	case "up", "k":
		if m.sliderIndex > 0 {
			m.sliderIndex--
		}
	case "down", "j":
		if m.sliderIndex < len(sliderOrder)-1 {
			m.sliderIndex++
		}
	case "left", "h":
		m.adjustSlider(-0.05)
	case "right", "l":
		m.adjustSlider(+0.05)
	case "r":
		m.eng.SetParameters(dsp.Update{
			Bass: dsp.Float(0.5), Mids: dsp.Float(0.5), Treble: dsp.Float(0.5),
			Detail: dsp.Float(0.5), Soundstage: dsp.Float(0.5),
		})
		m.params = m.eng.Parameters()
	case " ":
		if m.engState == engine.StatePlaying {
			m.eng.Pause()
		} else {
			m.eng.Play()
		}
	case "enter":
		m.eng.Pause()
		m.step = stepRanking
	}
	return m, nil
}

func (m *Model) adjustSlider(delta float64) {
	attr := sliderOrder[m.sliderIndex]
	v := sliderValue(m.params, attr) + delta

	var u dsp.Update
	switch attr {
	case profile.AttrBass:
		u.Bass = dsp.Float(v)
	case profile.AttrMids:
		u.Mids = dsp.Float(v)
	case profile.AttrTreble:
		u.Treble = dsp.Float(v)
	case profile.AttrDetail:
		u.Detail = dsp.Float(v)
	case profile.AttrSoundstage:
		u.Soundstage = dsp.Float(v)
	}
	m.eng.SetParameters(u)
	m.params = m.eng.Parameters()
}

func sliderValue(p dsp.Parameters, attr profile.Attribute) float64 {
	switch attr {
	case profile.AttrBass:
		return p.Bass
	case profile.AttrMids:
		return p.Mids
	case profile.AttrTreble:
		return p.Treble
	case profile.AttrDetail:
		return p.Detail
	default:
		return p.Soundstage
	}
}

func (m Model) handleCompareKey(key string) (tea.Model, tea.Cmd) {
	cs := m.currentCompare()
	if cs == nil {
		return m, nil
	}
	now := time.Now()

	switch key {
	case "q":
		m.Aborted = true
		return m.shutdown()
	case "a", "b":
		if !cs.preloaded {
			return m, nil
		}
		label := "A"
		if key == "b" {
			label = "B"
		}
		url := cs.urlFor(label)
		if m.refState == engine.StatePlaying {
			m.ref.SwitchTo(url)
		} else {
			m.ref.Play(url)
		}
		cs.notePlay(label, now)
	case " ":
		m.ref.Stop()
		cs.noteStop(now)
	case "1":
		cs.noteChoice(profile.ChoiceA)
		m.ref.Stop()
		cs.noteStop(now)
		m.step = stepStrength
	case "2":
		cs.noteChoice(profile.ChoiceB)
		m.ref.Stop()
		cs.noteStop(now)
		m.step = stepStrength
	case "0":
		cs.noteChoice(profile.ChoiceNone)
		m.ref.Stop()
		return m.advanceCompare(), nil
	}
	return m, nil
}

func (m Model) handleStrengthKey(key string) (tea.Model, tea.Cmd) {
	cs := m.currentCompare()
	if cs == nil {
		return m, nil
	}
	switch key {
	case "1":
		cs.noteStrength(profile.StrengthSlight)
	case "2":
		cs.noteStrength(profile.StrengthModerate)
	case "3":
		cs.noteStrength(profile.StrengthStrong)
	case "s", "enter":
		// Skipped; scoring treats it as moderate.
	default:
		return m, nil
	}
	return m.advanceCompare(), nil
}

func (m Model) advanceCompare() Model {
	if cs := m.currentCompare(); cs != nil {
		m.Comparisons = append(m.Comparisons, cs.finalize(time.Now()))
	}
	m.compareIndex++
	if m.compareIndex >= len(m.compares) {
		m.step = stepRanking
	} else {
		m.step = stepCompare
	}
	return m
}

func (m Model) handleRankingKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		m.Aborted = true
		return m.shutdown()
	case "1", "2", "3", "4", "5":
		idx := int(key[0] - '1')
		attr := sliderOrder[idx]
		for _, r := range m.ranking {
			if r == attr {
				return m, nil
			}
		}
		m.ranking = append(m.ranking, attr)
	case "u":
		if len(m.ranking) > 0 {
			m.ranking = m.ranking[:len(m.ranking)-1]
		}
	case "enter", "s":
		m = m.finish()
	}
	return m, nil
}

// finish computes the session result and moves to the results screen.
func (m Model) finish() Model {
	m.Ranking = m.ranking
	if m.cfg.Mode == session.ModeSlider {
		m.Params = m.params
		m.Analysis = profile.InferFromSliders(m.params, m.ranking)
	} else {
		m.Analysis = profile.InferFromComparisons(m.Comparisons, m.ranking)
	}
	m.Done = true
	m.step = stepResults
	return m
}

// shutdown stops playback and quits. The caller owns engine lifecycle; the
// wizard only silences output.
func (m Model) shutdown() (tea.Model, tea.Cmd) {
	if m.cfg.Mode == session.ModeSlider && m.eng != nil {
		m.eng.Stop()
	}
	if m.cfg.Mode == session.ModeAB && m.ref != nil {
		m.ref.Stop()
	}
	return m, tea.Quit
}

// View renders the UI.
func (m Model) View() string {
	if m.Width == 0 {
		return "Initializing...\n"
	}

	switch m.step {
	case stepIntro:
		return renderIntro(m)
	case stepSliders:
		return renderSliders(m)
	case stepCompare:
		return renderCompare(m)
	case stepStrength:
		return renderStrength(m)
	case stepRanking:
		return renderRanking(m)
	case stepResults:
		return renderResults(m)
	}
	return ""
}
