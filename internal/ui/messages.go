package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sonicmatch/soundcheck/internal/engine"
	"github.com/sonicmatch/soundcheck/internal/profile"
)

// EngineEventMsg wraps a playback event from the live engine's stream.
type EngineEventMsg struct {
	Event engine.Event
}

// ReferenceEventMsg wraps a playback event from the A/B reference player.
type ReferenceEventMsg struct {
	Event engine.Event
}

// PreloadedMsg signals that both variants for an attribute finished
// downloading (or failed).
type PreloadedMsg struct {
	Attribute profile.Attribute
	Err       error
}

// tickMsg drives the spinner and visualizer refresh.
type tickMsg time.Time

// waitForEngineEvent re-arms the engine event listener.
func waitForEngineEvent(ch <-chan engine.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return EngineEventMsg{Event: ev}
	}
}

// waitForReferenceEvent re-arms the reference player event listener.
func waitForReferenceEvent(ch <-chan engine.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ReferenceEventMsg{Event: ev}
	}
}

// tickCmd returns a command that sends a tick message every 100ms.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
