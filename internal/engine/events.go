// Package engine implements the two playback engines of the listening test:
// the live-DSP player driving the equalizer chain and the simpler A/B
// reference-track player. Both report back through a typed event stream.
package engine

import "fmt"

// PlaybackState is the lifecycle state of a player.
type PlaybackState int

const (
	StateUninitialized PlaybackState = iota
	StateIdle
	StateLoading
	StatePlaying
	StatePaused
	StateStopped
)

func (s PlaybackState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("PlaybackState(%d)", int(s))
	}
}

// Event is the discriminated union carried by a player's event stream. The
// closed set of concrete types gives handlers compile-time exhaustiveness
// instead of stringly-typed dispatch.
type Event interface{ isEvent() }

// StateChangedEvent reports a lifecycle transition.
type StateChangedEvent struct {
	From PlaybackState
	To   PlaybackState
}

// LoadedEvent reports that a buffer finished loading and is current.
type LoadedEvent struct {
	URL      string
	Duration float64 // seconds
}

// ErrorEvent reports a failure surfaced at the engine boundary. The engine
// never panics on audio errors; the UI decides how to render them.
type ErrorEvent struct {
	Op  string // "initialize", "load", "play", ...
	URL string // empty when not load-related
	Err error
}

// EndedEvent reports that a non-looping source ran out.
type EndedEvent struct {
	URL string
}

// TrackSwitchedEvent reports an instant A/B switch on the reference player.
type TrackSwitchedEvent struct {
	From string
	To   string
}

func (StateChangedEvent) isEvent()  {}
func (LoadedEvent) isEvent()        {}
func (ErrorEvent) isEvent()         {}
func (EndedEvent) isEvent()         {}
func (TrackSwitchedEvent) isEvent() {}

// eventBus is a buffered fan-in used by both players. Publishing never blocks
// the audio path: if the subscriber lags, the event is dropped.
type eventBus struct {
	ch chan Event
}

func newEventBus() *eventBus {
	return &eventBus{ch: make(chan Event, 64)}
}

func (b *eventBus) publish(e Event) {
	select {
	case b.ch <- e:
	default:
	}
}
