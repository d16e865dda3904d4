package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/sonicmatch/soundcheck/internal/audio"
)

// ShouldBalancedBeTrackA decides which physical track is presented as "A" for
// a given session and attribute. The assignment is deterministic per
// session+attribute (so replaying a step never shuffles the tracks) but
// varies across sessions, preventing order-learning bias. The hash is a plain
// additive byte sum reduced mod 2 - it only needs parity, not dispersion.
func ShouldBalancedBeTrackA(sessionID, attribute string) bool {
	sum := 0
	for _, b := range []byte(sessionID + attribute) {
		sum += int(b)
	}
	return sum%2 == 0
}

// ReferencePlayer is the A/B comparison player: no live DSP, just cached
// pre-rendered tracks and instant switching. Tracks are assumed to be
// loudness-matched and equal-duration; the player trusts this without
// verifying it. Unlike the live engine it does not loop - each play is one
// discrete listen, ending with an EndedEvent.
//
// The player does not track listen durations itself; the caller records
// play/stop timestamps and feeds them to the inference layer.
type ReferencePlayer struct {
	mu sync.Mutex

	device OutputDevice
	loader *audio.Loader
	bus    *eventBus

	cache   map[string]*audio.Buffer
	pending map[string]chan struct{} // in-flight preloads, keyed by URL

	sampleRate float64
	state      PlaybackState
	currentURL string
	pos        int
	closed     bool
}

// NewReferencePlayer wires a player to its own output device and loader.
func NewReferencePlayer(device OutputDevice, loader *audio.Loader, sampleRate float64) *ReferencePlayer {
	return &ReferencePlayer{
		device:     device,
		loader:     loader,
		bus:        newEventBus(),
		cache:      make(map[string]*audio.Buffer),
		pending:    make(map[string]chan struct{}),
		sampleRate: sampleRate,
		state:      StateUninitialized,
	}
}

// Events returns the player's event stream.
func (p *ReferencePlayer) Events() <-chan Event { return p.bus.ch }

// State returns the current lifecycle state.
func (p *ReferencePlayer) State() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Initialize opens the output stream. Idempotent, like the live engine.
func (p *ReferencePlayer) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	if err := p.device.Start(p.sampleRate, DefaultFramesPerBuffer, p.render); err != nil {
		p.bus.publish(ErrorEvent{Op: "initialize", Err: err})
		return err
	}
	if p.state == StateUninitialized {
		p.transition(StateIdle)
	}
	return nil
}

// Preload fetches and caches a track. Concurrent calls for the same URL are
// deduplicated: followers wait for the leader's fetch instead of issuing
// their own. A cached URL returns immediately.
func (p *ReferencePlayer) Preload(ctx context.Context, url string) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("player is closed")
	}
	if _, ok := p.cache[url]; ok {
		p.mu.Unlock()
		return nil
	}
	if done, ok := p.pending[url]; ok {
		p.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		if _, ok := p.cache[url]; ok {
			return nil
		}
		return fmt.Errorf("preload of %s failed", url)
	}

	done := make(chan struct{})
	p.pending[url] = done
	p.mu.Unlock()

	buf, err := p.loader.Load(ctx, url)

	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pending, url)
	close(done)
	if err != nil {
		p.bus.publish(ErrorEvent{Op: "load", URL: url, Err: err})
		return err
	}
	p.cache[url] = buf
	p.bus.publish(LoadedEvent{URL: url, Duration: buf.Duration().Seconds()})
	return nil
}

// Play starts a cached track from the beginning. A URL that was never
// preloaded is a silent no-op, as is playing before Initialize.
func (p *ReferencePlayer) Play(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.state == StateUninitialized {
		return
	}
	if _, ok := p.cache[url]; !ok {
		return
	}
	p.currentURL = url
	p.pos = 0
	p.transition(StatePlaying)
}

// SwitchTo stops the current track and starts the named one at offset zero.
// Switching to the URL already playing is a no-op - the point of the A/B
// player is that nothing audible happens unless the track actually changes.
func (p *ReferencePlayer) SwitchTo(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.state == StateUninitialized {
		return
	}
	if p.state == StatePlaying && p.currentURL == url {
		return
	}
	if _, ok := p.cache[url]; !ok {
		return
	}
	from := p.currentURL
	p.currentURL = url
	p.pos = 0
	p.transition(StatePlaying)
	p.bus.publish(TrackSwitchedEvent{From: from, To: url})
}

// Stop halts playback.
func (p *ReferencePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StatePlaying {
		return
	}
	p.pos = 0
	p.transition(StateIdle)
}

// CurrentURL returns the URL of the playing (or last played) track.
func (p *ReferencePlayer) CurrentURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentURL
}

// Close releases the output device. The cache is dropped with the player.
func (p *ReferencePlayer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.transition(StateStopped)
	p.mu.Unlock()

	return p.device.Close()
}

func (p *ReferencePlayer) transition(to PlaybackState) {
	if p.state == to {
		return
	}
	from := p.state
	p.state = to
	p.bus.publish(StateChangedEvent{From: from, To: to})
}

func (p *ReferencePlayer) render(outBuf []float32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	buf := p.cache[p.currentURL]
	if p.state != StatePlaying || buf == nil {
		for i := range outBuf {
			outBuf[i] = 0
		}
		return
	}

	frames := len(outBuf) / 2
	total := buf.Frames()
	for i := range frames {
		if p.pos >= total {
			// Track finished: zero the tail and report the end.
			for j := i * 2; j < len(outBuf); j++ {
				outBuf[j] = 0
			}
			p.pos = 0
			p.transition(StateIdle)
			p.bus.publish(EndedEvent{URL: p.currentURL})
			return
		}
		outBuf[i*2] = buf.Samples[p.pos*2]
		outBuf[i*2+1] = buf.Samples[p.pos*2+1]
		p.pos++
	}
}
