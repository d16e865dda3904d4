package engine

import (
	"context"
	"sync"
	"time"

	"github.com/sonicmatch/soundcheck/internal/audio"
	"github.com/sonicmatch/soundcheck/internal/dsp"
)

// DefaultFramesPerBuffer is the render quantum. 256 frames at 44.1kHz is
// ~5.8ms, comfortably under the 30ms parameter ramps.
const DefaultFramesPerBuffer = 256

// Engine is the live-DSP playback engine: one looping buffer played through
// the seven-band chain, the width stage and the loudness-compensated output
// gain. One Engine should exist per active test session; Close must release
// it before a new one is created.
//
// All mutating methods are safe for concurrent use. Parameter updates are
// applied atomically per call, but carry no ordering guarantee relative to
// concurrent lifecycle transitions - they apply to whatever graph currently
// exists.
type Engine struct {
	mu sync.Mutex

	device OutputDevice
	loader *audio.Loader
	bus    *eventBus
	vis    *Visualizer

	chain  *dsp.Chain
	width  *dsp.WidthStage
	out    *dsp.OutputGain
	params dsp.Parameters

	sampleRate float64

	state       PlaybackState
	buffer      *audio.Buffer
	bufferURL   string
	pos         int // current frame within buffer
	pauseOffset int // resume frame, already wrapped to buffer length
	loadGen     int // generation counter: last LoadAudio call wins
	closed      bool
}

// NewEngine wires an engine to an output device and asset loader. The engine
// starts uninitialized; Initialize must be called (after a user gesture, per
// the product's autoplay rules) before anything plays.
func NewEngine(device OutputDevice, loader *audio.Loader, sampleRate float64) *Engine {
	return &Engine{
		device:     device,
		loader:     loader,
		bus:        newEventBus(),
		vis:        NewVisualizer(),
		chain:      dsp.NewChain(sampleRate),
		width:      dsp.NewWidthStage(sampleRate),
		out:        dsp.NewOutputGain(1.0, sampleRate),
		params:     dsp.Neutral(),
		sampleRate: sampleRate,
		state:      StateUninitialized,
	}
}

// Events returns the engine's event stream.
func (e *Engine) Events() <-chan Event { return e.bus.ch }

// State returns the current lifecycle state.
func (e *Engine) State() PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Initialize opens the output stream. Idempotent: calling it again on a
// running engine only restarts a stopped device. Initialization failure is
// fatal to this instance and is surfaced as an ErrorEvent as well as the
// returned error; there is no automatic retry.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}

	if err := e.device.Start(e.sampleRate, DefaultFramesPerBuffer, e.render); err != nil {
		e.bus.publish(ErrorEvent{Op: "initialize", Err: err})
		return err
	}
	if e.state == StateUninitialized {
		e.transition(StateIdle)
	}
	return nil
}

// LoadAudio fetches and decodes one buffer asynchronously. Concurrent loads
// for different URLs are not deduplicated and are not cancelled: both decodes
// race and the last call made wins. Failures surface as an ErrorEvent per URL
// and leave the engine in its previous playable state if one existed.
func (e *Engine) LoadAudio(ctx context.Context, url string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.loadGen++
	gen := e.loadGen
	prev := e.state
	if prev != StatePlaying && prev != StatePaused {
		e.transition(StateLoading)
	}
	e.mu.Unlock()

	go func() {
		buf, err := e.loader.Load(ctx, url)

		e.mu.Lock()
		defer e.mu.Unlock()
		if e.closed || gen != e.loadGen {
			return // a later call superseded this load
		}
		if err != nil {
			e.bus.publish(ErrorEvent{Op: "load", URL: url, Err: err})
			if e.buffer != nil {
				e.transition(prev)
			} else {
				e.transition(StateIdle)
			}
			return
		}
		e.buffer = buf
		e.bufferURL = url
		e.pos = 0
		e.pauseOffset = 0
		if e.state == StateLoading {
			e.transition(StateIdle)
		}
		e.bus.publish(LoadedEvent{URL: url, Duration: buf.Duration().Seconds()})
	}()
}

// Play starts (or resumes) looped playback from the pause offset. Each call
// behaves like a fresh single-use source: filter history is cleared so no
// stale ringing carries across. Playing with no loaded buffer is a silent
// no-op - transient UI races should not crash playback.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.buffer == nil || e.state == StateUninitialized || e.state == StatePlaying {
		return
	}
	e.pos = e.pauseOffset
	e.chain.Reset()
	e.transition(StatePlaying)
}

// Pause records the resume offset (elapsed position, already wrapped to the
// buffer length by the render loop) and discards the source. No-op unless
// playing.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePlaying {
		return
	}
	e.pauseOffset = e.pos
	e.transition(StatePaused)
}

// Stop halts playback and resets the offset to zero.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePlaying && e.state != StatePaused {
		return
	}
	e.pos = 0
	e.pauseOffset = 0
	e.transition(StateIdle)
}

// Position returns the current playback position within the loop.
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer == nil || e.sampleRate == 0 {
		return 0
	}
	return time.Duration(float64(e.pos) / e.sampleRate * float64(time.Second))
}

// SetParameters applies a partial slider update. All affected band gains and
// the loudness compensation are recomputed from one consistent snapshot
// before any ramp is retargeted.
func (e *Engine) SetParameters(u dsp.Update) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params = e.chain.SetParameters(u)
	if u.Soundstage != nil {
		e.width.SetWidth(e.params.Soundstage)
	}
	e.out.Retarget(e.params)
}

// Parameters returns the current slider snapshot.
func (e *Engine) Parameters() dsp.Parameters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// SetCompensation installs a headphone correction profile (nil for none).
func (e *Engine) SetCompensation(comp *dsp.CompensationEQ) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chain.SetCompensation(comp)
}

// SetMasterVolume sets the user volume in [0,1]; loudness compensation still
// applies on top.
func (e *Engine) SetMasterVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.out.SetMasterVolume(v)
	e.out.Retarget(e.params)
}

// WaveformData fills dst with time-domain bytes for rendering; see Visualizer.
func (e *Engine) WaveformData(dst []byte) { e.vis.WaveformData(dst) }

// FrequencyData fills dst with frequency-domain bytes; see Visualizer.
func (e *Engine) FrequencyData(dst []byte) { e.vis.FrequencyData(dst) }

// Close stops and releases the output device. The engine is unusable
// afterwards; create a new one for the next session. Closing twice is safe.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.transition(StateStopped)
	e.mu.Unlock()

	return e.device.Close()
}

// transition publishes a state change. Callers hold e.mu.
func (e *Engine) transition(to PlaybackState) {
	if e.state == to {
		return
	}
	from := e.state
	e.state = to
	e.bus.publish(StateChangedEvent{From: from, To: to})
}

// render fills one output quantum. Runs on the audio callback path.
func (e *Engine) render(outBuf []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePlaying || e.buffer == nil {
		for i := range outBuf {
			outBuf[i] = 0
		}
		return
	}

	frames := len(outBuf) / 2
	total := e.buffer.Frames()
	if total == 0 {
		// A valid file can decode to zero frames; loop arithmetic below
		// assumes at least one.
		for i := range outBuf {
			outBuf[i] = 0
		}
		return
	}
	for i := range frames {
		outBuf[i*2] = e.buffer.Samples[e.pos*2]
		outBuf[i*2+1] = e.buffer.Samples[e.pos*2+1]
		e.pos++
		if e.pos >= total {
			e.pos = 0 // loop
		}
	}

	e.chain.Process(outBuf)
	e.width.Process(outBuf)
	e.out.Process(outBuf)
	e.vis.Push(outBuf)
}
