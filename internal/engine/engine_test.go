package engine

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sonicmatch/soundcheck/internal/audio"
	"github.com/sonicmatch/soundcheck/internal/dsp"
)

const testRate = 44100.0

// fakeDevice implements OutputDevice and lets tests pump the render callback
// by hand, so lifecycle and offset arithmetic run without hardware.
type fakeDevice struct {
	render     RenderFunc
	started    bool
	closed     bool
	startCalls int
	startErr   error
}

func (d *fakeDevice) Start(sampleRate float64, framesPerBuffer int, render RenderFunc) error {
	if d.startErr != nil {
		return d.startErr
	}
	d.render = render
	d.started = true
	d.startCalls++
	return nil
}

func (d *fakeDevice) Stop() error {
	d.started = false
	return nil
}

func (d *fakeDevice) Close() error {
	d.started = false
	d.closed = true
	return nil
}

// pump renders n stereo frames and returns the interleaved output.
func (d *fakeDevice) pump(n int) []float32 {
	buf := make([]float32, n*2)
	if d.render != nil {
		d.render(buf)
	}
	return buf
}

// wavBytes assembles a mono 16-bit PCM RIFF/WAVE file in memory.
func wavBytes(pcm []int16) []byte {
	var data bytes.Buffer
	for _, s := range pcm {
		binary.Write(&data, binary.LittleEndian, s)
	}
	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(4+8+16+8+data.Len()))
	out.WriteString("WAVE")
	out.WriteString("fmt ")
	binary.Write(&out, binary.LittleEndian, uint32(16))
	binary.Write(&out, binary.LittleEndian, uint16(1))
	binary.Write(&out, binary.LittleEndian, uint16(1))
	binary.Write(&out, binary.LittleEndian, uint32(int(testRate)))
	binary.Write(&out, binary.LittleEndian, uint32(int(testRate)*2))
	binary.Write(&out, binary.LittleEndian, uint16(2))
	binary.Write(&out, binary.LittleEndian, uint16(16))
	out.WriteString("data")
	binary.Write(&out, binary.LittleEndian, uint32(data.Len()))
	out.Write(data.Bytes())
	return out.Bytes()
}

// writeWAV writes a mono 16-bit PCM file with the given samples and returns
// its path.
func writeWAV(t *testing.T, pcm []int16) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wav")
	if err := os.WriteFile(path, wavBytes(pcm), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// waitFor drains the event stream until an event matches, or fails the test.
func waitFor(t *testing.T, events <-chan Event, match func(Event) bool) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-events:
			if match(e) {
				return e
			}
		case <-deadline:
			t.Fatal("timed out waiting for event")
			return nil
		}
	}
}

func newTestEngine(t *testing.T) (*Engine, *fakeDevice) {
	t.Helper()
	dev := &fakeDevice{}
	eng := NewEngine(dev, audio.NewLoader(nil), testRate)
	t.Cleanup(func() { eng.Close() })
	return eng, dev
}

func loadAndWait(t *testing.T, eng *Engine, url string) {
	t.Helper()
	eng.LoadAudio(context.Background(), url)
	waitFor(t, eng.Events(), func(e Event) bool {
		le, ok := e.(LoadedEvent)
		return ok && le.URL == url
	})
}

func TestEngineLifecycle(t *testing.T) {
	t.Run("starts uninitialized and play is a no-op", func(t *testing.T) {
		eng, dev := newTestEngine(t)
		eng.Play()
		if eng.State() != StateUninitialized {
			t.Errorf("state = %v, want uninitialized", eng.State())
		}
		if dev.started {
			t.Error("device should not start before Initialize")
		}
	})

	t.Run("initialize is idempotent", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		if err := eng.Initialize(); err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		if err := eng.Initialize(); err != nil {
			t.Fatalf("second Initialize: %v", err)
		}
		if eng.State() != StateIdle {
			t.Errorf("state = %v, want idle", eng.State())
		}
	})

	t.Run("initialize failure surfaces as error event", func(t *testing.T) {
		dev := &fakeDevice{startErr: errors.New("no output context")}
		eng := NewEngine(dev, audio.NewLoader(nil), testRate)
		defer eng.Close()
		if err := eng.Initialize(); err == nil {
			t.Fatal("expected Initialize to fail")
		}
		e := waitFor(t, eng.Events(), func(e Event) bool {
			_, ok := e.(ErrorEvent)
			return ok
		})
		if e.(ErrorEvent).Op != "initialize" {
			t.Errorf("error op = %q, want initialize", e.(ErrorEvent).Op)
		}
	})

	t.Run("load then play then pause then stop", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		eng.Initialize()
		loadAndWait(t, eng, writeWAV(t, make([]int16, 44100)))

		eng.Play()
		if eng.State() != StatePlaying {
			t.Fatalf("state after Play = %v, want playing", eng.State())
		}
		eng.Pause()
		if eng.State() != StatePaused {
			t.Fatalf("state after Pause = %v, want paused", eng.State())
		}
		eng.Play()
		if eng.State() != StatePlaying {
			t.Fatalf("state after resume = %v, want playing", eng.State())
		}
		eng.Stop()
		if eng.State() != StateIdle {
			t.Fatalf("state after Stop = %v, want idle", eng.State())
		}
	})

	t.Run("load failure keeps previous playable state", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		eng.Initialize()
		loadAndWait(t, eng, writeWAV(t, make([]int16, 1024)))
		eng.Play()

		eng.LoadAudio(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
		e := waitFor(t, eng.Events(), func(e Event) bool {
			_, ok := e.(ErrorEvent)
			return ok
		})
		if e.(ErrorEvent).Op != "load" {
			t.Errorf("error op = %q, want load", e.(ErrorEvent).Op)
		}
		if eng.State() != StatePlaying {
			t.Errorf("state after failed load = %v, want playing", eng.State())
		}
	})

	t.Run("last concurrent load wins", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		eng.Initialize()
		first := writeWAV(t, make([]int16, 512))
		second := writeWAV(t, make([]int16, 1024))

		eng.LoadAudio(context.Background(), first)
		eng.LoadAudio(context.Background(), second)

		e := waitFor(t, eng.Events(), func(e Event) bool {
			_, ok := e.(LoadedEvent)
			return ok
		})
		if got := e.(LoadedEvent).URL; got != second {
			t.Errorf("loaded URL = %q, want the later call %q", got, second)
		}
	})

	t.Run("dispose and recreate produces no double audio", func(t *testing.T) {
		eng, dev := newTestEngine(t)
		eng.Initialize()
		if err := eng.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if !dev.closed {
			t.Error("device not released on Close")
		}
		if err := eng.Close(); err != nil {
			t.Fatalf("second Close: %v", err)
		}

		dev2 := &fakeDevice{}
		eng2 := NewEngine(dev2, audio.NewLoader(nil), testRate)
		defer eng2.Close()
		if err := eng2.Initialize(); err != nil {
			t.Fatalf("Initialize after recreate: %v", err)
		}
	})
}

func TestEnginePauseResume(t *testing.T) {
	t.Run("resumes at the paused offset", func(t *testing.T) {
		eng, dev := newTestEngine(t)
		eng.Initialize()
		loadAndWait(t, eng, writeWAV(t, rampPCM(44100))) // 1s of distinct samples

		eng.Play()
		dev.pump(1000)
		eng.Pause()

		// Position reports the frozen pause offset.
		elapsed := 1000 / testRate
		wantPos := time.Duration(elapsed * float64(time.Second))
		if got := eng.Position(); got != wantPos {
			t.Errorf("position after pause = %v, want %v", got, wantPos)
		}

		eng.Play()
		out := dev.pump(1)
		// Frame 1000 of the ramp, passed through the flat chain.
		want := float32(1000) / 32768
		if diff := out[0] - want; diff > 0.01 || diff < -0.01 {
			t.Errorf("resume sample = %v, want ~%v (offset 1000)", out[0], want)
		}
	})

	t.Run("pause offset wraps modulo buffer duration", func(t *testing.T) {
		eng, dev := newTestEngine(t)
		eng.Initialize()
		loadAndWait(t, eng, writeWAV(t, rampPCM(1000))) // short loop

		eng.Play()
		dev.pump(2500) // 2.5 loops
		eng.Pause()

		elapsed := 500 / testRate
		want := time.Duration(elapsed * float64(time.Second))
		if got := eng.Position(); got != want {
			t.Errorf("wrapped position = %v, want %v", got, want)
		}
	})

	t.Run("stop resets the offset to zero", func(t *testing.T) {
		eng, dev := newTestEngine(t)
		eng.Initialize()
		loadAndWait(t, eng, writeWAV(t, rampPCM(44100)))

		eng.Play()
		dev.pump(500)
		eng.Stop()
		if got := eng.Position(); got != 0 {
			t.Errorf("position after stop = %v, want 0", got)
		}
	})
}

func TestEngineRender(t *testing.T) {
	t.Run("renders silence when idle", func(t *testing.T) {
		eng, dev := newTestEngine(t)
		eng.Initialize()
		loadAndWait(t, eng, writeWAV(t, rampPCM(1000)))
		for _, s := range dev.pump(64) {
			if s != 0 {
				t.Fatalf("idle engine produced non-zero sample %v", s)
			}
		}
	})

	t.Run("zero-frame buffer renders silence without looping", func(t *testing.T) {
		eng, dev := newTestEngine(t)
		eng.Initialize()
		loadAndWait(t, eng, writeWAV(t, nil)) // valid file, empty data chunk

		eng.Play()
		if eng.State() != StatePlaying {
			t.Fatalf("state after Play = %v, want playing", eng.State())
		}
		for _, s := range dev.pump(64) {
			if s != 0 {
				t.Fatalf("empty buffer produced non-zero sample %v", s)
			}
		}
	})

	t.Run("parameter round-trip through the chain", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		eng.SetParameters(dsp.Update{Bass: dsp.Float(0.8)})
		p := eng.Parameters()
		if p.Bass != 0.8 {
			t.Errorf("bass = %v, want 0.8", p.Bass)
		}
		if p.Mids != 0.5 {
			t.Errorf("mids = %v, want 0.5 (untouched)", p.Mids)
		}
	})

	t.Run("visualization pull APIs are safe before playback", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		freq := make([]byte, 128)
		wave := make([]byte, 128)
		eng.FrequencyData(freq)
		eng.WaveformData(wave)
		for _, b := range wave {
			if b != 128 {
				t.Fatalf("silent waveform byte = %d, want 128", b)
			}
		}
	})
}

// rampPCM produces n samples rising linearly from 0, so positions are
// identifiable in rendered output.
func rampPCM(n int) []int16 {
	pcm := make([]int16, n)
	for i := range pcm {
		pcm[i] = int16(i % 32767)
	}
	return pcm
}
