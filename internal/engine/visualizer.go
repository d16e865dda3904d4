package engine

import (
	"math"
	"sync"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// VisualizerSize is the analysis window: 2048 mono samples (~46ms at 44.1kHz).
const VisualizerSize = 2048

// Visualization dB range mapped onto the byte scale.
const (
	visMinDB = -100.0
	visMaxDB = -30.0
)

// Visualizer keeps a ring of recent output samples and serves the pull-style
// visualization APIs: callers poll per animation frame, nothing is pushed.
type Visualizer struct {
	mu   sync.Mutex
	ring [VisualizerSize]float64 // mono mixdown of recent output
	head int
	hann []float64
}

// NewVisualizer creates an empty visualizer.
func NewVisualizer() *Visualizer {
	return &Visualizer{hann: window.Hann(VisualizerSize)}
}

// Push mixes an interleaved stereo block into the ring. Called from the
// render path after the full chain has run, so the display matches what is
// audible.
func (v *Visualizer) Push(buf []float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := 0; i+1 < len(buf); i += 2 {
		v.ring[v.head] = (float64(buf[i]) + float64(buf[i+1])) / 2
		v.head = (v.head + 1) % VisualizerSize
	}
}

// snapshot copies the ring in chronological order. Callers hold v.mu.
func (v *Visualizer) snapshot() []float64 {
	out := make([]float64, VisualizerSize)
	for i := range out {
		out[i] = v.ring[(v.head+i)%VisualizerSize]
	}
	return out
}

// WaveformData fills dst with time-domain bytes centred on 128 for silence,
// reaching 1/255 at full scale. dst is sampled evenly across the analysis
// window.
func (v *Visualizer) WaveformData(dst []byte) {
	if len(dst) == 0 {
		return
	}
	v.mu.Lock()
	samples := v.snapshot()
	v.mu.Unlock()

	step := float64(len(samples)) / float64(len(dst))
	for i := range dst {
		s := samples[int(float64(i)*step)]
		b := 128 + s*127
		if b < 0 {
			b = 0
		}
		if b > 255 {
			b = 255
		}
		dst[i] = byte(b)
	}
}

// FrequencyData fills dst with frequency-domain magnitude bytes: 0 maps to
// -100dB and 255 to -30dB, the conventional analyser display range. Bins are
// sampled evenly across the spectrum up to Nyquist.
func (v *Visualizer) FrequencyData(dst []byte) {
	if len(dst) == 0 {
		return
	}
	v.mu.Lock()
	samples := v.snapshot()
	v.mu.Unlock()

	for i := range samples {
		samples[i] *= v.hann[i]
	}
	spectrum := fft.FFTReal(samples)
	bins := len(spectrum) / 2

	step := float64(bins) / float64(len(dst))
	for i := range dst {
		c := spectrum[int(float64(i)*step)]
		mag := math.Hypot(real(c), imag(c)) / float64(VisualizerSize)
		db := visMinDB
		if mag > 0 {
			db = 20 * math.Log10(mag)
		}
		scaled := (db - visMinDB) / (visMaxDB - visMinDB) * 255
		if scaled < 0 {
			scaled = 0
		}
		if scaled > 255 {
			scaled = 255
		}
		dst[i] = byte(scaled)
	}
}
