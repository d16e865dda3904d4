// Package dsp implements the real-time signal chain for the listening test:
// a fixed seven-band equalizer, a stereo width stage and a loudness-compensated
// output gain. All processing operates on interleaved stereo float32 blocks.
package dsp

import "math"

// FilterShape selects the biquad response type for a band.
type FilterShape int

const (
	LowShelf FilterShape = iota
	Peaking
	HighShelf
)

// Biquad is a second-order IIR filter (RBJ cookbook coefficients) with
// independent Direct Form I state per stereo channel.
type Biquad struct {
	shape      FilterShape
	freq       float64 // center/corner frequency in Hz
	q          float64
	gainDB     float64
	sampleRate float64

	b0, b1, b2, a1, a2 float64

	// x/y history, indexed [channel][tap]
	x1, x2, y1, y2 [2]float64
}

// NewBiquad creates a filter with the given fixed shape, frequency and Q.
// Gain starts at 0dB (audibly transparent for all three shapes).
func NewBiquad(shape FilterShape, freq, q, sampleRate float64) *Biquad {
	f := &Biquad{
		shape:      shape,
		freq:       freq,
		q:          q,
		sampleRate: sampleRate,
	}
	f.SetGainDB(0)
	return f
}

// GainDB returns the gain most recently applied to the filter.
func (f *Biquad) GainDB() float64 { return f.gainDB }

// SetGainDB recomputes the filter coefficients for a new gain. Frequency and Q
// are fixed for the lifetime of the filter; only gain changes at runtime.
func (f *Biquad) SetGainDB(db float64) {
	f.gainDB = db

	A := math.Pow(10, db/40)
	w0 := 2 * math.Pi * f.freq / f.sampleRate
	cosw := math.Cos(w0)
	sinw := math.Sin(w0)
	alpha := sinw / (2 * f.q)

	var b0, b1, b2, a0, a1, a2 float64
	switch f.shape {
	case Peaking:
		b0 = 1 + alpha*A
		b1 = -2 * cosw
		b2 = 1 - alpha*A
		a0 = 1 + alpha/A
		a1 = -2 * cosw
		a2 = 1 - alpha/A
	case LowShelf:
		sqA := math.Sqrt(A)
		b0 = A * ((A + 1) - (A-1)*cosw + 2*sqA*alpha)
		b1 = 2 * A * ((A - 1) - (A+1)*cosw)
		b2 = A * ((A + 1) - (A-1)*cosw - 2*sqA*alpha)
		a0 = (A + 1) + (A-1)*cosw + 2*sqA*alpha
		a1 = -2 * ((A - 1) + (A+1)*cosw)
		a2 = (A + 1) + (A-1)*cosw - 2*sqA*alpha
	case HighShelf:
		sqA := math.Sqrt(A)
		b0 = A * ((A + 1) + (A-1)*cosw + 2*sqA*alpha)
		b1 = -2 * A * ((A - 1) + (A+1)*cosw)
		b2 = A * ((A + 1) + (A-1)*cosw - 2*sqA*alpha)
		a0 = (A + 1) - (A-1)*cosw + 2*sqA*alpha
		a1 = 2 * ((A - 1) - (A+1)*cosw)
		a2 = (A + 1) - (A-1)*cosw - 2*sqA*alpha
	}

	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
}

// Process filters an interleaved stereo buffer in place.
// len(buf) must be even; frame i occupies buf[2i] (left) and buf[2i+1] (right).
func (f *Biquad) Process(buf []float32) {
	for i := 0; i+1 < len(buf); i += 2 {
		for ch := 0; ch < 2; ch++ {
			x := float64(buf[i+ch])
			y := f.b0*x + f.b1*f.x1[ch] + f.b2*f.x2[ch] - f.a1*f.y1[ch] - f.a2*f.y2[ch]
			f.x2[ch] = f.x1[ch]
			f.x1[ch] = x
			f.y2[ch] = f.y1[ch]
			f.y1[ch] = y
			buf[i+ch] = float32(y)
		}
	}
}

// Reset clears the filter history. Coefficients are untouched.
func (f *Biquad) Reset() {
	for ch := 0; ch < 2; ch++ {
		f.x1[ch], f.x2[ch], f.y1[ch], f.y2[ch] = 0, 0, 0, 0
	}
}
