// Package audio provides reference-asset loading and PCM decode.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"
)

// Buffer holds a decoded asset as interleaved stereo float32 at its native
// sample rate. Mono sources are upmixed at decode time so the rest of the
// chain only ever sees stereo.
type Buffer struct {
	SampleRate int
	Samples    []float32 // interleaved L/R
}

// Frames returns the number of stereo frames in the buffer.
func (b *Buffer) Frames() int { return len(b.Samples) / 2 }

// Duration returns the playable length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// DecodeWAV parses a RIFF/WAVE stream. Supported encodings are 16-bit and
// 24-bit integer PCM and 32-bit float, one or two channels.
func DecodeWAV(r io.Reader) (*Buffer, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("failed to read RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE stream")
	}

	var (
		format     uint16
		channels   int
		sampleRate int
		bitDepth   int
		haveFmt    bool
	)

	// Walk chunks until the data chunk; fmt must come first.
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("no data chunk found")
			}
			return nil, fmt.Errorf("failed to read chunk header: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("failed to read fmt chunk: %w", err)
			}
			if size < 16 {
				return nil, fmt.Errorf("fmt chunk too short: %d bytes", size)
			}
			format = binary.LittleEndian.Uint16(body[0:2])
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitDepth = int(binary.LittleEndian.Uint16(body[14:16]))
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("data chunk before fmt chunk")
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("failed to read data chunk: %w", err)
			}
			return decodeSamples(body, format, channels, sampleRate, bitDepth)

		default:
			// Skip unknown chunks (LIST, fact, cue, ...); sizes pad to even.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("failed to skip %s chunk: %w", id, err)
			}
		}
	}
}

const (
	formatPCM   = 1
	formatFloat = 3
)

func decodeSamples(data []byte, format uint16, channels, sampleRate, bitDepth int) (*Buffer, error) {
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	var samples []float32 // interleaved as stored
	switch {
	case format == formatPCM && bitDepth == 16:
		n := len(data) / 2
		samples = make([]float32, n)
		for i := range n {
			s := int16(binary.LittleEndian.Uint16(data[i*2:]))
			samples[i] = float32(s) / 32768.0
		}
	case format == formatPCM && bitDepth == 24:
		n := len(data) / 3
		samples = make([]float32, n)
		for i := range n {
			b := data[i*3 : i*3+3]
			s := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if s&0x800000 != 0 {
				s |= ^0xFFFFFF // sign extend
			}
			samples[i] = float32(s) / 8388608.0
		}
	case format == formatFloat && bitDepth == 32:
		n := len(data) / 4
		samples = make([]float32, n)
		for i := range n {
			samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
	default:
		return nil, fmt.Errorf("unsupported encoding: format=%d bits=%d", format, bitDepth)
	}

	if channels == 2 {
		return &Buffer{SampleRate: sampleRate, Samples: samples}, nil
	}

	// Upmix mono to stereo.
	stereo := make([]float32, len(samples)*2)
	for i, s := range samples {
		stereo[i*2] = s
		stereo[i*2+1] = s
	}
	return &Buffer{SampleRate: sampleRate, Samples: stereo}, nil
}
