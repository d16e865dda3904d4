package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"
)

// buildWAV assembles a minimal RIFF/WAVE file with 16-bit PCM samples.
func buildWAV(t *testing.T, channels int, sampleRate int, pcm []int16) []byte {
	t.Helper()
	var data bytes.Buffer
	for _, s := range pcm {
		if err := binary.Write(&data, binary.LittleEndian, s); err != nil {
			t.Fatal(err)
		}
	}

	var fmtChunk bytes.Buffer
	binary.Write(&fmtChunk, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&fmtChunk, binary.LittleEndian, uint16(channels))
	binary.Write(&fmtChunk, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&fmtChunk, binary.LittleEndian, uint32(sampleRate*channels*2)) // byte rate
	binary.Write(&fmtChunk, binary.LittleEndian, uint16(channels*2))            // block align
	binary.Write(&fmtChunk, binary.LittleEndian, uint16(16))                    // bit depth

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(4+8+fmtChunk.Len()+8+data.Len()))
	out.WriteString("WAVE")
	out.WriteString("fmt ")
	binary.Write(&out, binary.LittleEndian, uint32(fmtChunk.Len()))
	out.Write(fmtChunk.Bytes())
	out.WriteString("data")
	binary.Write(&out, binary.LittleEndian, uint32(data.Len()))
	out.Write(data.Bytes())
	return out.Bytes()
}

func TestDecodeWAV(t *testing.T) {
	t.Run("stereo 16-bit PCM decodes interleaved", func(t *testing.T) {
		pcm := []int16{16384, -16384, 8192, -8192}
		wav := buildWAV(t, 2, 44100, pcm)

		buf, err := DecodeWAV(bytes.NewReader(wav))
		if err != nil {
			t.Fatalf("DecodeWAV: %v", err)
		}
		if buf.SampleRate != 44100 {
			t.Errorf("sample rate = %d, want 44100", buf.SampleRate)
		}
		if buf.Frames() != 2 {
			t.Fatalf("frames = %d, want 2", buf.Frames())
		}
		want := []float32{0.5, -0.5, 0.25, -0.25}
		for i, w := range want {
			if math.Abs(float64(buf.Samples[i]-w)) > 1e-4 {
				t.Errorf("sample %d = %v, want %v", i, buf.Samples[i], w)
			}
		}
	})

	t.Run("mono upmixes to stereo", func(t *testing.T) {
		wav := buildWAV(t, 1, 22050, []int16{16384, -16384})
		buf, err := DecodeWAV(bytes.NewReader(wav))
		if err != nil {
			t.Fatalf("DecodeWAV: %v", err)
		}
		if buf.Frames() != 2 {
			t.Fatalf("frames = %d, want 2", buf.Frames())
		}
		if buf.Samples[0] != buf.Samples[1] || buf.Samples[2] != buf.Samples[3] {
			t.Errorf("mono upmix should duplicate channels: %v", buf.Samples)
		}
	})

	t.Run("duration follows frame count and rate", func(t *testing.T) {
		pcm := make([]int16, 44100) // 1s mono at 44.1k
		wav := buildWAV(t, 1, 44100, pcm)
		buf, err := DecodeWAV(bytes.NewReader(wav))
		if err != nil {
			t.Fatalf("DecodeWAV: %v", err)
		}
		if got := buf.Duration(); got != time.Second {
			t.Errorf("duration = %v, want 1s", got)
		}
	})

	t.Run("rejects non-WAVE input", func(t *testing.T) {
		if _, err := DecodeWAV(bytes.NewReader([]byte("definitely not audio data"))); err == nil {
			t.Error("expected error for garbage input")
		}
	})

	t.Run("skips unknown chunks before data", func(t *testing.T) {
		wav := buildWAV(t, 1, 44100, []int16{1, 2, 3})
		// Splice a junk chunk between fmt and data.
		dataIdx := bytes.Index(wav, []byte("data"))
		junk := append([]byte("LIST"), 4, 0, 0, 0, 'j', 'u', 'n', 'k')
		spliced := append(append(append([]byte{}, wav[:dataIdx]...), junk...), wav[dataIdx:]...)

		buf, err := DecodeWAV(bytes.NewReader(spliced))
		if err != nil {
			t.Fatalf("DecodeWAV with LIST chunk: %v", err)
		}
		if buf.Frames() != 3 {
			t.Errorf("frames = %d, want 3", buf.Frames())
		}
	})
}
