package engine

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// RenderFunc fills an interleaved stereo float32 buffer. It runs on the audio
// callback path and must not block.
type RenderFunc func(out []float32)

// OutputDevice abstracts the audio output so the engines' DSP and state
// machines are testable without hardware. Exactly one device should be open
// per player; Close must fully release the backend before a new device is
// created, or double-audio results.
type OutputDevice interface {
	// Start opens the output stream and begins pulling from render.
	Start(sampleRate float64, framesPerBuffer int, render RenderFunc) error
	// Stop halts the stream but keeps the device usable.
	Stop() error
	// Close releases the device.
	Close() error
}

// paRefs counts open portaudio devices so Initialize/Terminate pair up across
// the two players sharing the host API.
var (
	paMu   sync.Mutex
	paRefs int
)

// PortAudioDevice renders through the default host output via portaudio.
type PortAudioDevice struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	render RenderFunc
}

// NewPortAudioDevice acquires the portaudio host API.
func NewPortAudioDevice() (*PortAudioDevice, error) {
	paMu.Lock()
	defer paMu.Unlock()
	if paRefs == 0 {
		if err := portaudio.Initialize(); err != nil {
			return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
		}
	}
	paRefs++
	return &PortAudioDevice{}, nil
}

// Start opens a stereo output stream on the default device.
func (d *PortAudioDevice) Start(sampleRate float64, framesPerBuffer int, render RenderFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream != nil {
		return nil // already running
	}
	d.render = render

	stream, err := portaudio.OpenDefaultStream(0, 2, sampleRate, framesPerBuffer,
		func(out []float32) {
			d.render(out)
		})
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	d.stream = stream
	return nil
}

// Stop halts the stream; Start may be called again afterwards.
func (d *PortAudioDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream == nil {
		return nil
	}
	if err := d.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop output stream: %w", err)
	}
	if err := d.stream.Close(); err != nil {
		return fmt.Errorf("failed to close output stream: %w", err)
	}
	d.stream = nil
	return nil
}

// Close stops the stream and releases the host API reference.
func (d *PortAudioDevice) Close() error {
	if err := d.Stop(); err != nil {
		return err
	}
	paMu.Lock()
	defer paMu.Unlock()
	if paRefs > 0 {
		paRefs--
		if paRefs == 0 {
			if err := portaudio.Terminate(); err != nil {
				return fmt.Errorf("failed to terminate portaudio: %w", err)
			}
		}
	}
	return nil
}
