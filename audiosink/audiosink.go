// Package audiosink implements the audio output device shim spec.md
// §6 leaves as a named interface, backed by a real sound device via
// hajimehoshi/oto/v2.
package audiosink

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/hajimehoshi/oto/v2"

	"github.com/bangnoise/gohap/ringbuffer"
)

// Output drives one oto/v2 player pulling interleaved float32 samples
// from a RingBuffer, converting them to the little-endian PCM bytes
// oto expects.
type Output struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player oto.Player
	source *ringReader

	sampleRate int
	channels   int
}

// commonRates lists sample rates devices are typically asked to
// support, in descending order, for NegotiateRate to pick from.
var commonRates = []int{192000, 96000, 48000, 44100, 32000, 22050, 16000, 11025, 8000}

// NegotiateRate returns the largest rate in commonRates no greater
// than requested, or requested itself if none qualifies (a source
// rate below the lowest common rate is passed through unchanged).
func NegotiateRate(requested int) int {
	for _, r := range commonRates {
		if r <= requested {
			return r
		}
	}
	return requested
}

// Configure opens an oto context for sampleRate/channels and prepares
// (but does not start) a player pulling from ring. sampleRate should
// already have been passed through NegotiateRate.
func Configure(sampleRate, channels int, ring *ringbuffer.RingBuffer) (*Output, error) {
	ctx, ready, err := oto.NewContext(sampleRate, channels, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("audiosink: oto.NewContext: %w", err)
	}
	go func() {
		<-ready
		log.Printf("audiosink: output context ready (%d Hz, %d ch)", sampleRate, channels)
	}()

	src := &ringReader{ring: ring, channels: channels}
	return &Output{
		ctx:        ctx,
		player:     ctx.NewPlayer(src),
		source:     src,
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

// Start begins (or resumes) playback.
func (o *Output) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.player.Play()
}

// Stop pauses playback without releasing the device.
func (o *Output) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.player.Pause()
}

// IsPlaying reports whether the device is actively pulling samples.
func (o *Output) IsPlaying() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.player.IsPlaying()
}

// Close releases the player and its device resources.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.player.Close()
}

// ringReader adapts a RingBuffer to io.Reader, the pull interface
// oto/v2's player expects; an empty ring buffer reads as silence
// rather than blocking, so a stalled audio worker degrades the device
// output instead of stalling the callback.
type ringReader struct {
	ring     *ringbuffer.RingBuffer
	channels int
}

func (r *ringReader) Read(p []byte) (int, error) {
	const bytesPerSample = 4
	frameBytes := bytesPerSample * r.channels
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}

	first, second := r.ring.ReadBegin()
	available := (len(first) + len(second)) / r.channels
	toRead := frames
	if toRead > available {
		toRead = available
	}
	floatsNeeded := toRead * r.channels

	encoded := 0
	encoded += encodeSamples(p[encoded*4:], first[:min(len(first), floatsNeeded)])
	if encoded < floatsNeeded {
		remaining := floatsNeeded - encoded
		encoded += encodeSamples(p[encoded*4:], second[:min(len(second), remaining)])
	}
	r.ring.ReadEnd(toRead)

	// Pad any requested-but-unavailable samples with silence so the
	// player never blocks on a starved producer.
	for i := encoded * 4; i < frames*r.channels*4; i++ {
		p[i] = 0
	}
	return frames * frameBytes, nil
}

// encodeSamples writes src (interleaved float32) into dst as
// little-endian 32-bit floats, returning the number of samples
// written.
func encodeSamples(dst []byte, src []float32) int {
	for i, v := range src {
		binary.LittleEndian.PutUint32(dst[i*4:i*4+4], math.Float32bits(v))
	}
	return len(src)
}
