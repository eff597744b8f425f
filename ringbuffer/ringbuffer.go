// Package ringbuffer implements a lock-free single-producer,
// single-consumer ring buffer for interleaved float32 audio samples,
// sized in samples per channel so one writer goroutine (the audio
// worker) and one reader (the sound device callback) never block on
// each other.
package ringbuffer

import "sync/atomic"

// RingBuffer is a fixed-capacity circular buffer of interleaved
// float32 samples. It is safe for exactly one writer goroutine and one
// reader goroutine to use concurrently without further
// synchronization; it is not safe for multiple writers or multiple
// readers.
type RingBuffer struct {
	readStart  int64
	writeStart int64
	buffer     []float32
	channels   int
	samples    int
}

// New returns a RingBuffer holding up to samplesPerChannel samples of
// channels-channel interleaved audio. One slot is reserved internally
// to distinguish the empty and full states.
func New(channels, samplesPerChannel int) *RingBuffer {
	return &RingBuffer{
		buffer:   make([]float32, channels*(samplesPerChannel+1)),
		channels: channels,
		samples:  samplesPerChannel,
	}
}

// SamplesPerChannel returns the buffer's capacity.
func (r *RingBuffer) SamplesPerChannel() int {
	return r.samples
}

// WriteBegin returns up to two slices, first and second, covering the
// currently writable region: second is populated only when the
// writable region wraps past the end of the backing array. The
// caller fills some or all of the returned samples, then calls
// WriteEnd with the number of samples per channel actually written.
func (r *RingBuffer) WriteBegin() (first, second []float32) {
	writeStart := atomic.LoadInt64(&r.writeStart)
	readStart := atomic.LoadInt64(&r.readStart)

	writable := int64(r.samples) - (writeStart - readStart)
	writePosition := writeStart % int64(r.samples+1)

	firstCount := writable
	if max := int64(r.samples+1) - writePosition; firstCount > max {
		firstCount = max
	}
	secondCount := writable - firstCount

	first = r.buffer[writePosition*int64(r.channels) : writePosition*int64(r.channels)+firstCount*int64(r.channels)]
	second = r.buffer[0 : secondCount*int64(r.channels)]
	return first, second
}

// WriteEnd commits numSamples (per channel) of data previously written
// into the slices returned by WriteBegin.
func (r *RingBuffer) WriteEnd(numSamples int) {
	atomic.AddInt64(&r.writeStart, int64(numSamples))
}

// ReadBegin returns up to two slices, first and second, covering the
// currently readable region, analogous to WriteBegin.
func (r *RingBuffer) ReadBegin() (first, second []float32) {
	writeStart := atomic.LoadInt64(&r.writeStart)
	readStart := atomic.LoadInt64(&r.readStart)

	readable := writeStart - readStart
	readPosition := readStart % int64(r.samples+1)

	firstCount := readable
	if max := int64(r.samples+1) - readPosition; firstCount > max {
		firstCount = max
	}
	secondCount := readable - firstCount

	first = r.buffer[readPosition*int64(r.channels) : readPosition*int64(r.channels)+firstCount*int64(r.channels)]
	second = r.buffer[0 : secondCount*int64(r.channels)]
	return first, second
}

// ReadEnd releases numSamples (per channel) of data previously
// consumed from the slices returned by ReadBegin.
func (r *RingBuffer) ReadEnd(numSamples int) {
	atomic.AddInt64(&r.readStart, int64(numSamples))
}
