package audiothread

import (
	"testing"

	"github.com/bangnoise/gohap/audio"
	"github.com/bangnoise/gohap/cache"
	"github.com/bangnoise/gohap/clock"
	"github.com/bangnoise/gohap/ringbuffer"
)

type stubReceiver struct {
	errs []error
}

func (s *stubReceiver) Error(err error) { s.errs = append(s.errs, err) }
func (s *stubReceiver) StartAudio()     {}
func (s *stubReceiver) StopAudio()      {}

func newTestThread(t *testing.T, outRate int, bufferSamples int64) *AudioThread {
	t.Helper()
	c := clock.New()
	c.Period = 48000 * 10
	c.SyncAt(0, 0)

	return &AudioThread{
		mu:            newChanMutex(),
		done:          make(chan struct{}),
		wake:          make(chan struct{}, 1),
		receiver:      &stubReceiver{},
		ring:          ringbuffer.New(2, int(bufferSamples)),
		frameCache:    cache.New[audio.Frame](),
		resampler:     audio.NewResampler(outRate, 2),
		outRate:       outRate,
		channels:      2,
		cacheUS:       500000,
		playClock:     c,
		last:          notPTS,
		streamStart:   0,
		streamDuration: 48000 * 10,
		bufferSamples: bufferSamples,
	}
}

func TestHandleSyncWiresClockRateIntoResampler(t *testing.T) {
	t.Parallel()
	at := newTestThread(t, 48000, 256)

	c := clock.New()
	c.Period = 48000 * 10
	c.SyncAt(0, 0)
	c.SetRateAt(2.0, 0)

	at.handleSync(&syncRequest{clock: c, soft: true})

	if got := at.resampler.Rate(); got != 2.0 {
		t.Errorf("resampler.Rate() = %v after handleSync, want 2.0", got)
	}
	if at.legSamples != 0 {
		t.Errorf("legSamples = %d after soft sync, want 0", at.legSamples)
	}
}

func TestHandleSyncUsesAbsoluteRateForReversePlayback(t *testing.T) {
	t.Parallel()
	at := newTestThread(t, 48000, 256)

	c := clock.New()
	c.Period = 48000 * 10
	c.SyncAt(0, 0)
	c.SetRateAt(-1.5, 0)

	at.handleSync(&syncRequest{clock: c, soft: true})

	if got := at.resampler.Rate(); got != 1.5 {
		t.Errorf("resampler.Rate() = %v after handleSync with reverse rate, want 1.5 (absolute value)", got)
	}
}

func TestDriftResyncResetsPlayheadAndFillsBuffer(t *testing.T) {
	t.Parallel()
	const bufferSamples = int64(256)
	at := newTestThread(t, 48000, bufferSamples)

	const expected = int64(1_000_000)
	at.last = expected - 2*bufferSamples
	at.current.Length = 0

	at.checkDrift(expected)

	if at.last != expected {
		t.Fatalf("checkDrift did not reset last: got %d, want %d", at.last, expected)
	}
	if at.current.Length != 0 {
		t.Fatalf("checkDrift did not invalidate current: got %+v", at.current)
	}

	wrote := at.fill()
	if !wrote {
		t.Fatalf("fill() reported nothing written after drift resync")
	}

	first, second := at.ring.ReadBegin()
	got := int64(len(first)+len(second)) / int64(at.channels)
	if got != bufferSamples {
		t.Fatalf("fill() produced %d frames, want exactly %d (buffer capacity, counting silence)", got, bufferSamples)
	}
}

func TestDriftCheckLeavesPlayheadWhenWithinTolerance(t *testing.T) {
	t.Parallel()
	const bufferSamples = int64(256)
	at := newTestThread(t, 48000, bufferSamples)

	const expected = int64(1_000_000)
	at.last = expected - bufferSamples/2 // within the (bufferSamples) behind-tolerance

	at.checkDrift(expected)

	if at.last == expected {
		t.Fatalf("checkDrift reset last when diff was within tolerance")
	}
}
