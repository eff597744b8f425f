// Package audiothread runs the audio worker: a goroutine owning its
// own decoder, resampler, decoded-frame cache and playback clock
// snapshot, filling a lock-free ring buffer the audio output callback
// drains independently.
package audiothread

import (
	"log"
	"math"
	"runtime"
	"time"

	astiav "github.com/asticode/go-astiav"

	"github.com/bangnoise/gohap/audio"
	"github.com/bangnoise/gohap/cache"
	"github.com/bangnoise/gohap/clock"
	"github.com/bangnoise/gohap/movietime"
	"github.com/bangnoise/gohap/ringbuffer"
	"github.com/bangnoise/gohap/timerange"
)

const notPTS = int64(-1) << 63

// rampDurationMs is the fade-in/fade-out duration applied at the start
// and end of each playback leg.
const rampDurationMs = 20

// Receiver is notified of audio worker lifecycle events and errors.
// Its methods are called from the worker goroutine.
type Receiver interface {
	Error(err error)
	StartAudio()
	StopAudio()
}

type actionKind int

const (
	actionSend actionKind = iota
	actionFlush
)

type action struct {
	kind   actionKind
	packet *astiav.Packet
}

type syncRequest struct {
	clock *clock.Clock
	soft  bool
}

// AudioThread owns the decode -> cache -> resample -> ring-buffer
// pipeline for one audio stream.
type AudioThread struct {
	mu       chanMutex
	actions  []action
	sync     *syncRequest
	finish   bool
	done     chan struct{}
	wake     chan struct{}

	receiver Receiver
	ring     *ringbuffer.RingBuffer

	decoder    *audio.Decoder
	resampler  *audio.Resampler
	frameCache *cache.Cache[audio.Frame]
	fader      Fader

	outRate  int
	channels int
	cacheUS  int

	playClock *clock.Clock
	last      int64 // output-rate sample playhead, or notPTS
	current   timerange.TimeRange
	streamStart, streamDuration int64

	reversed     audio.Frame
	reversedFrom int64
	haveReversed bool

	bufferSamples int64

	// legSamples counts output samples written since the fader's
	// current ramps were installed (leg start, or the last sync),
	// so Fader.Apply evaluates against the leg's own timeline instead
	// of restarting at each fillSegment wake cycle.
	legSamples int64
}

// chanMutex is a trivial mutex built on a buffered channel so the
// worker can select between "new work arrived" and "timeout elapsed"
// without a separate condition-variable type; New() seeds it unlocked.
type chanMutex chan struct{}

func newChanMutex() chanMutex {
	c := make(chanMutex, 1)
	c <- struct{}{}
	return c
}

func (m chanMutex) Lock()   { <-m }
func (m chanMutex) Unlock() { m <- struct{}{} }

// Params bundles the construction-time parameters of an AudioThread.
type Params struct {
	CodecParameters *astiav.CodecParameters
	CacheMicros     int
	Start, Duration int64
	OutSampleRate   int
	Channels        int
	Ring            *ringbuffer.RingBuffer
}

// New opens the decoder and starts the worker goroutine.
func New(p Params, receiver Receiver) (*AudioThread, error) {
	dec, err := audio.NewDecoder(audio.Parameters{
		CodecParameters: p.CodecParameters,
		CacheMicros:     p.CacheMicros,
		Start:           p.Start,
		Duration:        p.Duration,
	})
	if err != nil {
		return nil, err
	}
	at := &AudioThread{
		mu:          newChanMutex(),
		done:        make(chan struct{}),
		wake:        make(chan struct{}, 1),
		receiver:    receiver,
		ring:        p.Ring,
		decoder:     dec,
		resampler:   audio.NewResampler(p.OutSampleRate, p.Channels),
		frameCache:  cache.New[audio.Frame](),
		outRate:     p.OutSampleRate,
		channels:    p.Channels,
		cacheUS:     p.CacheMicros,
		playClock:   clock.New(),
		last:        notPTS,
		streamStart: p.Start,
		streamDuration: p.Duration,
		bufferSamples: int64(p.Ring.SamplesPerChannel()),
	}
	go at.threadMain()
	return at, nil
}

func (at *AudioThread) poke() {
	select {
	case at.wake <- struct{}{}:
	default:
	}
}

// Send enqueues a compressed packet for decode. A nil packet signals
// end of stream. The worker takes ownership of packet and frees it
// after decode; callers must pass a clone (Ref'd from the demuxer's
// reused packet), never the demuxer's own packet.
func (at *AudioThread) Send(packet *astiav.Packet) {
	at.mu.Lock()
	at.actions = append(at.actions, action{kind: actionSend, packet: packet})
	at.mu.Unlock()
	at.poke()
}

// EndOfStream is equivalent to Send(nil).
func (at *AudioThread) EndOfStream() {
	at.Send(nil)
}

// Flush discards buffered decode state, for use after a discontinuity.
func (at *AudioThread) Flush() {
	at.mu.Lock()
	at.actions = append(at.actions, action{kind: actionFlush})
	at.mu.Unlock()
	at.poke()
}

// Sync replaces the worker's private clock snapshot. soft preserves
// the playhead (pause/unpause, rate change); hard (soft==false)
// invalidates it, as after a seek.
func (at *AudioThread) Sync(c *clock.Clock, soft bool) {
	snapshot := *c
	at.mu.Lock()
	at.sync = &syncRequest{clock: &snapshot, soft: soft}
	at.mu.Unlock()
	at.poke()
}

// SetVolume adjusts the resampler's linear gain.
func (at *AudioThread) SetVolume(v float32) {
	at.mu.Lock()
	at.resampler.SetVolume(v)
	at.mu.Unlock()
}

// Close stops the worker goroutine and waits for it to exit.
func (at *AudioThread) Close() {
	at.mu.Lock()
	at.finish = true
	at.mu.Unlock()
	at.poke()
	<-at.done
}

func (at *AudioThread) threadMain() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	tuneThreadPriority()

	defer close(at.done)
	defer at.decoder.Close()
	defer at.resampler.Close()

	frame := astiav.AllocFrame()
	defer frame.Free()

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		at.mu.Lock()
		finish := at.finish
		actions := at.actions
		at.actions = nil
		syncReq := at.sync
		at.sync = nil
		at.mu.Unlock()

		if finish {
			return
		}

		for _, act := range actions {
			at.handleAction(act, frame)
		}
		if syncReq != nil {
			at.handleSync(syncReq)
		}

		now := time.Now().UnixMicro()
		expected := rescaleRate(now, 1000000, at.outRate)
		at.pruneCache(expected)
		at.checkDrift(expected)

		wasEmpty := at.ringIsEmpty()
		wroteAny := false
		if at.playClock != nil && !at.playClock.GetPaused() {
			wroteAny = at.fill()
		}
		if wasEmpty && wroteAny {
			at.receiver.StartAudio()
		} else if !wasEmpty && at.ringIsEmpty() {
			at.receiver.StopAudio()
		}

		timer.Reset(at.waitDuration())
		select {
		case <-at.wake:
			if !timer.Stop() {
				<-timer.C
			}
		case <-timer.C:
		}
	}
}

func (at *AudioThread) waitDuration() time.Duration {
	if at.outRate <= 0 {
		return 10 * time.Millisecond
	}
	halfBuffer := time.Duration(at.bufferSamples) * time.Second / time.Duration(at.outRate) / 2
	if halfBuffer <= 0 {
		return time.Millisecond
	}
	return halfBuffer
}

func (at *AudioThread) handleAction(act action, frame *astiav.Frame) {
	if act.kind == actionFlush {
		at.decoder.Flush()
		at.frameCache.Cache()
		return
	}
	// actionSend: act.packet is a clone the caller Ref'd for us; we
	// own it for the duration of this call only.
	if err := at.decoder.Send(act.packet); err != nil {
		at.receiver.Error(err)
	}
	if act.packet != nil {
		defer act.packet.Free()
	}
	for {
		if err := at.decoder.Receive(frame); err != nil {
			break
		}
		f, err := audio.ExtractFrame(frame)
		frame.Unref()
		if err != nil {
			at.receiver.Error(err)
			continue
		}
		at.frameCache.Store(f)
	}
	if act.packet == nil {
		at.frameCache.Cache()
	}
}

func (at *AudioThread) handleSync(req *syncRequest) {
	at.playClock = req.clock
	at.resampler.SetRate(float32(math.Abs(req.clock.GetRate())))
	if req.soft {
		at.installRampIn(0)
	} else {
		at.last = notPTS
		at.current = timerange.TimeRange{}
	}
}

func (at *AudioThread) pruneCache(expected int64) {
	lo := expected - int64(at.cacheUS)
	hi := expected + 2*int64(at.cacheUS)
	window := timerange.New(lo, hi-lo)
	set := &timerange.Set{}
	set.Add(window)
	at.frameCache.Limit(set)
}

func (at *AudioThread) ringIsEmpty() bool {
	f, s := at.ring.ReadBegin()
	return len(f)+len(s) == 0
}

func (at *AudioThread) installRampIn(atSample int64) {
	at.fader.Clear()
	rampSamples := int64(at.outRate) * rampDurationMs / 1000
	at.fader.RampIn(atSample, rampSamples)
	at.legSamples = atSample
}

// fill writes as much output as is available into the ring buffer,
// returning whether anything was written.
func (at *AudioThread) fill() bool {
	first, second := at.ring.WriteBegin()
	at.fillSegment(first)
	at.fillSegment(second)
	written := len(first)/at.channels + len(second)/at.channels
	at.ring.WriteEnd(written)
	return written > 0
}

func (at *AudioThread) fillSegment(seg []float32) bool {
	if len(seg) == 0 {
		return false
	}
	frames := len(seg) / at.channels
	wrote := false
	for i := 0; i < frames; {
		if at.current.Length == 0 {
			next := movietime.NextRange(at.playClock, at.wallNowForPlayhead(), at.playClock.Period)
			at.current = next
			at.installRampIn(0)
			rampSamples := int64(at.outRate) * rampDurationMs / 1000
			legLen := next.Length
			if legLen < 0 {
				legLen = -legLen
			}
			if legLen > rampSamples {
				at.fader.RampOut(legLen-rampSamples, rampSamples)
			}
		}

		if at.current.Start < at.streamStart || at.current.Start > at.streamStart+at.streamDuration {
			seg[i*at.channels] = 0
			if at.channels > 1 {
				seg[i*at.channels+1] = 0
			}
			at.advancePlayhead(1)
			at.legSamples++
			i++
			wrote = true
			continue
		}

		f, ok := at.frameCache.Fetch(at.current.Start)
		if !ok {
			seg[i*at.channels] = 0
			if at.channels > 1 {
				seg[i*at.channels+1] = 0
			}
			at.advancePlayhead(1)
			at.legSamples++
			i++
			wrote = true
			continue
		}

		backward := at.current.Length < 0
		src := f
		if backward {
			src = at.reversedOf(f)
		}
		offset := at.current.Start - src.PTS
		if backward {
			offset = src.PTS + int64(src.NumSamples) - 1 - at.current.Start
		}
		if offset < 0 || offset >= int64(src.NumSamples) {
			i++
			continue
		}

		legRemaining := at.current.Length
		if legRemaining < 0 {
			legRemaining = -legRemaining
		}
		frameRemaining := int64(src.NumSamples) - offset
		dstRemaining := int64(frames - i)
		bound := legRemaining
		if frameRemaining < bound {
			bound = frameRemaining
		}
		if dstRemaining < bound {
			bound = dstRemaining
		}
		if bound <= 0 {
			i++
			continue
		}

		nativeFrame := frameFromExtracted(src)
		if nativeFrame == nil {
			i++
			continue
		}
		samples, err := at.resampler.Resample(nativeFrame, int(offset), int(bound), int(bound))
		nativeFrame.Free()
		if err != nil {
			at.receiver.Error(err)
			i++
			continue
		}
		n := len(samples) / at.channels
		if n == 0 {
			i++
			continue
		}
		copyN := n
		if copyN > frames-i {
			copyN = frames - i
		}
		copy(seg[i*at.channels:(i+copyN)*at.channels], samples[:copyN*at.channels])
		at.fader.Apply(seg[i*at.channels:(i+copyN)*at.channels], at.channels, at.legSamples)
		at.legSamples += int64(copyN)
		at.advancePlayhead(bound)
		i += copyN
		wrote = true
	}
	return wrote
}

func (at *AudioThread) wallNowForPlayhead() int64 {
	if at.last == notPTS {
		return rescaleRate(time.Now().UnixMicro(), 1000000, at.outRate)
	}
	return at.last
}

func (at *AudioThread) advancePlayhead(n int64) {
	if at.last == notPTS {
		at.last = at.current.Start
	}
	if at.current.Length < 0 {
		at.current.Start -= n
		at.current.Length += n
	} else {
		at.current.Start += n
		at.current.Length -= n
	}
	at.last += n
}

func (at *AudioThread) reversedOf(f audio.Frame) audio.Frame {
	if at.haveReversed && at.reversedFrom == f.PTS {
		return at.reversed
	}
	at.reversed = reverseFrame(f)
	at.reversedFrom = f.PTS
	at.haveReversed = true
	return at.reversed
}

// checkDrift resets the playhead if it has diverged from expected wall
// time beyond tolerance, per the drift-correction rule: ahead
// tolerance is double the behind tolerance.
func (at *AudioThread) checkDrift(expected int64) {
	if at.last == notPTS {
		return
	}
	diff := at.last - expected
	if diff > 2*at.bufferSamples || -diff > at.bufferSamples {
		at.last = expected
		at.current = timerange.TimeRange{}
		log.Printf("audiothread: drift correction, resetting playhead to expected %d", expected)
	}
}

func rescaleRate(v int64, fromRate, toRate int) int64 {
	if fromRate == toRate {
		return v
	}
	return v * int64(toRate) / int64(fromRate)
}
