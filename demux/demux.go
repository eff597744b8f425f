// Package demux runs a dedicated goroutine that opens a movie file
// with astiav, classifies its streams, and serves an action queue of
// read/seek requests from the player and the audio worker.
package demux

import (
	"errors"
	"log"
	"sync"

	astiav "github.com/asticode/go-astiav"

	"github.com/bangnoise/gohap/errs"
)

// avTimeBase is AV_TIME_BASE: the 1/1000000 second unit foundMovie's
// duration and read/seek positions are expressed in.
var avTimeBase = astiav.NewRational(1, 1000000)

// notPTS mirrors AV_NOPTS_VALUE: "no time known yet".
const notPTS = int64(-1) << 63

// PacketReceiver is notified of everything the demuxer goroutine
// discovers and reads; its methods are called from the demuxer
// goroutine and must not block on the caller of Read/SeekTime/
// SeekFrame/Cancel, or the two will deadlock against each other.
type PacketReceiver interface {
	FoundMovie(duration int64)
	FoundStream(stream *astiav.Stream)
	FoundAllStreams()
	ReadPacket(packet *astiav.Packet)
	Discontinuity()
	EndMovie()
	Error(err error)
}

type actionKind int

const (
	actionSeekTime actionKind = iota
	actionSeekFrame
	actionRead
	actionCancel
)

type action struct {
	kind actionKind
	pts  int64
}

// Demuxer owns a goroutine that holds the astiav.FormatContext for one
// open movie and serves read and seek requests against it in order.
type Demuxer struct {
	mu       sync.Mutex
	cond     *sync.Cond
	actions  []action
	finish   bool
	active   bool
	lastRead int64
	lastSeek int64

	done chan struct{}
}

// Open starts the demuxer goroutine against movie, reporting stream
// discovery and packets to receiver. The goroutine runs until Close is
// called.
func Open(movie string, receiver PacketReceiver) *Demuxer {
	d := &Demuxer{
		lastRead: notPTS,
		lastSeek: notPTS,
		done:     make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)
	go d.threadMain(movie, receiver)
	return d
}

// Close stops the demuxer goroutine and waits for it to exit.
func (d *Demuxer) Close() {
	d.mu.Lock()
	d.finish = true
	d.cond.Signal()
	d.mu.Unlock()
	<-d.done
}

// Read requests the demuxer read at least up to pts (AV_TIME_BASE).
func (d *Demuxer) Read(pts int64) {
	d.mu.Lock()
	d.lastRead = pts
	d.actions = append(d.actions, action{kind: actionRead, pts: pts})
	d.active = true
	d.cond.Signal()
	d.mu.Unlock()
}

// GetLastReadTime returns the pts of the most recent Read call. Not
// safe to call concurrently with Read; callers serialize it the way
// the original restricts it to the thread that calls Read.
func (d *Demuxer) GetLastReadTime() int64 {
	return d.lastRead
}

// SeekTime queues a seek to time (AV_TIME_BASE) behind any actions
// already queued, and clears the time GetLastReadTime reports.
func (d *Demuxer) SeekTime(t int64) {
	d.mu.Lock()
	d.lastSeek = t
	d.lastRead = notPTS
	d.actions = append(d.actions, action{kind: actionSeekTime, pts: t})
	d.active = true
	d.cond.Signal()
	d.mu.Unlock()
}

// GetLastSeekTime returns the pts of the most recent SeekTime call.
func (d *Demuxer) GetLastSeekTime() int64 {
	return d.lastSeek
}

// SeekFrame requests a seek to the given frame number of the kept
// video stream.
func (d *Demuxer) SeekFrame(frame int64) {
	d.mu.Lock()
	d.actions = append(d.actions, action{kind: actionSeekFrame, pts: frame})
	d.active = true
	d.cond.Signal()
	d.mu.Unlock()
}

// Cancel discards any actions queued but not yet started.
func (d *Demuxer) Cancel() {
	d.mu.Lock()
	d.actions = append(d.actions, action{kind: actionCancel})
	d.cond.Signal()
	d.mu.Unlock()
}

// IsActive reports whether a read or seek is in progress or queued.
func (d *Demuxer) IsActive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

func (d *Demuxer) threadMain(movie string, receiver PacketReceiver) {
	defer close(d.done)

	fc := astiav.AllocFormatContext()
	if fc == nil {
		receiver.Error(errs.New(errs.FormatError, "demux: AllocFormatContext failed"))
		return
	}
	defer fc.Free()

	if err := fc.OpenInput(movie, nil, nil); err != nil {
		receiver.Error(errs.Wrap(errs.FormatError, "demux: OpenInput", err))
		return
	}
	defer fc.CloseInput()

	if err := fc.FindStreamInfo(nil); err != nil {
		receiver.Error(errs.Wrap(errs.FormatError, "demux: FindStreamInfo", err))
		return
	}

	receiver.FoundMovie(fc.Duration())

	videoIndex, audioIndex := classifyStreams(fc)
	if videoIndex < 0 {
		receiver.Error(errs.New(errs.FormatError, "demux: no Hap video stream found"))
		return
	}
	receiver.FoundStream(fc.Streams()[videoIndex])
	if audioIndex >= 0 {
		receiver.FoundStream(fc.Streams()[audioIndex])
	}
	receiver.FoundAllStreams()

	var (
		localActions          []action
		lastReadVideo         = notPTS
		lastReadAudio         = notPTS
		videoTB               = fc.Streams()[videoIndex].TimeBase()
		audioTB               astiav.Rational
		finish                bool
	)
	if audioIndex >= 0 {
		audioTB = fc.Streams()[audioIndex].TimeBase()
	}

	pkt := astiav.AllocPacket()
	defer pkt.Free()

	for !finish {
		if len(localActions) > 0 {
			act := localActions[0]
			var result error

			switch act.kind {
			case actionSeekFrame:
				result = fc.SeekFrame(videoIndex, act.pts, astiav.NewSeekFlags(astiav.SeekFlagFrame))
				lastReadVideo, lastReadAudio = notPTS, notPTS
				receiver.Discontinuity()
			case actionSeekTime:
				result = fc.SeekFrame(-1, act.pts, astiav.NewSeekFlags())
				lastReadVideo, lastReadAudio = notPTS, notPTS
				receiver.Discontinuity()
			case actionRead:
				needVideo := lastReadVideo == notPTS || lastReadVideo < act.pts
				needAudio := audioIndex >= 0 && (lastReadAudio == notPTS || lastReadAudio < act.pts)
				if needVideo || needAudio {
					pkt.Unref()
					result = fc.ReadFrame(pkt)
					if result == nil {
						receiver.ReadPacket(pkt)
						switch pkt.StreamIndex() {
						case videoIndex:
							lastReadVideo = rescaleToAVTimeBase(pkt.Pts()+pkt.Duration()-1, videoTB)
						case audioIndex:
							lastReadAudio = rescaleToAVTimeBase(pkt.Pts()+pkt.Duration()-1, audioTB)
						}
					} else if isEOF(result) {
						receiver.EndMovie()
					}
					pkt.Unref()
				}
			}

			doneWithAction := act.kind != actionRead || result != nil ||
				(lastReadVideo >= act.pts && (audioIndex < 0 || lastReadAudio >= act.pts))
			if doneWithAction {
				localActions = localActions[1:]
			}
			if result != nil && !isEOF(result) {
				receiver.Error(result)
			}
		}

		d.mu.Lock()
		finish = d.finish
		for len(d.actions) > 0 {
			next := d.actions[0]
			d.actions = d.actions[1:]
			if next.kind == actionCancel {
				localActions = nil
			} else {
				localActions = append(localActions, next)
			}
		}
		if len(localActions) == 0 {
			d.active = false
			if !finish {
				d.cond.Wait()
			}
		}
		d.mu.Unlock()
	}
}

// classifyStreams picks the first Hap-coded video stream to keep and
// the best audio stream to keep, discarding every other stream. It
// mirrors Demuxer.cpp's iteration: the first Hap video stream wins,
// ties in audio are broken by channel count then bit rate since
// astiav does not expose an av_find_best_stream equivalent.
func classifyStreams(fc *astiav.FormatContext) (videoIndex, audioIndex int) {
	videoIndex, audioIndex = -1, -1
	var bestChannels, bestBitRate int64

	for i, s := range fc.Streams() {
		par := s.CodecParameters()
		switch par.MediaType() {
		case astiav.MediaTypeVideo:
			if videoIndex == -1 && par.CodecID() == astiav.CodecIDHap {
				videoIndex = i
				continue
			}
			s.SetDiscard(astiav.DiscardAll)
		case astiav.MediaTypeAudio:
			channels := int64(par.ChannelLayout().Channels())
			bitRate := par.BitRate()
			if audioIndex == -1 || channels > bestChannels || (channels == bestChannels && bitRate > bestBitRate) {
				if audioIndex != -1 {
					fc.Streams()[audioIndex].SetDiscard(astiav.DiscardAll)
				}
				audioIndex = i
				bestChannels, bestBitRate = channels, bitRate
			} else {
				s.SetDiscard(astiav.DiscardAll)
			}
		default:
			s.SetDiscard(astiav.DiscardAll)
		}
	}
	if videoIndex == -1 {
		log.Printf("demux: no Hap-coded video stream in input")
	}
	return videoIndex, audioIndex
}

func rescaleToAVTimeBase(v int64, from astiav.Rational) int64 {
	return astiav.RescaleQ(v, from, avTimeBase)
}

func isEOF(err error) bool {
	return errors.Is(err, astiav.ErrEof)
}
