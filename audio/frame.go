package audio

import (
	"fmt"

	astiav "github.com/asticode/go-astiav"
	"github.com/bangnoise/gohap/timerange"
)

// Frame is a decoded audio frame with its sample data copied out of
// astiav's native (reused) buffers, so it can be safely stored in a
// cache across the lifetime of the astiav.Frame it was extracted from.
type Frame struct {
	PTS        int64
	NumSamples int
	SampleRate int
	Channels   int
	Format     astiav.SampleFormat
	planes     [][]byte
}

// ExtractFrame copies src's sample data and metadata into an
// independent Frame.
func ExtractFrame(src *astiav.Frame) (Frame, error) {
	f := Frame{
		PTS:        src.Pts(),
		NumSamples: src.NbSamples(),
		SampleRate: src.SampleRate(),
		Channels:   src.ChannelLayout().Channels(),
		Format:     src.SampleFormat(),
	}
	planes := 1
	if src.SampleFormat().Planar() {
		planes = f.Channels
	}
	f.planes = make([][]byte, planes)
	for i := 0; i < planes; i++ {
		b, err := src.Data().Bytes(i)
		if err != nil {
			return Frame{}, fmt.Errorf("audio: Data().Bytes(%d): %w", i, err)
		}
		cp := make([]byte, len(b))
		copy(cp, b)
		f.planes[i] = cp
	}
	return f, nil
}

// Plane returns the i'th data plane (0 for packed formats).
func (f Frame) Plane(i int) []byte {
	return f.planes[i]
}

// Range implements cache.Item: the frame covers [PTS, PTS+NumSamples).
func (f Frame) Range() timerange.TimeRange {
	return timerange.New(f.PTS, int64(f.NumSamples))
}

// Clone implements cache.Item. The underlying byte planes are already
// independently owned, so a value copy is a correct, independent
// clone as long as callers treat cached frames as read-only.
func (f Frame) Clone() Frame {
	return f
}
