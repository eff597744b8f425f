package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	astiav "github.com/asticode/go-astiav"
)

// Resampler wraps an astiav software resample context, converting
// decoded frames to interleaved float32 at a fixed output sample rate
// and channel count, with an independently adjustable playback rate
// (resampling ratio) and volume (linear gain applied after convert).
type Resampler struct {
	swr    *astiav.SoftwareResampleContext
	dst    *astiav.Frame
	volume float32
	rate   float32

	outSampleRate int
	outChannels   int
	configured    bool
}

// NewResampler returns a Resampler targeting outSampleRate, mono or
// stereo per outChannels, at unity volume and rate.
func NewResampler(outSampleRate, outChannels int) *Resampler {
	return &Resampler{
		volume:        1.0,
		rate:          1.0,
		outSampleRate: outSampleRate,
		outChannels:   outChannels,
	}
}

// Volume returns the current linear gain.
func (r *Resampler) Volume() float32 { return r.volume }

// SetVolume sets the linear gain applied to resampled output.
func (r *Resampler) SetVolume(v float32) { r.volume = v }

// Rate returns the current resampling rate multiplier.
func (r *Resampler) Rate() float32 { return r.rate }

// SetRate adjusts the resampling ratio, forcing reconfiguration of the
// underlying swr context on the next Resample call.
func (r *Resampler) SetRate(rate float32) {
	if rate != r.rate {
		r.rate = rate
		r.configured = false
	}
}

func (r *Resampler) ensure(src *astiav.Frame) error {
	if r.configured && r.swr != nil {
		return nil
	}
	if r.swr != nil {
		r.swr.Free()
	}
	if r.dst != nil {
		r.dst.Free()
	}

	swr := astiav.AllocSoftwareResampleContext()
	if swr == nil {
		return fmt.Errorf("audio: AllocSoftwareResampleContext failed")
	}

	dst := astiav.AllocFrame()
	dst.SetSampleFormat(astiav.SampleFormatFlt)
	dst.SetSampleRate(int(float32(r.outSampleRate) / r.rate))
	dst.SetChannelLayout(defaultLayout(r.outChannels))

	r.swr = swr
	r.dst = dst
	r.configured = true
	return nil
}

// Resample converts srcLength samples of src starting at srcOffset,
// returning a freshly allocated slice of the interleaved float32
// samples produced, capped at dstLength output samples (pass a
// negative dstLength for no cap). Resampling from srcOffset rather
// than always from src's first sample lets a caller resume a frame
// that didn't fit entirely in the last call's output space.
func (r *Resampler) Resample(src *astiav.Frame, srcOffset, srcLength, dstLength int) ([]float32, error) {
	if srcLength <= 0 {
		return nil, nil
	}
	sub, err := subFrame(src, srcOffset, srcLength)
	if err != nil {
		return nil, err
	}
	defer sub.Free()

	if err := r.ensure(sub); err != nil {
		return nil, err
	}
	r.dst.Unref()
	r.dst.SetSampleFormat(astiav.SampleFormatFlt)
	r.dst.SetSampleRate(int(float32(r.outSampleRate) / r.rate))
	r.dst.SetChannelLayout(defaultLayout(r.outChannels))

	if err := r.swr.ConvertFrame(sub, r.dst); err != nil {
		return nil, fmt.Errorf("audio: ConvertFrame: %w", err)
	}

	raw, err := r.dst.Data().Bytes(0)
	if err != nil {
		return nil, fmt.Errorf("audio: Data().Bytes: %w", err)
	}
	out := bytesToFloat32(raw)
	if dstLength >= 0 && len(out) > dstLength*r.outChannels {
		out = out[:dstLength*r.outChannels]
	}
	if r.volume != 1.0 {
		for i := range out {
			out[i] *= r.volume
		}
	}
	return out, nil
}

// subFrame returns a newly allocated astiav.Frame holding the slice of
// src's samples [offset, offset+length), independently owned so it can
// be fed through swr without disturbing src. Callers must Free it.
func subFrame(src *astiav.Frame, offset, length int) (*astiav.Frame, error) {
	channels := src.ChannelLayout().Channels()
	planar := src.SampleFormat().Planar()
	bps := bytesPerSample(src.SampleFormat())

	out := astiav.AllocFrame()
	out.SetSampleFormat(src.SampleFormat())
	out.SetSampleRate(src.SampleRate())
	out.SetChannelLayout(src.ChannelLayout())
	out.SetNbSamples(length)
	out.SetPts(src.Pts() + int64(offset))
	if err := out.AllocBuffer(0); err != nil {
		out.Free()
		return nil, fmt.Errorf("audio: AllocBuffer: %w", err)
	}

	planes := 1
	stride := bps * channels
	if planar {
		planes = channels
		stride = bps
	}
	byteOffset := offset * stride
	byteLength := length * stride
	for i := 0; i < planes; i++ {
		srcBytes, err := src.Data().Bytes(i)
		if err != nil {
			out.Free()
			return nil, fmt.Errorf("audio: Data().Bytes(%d): %w", i, err)
		}
		if byteOffset+byteLength > len(srcBytes) {
			out.Free()
			return nil, fmt.Errorf("audio: subFrame range [%d,%d) out of bounds (len %d)", byteOffset, byteOffset+byteLength, len(srcBytes))
		}
		dstBytes, err := out.Data().Bytes(i)
		if err != nil {
			out.Free()
			return nil, fmt.Errorf("audio: Data().Bytes(%d): %w", i, err)
		}
		copy(dstBytes[:byteLength], srcBytes[byteOffset:byteOffset+byteLength])
	}
	return out, nil
}

// bytesPerSample returns the byte width of one (non-interleaved)
// sample in format.
func bytesPerSample(format astiav.SampleFormat) int {
	switch format {
	case astiav.SampleFormatU8, astiav.SampleFormatU8P:
		return 1
	case astiav.SampleFormatS16, astiav.SampleFormatS16P:
		return 2
	case astiav.SampleFormatS32, astiav.SampleFormatS32P,
		astiav.SampleFormatFlt, astiav.SampleFormatFltP:
		return 4
	case astiav.SampleFormatS64, astiav.SampleFormatS64P,
		astiav.SampleFormatDbl, astiav.SampleFormatDblP:
		return 8
	default:
		return 4
	}
}

// Close releases the resampler's native resources.
func (r *Resampler) Close() {
	if r.dst != nil {
		r.dst.Free()
		r.dst = nil
	}
	if r.swr != nil {
		r.swr.Free()
		r.swr = nil
	}
}

func defaultLayout(channels int) astiav.ChannelLayout {
	if channels <= 1 {
		return astiav.ChannelLayoutMono
	}
	return astiav.ChannelLayoutStereo
}

// bytesToFloat32 reinterprets a little-endian byte slice as float32
// samples without assuming the platform's native byte order, since the
// samples cross an FFI boundary.
func bytesToFloat32(b []byte) []float32 {
	n := len(b) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(b[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}
	return out
}
