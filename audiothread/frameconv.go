package audiothread

import (
	astiav "github.com/asticode/go-astiav"

	"github.com/bangnoise/gohap/audio"
)

// frameFromExtracted rebuilds a native astiav.Frame from a cached
// audio.Frame so it can be fed back through the resampler, which
// operates on astiav.Frame via the swr API. Callers must Free the
// returned frame once done with it.
func frameFromExtracted(f audio.Frame) *astiav.Frame {
	af := astiav.AllocFrame()
	af.SetSampleFormat(f.Format)
	af.SetSampleRate(f.SampleRate)
	af.SetChannelLayout(defaultLayoutFor(f.Channels))
	af.SetNbSamples(f.NumSamples)
	af.SetPts(f.PTS)
	if err := af.AllocBuffer(0); err != nil {
		af.Free()
		return nil
	}
	planes := 1
	if f.Format.Planar() {
		planes = f.Channels
	}
	for i := 0; i < planes; i++ {
		dst, err := af.Data().Bytes(i)
		if err != nil {
			continue
		}
		src := f.Plane(i)
		n := len(dst)
		if len(src) < n {
			n = len(src)
		}
		copy(dst[:n], src[:n])
	}
	return af
}

func defaultLayoutFor(channels int) astiav.ChannelLayout {
	if channels <= 1 {
		return astiav.ChannelLayoutMono
	}
	return astiav.ChannelLayoutStereo
}

// reverseFrame returns a copy of f with its sample order reversed
// along the time axis, used to play a cached frame backwards without
// re-decoding. Planar formats have each plane reversed independently;
// packed formats are reversed per interleaved sample group.
func reverseFrame(f audio.Frame) audio.Frame {
	out := f.Clone()
	bytesPerSample := bytesPerSampleFor(f.Format)
	if f.Format.Planar() {
		for p := 0; p < f.Channels; p++ {
			reverseInPlace(out.Plane(p), bytesPerSample)
		}
		return out
	}
	reverseInPlace(out.Plane(0), bytesPerSample*f.Channels)
	return out
}

func bytesPerSampleFor(format astiav.SampleFormat) int {
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

func reverseInPlace(b []byte, stride int) {
	if stride <= 0 {
		return
	}
	n := len(b) / stride
	tmp := make([]byte, stride)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		a := b[i*stride : i*stride+stride]
		c := b[j*stride : j*stride+stride]
		copy(tmp, a)
		copy(a, c)
		copy(c, tmp)
	}
}
