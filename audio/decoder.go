// Package audio wraps astiav's audio codec context and software
// resample context, giving the audio worker a decode-then-resample
// pipeline independent of the demuxer.
package audio

import (
	"fmt"

	astiav "github.com/asticode/go-astiav"
)

// Parameters describes the audio stream being decoded, plus how much
// of the timeline either side of "now" the audio worker should keep
// cached.
type Parameters struct {
	CodecParameters *astiav.CodecParameters
	CacheMicros     int
	Start, Duration int64
}

// Decoder wraps an astiav audio CodecContext opened from Parameters.
type Decoder struct {
	ctx *astiav.CodecContext
}

// NewDecoder opens a decoder for params.CodecParameters.
func NewDecoder(params Parameters) (*Decoder, error) {
	dec := astiav.FindDecoder(params.CodecParameters.CodecID())
	if dec == nil {
		return nil, fmt.Errorf("audio: FindDecoder(%s): not found", params.CodecParameters.CodecID())
	}
	ctx := astiav.AllocCodecContext(dec)
	if ctx == nil {
		return nil, fmt.Errorf("audio: AllocCodecContext failed")
	}
	if err := params.CodecParameters.ToCodecContext(ctx); err != nil {
		ctx.Free()
		return nil, fmt.Errorf("audio: ToCodecContext: %w", err)
	}
	if err := ctx.Open(dec, nil); err != nil {
		ctx.Free()
		return nil, fmt.Errorf("audio: Open: %w", err)
	}
	return &Decoder{ctx: ctx}, nil
}

// Send feeds a compressed packet into the decoder. A nil packet
// signals end of stream and flushes buffered frames.
func (d *Decoder) Send(packet *astiav.Packet) error {
	return d.ctx.SendPacket(packet)
}

// Receive retrieves the next decoded frame. It returns
// astiav.ErrEagain when the decoder needs another packet before it can
// produce more output.
func (d *Decoder) Receive(frame *astiav.Frame) error {
	return d.ctx.ReceiveFrame(frame)
}

// Flush discards any buffered packets/frames, for use after a seek.
func (d *Decoder) Flush() {
	d.ctx.FlushBuffers()
}

// Close releases the underlying codec context.
func (d *Decoder) Close() {
	if d.ctx != nil {
		d.ctx.Free()
		d.ctx = nil
	}
}

// SampleRate returns the decoder's input sample rate.
func (d *Decoder) SampleRate() int {
	return d.ctx.SampleRate()
}

// ChannelLayout returns the decoder's input channel layout.
func (d *Decoder) ChannelLayout() astiav.ChannelLayout {
	return d.ctx.ChannelLayout()
}

// SampleFormat returns the decoder's input sample format.
func (d *Decoder) SampleFormat() astiav.SampleFormat {
	return d.ctx.SampleFormat()
}
