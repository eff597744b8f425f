package player

import (
	"fmt"

	"github.com/bangnoise/gohap/hapdecode"
	"github.com/bangnoise/gohap/texture"
)

// decodedFrame is the most recently block-decoded video frame: the
// raw, still block-compressed bytes a Texture.Upload call turns into
// a GPU-resident texture, deferred until the consumer actually asks
// for one via GetTexture.
type decodedFrame struct {
	pts, duration int64
	width, height int
	format        texture.PixelFormat
	bytes         []byte
	wantsUpload   bool
}

// pixelFormatOf maps the native decoder's per-block format tag to the
// GPU pixel format Texture.Upload expects. BC7 formats are reported by
// the decoder but have no corresponding GL path here: spec.md §9
// leaves Hap's BC7 (DX11) variant explicitly out of scope, so a BC7
// result surfaces as an error rather than a silent reinterpretation.
func pixelFormatOf(f hapdecode.Format) (texture.PixelFormat, error) {
	switch f {
	case hapdecode.FormatRGBDXT1:
		return texture.FormatRGBDXT1, nil
	case hapdecode.FormatRGBADXT5:
		return texture.FormatRGBADXT5, nil
	case hapdecode.FormatYCoCgDXT5:
		return texture.FormatYCoCgDXT5, nil
	default:
		return 0, fmt.Errorf("player: unsupported block format %v", f)
	}
}
