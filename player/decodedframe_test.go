package player

import (
	"testing"

	"github.com/bangnoise/gohap/hapdecode"
)

func TestPixelFormatOfMapsSupportedFormats(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   hapdecode.Format
		want texturePixelFormatWant
	}{
		{hapdecode.FormatRGBDXT1, texturePixelFormatWant{ok: true}},
		{hapdecode.FormatRGBADXT5, texturePixelFormatWant{ok: true}},
		{hapdecode.FormatYCoCgDXT5, texturePixelFormatWant{ok: true}},
		{hapdecode.FormatRGBBC7, texturePixelFormatWant{ok: false}},
		{hapdecode.FormatRGBABC7, texturePixelFormatWant{ok: false}},
		{hapdecode.FormatNone, texturePixelFormatWant{ok: false}},
	}
	for _, c := range cases {
		_, err := pixelFormatOf(c.in)
		if (err == nil) != c.want.ok {
			t.Errorf("pixelFormatOf(%v): err = %v, want ok=%v", c.in, err, c.want.ok)
		}
	}
}

// texturePixelFormatWant avoids importing the texture package's
// PixelFormat values directly in the table above; only whether the
// mapping succeeds is under test here.
type texturePixelFormatWant struct {
	ok bool
}

func TestLoopStateRoundTripsThroughClockMode(t *testing.T) {
	t.Parallel()
	for _, ls := range []LoopState{LoopNone, LoopNormal, LoopPalindrome} {
		if got := clockModeToLoopState(ls.toClockMode()); got != ls {
			t.Errorf("round trip of %v produced %v", ls, got)
		}
	}
}
