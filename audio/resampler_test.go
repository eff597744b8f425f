package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestBytesToFloat32RoundTrips(t *testing.T) {
	t.Parallel()
	want := []float32{0, 1, -1, 0.5, -0.25, 3.14159}
	buf := make([]byte, 4*len(want))
	for i, v := range want {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	got := bytesToFloat32(buf)
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNewResamplerDefaults(t *testing.T) {
	t.Parallel()
	r := NewResampler(48000, 2)
	if r.Volume() != 1.0 {
		t.Errorf("Volume() = %v, want 1.0", r.Volume())
	}
	if r.Rate() != 1.0 {
		t.Errorf("Rate() = %v, want 1.0", r.Rate())
	}
	r.SetVolume(0.5)
	if r.Volume() != 0.5 {
		t.Errorf("Volume() after SetVolume = %v, want 0.5", r.Volume())
	}
}

func TestSetRateMarksReconfigure(t *testing.T) {
	t.Parallel()
	r := NewResampler(48000, 2)
	r.configured = true
	r.SetRate(2.0)
	if r.configured {
		t.Errorf("configured = true after SetRate with a new value, want false")
	}
	r.configured = true
	r.SetRate(2.0)
	if !r.configured {
		t.Errorf("configured = false after SetRate with the same value, want true (no-op)")
	}
}
