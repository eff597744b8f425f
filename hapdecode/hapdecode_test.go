package hapdecode

import (
	"context"
	"fmt"
	"runtime"
	"testing"

	"golang.org/x/sync/semaphore"
)

func newTestDecoder(fn decodeFn) *Decoder {
	return &Decoder{
		decode: fn,
		sem:    semaphore.NewWeighted(int64(runtime.NumCPU())),
	}
}

func TestDecodeEmptyInputReturnsNoResults(t *testing.T) {
	t.Parallel()
	d := newTestDecoder(func(uintptr, uint64, int32, uintptr, uint64, *uint32, *uint32) int32 {
		t.Fatal("decode should not be called for an empty texture list")
		return 0
	})
	results, err := d.Decode(context.Background(), nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestDecodeRejectsEmptyPayload(t *testing.T) {
	t.Parallel()
	d := newTestDecoder(func(uintptr, uint64, int32, uintptr, uint64, *uint32, *uint32) int32 {
		return 0
	})
	results, err := d.Decode(context.Background(), []SubTexture{{Payload: nil, Out: make([]byte, 8)}})
	if err == nil {
		t.Fatalf("Decode() error = nil, want an error for an empty payload")
	}
	if results[0].Err == nil {
		t.Errorf("results[0].Err = nil, want the empty-payload error")
	}
}

func TestDecodeDispatchesEachSubTextureAndPreservesOrder(t *testing.T) {
	t.Parallel()
	d := newTestDecoder(func(payload uintptr, size uint64, workers int32, out uintptr, outSize uint64, bytesUsed *uint32, outFormat *uint32) int32 {
		*bytesUsed = uint32(size)
		*outFormat = uint32(FormatRGBADXT5)
		return 0
	})

	textures := make([]SubTexture, 4)
	for i := range textures {
		textures[i] = SubTexture{Payload: []byte(fmt.Sprintf("payload-%d", i)), Out: make([]byte, 16)}
	}

	results, err := d.Decode(context.Background(), textures)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(results) != len(textures) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(textures))
	}
	for i, r := range results {
		want := len(textures[i].Payload)
		if r.BytesUsed != want {
			t.Errorf("results[%d].BytesUsed = %d, want %d", i, r.BytesUsed, want)
		}
		if r.Format != FormatRGBADXT5 {
			t.Errorf("results[%d].Format = %v, want FormatRGBADXT5", i, r.Format)
		}
	}
}

func TestDecodeSurfacesFirstErrorButFillsAllResults(t *testing.T) {
	t.Parallel()
	d := newTestDecoder(func(payload uintptr, size uint64, workers int32, out uintptr, outSize uint64, bytesUsed *uint32, outFormat *uint32) int32 {
		if size == 7 {
			return -1
		}
		*bytesUsed = uint32(size)
		return 0
	})

	textures := []SubTexture{
		{Payload: []byte("ok"), Out: make([]byte, 4)},
		{Payload: []byte("corrupt"), Out: make([]byte, 4)},
	}
	results, err := d.Decode(context.Background(), textures)
	if err == nil {
		t.Fatalf("Decode() error = nil, want the failing sub-texture's error")
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Err != nil || results[0].BytesUsed != 2 {
		t.Errorf("results[0] = %+v, want BytesUsed 2 and no error", results[0])
	}
	if results[1].Err == nil {
		t.Errorf("results[1].Err = nil, want the failing sub-texture's error")
	}
}
