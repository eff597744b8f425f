// Package hapdecode loads the native Hap block-decoder shared library
// and exposes its decode entry point as a Go function value, without
// cgo. A single Hap frame packs one or more independently-compressed
// sub-textures (multiple, for the HapM variant); Decoder bounds how
// many of those sub-textures are decoded concurrently.
package hapdecode

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"golang.org/x/sync/semaphore"
)

// Format identifies the pixel format a decoded block-compression buffer
// holds, mirroring the native library's output format enum.
type Format int

const (
	FormatNone Format = iota
	FormatRGBDXT1
	FormatRGBADXT5
	FormatYCoCgDXT5
	FormatRGBBC7
	FormatRGBABC7
)

// decodeFn matches the native library's per-sub-texture entry point:
// HapDecode(payload, size, workerCount, outBuf, outBufSize, &bytesUsed, &outFormat) -> status
type decodeFn func(payload uintptr, size uint64, workerCount int32,
	outBuf uintptr, outBufSize uint64,
	bytesUsed *uint32, outFormat *uint32) int32

// Decoder wraps the native Hap block decoder, dlopen'd once per
// process.
type Decoder struct {
	lib    uintptr
	decode decodeFn
	sem    *semaphore.Weighted
}

// Open loads path (a libhapdecode shared library appropriate to the
// running platform) and binds its decode entry point.
func Open(path string) (*Decoder, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("hapdecode: Dlopen(%s): %w", path, err)
	}
	var fn decodeFn
	purego.RegisterLibFunc(&fn, lib, "HapDecode")
	return &Decoder{
		lib:    lib,
		decode: fn,
		sem:    semaphore.NewWeighted(int64(runtime.NumCPU())),
	}, nil
}

// Close unloads the shared library.
func (d *Decoder) Close() error {
	return purego.Dlclose(d.lib)
}

// SubTexture is one independently-compressed block of a Hap frame: a
// single-texture Hap payload has exactly one, HapM has several.
type SubTexture struct {
	Payload []byte
	Out     []byte
}

// Result is the outcome of decoding one SubTexture.
type Result struct {
	BytesUsed int
	Format    Format
	Err       error
}

// Decode decompresses each of textures, dispatching them across a
// worker pool bounded to runtime.NumCPU() concurrent native calls, and
// returns one Result per input in the same order.
//
// A single-element textures slice is the common case (plain Hap); more
// than one element is the HapM multi-texture case.
func (d *Decoder) Decode(ctx context.Context, textures []SubTexture) ([]Result, error) {
	results := make([]Result, len(textures))
	if len(textures) == 0 {
		return results, nil
	}

	var wg sync.WaitGroup
	var firstErrOnce sync.Once
	var firstErr error

	for i, tex := range textures {
		if err := d.sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return results, fmt.Errorf("hapdecode: acquire worker slot: %w", err)
		}
		wg.Add(1)
		go func(i int, tex SubTexture) {
			defer wg.Done()
			defer d.sem.Release(1)
			n, format, err := d.decodeOne(tex)
			results[i] = Result{BytesUsed: n, Format: format, Err: err}
			if err != nil {
				firstErrOnce.Do(func() { firstErr = err })
			}
		}(i, tex)
	}
	wg.Wait()
	return results, firstErr
}

func (d *Decoder) decodeOne(tex SubTexture) (int, Format, error) {
	if len(tex.Payload) == 0 {
		return 0, FormatNone, fmt.Errorf("hapdecode: empty payload")
	}
	var bytesUsed uint32
	var outFormat uint32
	status := d.decode(
		bytesAddr(tex.Payload), uint64(len(tex.Payload)), int32(runtime.NumCPU()),
		bytesAddr(tex.Out), uint64(len(tex.Out)),
		&bytesUsed, &outFormat,
	)
	if status != 0 {
		return 0, FormatNone, fmt.Errorf("hapdecode: decode failed with status %d", status)
	}
	return int(bytesUsed), Format(outFormat), nil
}

func bytesAddr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}
