package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bangnoise/gohap/errs"
)

func TestWatchReportsFormatErrorOnRemove(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "movie.mov")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	errCh := make(chan error, 1)
	w, err := Watch(path, func(e error) { errCh <- e })
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	select {
	case got := <-errCh:
		if !errs.Is(got, errs.FormatError) {
			t.Errorf("reported error kind = %v, want FormatError", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for removal to be reported")
	}
}

func TestWatchIgnoresUnrelatedPaths(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "movie.mov")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	called := make(chan struct{}, 1)
	w, err := Watch(path, func(error) { called <- struct{}{} })
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	other := filepath.Join(dir, "other.txt")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile(other) error = %v", err)
	}
	if err := os.Remove(other); err != nil {
		t.Fatalf("Remove(other) error = %v", err)
	}

	select {
	case <-called:
		t.Fatal("onError fired for an unrelated path")
	case <-time.After(300 * time.Millisecond):
	}
}
