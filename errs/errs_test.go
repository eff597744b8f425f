package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()
	cause := errors.New("boom")
	e := Wrap(DecodeError, "block rejected", cause)
	if !errors.Is(e, cause) {
		t.Errorf("errors.Is(e, cause) = false, want true")
	}
	var target *Error
	if !errors.As(e, &target) {
		t.Fatalf("errors.As failed to find *Error")
	}
	if target.Kind != DecodeError {
		t.Errorf("Kind = %v, want DecodeError", target.Kind)
	}
}

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	t.Parallel()
	cause := errors.New("disk full")
	e := Wrap(OutOfMemory, "allocate decode buffer", cause)
	wrapped := fmt.Errorf("codec: %w", e)
	if !Is(wrapped, OutOfMemory) {
		t.Errorf("Is(wrapped, OutOfMemory) = false, want true")
	}
	if Is(wrapped, Timeout) {
		t.Errorf("Is(wrapped, Timeout) = true, want false")
	}
}

func TestFormatHintAnnotatesFormatErrorOnly(t *testing.T) {
	t.Parallel()
	fe := New(FormatError, "no playable track")
	if got := fe.FormatHint(); got != fe.Error()+" (may not be a Hap movie)" {
		t.Errorf("FormatHint() = %q, want the Hap annotation appended", got)
	}
	de := New(DecodeError, "bad block")
	if got := de.FormatHint(); got != de.Error() {
		t.Errorf("FormatHint() on non-FormatError = %q, want unchanged Error()", got)
	}
}
