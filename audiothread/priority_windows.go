//go:build windows

package audiothread

import (
	"log"

	"golang.org/x/sys/windows"
)

// tuneThreadPriority raises the calling OS thread's scheduling priority
// so audio fills are less likely to be delayed by CPU contention. It
// must be called after runtime.LockOSThread pins the calling goroutine
// to its OS thread. Failure is logged and otherwise ignored: playback
// still works at the default priority, just with less headroom against
// underruns.
func tuneThreadPriority() {
	handle := windows.CurrentThread()
	if err := windows.SetThreadPriority(handle, windows.THREAD_PRIORITY_TIME_CRITICAL); err != nil {
		log.Printf("audiothread: SetThreadPriority failed, continuing at default priority: %v", err)
	}
}
