//go:build unix

package audiothread

import (
	"log"

	"golang.org/x/sys/unix"
)

// tuneThreadPriority raises the calling OS thread's scheduling priority
// so audio fills are less likely to be delayed by CPU contention. It
// must be called after runtime.LockOSThread pins the calling goroutine
// to its OS thread. Failure is logged and otherwise ignored: playback
// still works at the default priority, just with less headroom against
// underruns.
func tuneThreadPriority() {
	const niceBoost = -10
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, niceBoost); err != nil {
		log.Printf("audiothread: Setpriority(%d) failed, continuing at default priority: %v", niceBoost, err)
	}
}
