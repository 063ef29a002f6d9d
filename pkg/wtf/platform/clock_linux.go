//go:build linux

package platform

import "golang.org/x/sys/unix"

var clockBase = rawNanos()

func rawNanos() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts); err != nil {
		// CLOCK_MONOTONIC is always available when RAW is not.
		_ = unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts)
	}
	return ts.Nano()
}

// NowMicros returns a monotonic microsecond timestamp truncated to 32 bits.
// It wraps roughly every 71 minutes; consumers reconstruct absolute time
// externally.
func NowMicros() uint32 {
	return uint32((rawNanos() - clockBase) / 1000)
}
