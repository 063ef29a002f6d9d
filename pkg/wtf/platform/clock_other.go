//go:build !linux

package platform

import "time"

var clockBase = time.Now()

// NowMicros returns a monotonic microsecond timestamp truncated to 32 bits.
// It wraps roughly every 71 minutes; consumers reconstruct absolute time
// externally.
func NowMicros() uint32 {
	return uint32(time.Since(clockBase).Microseconds())
}
