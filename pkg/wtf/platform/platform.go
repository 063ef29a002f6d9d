// Package platform provides the host primitives the tracing core consumes:
// a monotonic microsecond clock and the thread-local event buffer slot.
//
// A trace "thread" is a goroutine that had a buffer bound to it. The slot is
// keyed by goroutine id and its read path is lock-free, mirroring
// pthread_getspecific on the platforms the original bindings target.
package platform

import (
	"sync"

	"github.com/petermattis/goid"

	"github.com/evilaliv3/tracing-framework/pkg/wtf/buffer"
)

var threadBuffers sync.Map // goroutine id (int64) -> *buffer.EventBuffer

// ThreadID returns the identity of the calling thread.
func ThreadID() int64 {
	return goid.Get()
}

// CurrentThreadBuffer returns the event buffer bound to the calling thread,
// or nil if the thread is not enabled. The lookup takes no locks and does
// not allocate.
func CurrentThreadBuffer() *buffer.EventBuffer {
	v, ok := threadBuffers.Load(goid.Get())
	if !ok {
		return nil
	}
	return v.(*buffer.EventBuffer)
}

// BindThreadBuffer binds b to the calling thread. Subsequent emissions on
// this thread append to b until UnbindThreadBuffer is called.
func BindThreadBuffer(b *buffer.EventBuffer) {
	threadBuffers.Store(goid.Get(), b)
}

// UnbindThreadBuffer clears the calling thread's buffer slot. The buffer
// itself is untouched; ownership returns to whoever registered it.
func UnbindThreadBuffer() {
	threadBuffers.Delete(goid.Get())
}

// ResetBindingsForTesting drops every thread binding in the process.
func ResetBindingsForTesting() {
	threadBuffers.Range(func(key, _ any) bool {
		threadBuffers.Delete(key)
		return true
	})
}
