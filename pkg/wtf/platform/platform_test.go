package platform

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evilaliv3/tracing-framework/pkg/wtf/buffer"
)

func TestThreadBufferBinding(t *testing.T) {
	defer ResetBindingsForTesting()

	require.Nil(t, CurrentThreadBuffer())

	b := buffer.New()
	BindThreadBuffer(b)
	require.Same(t, b, CurrentThreadBuffer())

	UnbindThreadBuffer()
	require.Nil(t, CurrentThreadBuffer())
}

func TestThreadBufferIsolation(t *testing.T) {
	defer ResetBindingsForTesting()

	b := buffer.New()
	BindThreadBuffer(b)

	// A different goroutine must not observe this goroutine's binding.
	var wg sync.WaitGroup
	wg.Add(1)
	var other *buffer.EventBuffer
	go func() {
		defer wg.Done()
		other = CurrentThreadBuffer()
	}()
	wg.Wait()

	require.Nil(t, other)
	require.Same(t, b, CurrentThreadBuffer())
}

func TestNowMicrosMonotonic(t *testing.T) {
	prev := NowMicros()
	for i := 0; i < 1000; i++ {
		now := NowMicros()
		// Allow equal readings; the clock must never step backwards within
		// a wrap period.
		require.GreaterOrEqual(t, now, prev)
		prev = now
	}
}
