package wtf

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evilaliv3/tracing-framework/pkg/wtf/event"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/platform"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/wire"
)

// onThread runs fn on a fresh goroutine, which is a fresh trace thread.
func onThread(fn func()) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn()
	}()
	wg.Wait()
}

func saveTrace(t *testing.T) *wire.Trace {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, GetRuntime().Save(&out))
	trace, err := wire.Read(&out)
	require.NoError(t, err)
	return trace
}

// userEvents filters out the zone metadata emitted by EnableCurrentThread.
func userEvents(thread *wire.Thread) []wire.Event {
	var out []wire.Event
	for _, ev := range thread.Events {
		if ev.WireID >= event.FirstUserWireID || ev.WireID == event.WireIDScopeLeave {
			out = append(out, ev)
		}
	}
	return out
}

func TestMasterEnabled(t *testing.T) {
	require.True(t, masterEnable, "these tests exercise the enabled build")
}

// A thread that was never enabled records nothing and contributes no chunk.
func TestDisabledThread(t *testing.T) {
	GetRuntime().ResetForTesting()

	ev := NewEvent0("X#Y")
	onThread(func() {
		require.Nil(t, platform.CurrentThreadBuffer())
		ev.Invoke()
		require.Nil(t, platform.CurrentThreadBuffer())
	})

	trace := saveTrace(t)
	require.Empty(t, trace.Threads)

	// The definition section is still complete: standard events first, then
	// the declared user event.
	require.Equal(t, "wtf.event#define", trace.Definitions[0].Name)
	def := trace.DefinitionByWireID(event.FirstUserWireID)
	require.NotNil(t, def)
	require.Equal(t, "X#Y", def.Name)
}

// Scenario: enabled thread, single event with one int32 argument.
func TestEnabledThreadSingleEvent(t *testing.T) {
	GetRuntime().ResetForTesting()

	ev := NewEvent1[Int32]("X#Y: i")
	onThread(func() {
		GetRuntime().EnableCurrentThread("T1")
		require.NotNil(t, platform.CurrentThreadBuffer())
		require.False(t, platform.CurrentThreadBuffer().Empty(), "enable must emit thread metadata")
		ev.Invoke(42)
		GetRuntime().DisableCurrentThread()
	})

	trace := saveTrace(t)
	require.Len(t, trace.Threads, 1)
	thread := trace.Threads[0]
	require.Equal(t, "T1", thread.Name)

	// Zone metadata first, then the user event.
	require.Equal(t, "wtf.zone#create", thread.Events[0].Name)
	require.Equal(t, "T1", thread.Events[0].Args[1].Str)
	require.Equal(t, "wtf.zone#set", thread.Events[1].Name)

	events := userEvents(&thread)
	require.Len(t, events, 1)
	require.Equal(t, "X#Y", events[0].Name)
	require.Equal(t, int64(42), events[0].Args[0].Int())
	require.Equal(t, "i", events[0].Args[0].Name)
}

// Scenario: nested scope guards and the shared scope-leave shortcut.
func TestScopedEventsLeaveShortcut(t *testing.T) {
	GetRuntime().ResetForTesting()

	outer := NewScopedEvent0("S#Outer")
	inner := NewScopedEvent0("S#Inner")

	onThread(func() {
		GetRuntime().EnableCurrentThread("T1")
		defer GetRuntime().DisableCurrentThread()

		func() {
			so := NewScope0(outer)
			so.Enter()
			defer so.Leave()

			si := NewScope0(inner)
			si.Enter()
			defer si.Leave()
		}()
	})

	trace := saveTrace(t)
	events := userEvents(&trace.Threads[0])
	require.Len(t, events, 4)

	require.Equal(t, "S#Outer", events[0].Name)
	require.Equal(t, "S#Inner", events[1].Name)
	// Both scopes are terminated by the fixed scope-leave id, regardless of
	// which scope opened them.
	require.Equal(t, event.WireIDScopeLeave, events[2].WireID)
	require.Equal(t, event.WireIDScopeLeave, events[3].WireID)

	require.LessOrEqual(t, events[0].Time, events[1].Time)
	require.LessOrEqual(t, events[1].Time, events[2].Time)
	require.LessOrEqual(t, events[2].Time, events[3].Time)
}

// Scenario: a lexically disabled declaration site emits nothing even on an
// enabled thread.
func TestLexicallyDisabledSite(t *testing.T) {
	GetRuntime().ResetForTesting()

	hidden := NewEvent0If(Disabled, "D#Hidden")
	hiddenScoped := NewScopedEvent1If[Int32](Disabled, "D#HiddenScope: i")

	onThread(func() {
		GetRuntime().EnableCurrentThread("T1")
		defer GetRuntime().DisableCurrentThread()

		hidden.Invoke()
		s := NewScope1(hiddenScoped)
		s.Enter(1)
		s.Leave()
	})

	trace := saveTrace(t)
	require.Empty(t, userEvents(&trace.Threads[0]))

	// Disabled sites register no definition either.
	require.Nil(t, trace.DefinitionByWireID(event.FirstUserWireID))
}

// Scenario: string arguments are interned once per buffer.
func TestStringArgumentInterning(t *testing.T) {
	GetRuntime().ResetForTesting()

	ev := NewEvent1[Ascii]("M#N: s")
	onThread(func() {
		GetRuntime().EnableCurrentThread("T1")
		defer GetRuntime().DisableCurrentThread()
		ev.Invoke("hello")
		ev.Invoke("hello")
	})

	trace := saveTrace(t)
	events := userEvents(&trace.Threads[0])
	require.Len(t, events, 2)
	require.Equal(t, "hello", events[0].Args[0].Str)
	require.Equal(t, events[0].Args[0].Raw, events[1].Args[0].Raw)

	var hellos int
	for _, s := range trace.Threads[0].Strings {
		if s == "hello" {
			hellos++
		}
	}
	require.Equal(t, 1, hellos)
}

// Scenario: multiple threads coexist; chunks appear in registration order
// and contain only their own events.
func TestMultiThreadCoexistence(t *testing.T) {
	GetRuntime().ResetForTesting()

	evA := NewEvent0("Multi#A")
	evB := NewEvent0("Multi#B")
	evC := NewEvent0("Multi#C")

	for _, tc := range []struct {
		name string
		ev   *Event0
	}{
		{"A", evA},
		{"B", evB},
		{"C", evC},
	} {
		tc := tc
		onThread(func() {
			GetRuntime().EnableCurrentThread(tc.name)
			defer GetRuntime().DisableCurrentThread()
			tc.ev.Invoke()
		})
	}

	trace := saveTrace(t)
	require.Len(t, trace.Threads, 3)
	for i, name := range []string{"A", "B", "C"} {
		thread := trace.Threads[i]
		require.Equal(t, name, thread.Name)
		require.Equal(t, uint32(i+1), thread.ID)
		events := userEvents(&thread)
		require.Len(t, events, 1)
		require.Equal(t, "Multi#"+name, events[0].Name)
	}
}

// Entries of one thread appear in program order.
func TestProgramOrderWithinThread(t *testing.T) {
	GetRuntime().ResetForTesting()

	ev := NewEvent1[Uint32]("Order#Seq: n")
	const n = 500
	onThread(func() {
		GetRuntime().EnableCurrentThread("T1")
		defer GetRuntime().DisableCurrentThread()
		for i := uint32(0); i < n; i++ {
			ev.Invoke(Uint32(i))
		}
	})

	trace := saveTrace(t)
	events := userEvents(&trace.Threads[0])
	require.Len(t, events, n)
	for i, e := range events {
		require.Equal(t, int64(i), e.Args[0].Int())
	}
}

// A buffer past its soft cap keeps its overflow annotation across repeated
// serializations.
func TestOverflowStickyAcrossSaves(t *testing.T) {
	GetRuntime().ResetForTesting()
	conf := &Config{BufferSoftLimit: 64, BufferChunkSize: 16}
	GetRuntime().Configure(WithConfig(conf))
	defer func() {
		GetRuntime().ResetForTesting()
		GetRuntime().Configure(WithConfig(&Config{}))
	}()

	ev := NewEvent0("Flood#E")
	onThread(func() {
		GetRuntime().EnableCurrentThread("T1")
		defer GetRuntime().DisableCurrentThread()
		for i := 0; i < 1000; i++ {
			ev.Invoke()
		}
	})

	for i := 0; i < 2; i++ {
		trace := saveTrace(t)
		require.True(t, trace.Threads[0].Overflow, "save %d", i)
	}
}

// Re-enabling a known thread rebinds its buffer without duplicating
// metadata.
func TestReenableThread(t *testing.T) {
	GetRuntime().ResetForTesting()

	ev := NewEvent0("Re#E")
	onThread(func() {
		GetRuntime().EnableCurrentThread("T1")
		ev.Invoke()
		GetRuntime().DisableCurrentThread()
		ev.Invoke() // dropped: thread disabled
		GetRuntime().EnableCurrentThread("T1")
		ev.Invoke()
		GetRuntime().DisableCurrentThread()
	})

	trace := saveTrace(t)
	require.Len(t, trace.Threads, 1)

	var creates int
	for _, e := range trace.Threads[0].Events {
		if e.Name == "wtf.zone#create" {
			creates++
		}
	}
	require.Equal(t, 1, creates)
	require.Len(t, userEvents(&trace.Threads[0]), 2)
}

func TestSaveToFile(t *testing.T) {
	GetRuntime().ResetForTesting()

	ev := NewEvent1[Ascii]("File#E: tag")
	onThread(func() {
		GetRuntime().EnableCurrentThread("T1")
		defer GetRuntime().DisableCurrentThread()
		ev.Invoke("payload")
	})

	for _, name := range []string{"out.wtf-trace", "out.wtf-trace.zst"} {
		t.Run(name, func(t *testing.T) {
			path := t.TempDir() + "/" + name
			require.NoError(t, GetRuntime().SaveToFile(path))

			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()
			trace, err := wire.Read(f)
			require.NoError(t, err)
			require.Len(t, trace.Threads, 1)
			events := userEvents(&trace.Threads[0])
			require.Len(t, events, 1)
			require.Equal(t, "payload", events[0].Args[0].Str)
		})
	}
}
