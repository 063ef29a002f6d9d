// Package wtf is the instrumentation surface of the tracing library.
//
// Call sites hold long-lived typed events and invoke them on the hot path:
//
//	var evFrame = wtf.NewEvent1[wtf.Int32]("Render#Frame: index")
//	...
//	evFrame.Invoke(wtf.Int32(i))
//
// Scoped events pair with stack scopes:
//
//	var evLoop = wtf.NewScopedEvent0("Render#Loop")
//	...
//	s := wtf.NewScope0(evLoop)
//	s.Enter()
//	defer s.Leave()
//
// Emission appends to the buffer bound to the calling thread by
// Runtime.EnableCurrentThread and is a no-op on threads that were never
// enabled. The Runtime collects all thread buffers into a single trace
// artifact, see SaveToFile.
package wtf

import (
	"github.com/evilaliv3/tracing-framework/pkg/wtf/buffer"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/event"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/platform"
)

// Re-exported argument types, so call sites only import this package.
type (
	Int16  = event.Int16
	Uint16 = event.Uint16
	Int32  = event.Int32
	Uint32 = event.Uint32
	Ascii  = event.Ascii
)

// Toggle selects between real and no-op instrumentation at a single
// declaration site, letting subsystems opt out independently of the
// process-wide master enable.
type Toggle bool

const (
	Enabled  Toggle = true
	Disabled Toggle = false
)

// register creates and registers a definition, returning its wire id.
// A zero wire id marks a disabled declaration site; emission paths treat it
// as a no-op.
func register(t Toggle, class event.Class, nameSpec string, typeNames ...string) uint32 {
	if !masterEnable || !bool(t) {
		return 0
	}
	id := event.NextWireID()
	event.Register(event.NewDefinition(id, class, 0, nameSpec, event.Signature(typeNames...)))
	return id
}

// Event0 is an instance event with no arguments. Events are created once
// per call site and are immutable afterwards.
type Event0 struct {
	wireID uint32
}

func NewEvent0(nameSpec string) *Event0 {
	return NewEvent0If(Enabled, nameSpec)
}

func NewEvent0If(t Toggle, nameSpec string) *Event0 {
	return &Event0{wireID: register(t, event.ClassInstance, nameSpec)}
}

// InvokeSpecific emits the event into a specific buffer.
func (e *Event0) InvokeSpecific(b *buffer.EventBuffer) {
	if e.wireID == 0 {
		return
	}
	event.EmitHeader(b, e.wireID)
}

// Invoke emits the event on the calling thread, if it is enabled.
func (e *Event0) Invoke() {
	if e.wireID == 0 {
		return
	}
	if b := platform.CurrentThreadBuffer(); b != nil {
		e.InvokeSpecific(b)
	}
}

// Event1 is an instance event with one typed argument.
type Event1[A1 event.Arg] struct {
	wireID uint32
}

func NewEvent1[A1 event.Arg](nameSpec string) *Event1[A1] {
	return NewEvent1If[A1](Enabled, nameSpec)
}

func NewEvent1If[A1 event.Arg](t Toggle, nameSpec string) *Event1[A1] {
	var a1 A1
	return &Event1[A1]{wireID: register(t, event.ClassInstance, nameSpec, a1.TypeName())}
}

func (e *Event1[A1]) InvokeSpecific(b *buffer.EventBuffer, a1 A1) {
	if e.wireID == 0 {
		return
	}
	event.EmitHeader(b, e.wireID)
	a1.Emit(b)
}

func (e *Event1[A1]) Invoke(a1 A1) {
	if e.wireID == 0 {
		return
	}
	if b := platform.CurrentThreadBuffer(); b != nil {
		e.InvokeSpecific(b, a1)
	}
}

// Event2 is an instance event with two typed arguments.
type Event2[A1, A2 event.Arg] struct {
	wireID uint32
}

func NewEvent2[A1, A2 event.Arg](nameSpec string) *Event2[A1, A2] {
	return NewEvent2If[A1, A2](Enabled, nameSpec)
}

func NewEvent2If[A1, A2 event.Arg](t Toggle, nameSpec string) *Event2[A1, A2] {
	var (
		a1 A1
		a2 A2
	)
	return &Event2[A1, A2]{wireID: register(t, event.ClassInstance, nameSpec, a1.TypeName(), a2.TypeName())}
}

func (e *Event2[A1, A2]) InvokeSpecific(b *buffer.EventBuffer, a1 A1, a2 A2) {
	if e.wireID == 0 {
		return
	}
	event.EmitHeader(b, e.wireID)
	a1.Emit(b)
	a2.Emit(b)
}

func (e *Event2[A1, A2]) Invoke(a1 A1, a2 A2) {
	if e.wireID == 0 {
		return
	}
	if b := platform.CurrentThreadBuffer(); b != nil {
		e.InvokeSpecific(b, a1, a2)
	}
}

// Event3 is an instance event with three typed arguments.
type Event3[A1, A2, A3 event.Arg] struct {
	wireID uint32
}

func NewEvent3[A1, A2, A3 event.Arg](nameSpec string) *Event3[A1, A2, A3] {
	return NewEvent3If[A1, A2, A3](Enabled, nameSpec)
}

func NewEvent3If[A1, A2, A3 event.Arg](t Toggle, nameSpec string) *Event3[A1, A2, A3] {
	var (
		a1 A1
		a2 A2
		a3 A3
	)
	return &Event3[A1, A2, A3]{wireID: register(t, event.ClassInstance, nameSpec, a1.TypeName(), a2.TypeName(), a3.TypeName())}
}

func (e *Event3[A1, A2, A3]) InvokeSpecific(b *buffer.EventBuffer, a1 A1, a2 A2, a3 A3) {
	if e.wireID == 0 {
		return
	}
	event.EmitHeader(b, e.wireID)
	a1.Emit(b)
	a2.Emit(b)
	a3.Emit(b)
}

func (e *Event3[A1, A2, A3]) Invoke(a1 A1, a2 A2, a3 A3) {
	if e.wireID == 0 {
		return
	}
	if b := platform.CurrentThreadBuffer(); b != nil {
		e.InvokeSpecific(b, a1, a2, a3)
	}
}

// Event4 is an instance event with four typed arguments.
type Event4[A1, A2, A3, A4 event.Arg] struct {
	wireID uint32
}

func NewEvent4[A1, A2, A3, A4 event.Arg](nameSpec string) *Event4[A1, A2, A3, A4] {
	return NewEvent4If[A1, A2, A3, A4](Enabled, nameSpec)
}

func NewEvent4If[A1, A2, A3, A4 event.Arg](t Toggle, nameSpec string) *Event4[A1, A2, A3, A4] {
	var (
		a1 A1
		a2 A2
		a3 A3
		a4 A4
	)
	return &Event4[A1, A2, A3, A4]{wireID: register(t, event.ClassInstance, nameSpec, a1.TypeName(), a2.TypeName(), a3.TypeName(), a4.TypeName())}
}

func (e *Event4[A1, A2, A3, A4]) InvokeSpecific(b *buffer.EventBuffer, a1 A1, a2 A2, a3 A3, a4 A4) {
	if e.wireID == 0 {
		return
	}
	event.EmitHeader(b, e.wireID)
	a1.Emit(b)
	a2.Emit(b)
	a3.Emit(b)
	a4.Emit(b)
}

func (e *Event4[A1, A2, A3, A4]) Invoke(a1 A1, a2 A2, a3 A3, a4 A4) {
	if e.wireID == 0 {
		return
	}
	if b := platform.CurrentThreadBuffer(); b != nil {
		e.InvokeSpecific(b, a1, a2, a3, a4)
	}
}
