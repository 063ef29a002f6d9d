package wtf

import (
	"github.com/evilaliv3/tracing-framework/pkg/wtf/buffer"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/event"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/platform"
)

// leaveSpecific emits the shared scope-leave record. Every scope, whatever
// its schema, is terminated by wire id 2, which keeps leave records at two
// entries.
func leaveSpecific(b *buffer.EventBuffer) {
	b.AddEntry(event.WireIDScopeLeave)
	b.AddEntry(platform.NowMicros())
}

// ScopedEvent0 tracks enter and leave of a scope with no arguments. It does
// not pair enter with leave by itself; that is the job of the Scope types
// below.
type ScopedEvent0 struct {
	wireID uint32
}

func NewScopedEvent0(nameSpec string) *ScopedEvent0 {
	return NewScopedEvent0If(Enabled, nameSpec)
}

func NewScopedEvent0If(t Toggle, nameSpec string) *ScopedEvent0 {
	return &ScopedEvent0{wireID: register(t, event.ClassScoped, nameSpec)}
}

func (e *ScopedEvent0) EnterSpecific(b *buffer.EventBuffer) {
	if e.wireID == 0 {
		return
	}
	event.EmitHeader(b, e.wireID)
}

func (e *ScopedEvent0) LeaveSpecific(b *buffer.EventBuffer) {
	if e.wireID == 0 {
		return
	}
	leaveSpecific(b)
}

func (e *ScopedEvent0) Enter() {
	if e.wireID == 0 {
		return
	}
	if b := platform.CurrentThreadBuffer(); b != nil {
		e.EnterSpecific(b)
	}
}

func (e *ScopedEvent0) Leave() {
	if e.wireID == 0 {
		return
	}
	if b := platform.CurrentThreadBuffer(); b != nil {
		e.LeaveSpecific(b)
	}
}

// ScopedEvent1 tracks enter and leave of a scope with one typed argument
// on enter.
type ScopedEvent1[A1 event.Arg] struct {
	wireID uint32
}

func NewScopedEvent1[A1 event.Arg](nameSpec string) *ScopedEvent1[A1] {
	return NewScopedEvent1If[A1](Enabled, nameSpec)
}

func NewScopedEvent1If[A1 event.Arg](t Toggle, nameSpec string) *ScopedEvent1[A1] {
	var a1 A1
	return &ScopedEvent1[A1]{wireID: register(t, event.ClassScoped, nameSpec, a1.TypeName())}
}

func (e *ScopedEvent1[A1]) EnterSpecific(b *buffer.EventBuffer, a1 A1) {
	if e.wireID == 0 {
		return
	}
	event.EmitHeader(b, e.wireID)
	a1.Emit(b)
}

func (e *ScopedEvent1[A1]) LeaveSpecific(b *buffer.EventBuffer) {
	if e.wireID == 0 {
		return
	}
	leaveSpecific(b)
}

func (e *ScopedEvent1[A1]) Enter(a1 A1) {
	if e.wireID == 0 {
		return
	}
	if b := platform.CurrentThreadBuffer(); b != nil {
		e.EnterSpecific(b, a1)
	}
}

func (e *ScopedEvent1[A1]) Leave() {
	if e.wireID == 0 {
		return
	}
	if b := platform.CurrentThreadBuffer(); b != nil {
		e.LeaveSpecific(b)
	}
}

// ScopedEvent2 tracks enter and leave of a scope with two typed arguments
// on enter.
type ScopedEvent2[A1, A2 event.Arg] struct {
	wireID uint32
}

func NewScopedEvent2[A1, A2 event.Arg](nameSpec string) *ScopedEvent2[A1, A2] {
	return NewScopedEvent2If[A1, A2](Enabled, nameSpec)
}

func NewScopedEvent2If[A1, A2 event.Arg](t Toggle, nameSpec string) *ScopedEvent2[A1, A2] {
	var (
		a1 A1
		a2 A2
	)
	return &ScopedEvent2[A1, A2]{wireID: register(t, event.ClassScoped, nameSpec, a1.TypeName(), a2.TypeName())}
}

func (e *ScopedEvent2[A1, A2]) EnterSpecific(b *buffer.EventBuffer, a1 A1, a2 A2) {
	if e.wireID == 0 {
		return
	}
	event.EmitHeader(b, e.wireID)
	a1.Emit(b)
	a2.Emit(b)
}

func (e *ScopedEvent2[A1, A2]) LeaveSpecific(b *buffer.EventBuffer) {
	if e.wireID == 0 {
		return
	}
	leaveSpecific(b)
}

func (e *ScopedEvent2[A1, A2]) Enter(a1 A1, a2 A2) {
	if e.wireID == 0 {
		return
	}
	if b := platform.CurrentThreadBuffer(); b != nil {
		e.EnterSpecific(b, a1, a2)
	}
}

func (e *ScopedEvent2[A1, A2]) Leave() {
	if e.wireID == 0 {
		return
	}
	if b := platform.CurrentThreadBuffer(); b != nil {
		e.LeaveSpecific(b)
	}
}

// Scope0 is a stack scope bound to a ScopedEvent0. Construction and Enter
// are separate steps so a declaration can precede its argument pack:
//
//	s := wtf.NewScope0(ev)
//	s.Enter()
//	defer s.Leave()
//
// Enter captures the thread's buffer; Leave emits against the captured
// buffer even if the binding changed in between. When no buffer was bound
// at Enter, both emissions are skipped.
type Scope0 struct {
	ev  *ScopedEvent0
	buf *buffer.EventBuffer
}

func NewScope0(e *ScopedEvent0) Scope0 {
	return Scope0{ev: e}
}

func (s *Scope0) Enter() {
	if s.ev.wireID == 0 {
		return
	}
	if s.buf = platform.CurrentThreadBuffer(); s.buf != nil {
		s.ev.EnterSpecific(s.buf)
	}
}

func (s *Scope0) Leave() {
	if s.buf != nil {
		s.ev.LeaveSpecific(s.buf)
		s.buf = nil
	}
}

// Scope1 is a stack scope bound to a ScopedEvent1.
type Scope1[A1 event.Arg] struct {
	ev  *ScopedEvent1[A1]
	buf *buffer.EventBuffer
}

func NewScope1[A1 event.Arg](e *ScopedEvent1[A1]) Scope1[A1] {
	return Scope1[A1]{ev: e}
}

func (s *Scope1[A1]) Enter(a1 A1) {
	if s.ev.wireID == 0 {
		return
	}
	if s.buf = platform.CurrentThreadBuffer(); s.buf != nil {
		s.ev.EnterSpecific(s.buf, a1)
	}
}

func (s *Scope1[A1]) Leave() {
	if s.buf != nil {
		s.ev.LeaveSpecific(s.buf)
		s.buf = nil
	}
}

// Scope2 is a stack scope bound to a ScopedEvent2.
type Scope2[A1, A2 event.Arg] struct {
	ev  *ScopedEvent2[A1, A2]
	buf *buffer.EventBuffer
}

func NewScope2[A1, A2 event.Arg](e *ScopedEvent2[A1, A2]) Scope2[A1, A2] {
	return Scope2[A1, A2]{ev: e}
}

func (s *Scope2[A1, A2]) Enter(a1 A1, a2 A2) {
	if s.ev.wireID == 0 {
		return
	}
	if s.buf = platform.CurrentThreadBuffer(); s.buf != nil {
		s.ev.EnterSpecific(s.buf, a1, a2)
	}
}

func (s *Scope2[A1, A2]) Leave() {
	if s.buf != nil {
		s.ev.LeaveSpecific(s.buf)
		s.buf = nil
	}
}
