package event

import "github.com/evilaliv3/tracing-framework/pkg/wtf/buffer"

// Arg is implemented by every supported argument type. TypeName returns the
// canonical wire name recorded in argument signatures; Emit appends the
// argument's wire encoding to a buffer. Both are allocation-free except for
// first-time string interning.
type Arg interface {
	TypeName() string
	Emit(b *buffer.EventBuffer)
}

// Int16 is a signed 16-bit argument, sign-extended into one wire entry.
type Int16 int16

func (Int16) TypeName() string { return "int16" }

func (v Int16) Emit(b *buffer.EventBuffer) {
	b.AddEntry(uint32(int32(v)))
}

// Uint16 is an unsigned 16-bit argument.
type Uint16 uint16

func (Uint16) TypeName() string { return "uint16" }

func (v Uint16) Emit(b *buffer.EventBuffer) {
	b.AddEntry(uint32(v))
}

// Int32 is a signed 32-bit argument.
type Int32 int32

func (Int32) TypeName() string { return "int32" }

func (v Int32) Emit(b *buffer.EventBuffer) {
	b.AddEntry(uint32(v))
}

// Uint32 is an unsigned 32-bit argument.
type Uint32 uint32

func (Uint32) TypeName() string { return "uint32" }

func (v Uint32) Emit(b *buffer.EventBuffer) {
	b.AddEntry(uint32(v))
}

// Ascii is a borrowed string argument, encoded as its id in the buffer's
// string table. The caller guarantees the string outlives the buffer.
type Ascii string

func (Ascii) TypeName() string { return "ascii" }

func (v Ascii) Emit(b *buffer.EventBuffer) {
	b.AddEntry(b.StringTable().Intern(string(v)))
}
