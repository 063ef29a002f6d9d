package event

import (
	"github.com/evilaliv3/tracing-framework/pkg/wtf/buffer"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/platform"
)

// Fixed wire ids of the standard events. Id 0 is reserved and never emitted.
const (
	WireIDDefineEvent uint32 = 1
	WireIDScopeLeave  uint32 = 2
	WireIDCreateZone  uint32 = 3
	WireIDSetZone     uint32 = 4
	WireIDFrameStart  uint32 = 5
	WireIDFrameEnd    uint32 = 6
)

// registerStandardDefinitions appends the standard event schemas to the
// registry ahead of any user definition, so that serialization materializes
// them first.
func registerStandardDefinitions() {
	Register(NewDefinition(WireIDDefineEvent, ClassInstance, FlagInternal|FlagBuiltin,
		"wtf.event#define: wireId, eventClass, flags, name, args",
		Signature("uint16", "uint16", "uint32", "ascii", "ascii")))
	Register(NewDefinition(WireIDScopeLeave, ClassInstance, FlagInternal|FlagBuiltin,
		"wtf.scope#leave", nil))
	Register(NewDefinition(WireIDCreateZone, ClassInstance, FlagInternal|FlagBuiltin,
		"wtf.zone#create: zoneId, name, type, location",
		Signature("uint16", "ascii", "ascii", "ascii")))
	Register(NewDefinition(WireIDSetZone, ClassInstance, FlagInternal|FlagBuiltin,
		"wtf.zone#set: zoneId",
		Signature("uint16")))
	Register(NewDefinition(WireIDFrameStart, ClassInstance, FlagInternal|FlagBuiltin,
		"wtf.timing#frameStart: number",
		Signature("uint32")))
	Register(NewDefinition(WireIDFrameEnd, ClassInstance, FlagInternal|FlagBuiltin,
		"wtf.timing#frameEnd: number",
		Signature("uint32")))
}

// EmitHeader appends the record header shared by every event: the wire id
// followed by the truncated microsecond timestamp.
func EmitHeader(b *buffer.EventBuffer, wireID uint32) {
	b.AddEntry(wireID)
	b.AddEntry(platform.NowMicros())
}

// DefineEvent emits a define-event record describing another event's schema.
// Serialization uses it to materialize the registry into the trace.
func DefineEvent(b *buffer.EventBuffer, wireID uint16, class Class, flags uint32, name, args string) {
	EmitHeader(b, WireIDDefineEvent)
	b.AddEntry(uint32(wireID))
	b.AddEntry(uint32(class))
	b.AddEntry(flags)
	b.AddEntry(b.StringTable().Intern(name))
	b.AddEntry(b.StringTable().Intern(args))
}

// ScopeLeave emits the shared scope-leave record. Any open scope is
// terminated by this one schema, which keeps leave records at two entries.
func ScopeLeave(b *buffer.EventBuffer) {
	EmitHeader(b, WireIDScopeLeave)
}

// CreateZone emits a zone creation record.
func CreateZone(b *buffer.EventBuffer, zoneID uint16, name, zoneType, location string) {
	EmitHeader(b, WireIDCreateZone)
	b.AddEntry(uint32(zoneID))
	b.AddEntry(b.StringTable().Intern(name))
	b.AddEntry(b.StringTable().Intern(zoneType))
	b.AddEntry(b.StringTable().Intern(location))
}

// SetZone emits a zone switch record.
func SetZone(b *buffer.EventBuffer, zoneID uint16) {
	EmitHeader(b, WireIDSetZone)
	b.AddEntry(uint32(zoneID))
}

// FrameStart notes the start of a frame.
func FrameStart(b *buffer.EventBuffer, number uint32) {
	EmitHeader(b, WireIDFrameStart)
	b.AddEntry(number)
}

// FrameEnd notes the end of a frame.
func FrameEnd(b *buffer.EventBuffer, number uint32) {
	EmitHeader(b, WireIDFrameEnd)
	b.AddEntry(number)
}
