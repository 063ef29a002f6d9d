// Package event implements event schemas: typed argument descriptors, the
// process-wide definition registry and the built-in standard events of the
// trace format.
package event

import (
	"strconv"
	"strings"
)

// Class distinguishes one-shot instance events from scoped enter/leave
// events.
type Class uint16

const (
	ClassInstance Class = 0
	ClassScoped   Class = 1
)

// Flags passed to built-in events. Only the bits this library emits are
// named.
const (
	FlagInternal uint32 = 1 << 3
	FlagBuiltin  uint32 = 1 << 5
)

// AppendArgsFunc materializes the canonical typed argument list of an event
// into sb, given the argument-name portion of its name spec. The function is
// bound to the event's type list at registration and invoked only at
// serialization time.
type AppendArgsFunc func(sb *strings.Builder, argNames string)

// Definition is the immutable schema of one event: its wire id, class,
// flags, and a name spec of the form
//
//	Namespace#Method: arg1, arg2
//	Namespace#Method
//
// The part before the colon is the event name, recorded verbatim. The names
// after it are merged with the event's argument types to form the argument
// signature. Missing or surplus names are tolerated: missing names are
// synthesized as arg<index>, surplus names are ignored. No identifier
// validation is performed; that is the caller's contract with the trace
// viewer.
type Definition struct {
	wireID     uint32
	class      Class
	flags      uint32
	nameSpec   string
	appendArgs AppendArgsFunc
}

// NewDefinition creates a Definition. appendArgs may be nil for events with
// no arguments.
func NewDefinition(wireID uint32, class Class, flags uint32, nameSpec string, appendArgs AppendArgsFunc) Definition {
	return Definition{
		wireID:     wireID,
		class:      class,
		flags:      flags,
		nameSpec:   nameSpec,
		appendArgs: appendArgs,
	}
}

func (d *Definition) WireID() uint32 { return d.wireID }
func (d *Definition) Class() Class   { return d.class }
func (d *Definition) Flags() uint32  { return d.flags }

// AppendName appends the event name, the part of the name spec before the
// colon, to sb.
func (d *Definition) AppendName(sb *strings.Builder) {
	name := d.nameSpec
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[:i]
	}
	sb.WriteString(name)
}

// AppendArguments appends the canonical typed argument signature to sb:
// "<type1> <name1>, <type2> <name2>, ...".
func (d *Definition) AppendArguments(sb *strings.Builder) {
	if d.appendArgs == nil {
		return
	}
	var names string
	if i := strings.IndexByte(d.nameSpec, ':'); i >= 0 {
		names = d.nameSpec[i+1:]
	}
	d.appendArgs(sb, names)
}

// Name materializes the event name into a fresh string. The serializer calls
// it once per definition when it writes the definition section.
func (d *Definition) Name() string {
	var sb strings.Builder
	d.AppendName(&sb)
	return sb.String()
}

// Arguments materializes the argument signature into a fresh string. The
// serializer calls it once per definition when it writes the definition
// section.
func (d *Definition) Arguments() string {
	var sb strings.Builder
	d.AppendArguments(&sb)
	return sb.String()
}

// ZipArgument appends "<typeName> <name>" for the argument at index to sb,
// consuming the next comma-separated name from *names. When the name list is
// exhausted or the fragment trims to nothing, the name is synthesized as
// arg<index>.
func ZipArgument(sb *strings.Builder, index int, typeName string, names *string) {
	if index > 0 {
		sb.WriteString(", ")
	}

	var name string
	if rest := *names; rest != "" {
		if i := strings.IndexByte(rest, ','); i >= 0 {
			name, *names = rest[:i], rest[i+1:]
		} else {
			name, *names = rest, ""
		}
		name = strings.TrimSpace(name)
	}
	sb.WriteString(typeName)
	sb.WriteByte(' ')
	if name == "" {
		sb.WriteString("arg")
		sb.WriteString(strconv.Itoa(index))
	} else {
		sb.WriteString(name)
	}
}

// Signature builds an AppendArgsFunc for an ordered list of canonical type
// names. It is the type-erased form the registry stores so that signature
// materialization costs nothing until a trace is saved.
func Signature(typeNames ...string) AppendArgsFunc {
	if len(typeNames) == 0 {
		return nil
	}
	return func(sb *strings.Builder, argNames string) {
		names := argNames
		for i, tn := range typeNames {
			ZipArgument(sb, i, tn, &names)
		}
	}
}
