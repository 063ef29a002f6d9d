package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/evilaliv3/tracing-framework/pkg/wtf/event"
)

// ErrBadMagic is returned when the input does not start with a trace header.
var ErrBadMagic = errors.New("not a wtf trace: bad magic")

// Definition is a decoded event schema.
type Definition struct {
	WireID uint32
	Class  event.Class
	Flags  uint32
	Name   string
	Args   string

	argTypes []string
	argNames []string
}

// ArgValue is one decoded event argument.
type ArgValue struct {
	Name string
	Type string
	Raw  uint32
	// Str holds the resolved string for ascii arguments.
	Str string
}

// Int returns the argument interpreted per its declared type.
func (a *ArgValue) Int() int64 {
	switch a.Type {
	case "int16", "int32":
		return int64(int32(a.Raw))
	default:
		return int64(a.Raw)
	}
}

// Event is one decoded event record.
type Event struct {
	WireID uint32
	Name   string
	Class  event.Class
	Time   uint32
	Args   []ArgValue
}

// Thread is one decoded thread chunk.
type Thread struct {
	ID       uint32
	Name     string
	Overflow bool
	Strings  map[uint32]string
	Events   []Event
}

// Trace is a fully decoded trace file.
type Trace struct {
	Definitions []Definition
	Threads     []Thread
}

// DefinitionByWireID returns the schema registered for id, or nil.
func (t *Trace) DefinitionByWireID(id uint32) *Definition {
	for i := range t.Definitions {
		if t.Definitions[i].WireID == id {
			return &t.Definitions[i]
		}
	}
	return nil
}

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Read decodes a trace from r, transparently unwrapping zstd framing.
func Read(r io.Reader) (*Trace, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace header: %w", err)
	}
	if string(head) == string(zstdMagic) {
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		defer dec.Close()
		return readTrace(bufio.NewReader(dec))
	}
	return readTrace(br)
}

func readTrace(br *bufio.Reader) (*Trace, error) {
	wr := &wordReader{r: br}

	if wr.word() != MagicNumber {
		if wr.err != nil {
			return nil, wr.err
		}
		return nil, ErrBadMagic
	}
	wr.word() // wtf version
	if v := wr.word(); wr.err == nil && v != FormatVersion {
		return nil, fmt.Errorf("unsupported trace format version %d", v)
	}

	trace := &Trace{}
	if err := readDefinitions(wr, trace); err != nil {
		return nil, err
	}

	threadCount := wr.word()
	for i := uint32(0); i < threadCount && wr.err == nil; i++ {
		thread, err := readThreadChunk(wr, trace)
		if err != nil {
			return nil, err
		}
		trace.Threads = append(trace.Threads, thread)
	}
	if wr.err != nil {
		return nil, wr.err
	}
	return trace, nil
}

// readDefinitions decodes the definition section: a string table followed by
// define-event records only.
func readDefinitions(wr *wordReader, trace *Trace) error {
	strs, err := readStringTable(wr)
	if err != nil {
		return err
	}
	count := wr.word()
	// Every record is [1, ts, wireId, class, flags, nameId, argsId].
	const recordLen = 7
	for read := uint32(0); read+recordLen <= count; read += recordLen {
		if id := wr.word(); id != event.WireIDDefineEvent {
			if wr.err != nil {
				return wr.err
			}
			return fmt.Errorf("unexpected record %d in definition section", id)
		}
		wr.word() // timestamp
		d := Definition{
			WireID: wr.word(),
			Class:  event.Class(wr.word()),
			Flags:  wr.word(),
			Name:   strs[wr.word()],
			Args:   strs[wr.word()],
		}
		d.argTypes, d.argNames = parseSignature(d.Args)
		trace.Definitions = append(trace.Definitions, d)
	}
	for rem := count % recordLen; rem > 0 && wr.err == nil; rem-- {
		wr.word()
	}
	return wr.err
}

func readThreadChunk(wr *wordReader, trace *Trace) (Thread, error) {
	thread := Thread{
		ID: wr.word(),
	}
	nameID := wr.word()
	flags := wr.word()
	thread.Overflow = flags&ChunkFlagOverflow != 0

	strs, err := readStringTable(wr)
	if err != nil {
		return thread, err
	}
	thread.Strings = strs
	thread.Name = strs[nameID]

	count := int(wr.word())
	read := 0
	for read < count && wr.err == nil {
		// A record needs at least its two-word header; a shorter tail is a
		// record truncated by buffer overflow and is dropped below.
		if count-read < 2 {
			break
		}
		wireID := wr.word()
		timestamp := wr.word()
		read += 2

		ev := Event{WireID: wireID, Time: timestamp}
		if wireID == event.WireIDScopeLeave {
			ev.Name = "wtf.scope#leave"
		} else {
			def := trace.DefinitionByWireID(wireID)
			if def == nil {
				return thread, fmt.Errorf("thread %d: record with unknown wire id %d", thread.ID, wireID)
			}
			ev.Name = def.Name
			ev.Class = def.Class
			if len(def.argTypes) > count-read {
				break
			}
			for i, typ := range def.argTypes {
				raw := wr.word()
				read++
				arg := ArgValue{Name: def.argNames[i], Type: typ, Raw: raw}
				if typ == "ascii" {
					arg.Str = strs[raw]
				}
				ev.Args = append(ev.Args, arg)
			}
		}
		thread.Events = append(thread.Events, ev)
	}
	// Skip any dropped tail so the stream stays aligned for the next chunk.
	for ; read < count && wr.err == nil; read++ {
		wr.word()
	}
	return thread, wr.err
}

func readStringTable(wr *wordReader) (map[uint32]string, error) {
	strs := map[uint32]string{0: ""}
	count := wr.word()
	for i := uint32(0); i < count && wr.err == nil; i++ {
		id := wr.word()
		length := wr.word()
		strs[id] = wr.str(int(length))
	}
	return strs, wr.err
}

// parseSignature splits "int32 x, ascii label" into type and name lists.
func parseSignature(sig string) (types, names []string) {
	if sig == "" {
		return nil, nil
	}
	for _, part := range strings.Split(sig, ",") {
		part = strings.TrimSpace(part)
		typ, name, ok := strings.Cut(part, " ")
		if !ok {
			typ, name = part, ""
		}
		types = append(types, typ)
		names = append(names, name)
	}
	return types, names
}

type wordReader struct {
	r       *bufio.Reader
	scratch [4]byte
	err     error
}

func (wr *wordReader) word() uint32 {
	if wr.err != nil {
		return 0
	}
	if _, wr.err = io.ReadFull(wr.r, wr.scratch[:]); wr.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(wr.scratch[:])
}

// str reads length raw bytes plus padding to a word boundary.
func (wr *wordReader) str(length int) string {
	if wr.err != nil || length < 0 {
		return ""
	}
	padded := length + (4-length%4)%4
	buf := make([]byte, padded)
	if _, wr.err = io.ReadFull(wr.r, buf); wr.err != nil {
		return ""
	}
	return string(buf[:length])
}
