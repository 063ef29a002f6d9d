package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/evilaliv3/tracing-framework/pkg/wtf/buffer"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/event"
)

// ThreadChunk describes one thread's contribution to a trace. The buffer is
// read verbatim; the caller guarantees the owning thread is quiescent.
type ThreadChunk struct {
	ID       uint32
	NameID   uint32
	Overflow bool
	Buffer   *buffer.EventBuffer
}

// Snapshot is a consistent view of the registry and all thread buffers,
// assembled by the runtime under its lock.
type Snapshot struct {
	Definitions []event.Definition
	Threads     []ThreadChunk
}

// WriteOption configures Write.
type WriteOption func(o *writeOptions)

type writeOptions struct {
	compress bool
}

// WithZstd frames the output stream with zstd compression. Read detects the
// framing transparently.
func WithZstd() WriteOption {
	return func(o *writeOptions) {
		o.compress = true
	}
}

// Write encodes a snapshot into w. The definition section materializes every
// definition as a define-event record, standard events first in registry
// order; thread chunks follow in registration order.
func Write(w io.Writer, s *Snapshot, opts ...WriteOption) error {
	var o writeOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.compress {
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("failed to open zstd stream: %w", err)
		}
		if err := writeTrace(enc, s); err != nil {
			_ = enc.Close()
			return err
		}
		return enc.Close()
	}
	return writeTrace(w, s)
}

func writeTrace(w io.Writer, s *Snapshot) error {
	bw := &wordWriter{w: bufio.NewWriter(w)}

	bw.word(MagicNumber)
	bw.word(WTFVersion)
	bw.word(FormatVersion)

	writeDefinitions(bw, s.Definitions)

	bw.word(uint32(len(s.Threads)))
	for _, t := range s.Threads {
		writeThreadChunk(bw, &t)
	}

	if bw.err != nil {
		return bw.err
	}
	return bw.w.Flush()
}

// writeDefinitions emits one define-event record per definition into a
// scratch buffer and serializes it as the definition section.
func writeDefinitions(bw *wordWriter, defs []event.Definition) {
	scratch := buffer.New()
	for i := range defs {
		d := &defs[i]
		event.DefineEvent(scratch, uint16(d.WireID()), d.Class(), d.Flags(), d.Name(), d.Arguments())
	}
	writeStringTable(bw, scratch.StringTable())
	writeEntries(bw, scratch)
}

func writeThreadChunk(bw *wordWriter, t *ThreadChunk) {
	var flags uint32
	if t.Overflow {
		flags |= ChunkFlagOverflow
	}
	bw.word(t.ID)
	bw.word(t.NameID)
	bw.word(flags)
	writeStringTable(bw, t.Buffer.StringTable())
	writeEntries(bw, t.Buffer)
}

func writeStringTable(bw *wordWriter, st *buffer.StringTable) {
	entries := st.Entries()
	bw.word(uint32(len(entries)))
	for _, e := range entries {
		bw.word(e.ID)
		bw.word(uint32(len(e.Value)))
		bw.bytes([]byte(e.Value))
	}
}

func writeEntries(bw *wordWriter, b *buffer.EventBuffer) {
	bw.word(uint32(b.Size()))
	for _, chunk := range b.EntryChunks() {
		for _, v := range chunk {
			bw.word(v)
		}
	}
}

// wordWriter writes little-endian 32-bit words, capturing the first error.
type wordWriter struct {
	w       *bufio.Writer
	scratch [4]byte
	err     error
}

func (bw *wordWriter) word(v uint32) {
	if bw.err != nil {
		return
	}
	binary.LittleEndian.PutUint32(bw.scratch[:], v)
	_, bw.err = bw.w.Write(bw.scratch[:])
}

// bytes writes raw bytes padded with zeros to a word boundary.
func (bw *wordWriter) bytes(p []byte) {
	if bw.err != nil {
		return
	}
	if _, bw.err = bw.w.Write(p); bw.err != nil {
		return
	}
	if pad := (4 - len(p)%4) % 4; pad > 0 {
		var zero [4]byte
		_, bw.err = bw.w.Write(zero[:pad])
	}
}
