// Package buffer implements the per-thread event store: an append-only
// sequence of 32-bit wire entries plus the string table its events
// reference.
//
// A buffer has exactly one writer, the thread it is bound to. Other threads
// may read it only once the writer is known quiescent, e.g. during
// serialization after the thread has been disabled.
package buffer

const (
	// DefaultChunkEntries is the size of the first chunk allocated by a
	// buffer, in 32-bit entries.
	DefaultChunkEntries = 4 * 1024

	// maxChunkEntries bounds geometric chunk growth.
	maxChunkEntries = 64 * 1024

	// DefaultSoftLimit bounds the total number of entries a buffer will
	// record before it sets its overflow flag and starts dropping.
	DefaultSoftLimit = 1024 * 1024
)

// EventBuffer is an append-only store of 32-bit wire entries.
// Storage is a list of geometrically growing chunks so that growth never
// copies recorded entries and a quiescent reader never observes a
// reallocation.
type EventBuffer struct {
	strings StringTable

	full     [][]uint32 // committed chunks, all fully written
	cur      []uint32   // tail chunk being filled
	pos      int        // write index into cur
	fullSize int        // total entries across full chunks

	limit     int // soft cap, in entries
	nextChunk int // size of the next chunk to allocate
	overflow  bool
}

// Option configures an EventBuffer at construction.
type Option func(b *EventBuffer)

// WithSoftLimit caps the total number of entries the buffer will record.
// Past the cap the buffer sets its sticky overflow flag and silently drops
// new entries; the recorded prefix is preserved.
func WithSoftLimit(entries int) Option {
	return func(b *EventBuffer) {
		if entries > 0 {
			b.limit = entries
		}
	}
}

// WithChunkSize sets the size of the first storage chunk, in entries.
func WithChunkSize(entries int) Option {
	return func(b *EventBuffer) {
		if entries > 0 {
			b.nextChunk = entries
		}
	}
}

// New creates an empty EventBuffer. No chunk is allocated until the first
// entry is added.
func New(opts ...Option) *EventBuffer {
	b := &EventBuffer{
		limit:     DefaultSoftLimit,
		nextChunk: DefaultChunkEntries,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.nextChunk > b.limit {
		b.nextChunk = b.limit
	}
	return b
}

// AddEntry appends one 32-bit entry. Amortized O(1) and allocation-free
// outside of chunk growth. Once the soft limit is reached the entry is
// dropped and the overflow flag is set.
func (b *EventBuffer) AddEntry(v uint32) {
	if b.pos == len(b.cur) && !b.grow() {
		return
	}
	b.cur[b.pos] = v
	b.pos++
}

func (b *EventBuffer) grow() bool {
	if b.overflow {
		return false
	}
	remaining := b.limit - b.fullSize - b.pos
	if remaining <= 0 {
		b.overflow = true
		return false
	}
	size := b.nextChunk
	if size > remaining {
		size = remaining
	}
	if b.cur != nil {
		b.full = append(b.full, b.cur)
		b.fullSize += len(b.cur)
	}
	b.cur = make([]uint32, size)
	b.pos = 0
	if b.nextChunk < maxChunkEntries {
		b.nextChunk *= 2
	}
	return true
}

// StringTable returns the buffer's string table for argument emission.
func (b *EventBuffer) StringTable() *StringTable {
	return &b.strings
}

// Size returns the number of recorded entries.
func (b *EventBuffer) Size() int {
	return b.fullSize + b.pos
}

// Empty reports whether no entries have been recorded.
func (b *EventBuffer) Empty() bool {
	return b.Size() == 0
}

// Overflowed reports whether the buffer hit its soft limit and dropped
// entries. The flag is sticky: it survives serialization and Clear.
func (b *EventBuffer) Overflowed() bool {
	return b.overflow
}

// Clear discards all recorded entries and interned strings. The overflow
// flag is left intact, so a buffer that ceased recording stays silent.
func (b *EventBuffer) Clear() {
	b.full = nil
	b.cur = nil
	b.pos = 0
	b.fullSize = 0
	b.strings.clear()
}

// EntryChunks returns the recorded entries as a list of chunks in append
// order. The returned slices alias the buffer's storage; callers must only
// invoke this while the owning thread is quiescent.
func (b *EventBuffer) EntryChunks() [][]uint32 {
	chunks := make([][]uint32, 0, len(b.full)+1)
	chunks = append(chunks, b.full...)
	if b.pos > 0 {
		chunks = append(chunks, b.cur[:b.pos])
	}
	return chunks
}

// Entries returns a copy of all recorded entries in append order.
func (b *EventBuffer) Entries() []uint32 {
	out := make([]uint32, 0, b.Size())
	for _, chunk := range b.EntryChunks() {
		out = append(out, chunk...)
	}
	return out
}
