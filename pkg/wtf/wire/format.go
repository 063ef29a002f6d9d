// Package wire implements the binary trace layout: little-endian 32-bit
// words, a magic/version prelude, one event-definition section, then one
// chunk per registered thread.
//
//	file      := magic wtf_version format_version
//	             defs_section thread_count chunk*
//	defs_sect := string_table entry_count entry*
//	chunk     := thread_id name_string_id flags string_table entry_count entry*
//	string_table := count (id byte_len bytes pad_to_u32)*
//
// The definition section and every chunk own independent string tables.
// Event records inside an entry stream are
//
//	[ wire_id ][ timestamp_micros ][ arg_0 ] ... [ arg_n-1 ]
//
// with the argument count fixed by the event's schema; the scope-leave
// record is always [ 2 ][ timestamp ].
package wire

const (
	// MagicNumber opens every trace file.
	MagicNumber uint32 = 0xDEADBEEF

	// WTFVersion identifies the producing library generation.
	WTFVersion uint32 = 0xE8214400

	// FormatVersion identifies this binary layout.
	FormatVersion uint32 = 10
)

// Chunk flag bits.
const (
	// ChunkFlagOverflow marks a thread whose buffer hit its soft limit;
	// the recorded prefix is complete, the tail was dropped.
	ChunkFlagOverflow uint32 = 1 << 0
)
