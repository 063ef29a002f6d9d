package buffer

// EmptyStringID is the reserved id of the empty string. It is never stored
// in the backing map.
const EmptyStringID uint32 = 0

// StringEntry is one interned string together with its assigned id.
type StringEntry struct {
	ID    uint32
	Value string
}

// StringTable maps strings to dense 32-bit ids in first-insertion order.
// Each table is owned by exactly one EventBuffer and shares its single-writer
// discipline. Interned strings are borrowed: the caller guarantees their
// lifetime exceeds the table's.
type StringTable struct {
	ids  map[string]uint32
	strs []string
}

// Intern returns the id for s, inserting it if absent. The empty string
// always maps to EmptyStringID without insertion. Ids are assigned in
// insertion order starting at 1 and never change once assigned.
func (t *StringTable) Intern(s string) uint32 {
	if s == "" {
		return EmptyStringID
	}
	if id, ok := t.ids[s]; ok {
		return id
	}
	if t.ids == nil {
		t.ids = make(map[string]uint32)
	}
	t.strs = append(t.strs, s)
	id := uint32(len(t.strs))
	t.ids[s] = id
	return id
}

// Entries returns all non-empty interned strings in id order.
func (t *StringTable) Entries() []StringEntry {
	entries := make([]StringEntry, len(t.strs))
	for i, s := range t.strs {
		entries[i] = StringEntry{ID: uint32(i + 1), Value: s}
	}
	return entries
}

// Len returns the number of non-empty interned strings.
func (t *StringTable) Len() int {
	return len(t.strs)
}

func (t *StringTable) clear() {
	t.ids = nil
	t.strs = nil
}
