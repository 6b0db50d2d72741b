package labels

import "math/bits"

const (
	minTableSize = 16
	// maxLoadNum/maxLoadDen is the load factor at which the table grows.
	maxLoadNum = 3
	maxLoadDen = 4
)

type entry struct {
	key uint32
	val uint32
}

// Table is an open-addressed uint32 → uint32 hash table with linear
// probing. It backs both the node → label assignment and the per-iteration
// merge set, where the builtin map's overhead per entry would dominate the
// memory budget on large graphs. Keys are hashed with mix32, so sequential
// node ids spread evenly across slots.
//
// Entries can be inserted and overwritten but never deleted; the merge set
// is simply discarded and rebuilt each iteration.
type Table struct {
	entries []entry
	used    []uint64 // occupancy bitset, one bit per slot
	n       int
}

// NewTable creates a table pre-sized for about hint entries.
func NewTable(hint int) *Table {
	size := minTableSize
	if hint > 0 {
		// Size so that hint entries stay under the load limit.
		need := hint * maxLoadDen / maxLoadNum
		size = 1 << bits.Len(uint(need))
		if size < minTableSize {
			size = minTableSize
		}
	}
	return &Table{
		entries: make([]entry, size),
		used:    make([]uint64, size/64+1),
	}
}

// Len returns the number of entries in the table.
func (t *Table) Len() int { return t.n }

func (t *Table) isUsed(i uint32) bool {
	return t.used[i/64]&(1<<(i%64)) != 0
}

func (t *Table) setUsed(i uint32) {
	t.used[i/64] |= 1 << (i % 64)
}

// slot returns the index holding key, or the first free slot in its probe
// sequence. ok reports whether the key is present.
func (t *Table) slot(key uint32) (idx uint32, ok bool) {
	mask := uint32(len(t.entries) - 1)
	i := mix32(key) & mask
	for t.isUsed(i) {
		if t.entries[i].key == key {
			return i, true
		}
		i = (i + 1) & mask
	}
	return i, false
}

// Get returns the value stored for key.
func (t *Table) Get(key uint32) (uint32, bool) {
	i, ok := t.slot(key)
	if !ok {
		return 0, false
	}
	return t.entries[i].val, true
}

// Put stores val under key, overwriting any previous value.
func (t *Table) Put(key, val uint32) {
	i, ok := t.slot(key)
	if !ok {
		if t.needGrow() {
			t.grow()
			i, _ = t.slot(key)
		}
		t.setUsed(i)
		t.n++
	}
	t.entries[i] = entry{key: key, val: val}
}

// PutIfAbsent stores val under key only if the key is not yet present and
// reports whether an insert happened.
func (t *Table) PutIfAbsent(key, val uint32) bool {
	i, ok := t.slot(key)
	if ok {
		return false
	}
	if t.needGrow() {
		t.grow()
		i, _ = t.slot(key)
	}
	t.setUsed(i)
	t.entries[i] = entry{key: key, val: val}
	t.n++
	return true
}

func (t *Table) needGrow() bool {
	return (t.n+1)*maxLoadDen > len(t.entries)*maxLoadNum
}

func (t *Table) grow() {
	old := t.entries
	oldUsed := t.used
	size := len(old) * 2
	t.entries = make([]entry, size)
	t.used = make([]uint64, size/64+1)
	mask := uint32(size - 1)
	for i, e := range old {
		if oldUsed[i/64]&(1<<(uint(i)%64)) == 0 {
			continue
		}
		j := mix32(e.key) & mask
		for t.isUsed(j) {
			j = (j + 1) & mask
		}
		t.setUsed(j)
		t.entries[j] = e
	}
}

// Range calls fn for every entry until fn returns false. Overwriting values
// of existing keys with Put is safe during iteration; inserting new keys is
// not, as the table may resize.
func (t *Table) Range(fn func(key, val uint32) bool) {
	for i := range t.entries {
		if !t.isUsed(uint32(i)) {
			continue
		}
		if !fn(t.entries[i].key, t.entries[i].val) {
			return
		}
	}
}
