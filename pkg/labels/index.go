package labels

// Index is the reverse mapping from a component label to the node ids
// currently carrying it. It lets the driver relabel exactly the members of
// a merged component instead of rescanning the whole label table.
//
// The builtin map is fine here: values are slices, the runtime hashes keys
// with its own mixed hash, and the index only exists when the acceleration
// is enabled.
type Index struct {
	members map[uint32][]uint32
}

// NewIndex creates an empty reverse index.
func NewIndex() *Index {
	return &Index{members: make(map[uint32][]uint32)}
}

// Built reports whether the index has been populated.
func (x *Index) Built() bool { return len(x.members) > 0 }

// Add records node as a member of label.
func (x *Index) Add(label, node uint32) {
	x.members[label] = append(x.members[label], node)
}

// Take removes and returns all members of label. ok is false if the label
// has no members, which the driver treats as an internal inconsistency when
// the label was a pending merge source.
func (x *Index) Take(label uint32) (nodes []uint32, ok bool) {
	nodes, ok = x.members[label]
	if !ok || len(nodes) == 0 {
		return nil, false
	}
	delete(x.members, label)
	return nodes, true
}

// Labels returns the number of distinct labels present.
func (x *Index) Labels() int { return len(x.members) }
