// Package edgestore provides a fixed-capacity array of undirected edges
// backed by mapped memory, so the edge set of a very large graph can spill
// to disk through the OS page cache instead of exhausting RAM.
package edgestore

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/edsrzf/mmap-go"
)

const bytesPerEdge = 2 * 4 // two uint32 endpoints

// Store holds up to Cap() edges as two parallel uint32 arrays living in a
// single mapped region. With a backing path the region is a file mapping:
// the file is created exclusively, sized up front, mapped read-write and
// immediately unlinked, so the kernel can page the arrays to disk while the
// program keeps using plain slice indexing and no artifact survives the
// process. Without a backing path the region is anonymous memory.
//
// Capacity is fixed at creation; there is no growth path.
type Store struct {
	mem    mmap.MMap
	u, v   []uint32
	n      int
	cap    int
	file   *os.File // nil in anonymous mode
	closed bool
}

// New creates a store for up to capacity edges. backingPath selects the
// disk-backed mode; it must name a file that does not exist yet. An empty
// backingPath keeps the arrays in anonymous memory.
func New(capacity int, backingPath string) (*Store, error) {
	if capacity <= 0 {
		return nil, ErrZeroCapacity
	}
	size := capacity * bytesPerEdge

	s := &Store{cap: capacity}
	if backingPath == "" {
		mem, err := mmap.MapRegion(nil, size, mmap.RDWR, mmap.ANON, 0)
		if err != nil {
			return nil, fmt.Errorf("edgestore: anonymous mapping of %d bytes: %w", size, err)
		}
		s.mem = mem
	} else {
		f, err := os.OpenFile(backingPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
		if err != nil {
			if os.IsExist(err) {
				return nil, fmt.Errorf("edgestore: backing file %s: %w", backingPath, ErrBackingExists)
			}
			return nil, fmt.Errorf("edgestore: create backing file %s: %w", backingPath, err)
		}
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			os.Remove(backingPath)
			return nil, fmt.Errorf("edgestore: size backing file %s to %d bytes: %w", backingPath, size, err)
		}
		mem, err := mmap.Map(f, mmap.RDWR, 0)
		if err != nil {
			f.Close()
			os.Remove(backingPath)
			return nil, fmt.Errorf("edgestore: map backing file %s: %w", backingPath, err)
		}
		// Unlink right away: the mapping keeps the storage alive, and an
		// aborted run must not leave a large temporary file behind.
		if err := os.Remove(backingPath); err != nil {
			mem.Unmap()
			f.Close()
			return nil, fmt.Errorf("edgestore: unlink backing file %s: %w", backingPath, err)
		}
		s.mem = mem
		s.file = f
	}

	words := unsafe.Slice((*uint32)(unsafe.Pointer(&s.mem[0])), 2*capacity)
	s.u = words[:capacity]
	s.v = words[capacity:]
	return s, nil
}

// Len returns the number of live edges.
func (s *Store) Len() int { return s.n }

// Cap returns the fixed capacity.
func (s *Store) Cap() int { return s.cap }

// Append adds an edge and reports whether it fit.
func (s *Store) Append(u, v uint32) bool {
	if s.n >= s.cap {
		return false
	}
	s.u[s.n] = u
	s.v[s.n] = v
	s.n++
	return true
}

// Edge returns the endpoints of edge i.
func (s *Store) Edge(i int) (u, v uint32) {
	return s.u[i], s.v[i]
}

// SwapRemove overwrites edge i with the last live edge and shrinks the
// store by one. Order is not preserved; no edge is ever duplicated. Callers
// iterating over the store must re-examine position i, which now holds the
// moved-in edge.
func (s *Store) SwapRemove(i int) {
	last := s.n - 1
	s.u[i] = s.u[last]
	s.v[i] = s.v[last]
	s.n = last
}

// Close releases the mapping, and the backing file descriptor if one was
// used. It is safe to call more than once.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.u, s.v = nil, nil

	err := s.mem.Unmap()
	if s.file != nil {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
		s.file = nil
	}
	return err
}

// MappedBytes returns the size of the mapped region.
func (s *Store) MappedBytes() int { return s.cap * bytesPerEdge }
