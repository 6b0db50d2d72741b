package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_PutGet(t *testing.T) {
	tbl := NewTable(0)

	tbl.Put(42, 7)
	v, ok := tbl.Get(42)
	require.True(t, ok)
	assert.Equal(t, uint32(7), v)

	_, ok = tbl.Get(43)
	assert.False(t, ok)

	tbl.Put(42, 3)
	v, _ = tbl.Get(42)
	assert.Equal(t, uint32(3), v)
	assert.Equal(t, 1, tbl.Len())
}

func TestTable_ZeroKey(t *testing.T) {
	tbl := NewTable(0)

	// Node id 0 is a valid key and must not be confused with an empty slot.
	_, ok := tbl.Get(0)
	require.False(t, ok)

	tbl.Put(0, 0)
	v, ok := tbl.Get(0)
	require.True(t, ok)
	assert.Equal(t, uint32(0), v)
	assert.Equal(t, 1, tbl.Len())
}

func TestTable_PutIfAbsent(t *testing.T) {
	tbl := NewTable(0)

	assert.True(t, tbl.PutIfAbsent(5, 5))
	assert.False(t, tbl.PutIfAbsent(5, 99))

	v, _ := tbl.Get(5)
	assert.Equal(t, uint32(5), v)
}

func TestTable_GrowKeepsEntries(t *testing.T) {
	tbl := NewTable(0)

	const n = 10000
	for i := uint32(0); i < n; i++ {
		tbl.Put(i, i*2)
	}
	require.Equal(t, n, tbl.Len())

	for i := uint32(0); i < n; i++ {
		v, ok := tbl.Get(i)
		require.True(t, ok, "key %d missing after growth", i)
		require.Equal(t, i*2, v)
	}
}

// Sequential ids are the worst case for a pass-through hash; with mix32
// they must not cluster badly enough to break insertion at scale.
func TestTable_SequentialKeys(t *testing.T) {
	tbl := NewTable(1 << 16)
	for i := uint32(0); i < 1<<16; i++ {
		tbl.Put(i<<12, i) // low 12 bits all zero
	}
	assert.Equal(t, 1<<16, tbl.Len())
	v, ok := tbl.Get(5 << 12)
	require.True(t, ok)
	assert.Equal(t, uint32(5), v)
}

func TestTable_RangeVisitsAll(t *testing.T) {
	tbl := NewTable(0)
	want := map[uint32]uint32{1: 10, 2: 20, 3: 30, 0: 99}
	for k, v := range want {
		tbl.Put(k, v)
	}

	got := make(map[uint32]uint32)
	tbl.Range(func(k, v uint32) bool {
		got[k] = v
		return true
	})
	assert.Equal(t, want, got)
}

func TestTable_RangeEarlyStop(t *testing.T) {
	tbl := NewTable(0)
	for i := uint32(0); i < 100; i++ {
		tbl.Put(i, i)
	}
	visits := 0
	tbl.Range(func(k, v uint32) bool {
		visits++
		return visits < 5
	})
	assert.Equal(t, 5, visits)
}

// Overwriting values of existing keys during Range is part of the Table
// contract; the apply pass of the driver depends on it.
func TestTable_PutDuringRange(t *testing.T) {
	tbl := NewTable(0)
	for i := uint32(0); i < 64; i++ {
		tbl.Put(i, i)
	}
	tbl.Range(func(k, v uint32) bool {
		tbl.Put(k, 0)
		return true
	})
	tbl.Range(func(k, v uint32) bool {
		assert.Equal(t, uint32(0), v)
		return true
	})
}

func TestMix32_SpreadsLowEntropyBits(t *testing.T) {
	// Sequential inputs shifted left: without mixing they would all land
	// in slot 0 of any power-of-two table up to 2^12.
	seen := make(map[uint32]bool)
	for i := uint32(0); i < 1024; i++ {
		seen[mix32(i<<12)&1023] = true
	}
	// A decent avalanche should hit a large fraction of the 1024 buckets.
	assert.Greater(t, len(seen), 500)
}

func TestIndex_AddTake(t *testing.T) {
	x := NewIndex()
	require.False(t, x.Built())

	x.Add(1, 10)
	x.Add(1, 11)
	x.Add(2, 20)
	require.True(t, x.Built())
	assert.Equal(t, 2, x.Labels())

	nodes, ok := x.Take(1)
	require.True(t, ok)
	assert.ElementsMatch(t, []uint32{10, 11}, nodes)

	_, ok = x.Take(1)
	assert.False(t, ok, "taking a drained label must fail")

	_, ok = x.Take(99)
	assert.False(t, ok, "taking an unknown label must fail")
}
