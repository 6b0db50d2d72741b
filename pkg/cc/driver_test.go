package cc

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-components/pkg/edgestore"
	"github.com/dd0wney/cluso-components/pkg/tabio"
)

func newStore(t *testing.T, capacity int, edges [][2]uint32) *edgestore.Store {
	t.Helper()
	s, err := edgestore.New(capacity, "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	for _, e := range edges {
		require.True(t, s.Append(e[0], e[1]))
	}
	return s
}

// runLabeling converges a driver over edges and returns the final
// node → label assignment.
func runLabeling(t *testing.T, edges [][2]uint32, reverseIndex bool) map[uint32]uint32 {
	t.Helper()
	s := newStore(t, len(edges)+1, edges)
	d := NewDriver(s, Options{ReverseIndex: reverseIndex})
	require.NoError(t, d.Run())
	require.Equal(t, StateConverged, d.State())

	out := make(map[uint32]uint32)
	d.Labels(func(node, label uint32) bool {
		_, dup := out[node]
		require.False(t, dup, "node %d emitted twice", node)
		out[node] = label
		return true
	})
	return out
}

func TestDriver_SimpleChain(t *testing.T) {
	// Scenario: {(1,2),(2,3)} collapses to component 1.
	got := runLabeling(t, [][2]uint32{{1, 2}, {2, 3}}, false)
	assert.Equal(t, map[uint32]uint32{1: 1, 2: 1, 3: 1}, got)
}

func TestDriver_DisjointComponents(t *testing.T) {
	got := runLabeling(t, [][2]uint32{{1, 2}, {3, 4}}, false)
	assert.Equal(t, map[uint32]uint32{1: 1, 2: 1, 3: 3, 4: 3}, got)
}

func TestDriver_DuplicateEdges(t *testing.T) {
	single := runLabeling(t, [][2]uint32{{1, 2}}, false)
	doubled := runLabeling(t, [][2]uint32{{1, 2}, {1, 2}}, false)
	assert.Equal(t, single, doubled)
}

func TestDriver_SingleEdge(t *testing.T) {
	got := runLabeling(t, [][2]uint32{{5, 9}}, false)
	assert.Equal(t, map[uint32]uint32{5: 5, 9: 5}, got)
}

func TestDriver_SelfLoop(t *testing.T) {
	got := runLabeling(t, [][2]uint32{{7, 7}, {1, 2}}, false)
	assert.Equal(t, map[uint32]uint32{7: 7, 1: 1, 2: 1}, got)
}

func TestDriver_EmptyGraph(t *testing.T) {
	s := newStore(t, 1, nil)
	d := NewDriver(s, Options{})
	require.NoError(t, d.Run())
	assert.Equal(t, StateConverged, d.State())
	assert.Equal(t, 0, d.Nodes())
	assert.Equal(t, 0, d.Iterations())
}

// A long path ordered against the propagation direction needs several
// iterations; the label must still converge to the minimum reachable id.
func TestDriver_LongChainConverges(t *testing.T) {
	var edges [][2]uint32
	for i := uint32(100); i > 1; i-- {
		edges = append(edges, [2]uint32{i, i - 1})
	}
	got := runLabeling(t, edges, false)
	require.Len(t, got, 100)
	for node, label := range got {
		assert.Equal(t, uint32(1), label, "node %d", node)
	}
}

func TestDriver_MinimumLabelWins(t *testing.T) {
	// Star around a high-numbered hub; minimum member id labels all.
	got := runLabeling(t, [][2]uint32{{900, 17}, {900, 400}, {900, 62}}, false)
	for node, label := range got {
		assert.Equal(t, uint32(17), label, "node %d", node)
	}
}

func TestDriver_ReverseIndexMatchesScan(t *testing.T) {
	edges := [][2]uint32{
		{10, 20}, {20, 30}, {40, 50}, {30, 40},
		{100, 200}, {300, 100},
		{7, 7},
	}
	plain := runLabeling(t, edges, false)
	indexed := runLabeling(t, edges, true)
	assert.Equal(t, plain, indexed)
}

// Re-running on the original edges plus edges already implied by the first
// labeling must produce the identical assignment.
func TestDriver_Idempotence(t *testing.T) {
	edges := [][2]uint32{{1, 2}, {2, 3}, {10, 11}}
	first := runLabeling(t, edges, false)

	augmented := append([][2]uint32{}, edges...)
	augmented = append(augmented, [2]uint32{1, 3}) // implied by {1,2},{2,3}
	second := runLabeling(t, augmented, false)

	assert.Equal(t, first, second)
}

func TestDriver_AllEdgesShareLabel(t *testing.T) {
	edges := [][2]uint32{{5, 2}, {8, 5}, {2, 9}, {14, 8}, {3, 4}}
	got := runLabeling(t, edges, true)
	for _, e := range edges {
		assert.Equal(t, got[e[0]], got[e[1]], "edge (%d,%d)", e[0], e[1])
	}
	assert.NotEqual(t, got[2], got[3], "disconnected nodes must differ")
}

func TestReadGraph_Basic(t *testing.T) {
	s, err := edgestore.New(10, "")
	require.NoError(t, err)
	defer s.Close()

	skipped, err := ReadGraph(strings.NewReader("1\t2\n2\t3\n"), s, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 2, s.Len())
}

func TestReadGraph_SkipsOutOfRange(t *testing.T) {
	s, err := edgestore.New(10, "")
	require.NoError(t, err)
	defer s.Close()

	skipped, err := ReadGraph(strings.NewReader("5\t9\n-1\t4\n"), s, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Equal(t, 1, s.Len())

	got := runFromStore(t, s)
	assert.Equal(t, map[uint32]uint32{5: 5, 9: 5}, got)
}

func TestReadGraph_MalformedIsFatal(t *testing.T) {
	s, err := edgestore.New(10, "")
	require.NoError(t, err)
	defer s.Close()

	_, err = ReadGraph(strings.NewReader("1\t2\nnot numbers\n"), s, nil, nil)
	require.Error(t, err)
	assert.Equal(t, KindInput, Classify(err))
}

func TestReadGraph_CapacityExceeded(t *testing.T) {
	s, err := edgestore.New(2, "")
	require.NoError(t, err)
	defer s.Close()

	_, err = ReadGraph(strings.NewReader("1\t2\n3\t4\n5\t6\n"), s, nil, nil)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, KindInput, Classify(err))
}

func TestBuildEdgeStore_ZeroCapacityIsConfigError(t *testing.T) {
	_, err := BuildEdgeStore(0, "")
	require.Error(t, err)
	assert.Equal(t, KindConfig, Classify(err))
}

func runFromStore(t *testing.T, s *edgestore.Store) map[uint32]uint32 {
	t.Helper()
	d := NewDriver(s, Options{})
	require.NoError(t, d.Run())
	out := make(map[uint32]uint32)
	d.Labels(func(node, label uint32) bool {
		out[node] = label
		return true
	})
	return out
}

func TestWriteLabels_Format(t *testing.T) {
	s := newStore(t, 2, [][2]uint32{{1, 2}})
	d := NewDriver(s, Options{})
	require.NoError(t, d.Run())

	var buf bytes.Buffer
	w := tabio.NewWriter(&buf, false)
	require.NoError(t, d.WriteLabels(w))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.ElementsMatch(t, []string{"1\t1", "2\t1"}, lines)
}

func TestClassify_Inconsistency(t *testing.T) {
	err := wrap("apply merges", KindInconsistency, ErrNoProgress)
	assert.Equal(t, KindInconsistency, Classify(err))
	assert.ErrorIs(t, err, ErrNoProgress)
}

func TestReadGraph_EmptyInput(t *testing.T) {
	s, err := edgestore.New(1, "")
	require.NoError(t, err)
	defer s.Close()

	skipped, err := ReadGraph(io.LimitReader(strings.NewReader(""), 0), s, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 0, s.Len())
}
