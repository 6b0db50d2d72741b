// Package cc computes connected components of an undirected graph by
// iterative label propagation: every node starts as its own component and
// labels converge toward the minimum reachable node id, one merge pass at a
// time, until no edge spans two different labels. The algorithm trades time
// complexity against the traversal-based approach for a flat, predictable
// memory profile: the only large structures are the mapped edge array and
// the node → label table.
package cc

import (
	"github.com/dd0wney/cluso-components/pkg/edgestore"
	"github.com/dd0wney/cluso-components/pkg/labels"
	"github.com/dd0wney/cluso-components/pkg/logging"
	"github.com/dd0wney/cluso-components/pkg/metrics"
)

// State is the driver's lifecycle state.
type State int

const (
	StateRunning State = iota
	StateConverged
	StateError
)

// String returns the state's log representation.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateConverged:
		return "converged"
	case StateError:
		return "error"
	default:
		return "invalid"
	}
}

// Options configures a Driver.
type Options struct {
	// ReverseIndex enables the label → members index, which lets merge
	// application touch only affected nodes instead of rescanning the
	// whole label table. Purely an acceleration; results are identical.
	ReverseIndex bool

	Logger  logging.Logger
	Metrics *metrics.Registry
}

// Driver owns all mutable state of one components run: the edge store, the
// label table, the per-iteration merge set and the optional reverse index.
// It is strictly single-threaded.
type Driver struct {
	edges *edgestore.Store
	table *labels.Table
	index *labels.Index // nil when the acceleration is disabled

	state State
	iter  int

	log logging.Logger
	met *metrics.Registry
}

// NewDriver builds a driver over a populated edge store. The label table is
// initialized in one pass: every distinct endpoint becomes its own
// singleton component.
func NewDriver(edges *edgestore.Store, opts Options) *Driver {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	table := labels.NewTable(edges.Len())
	for i := 0; i < edges.Len(); i++ {
		u, v := edges.Edge(i)
		table.PutIfAbsent(u, u)
		table.PutIfAbsent(v, v)
	}

	d := &Driver{
		edges: edges,
		table: table,
		state: StateRunning,
		log:   log,
		met:   opts.Metrics,
	}
	if opts.ReverseIndex {
		d.index = labels.NewIndex()
	}

	if d.met != nil {
		d.met.NodesTotal.Set(float64(table.Len()))
		d.met.EdgesLive.Set(float64(edges.Len()))
		d.met.MappedBytes.Set(float64(edges.MappedBytes()))
	}
	d.log.Info("label table built",
		logging.F("nodes", table.Len()),
		logging.F("edges", edges.Len()))
	return d
}

// State returns the driver's current state.
func (d *Driver) State() State { return d.state }

// Iterations returns the number of completed merge passes.
func (d *Driver) Iterations() int { return d.iter }

// Nodes returns the number of distinct nodes observed.
func (d *Driver) Nodes() int { return d.table.Len() }

// Run advances the fixed-point loop until convergence or a fatal
// inconsistency.
func (d *Driver) Run() error {
	for d.state == StateRunning {
		if err := d.step(); err != nil {
			d.state = StateError
			return err
		}
	}
	return nil
}

// step performs one iteration: scan all live edges, prune redundant ones,
// collect pending merges, resolve merge chains and apply them.
func (d *Driver) step() error {
	merge := d.scan()

	if merge.Len() == 0 {
		d.state = StateConverged
		d.log.Info("converged",
			logging.F("iterations", d.iter),
			logging.F("edges_remaining", d.edges.Len()))
		return nil
	}

	resolveChains(merge)

	relabeled, err := d.apply(merge)
	if err != nil {
		return err
	}
	if relabeled == 0 {
		// A resolved, non-empty merge set must rehome at least one node;
		// anything else means the chain resolution or index maintenance
		// invariant broke.
		return wrap("apply merges", KindInconsistency, ErrNoProgress)
	}

	d.iter++
	if d.met != nil {
		d.met.Iterations.Inc()
		d.met.MergesRecorded.Add(float64(merge.Len()))
		d.met.NodesRelabeled.Add(float64(relabeled))
		d.met.EdgesLive.Set(float64(d.edges.Len()))
	}
	d.log.Info("iteration",
		logging.F("iteration", d.iter),
		logging.F("edges_remaining", d.edges.Len()),
		logging.F("merges", merge.Len()),
		logging.F("relabeled", relabeled))
	return nil
}

// scan walks every live edge. Edges whose endpoints already share a label
// are proof of an earlier merge and are swap-removed; the moved-in edge is
// examined at the same position before the cursor advances. Every edge
// still spanning two labels records a pending merge of the larger label
// into the smaller.
func (d *Driver) scan() *labels.Table {
	merge := labels.NewTable(0)
	pruned := 0

	i := 0
	for i < d.edges.Len() {
		u, v := d.edges.Edge(i)
		lu, _ := d.table.Get(u)
		lv, _ := d.table.Get(v)

		if lu == lv {
			d.edges.SwapRemove(i)
			pruned++
			continue
		}

		lo, hi := lu, lv
		if hi < lo {
			lo, hi = hi, lo
		}
		if cur, ok := merge.Get(hi); !ok || lo < cur {
			merge.Put(hi, lo)
		}
		i++
	}

	if pruned > 0 && d.met != nil {
		d.met.EdgesPruned.Add(float64(pruned))
	}
	return merge
}

// resolveChains collapses merge chains so every source maps directly to its
// ultimate target: if A→B and B→C, both end up pointing at C. The walk uses
// an explicit slice as its stack; an adversarial input can produce chains
// deep enough to make recursion a liability.
func resolveChains(merge *labels.Table) {
	var chain []uint32
	merge.Range(func(src, tgt uint32) bool {
		chain = chain[:0]
		cur, curTgt := src, tgt
		for {
			next, ok := merge.Get(curTgt)
			if !ok {
				break
			}
			chain = append(chain, cur)
			cur, curTgt = curTgt, next
		}
		for _, s := range chain {
			merge.Put(s, curTgt)
		}
		return true
	})
}

// apply rewrites labels according to the resolved merge set and returns the
// number of nodes actually relabeled.
func (d *Driver) apply(merge *labels.Table) (int, error) {
	if d.index != nil && d.index.Built() {
		return d.applyIndexed(merge)
	}
	return d.applyScan(merge), nil
}

// applyScan is the unindexed path: one pass over the whole label table,
// rewriting any label that is a merge source. When the reverse index is
// enabled, this same pass populates it with the post-merge labels, so the
// next iteration can take the indexed path.
func (d *Driver) applyScan(merge *labels.Table) int {
	relabeled := 0
	d.table.Range(func(node, label uint32) bool {
		if tgt, ok := merge.Get(label); ok {
			label = tgt
			d.table.Put(node, tgt)
			relabeled++
		}
		if d.index != nil {
			d.index.Add(label, node)
		}
		return true
	})
	return relabeled
}

// applyIndexed rehomes exactly the members of each merge source label. A
// source with no members means the index fell out of sync with the label
// table, which is fatal.
func (d *Driver) applyIndexed(merge *labels.Table) (int, error) {
	relabeled := 0
	var badLabel uint32
	bad := false
	merge.Range(func(src, tgt uint32) bool {
		nodes, ok := d.index.Take(src)
		if !ok {
			badLabel = src
			bad = true
			return false
		}
		for _, n := range nodes {
			d.table.Put(n, tgt)
			d.index.Add(tgt, n)
		}
		relabeled += len(nodes)
		return true
	})
	if bad {
		d.log.Error("reverse index inconsistent", logging.F("label", badLabel))
		return 0, wrap("apply merges", KindInconsistency, ErrNoMembers)
	}
	return relabeled, nil
}

// Labels calls fn for every observed node with its current label. After
// convergence this is the final (node, component) assignment.
func (d *Driver) Labels(fn func(node, label uint32) bool) {
	d.table.Range(fn)
}

// Label returns the current label of node.
func (d *Driver) Label(node uint32) (uint32, bool) {
	return d.table.Get(node)
}
