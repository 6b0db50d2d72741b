package cc

import (
	"errors"
	"fmt"
	"io"

	"github.com/dd0wney/cluso-components/pkg/edgestore"
	"github.com/dd0wney/cluso-components/pkg/logging"
	"github.com/dd0wney/cluso-components/pkg/metrics"
	"github.com/dd0wney/cluso-components/pkg/tabio"
)

// ErrCapacityExceeded reports more input edges than the declared capacity.
// Truncating silently would produce a labeling of a different graph, so
// overflow is fatal.
var ErrCapacityExceeded = errors.New("input exceeds declared edge capacity")

// BuildEdgeStore creates the edge store for a run, classifying setup
// failures: a zero capacity is a configuration error, everything else that
// can go wrong while creating, sizing or mapping the backing storage is a
// resource error.
func BuildEdgeStore(capacity int, backingPath string) (*edgestore.Store, error) {
	store, err := edgestore.New(capacity, backingPath)
	if err != nil {
		if errors.Is(err, edgestore.ErrZeroCapacity) {
			return nil, wrap("create edge store", KindConfig, err)
		}
		return nil, wrap("create edge store", KindResource, err)
	}
	return store, nil
}

// ReadGraph populates store from a line-oriented edge list on r. Lines with
// an out-of-range or negative endpoint are skipped (the one recoverable
// input condition); any other malformed line, a stream failure before the
// logical end of input, or running out of capacity is fatal.
func ReadGraph(r io.Reader, store *edgestore.Store, log logging.Logger, met *metrics.Registry) (skipped int, err error) {
	if log == nil {
		log = logging.Nop()
	}
	tr := tabio.NewReader(r)
	for {
		u, v, err := tr.ReadPair()
		if err == io.EOF {
			break
		}
		if errors.Is(err, tabio.ErrOutOfRange) {
			skipped++
			log.Warn("skipping edge with out-of-range endpoint", logging.F("line", tr.Line()))
			continue
		}
		if err != nil {
			return skipped, wrap("read graph", KindInput, err)
		}
		if !store.Append(u, v) {
			return skipped, wrap("read graph", KindInput,
				fmt.Errorf("line %d: %w (capacity %d)", tr.Line(), ErrCapacityExceeded, store.Cap()))
		}
	}
	if met != nil {
		met.EdgesRead.Add(float64(store.Len()))
		met.EdgesSkipped.Add(float64(skipped))
	}
	return skipped, nil
}

// WriteLabels emits the final (node, label) assignment, one pair per
// observed node, in the label table's iteration order.
func (d *Driver) WriteLabels(w *tabio.Writer) error {
	var werr error
	d.table.Range(func(node, label uint32) bool {
		if err := w.WritePair(node, label); err != nil {
			werr = err
			return false
		}
		return true
	})
	if werr != nil {
		return fmt.Errorf("write labels: %w", werr)
	}
	return nil
}
