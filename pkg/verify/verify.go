// Package verify cross-checks two independently produced component
// labelings of the same node set. It groups the second labeling by label
// and requires every group to collapse to one consistent label in the
// first; the check is direction-sensitive, so a full validation runs it
// both ways.
package verify

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"

	"github.com/dd0wney/cluso-components/pkg/tabio"
)

// Sentinel errors for the two discrepancy classes.
var (
	ErrNodeMissing   = errors.New("node not present in first labeling")
	ErrLabelMismatch = errors.New("labelings disagree")
)

// Pair is one (node, label) assignment.
type Pair struct {
	Node  uint32
	Label uint32
}

// ReadLabeling loads all (node, label) pairs from path. The file is
// accessed through a read-only mapping, since labelings of large graphs
// easily run to gigabytes; a ".sz" suffix selects snappy-framed input as
// produced by the run command's compress option.
func ReadLabeling(path string) ([]Pair, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labeling %s: %w", path, err)
	}
	defer r.Close()

	var src io.Reader = io.NewSectionReader(r, 0, int64(r.Len()))
	if strings.HasSuffix(path, ".sz") {
		src = snappy.NewReader(src)
	}

	var pairs []Pair
	tr := tabio.NewReader(src)
	for {
		node, label, err := tr.ReadPair()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read labeling %s: %w", path, err)
		}
		pairs = append(pairs, Pair{Node: node, Label: label})
	}
	return pairs, nil
}

// Compare checks the labeling b against the labeling a. For every group of
// nodes sharing a label in b, each member must exist in a and the whole
// group must map to a single label there. It returns the first discrepancy
// found.
func Compare(a, b []Pair) error {
	if len(b) == 0 {
		return nil
	}

	// First labeling sorted by node id for binary search, second by label
	// so groups are contiguous.
	byNode := append([]Pair(nil), a...)
	sort.Slice(byNode, func(i, j int) bool { return byNode[i].Node < byNode[j].Node })
	byLabel := append([]Pair(nil), b...)
	sort.Slice(byLabel, func(i, j int) bool { return byLabel[i].Label < byLabel[j].Label })

	curLabel := byLabel[0].Label + 1 // guaranteed not to match the first group
	var want uint32
	for _, x := range byLabel {
		i := sort.Search(len(byNode), func(i int) bool { return byNode[i].Node >= x.Node })
		if i == len(byNode) || byNode[i].Node != x.Node {
			return fmt.Errorf("node %d: %w", x.Node, ErrNodeMissing)
		}
		if x.Label != curLabel {
			// New group in b; remember what a calls it.
			curLabel = x.Label
			want = byNode[i].Label
			continue
		}
		if byNode[i].Label != want {
			return fmt.Errorf("node %d: labeled %d, group expects %d: %w",
				x.Node, byNode[i].Label, want, ErrLabelMismatch)
		}
	}
	return nil
}

// Files loads two labeling files and compares them both ways.
func Files(path1, path2 string) error {
	a, err := ReadLabeling(path1)
	if err != nil {
		return err
	}
	b, err := ReadLabeling(path2)
	if err != nil {
		return err
	}
	if err := Compare(a, b); err != nil {
		return fmt.Errorf("%s against %s: %w", path2, path1, err)
	}
	if err := Compare(b, a); err != nil {
		return fmt.Errorf("%s against %s: %w", path1, path2, err)
	}
	return nil
}
