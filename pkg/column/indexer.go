package column

import (
	"github.com/ajitpratap0/colkit/pkg/columnar"
	"github.com/ajitpratap0/colkit/pkg/errors"
)

// Indexer is a short-lived read handle over a column. It owns nothing and
// only fixes how the next read resolves: lazily or materialized, by
// position or by label.
type Indexer struct {
	col         *Column
	materialize bool
	byLabel     bool
}

// Lz returns a lazy positional indexer
func (c *Column) Lz() Indexer { return Indexer{col: c} }

// Mz returns a materializing positional indexer
func (c *Column) Mz() Indexer { return Indexer{col: c, materialize: true} }

// Loc returns a lazy indexer resolving integers against row labels. Only
// series carry labels; on other kinds labels are positions.
func (c *Column) Loc() Indexer { return Indexer{col: c, byLabel: true} }

// Mz switches the indexer to materialized reads
func (ix Indexer) Mz() Indexer {
	ix.materialize = true
	return ix
}

// Loc switches the indexer to label lookup
func (ix Indexer) Loc() Indexer {
	ix.byLabel = true
	return ix
}

// Materialize reports whether reads load deferred cells
func (ix Indexer) Materialize() bool { return ix.materialize }

// Len returns the length of the underlying column
func (ix Indexer) Len() int { return ix.col.Len() }

// Get reads idx like Column.Get with the indexer's mode
func (ix Indexer) Get(idx any) (any, error) {
	if ix.byLabel {
		var err error
		if idx, err = ix.col.resolveLabels(idx); err != nil {
			return nil, err
		}
	}
	return ix.col.Get(idx, ix.materialize)
}

// resolveLabels maps integer labels to positions. Slices and masks are
// positional and pass through.
func (c *Column) resolveLabels(idx any) (any, error) {
	s, ok := c.backend.(*columnar.Series)
	if !ok {
		return idx, nil
	}

	positions := make(map[int]int, len(s.Index))
	for i := len(s.Index) - 1; i >= 0; i-- {
		positions[s.Index[i]] = i
	}
	lookup := func(label int) (int, error) {
		p, ok := positions[label]
		if !ok {
			return 0, errors.Newf(errors.ErrorTypeInvalidIndex, "label %d not found", label).
				WithDetail("label", label)
		}
		return p, nil
	}

	switch v := idx.(type) {
	case int:
		return lookup(v)
	case int64:
		return lookup(int(v))
	case int32:
		return lookup(int(v))
	case []int:
		return lookupAll(v, lookup)
	case []int64:
		labels := make([]int, len(v))
		for i, l := range v {
			labels[i] = int(l)
		}
		return lookupAll(labels, lookup)
	}
	return idx, nil
}

func lookupAll(labels []int, lookup func(int) (int, error)) ([]int, error) {
	out := make([]int, len(labels))
	for i, l := range labels {
		p, err := lookup(l)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
