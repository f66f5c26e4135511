package column

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"github.com/ajitpratap0/colkit/pkg/columnar"
	"github.com/ajitpratap0/colkit/pkg/observability"
)

type loaded struct {
	col  *Column
	rows []any
}

// BatchIterator walks a column in chunks. It is restartable with Reset and
// not safe for concurrent use.
//
//	it := col.Batch(column.BatchSize(32))
//	for it.Next() {
//		b := it.Batch()
//		...
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
type BatchIterator struct {
	col    *Column
	rc     runConfig
	chunks [][]int

	next    int
	pending []loaded
	cur     loaded
	err     error
}

// Batch returns an iterator over chunks [i, i+size) of the column. With
// Workers(n) up to n chunks are read ahead concurrently.
func (c *Column) Batch(opts ...RunOption) *BatchIterator {
	rc := newRunConfig(opts)
	it := &BatchIterator{col: c, rc: rc}
	if err := validateRun(rc); err != nil {
		it.err = err
		return it
	}
	it.chunks = chunkBounds(c.Len(), rc.batchSize, rc.dropLast)
	return it
}

// Len returns the number of chunks in a full pass
func (it *BatchIterator) Len() int { return len(it.chunks) }

// Next advances to the next chunk. It returns false at the end or on error.
func (it *BatchIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if len(it.pending) == 0 {
		if it.next >= len(it.chunks) {
			it.cur = loaded{}
			return false
		}
		if err := it.fill(); err != nil {
			it.err = err
			it.cur = loaded{}
			return false
		}
	}
	it.cur = it.pending[0]
	it.pending = it.pending[1:]
	return true
}

// Batch returns the current chunk as a column, or nil with NoCollate
func (it *BatchIterator) Batch() *Column { return it.cur.col }

// Rows returns the current chunk's rows when NoCollate is set
func (it *BatchIterator) Rows() []any { return it.cur.rows }

// Err returns the error that stopped iteration
func (it *BatchIterator) Err() error { return it.err }

// Reset rewinds the iterator to the first chunk. A configuration error is
// kept.
func (it *BatchIterator) Reset() {
	if validateRun(it.rc) == nil {
		it.err = nil
	}
	it.next = 0
	it.pending = nil
	it.cur = loaded{}
}

// fill reads the next window of chunks, one chunk without workers
func (it *BatchIterator) fill() error {
	window := 1
	if it.rc.workers > 0 {
		window = it.rc.workers
	}
	end := min(it.next+window, len(it.chunks))
	out := make([]loaded, end-it.next)
	rows := 0
	for _, ch := range it.chunks[it.next:end] {
		rows += len(ch)
	}

	err := observability.TraceOperation(it.rc.ctx, "batch", it.col.Kind().String(), rows, func(ctx context.Context) error {
		if len(out) == 1 {
			var err error
			out[0], err = it.load(it.chunks[it.next])
			return err
		}
		p := pool.New().
			WithContext(ctx).
			WithCancelOnError().
			WithFirstError().
			WithMaxGoroutines(it.rc.workers)
		for i := range out {
			positions := it.chunks[it.next+i]
			p.Go(func(context.Context) error {
				var err error
				out[i], err = it.load(positions)
				return err
			})
		}
		return p.Wait()
	})
	if err != nil {
		return err
	}
	it.next = end
	it.pending = out
	return nil
}

// load reads one chunk. Backends that gather rows in one step serve the
// chunk directly; others are read row by row and collated.
func (it *BatchIterator) load(positions []int) (loaded, error) {
	c := it.col
	_, taker := c.backend.(columnar.Taker)
	if it.rc.collate && taker {
		ch, err := c.chunk(positions, it.rc.materialize)
		return loaded{col: ch}, err
	}

	values := make([]any, len(positions))
	for j, p := range positions {
		v, err := c.GetCell(p, it.rc.materialize)
		if err != nil {
			return loaded{}, err
		}
		values[j] = v
	}
	if !it.rc.collate {
		return loaded{rows: values}, nil
	}
	b, err := c.collateValues(values, it.rc.materialize)
	if err != nil {
		return loaded{}, err
	}
	return loaded{col: New(b, WithFormatter(c.formatter), WithCollate(c.collate), WithLogger(c.log))}, nil
}
