package column

import (
	"context"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/ajitpratap0/colkit/pkg/batchfn"
	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/metrics"
)

// chunkBounds splits [0, n) into runs of size rows
func chunkBounds(n, size int, dropLast bool) [][]int {
	var chunks [][]int
	for start := 0; start < n; start += size {
		stop := min(start+size, n)
		if dropLast && stop-start < size {
			break
		}
		positions := make([]int, stop-start)
		for j := range positions {
			positions[j] = start + j
		}
		chunks = append(chunks, positions)
	}
	return chunks
}

func validateRun(rc runConfig) error {
	if rc.batchSize < 1 {
		return errors.Newf(errors.ErrorTypeConfig, "batch size must be positive, got %d", rc.batchSize).
			WithDetail("batch_size", rc.batchSize)
	}
	if rc.workers < 0 {
		return errors.Newf(errors.ErrorTypeConfig, "workers must not be negative, got %d", rc.workers).
			WithDetail("workers", rc.workers)
	}
	return nil
}

// chunk reads positions as a standalone column handed to user functions
func (c *Column) chunk(positions []int, materialize bool) (*Column, error) {
	b, err := c.GetBatch(positions, materialize)
	if err != nil {
		return nil, err
	}
	return New(b, WithFormatter(c.formatter), WithCollate(c.collate), WithLogger(c.log)), nil
}

// inspect settles the function's properties from the first rows
func (c *Column) inspect(fn any, rc runConfig) (*batchfn.Adapter, error) {
	opts := batchfn.Options{Batched: rc.batched, WithIndices: rc.withIndices}
	if c.Len() == 0 {
		return batchfn.Inspect(fn, opts, batchfn.Probe{})
	}

	row, err := c.GetCell(0, rc.materialize)
	if err != nil {
		return nil, err
	}
	positions := chunkBounds(min(2, c.Len()), 2, false)[0]
	batch, err := c.chunk(positions, rc.materialize)
	if err != nil {
		return nil, err
	}
	return batchfn.Inspect(fn, opts, batchfn.Probe{
		Row:          row,
		RowIndex:     0,
		Batch:        batch,
		BatchIndices: positions,
	})
}

// execute applies the adapter to every chunk. Outputs are indexed by chunk
// ordinal so worker scheduling never changes row order. The first error
// cancels the remaining chunks.
func (c *Column) execute(ctx context.Context, operation string, a *batchfn.Adapter, rc runConfig) ([][]int, [][]any, error) {
	chunks := chunkBounds(c.Len(), rc.batchSize, rc.dropLast)
	results := make([][]any, len(chunks))

	mode := "row"
	if a.Properties().Batched {
		mode = "batch"
	}

	work := func(i int) error {
		ch, err := c.chunk(chunks[i], rc.materialize)
		if err != nil {
			return err
		}
		out, err := a.Call(ch, chunks[i])
		if err != nil {
			metrics.RowsMapped.WithLabelValues(operation, mode, "failure").Add(float64(len(chunks[i])))
			return errors.Wrap(err, errors.ErrorTypeInvalidFunction, "chunk failed").
				WithDetail("chunk", i).
				WithDetail("first_row", chunks[i][0])
		}
		results[i] = out
		metrics.BatchesMapped.WithLabelValues(operation).Inc()
		metrics.RowsMapped.WithLabelValues(operation, mode, "success").Add(float64(len(out)))
		return nil
	}

	if rc.workers > 0 && len(chunks) > 1 {
		c.log.Debug("running chunks on worker pool",
			zap.String("column", c.id),
			zap.String("operation", operation),
			zap.Int("chunks", len(chunks)),
			zap.Int("workers", rc.workers))
		p := pool.New().
			WithContext(ctx).
			WithCancelOnError().
			WithFirstError().
			WithMaxGoroutines(rc.workers)
		for i := range chunks {
			p.Go(func(ctx context.Context) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				return work(i)
			})
		}
		if err := p.Wait(); err != nil {
			return nil, nil, err
		}
		return chunks, results, nil
	}

	for i := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if err := work(i); err != nil {
			return nil, nil, err
		}
	}
	return chunks, results, nil
}
