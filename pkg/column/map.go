package column

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/metrics"
	"github.com/ajitpratap0/colkit/pkg/observability"
)

// Map applies fn to every row and returns the collected outputs as a new
// column whose kind follows the first output. fn may take one row or a whole
// chunk (see RunOption); its shape is inspected once before the run.
//
// An empty column yields nil without calling fn. Any error aborts the run
// and no output column is produced.
func (c *Column) Map(fn any, opts ...RunOption) (*Column, error) {
	rc := newRunConfig(opts)
	if err := validateRun(rc); err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		c.log.Info("map on empty column produced no output", zap.String("column", c.id))
		return nil, nil
	}

	timer := metrics.NewTimer("map")
	defer timer.ObserveOperation(c.Kind().String())

	var out *Column
	err := observability.TraceOperation(rc.ctx, "map", c.Kind().String(), c.Len(), func(ctx context.Context) error {
		a, err := c.inspect(fn, rc)
		if err != nil {
			return err
		}
		_, results, err := c.execute(ctx, "map", a, rc)
		if err != nil {
			return err
		}

		w := NewWriter(c)
		for _, r := range results {
			if err := w.Write(r); err != nil {
				return err
			}
		}
		if out, err = w.Finalize(); err != nil {
			return err
		}
		return out.record("map", []string{c.id}, map[string]any{
			"batched":    a.Properties().Batched,
			"batch_size": rc.batchSize,
			"rows":       out.Len(),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Filter keeps the rows for which fn returns true, in order, as an eager
// selection. fn must return a bool per row; an empty column is returned
// unchanged without calling fn.
func (c *Column) Filter(fn any, opts ...RunOption) (*Column, error) {
	rc := newRunConfig(opts)
	if err := validateRun(rc); err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		c.log.Info("filter on empty column returned it unchanged", zap.String("column", c.id))
		return c, nil
	}

	timer := metrics.NewTimer("filter")
	defer timer.ObserveOperation(c.Kind().String())

	var out *Column
	err := observability.TraceOperation(rc.ctx, "filter", c.Kind().String(), c.Len(), func(ctx context.Context) error {
		a, err := c.inspect(fn, rc)
		if err != nil {
			return err
		}
		if !a.Properties().BoolOutput {
			return errors.New(errors.ErrorTypeInvalidFunctionOutput, "filter function must return bool").
				WithDetail("properties", a.Properties().String())
		}
		chunks, results, err := c.execute(ctx, "filter", a, rc)
		if err != nil {
			return err
		}

		var keep []int
		for i, r := range results {
			for j, v := range r {
				ok, isBool := v.(bool)
				if !isBool {
					return errors.Newf(errors.ErrorTypeInvalidFunctionOutput, "filter function returned %T for row %d", v, chunks[i][j]).
						WithDetail("row", chunks[i][j])
				}
				if ok {
					keep = append(keep, chunks[i][j])
				}
			}
		}
		if keep == nil {
			keep = []int{}
		}

		b, err := c.GetBatch(keep, true)
		if err != nil {
			return err
		}
		out = c.derive(b)
		metrics.FilterSelectivity.Observe(float64(len(keep)) / float64(c.Len()))
		return out.record("filter", []string{c.id}, map[string]any{
			"kept": len(keep),
			"rows": c.Len(),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
