package column

import (
	"context"

	"github.com/ajitpratap0/colkit/pkg/metrics"
	"github.com/ajitpratap0/colkit/pkg/observability"
	"github.com/ajitpratap0/colkit/pkg/sample"
)

// Sample returns a lazy selection of randomly drawn rows. Without N or Frac
// a single row is drawn.
func (c *Column) Sample(opts ...sample.Option) (*Column, error) {
	timer := metrics.NewTimer("sample")
	defer timer.ObserveOperation(c.Kind().String())

	var out *Column
	err := observability.TraceOperation(context.Background(), "sample", c.Kind().String(), c.Len(), func(context.Context) error {
		positions, err := sample.Draw(c.Len(), opts...)
		if err != nil {
			return err
		}
		b, err := c.GetBatch(positions, false)
		if err != nil {
			return err
		}
		out = c.derive(b)
		return out.record("sample", []string{c.id}, map[string]any{"rows": len(positions)})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
