package column

import (
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/ajitpratap0/colkit/pkg/batchfn"
	"github.com/ajitpratap0/colkit/pkg/columnar"
	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/formatter"
	"github.com/ajitpratap0/colkit/pkg/index"
	"github.com/ajitpratap0/colkit/pkg/logger"
	"github.com/ajitpratap0/colkit/pkg/provenance"
)

// CollateFunc folds per-row values into a backend. It replaces the default
// kind-preserving collation of a column.
type CollateFunc func(values []any) (columnar.Backend, error)

// Column is a sequence of rows over a single backend. Reads are safe for
// concurrent use; writes are not.
type Column struct {
	id        string
	backend   columnar.Backend
	formatter formatter.Formatter
	collate   CollateFunc
	registry  *provenance.Registry
	log       *zap.Logger
}

// Option configures a new column
type Option func(*Column)

// WithFormatter sets the display formatter
func WithFormatter(f formatter.Formatter) Option {
	return func(c *Column) {
		if f != nil {
			c.formatter = f
		}
	}
}

// WithCollate overrides how batches read from the column are folded
func WithCollate(fn CollateFunc) Option {
	return func(c *Column) { c.collate = fn }
}

// WithProvenance records every derivation of the column, and of columns
// derived from it, in reg
func WithProvenance(reg *provenance.Registry) Option {
	return func(c *Column) { c.registry = reg }
}

// WithLogger sets the logger used by column operations
func WithLogger(l *zap.Logger) Option {
	return func(c *Column) { c.log = l }
}

// New wraps b in a column. A nil backend is an empty column.
func New(b columnar.Backend, opts ...Option) *Column {
	c := &Column{
		id:        ulid.Make().String(),
		backend:   b,
		formatter: formatter.NewBasic(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get()
	}
	c.log.Debug("column created",
		zap.String("column", c.id),
		zap.Stringer("kind", c.Kind()),
		zap.Int("rows", c.Len()))
	return c
}

// ID returns the column identity. IDs sort in creation order.
func (c *Column) ID() string { return c.id }

// Backend returns the storage behind the column
func (c *Column) Backend() columnar.Backend { return c.backend }

// Registry returns the provenance registry, or nil
func (c *Column) Registry() *provenance.Registry { return c.registry }

// Kind reports the backend kind. An empty column without a backend is a list.
func (c *Column) Kind() columnar.Kind {
	if c.backend == nil {
		return columnar.KindList
	}
	return c.backend.Kind()
}

// Len returns the number of rows
func (c *Column) Len() int {
	if c.backend == nil {
		return 0
	}
	return c.backend.Len()
}

// Formatter returns the display formatter
func (c *Column) Formatter() formatter.Formatter { return c.formatter }

// SetFormatter replaces the display formatter. nil restores the default.
func (c *Column) SetFormatter(f formatter.Formatter) {
	if f == nil {
		f = formatter.NewBasic()
	}
	c.formatter = f
}

// GetCell returns row i. With materialize, deferred cells are loaded.
func (c *Column) GetCell(i int, materialize bool) (any, error) {
	if c.backend == nil {
		return nil, errors.Newf(errors.ErrorTypeIndexOutOfRange, "row %d out of range for length 0", i).
			WithDetail("index", i).
			WithDetail("length", 0)
	}
	return c.backend.Cell(i, materialize)
}

// GetBatch reads the rows at positions and folds them into one backend. The
// result never shares storage with the column.
func (c *Column) GetBatch(positions []int, materialize bool) (columnar.Backend, error) {
	if t, ok := c.backend.(columnar.Taker); ok && c.collate == nil && !(materialize && c.Kind() == columnar.KindCell) {
		n := c.Len()
		for _, p := range positions {
			if p < 0 || p >= n {
				return nil, errors.Newf(errors.ErrorTypeIndexOutOfRange, "row %d out of range for length %d", p, n).
					WithDetail("index", p).
					WithDetail("length", n)
			}
		}
		return t.Take(positions), nil
	}

	values := make([]any, len(positions))
	for j, p := range positions {
		v, err := c.GetCell(p, materialize)
		if err != nil {
			return nil, err
		}
		values[j] = v
	}
	return c.collateValues(values, materialize)
}

func (c *Column) collateValues(values []any, materialize bool) (columnar.Backend, error) {
	switch {
	case c.collate != nil:
		return c.collate(values)
	case materialize && c.Kind() == columnar.KindCell:
		return columnar.Collate(values)
	default:
		return columnar.CollateAs(c.Kind(), values)
	}
}

// Get reads idx, any expression index.Translate accepts. A scalar index
// returns the cell value; anything else returns a new column.
func (c *Column) Get(idx any, materialize bool) (any, error) {
	n, err := index.Translate(idx, c.Len())
	if err != nil {
		return nil, err
	}
	if n.Scalar {
		return c.GetCell(n.Pos, materialize)
	}
	b, err := c.GetBatch(n.Positions, materialize)
	if err != nil {
		return nil, err
	}
	out := c.derive(b)
	if err := out.record("get", []string{c.id}, map[string]any{
		"rows":        len(n.Positions),
		"materialize": materialize,
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// At is the eager read: Get(idx, true)
func (c *Column) At(idx any) (any, error) {
	return c.Get(idx, true)
}

// Select is Get for indices that select rows rather than one cell
func (c *Column) Select(idx any, materialize bool) (*Column, error) {
	if !index.IsBatch(idx) {
		return nil, errors.Newf(errors.ErrorTypeInvalidIndex, "index %v selects a single row", idx)
	}
	v, err := c.Get(idx, materialize)
	if err != nil {
		return nil, err
	}
	return v.(*Column), nil
}

// Set writes value at idx. A scalar index writes one cell; otherwise value
// must be a sequence with one item per selected row. A failed assignment
// leaves every row unchanged.
func (c *Column) Set(idx any, value any) error {
	n, err := index.Translate(idx, c.Len())
	if err != nil {
		return err
	}

	rows := 1
	if n.Scalar {
		if err := c.backend.SetCell(n.Pos, value); err != nil {
			return err
		}
	} else {
		values, ok := batchfn.Sequence(value)
		if !ok {
			return errors.Newf(errors.ErrorTypeUnsupportedDataType, "cannot assign %T to %d rows", value, len(n.Positions))
		}
		if len(values) != len(n.Positions) {
			return errors.Newf(errors.ErrorTypeLengthMismatch,
				"cannot assign %d values to %d rows", len(values), len(n.Positions)).
				WithDetail("values", len(values)).
				WithDetail("rows", len(n.Positions))
		}
		previous := make([]any, len(n.Positions))
		for j, p := range n.Positions {
			if previous[j], err = c.backend.Cell(p, false); err != nil {
				return err
			}
		}
		for j, p := range n.Positions {
			if err := c.backend.SetCell(p, values[j]); err != nil {
				c.restore(n.Positions[:j], previous)
				return err
			}
		}
		rows = len(n.Positions)
	}
	return c.record("set", nil, map[string]any{"rows": rows})
}

// restore writes back previous values in reverse so repeated positions end
// with their original value
func (c *Column) restore(positions []int, previous []any) {
	for j := len(positions) - 1; j >= 0; j-- {
		if err := c.backend.SetCell(positions[j], previous[j]); err != nil {
			c.log.Error("failed to restore row after a rejected assignment",
				zap.Int("row", positions[j]), zap.Error(err))
		}
	}
}

// Rows returns every stored row without materializing
func (c *Column) Rows() ([]any, error) {
	return columnar.Values(c.backend, false)
}

// derive wraps b in a column sharing this column's formatter, collation,
// registry and logger
func (c *Column) derive(b columnar.Backend) *Column {
	return New(b,
		WithFormatter(c.formatter),
		WithCollate(c.collate),
		WithProvenance(c.registry),
		WithLogger(c.log))
}

func (c *Column) record(operation string, inputs []string, metadata map[string]any) error {
	if c.registry == nil {
		return nil
	}
	_, err := c.registry.Record(c.id, operation, inputs, metadata)
	return err
}
