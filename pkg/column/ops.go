package column

import (
	"fmt"

	"github.com/ajitpratap0/colkit/pkg/columnar"
	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/index"
)

func notSupported(operation string, c *Column) error {
	return errors.Newf(errors.ErrorTypeNotSupported, "%s is not supported by %s columns", operation, c.Kind()).
		WithDetail("operation", operation).
		WithDetail("kind", c.Kind().String())
}

// Argsort returns the row positions that order the column
func (c *Column) Argsort(descending bool) ([]int, error) {
	s, ok := c.backend.(columnar.Sorter)
	if !ok {
		return nil, notSupported("argsort", c)
	}
	return s.Argsort(descending)
}

// Sort returns the rows in sorted order as a new column. Ties keep their
// original order.
func (c *Column) Sort(descending bool) (*Column, error) {
	order, err := c.Argsort(descending)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeNotSupported) {
			return nil, notSupported("sort", c)
		}
		return nil, err
	}
	b, err := c.GetBatch(order, false)
	if err != nil {
		return nil, err
	}
	out := c.derive(b)
	if err := out.record("sort", []string{c.id}, map[string]any{"descending": descending}); err != nil {
		return nil, err
	}
	return out, nil
}

// Append returns the rows of c followed by the rows of other. Both columns
// must have the same kind.
func (c *Column) Append(other *Column) (*Column, error) {
	if other == nil {
		return nil, errors.New(errors.ErrorTypeUnsupportedDataType, "cannot append a nil column")
	}
	a, ok := c.backend.(columnar.Appender)
	if !ok {
		return nil, notSupported("append", c)
	}
	b, err := a.Append(other.backend)
	if err != nil {
		return nil, err
	}
	out := c.derive(b)
	if err := out.record("append", []string{c.id, other.id}, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// Concat joins columns end to end. The result takes its formatter and
// registry from the first column.
func Concat(cols ...*Column) (*Column, error) {
	if len(cols) == 0 {
		return nil, errors.New(errors.ErrorTypeUnsupportedDataType, "concat needs at least one column")
	}
	for i, col := range cols {
		if col == nil {
			return nil, errors.Newf(errors.ErrorTypeUnsupportedDataType, "column %d of concat is nil", i).
				WithDetail("position", i)
		}
	}
	first := cols[0]
	acc := first.backend
	ids := []string{first.id}
	for _, col := range cols[1:] {
		a, ok := acc.(columnar.Appender)
		if !ok {
			return nil, notSupported("concat", first)
		}
		var err error
		if acc, err = a.Append(col.backend); err != nil {
			return nil, err
		}
		ids = append(ids, col.id)
	}
	if len(cols) == 1 {
		if _, ok := acc.(columnar.Appender); !ok {
			return nil, notSupported("concat", first)
		}
		var err error
		if acc, err = first.GetBatch(seq(first.Len()), false); err != nil {
			return nil, err
		}
	}
	out := first.derive(acc)
	if err := out.record("concat", ids, map[string]any{"columns": len(cols)}); err != nil {
		return nil, err
	}
	return out, nil
}

// IsEqual reports whether both columns hold equal values in the same order
func (c *Column) IsEqual(other *Column) (bool, error) {
	e, ok := c.backend.(columnar.Equaler)
	if !ok {
		return false, notSupported("is_equal", c)
	}
	if other == nil {
		return false, nil
	}
	return e.Equal(other.backend), nil
}

// Head returns a lazy view of the first n rows. Negative n drops the last
// -n rows.
func (c *Column) Head(n int) (*Column, error) {
	return c.view("head", index.To(n), n)
}

// Tail returns a lazy view of the last n rows. Tail(0) is empty; negative n
// drops the first -n rows.
func (c *Column) Tail(n int) (*Column, error) {
	s := index.From(-n)
	if n == 0 {
		s = index.Range(0, 0)
	}
	return c.view("tail", s, n)
}

func (c *Column) view(operation string, s index.Slice, n int) (*Column, error) {
	positions, err := s.Positions(c.Len())
	if err != nil {
		return nil, err
	}
	b, err := c.GetBatch(positions, false)
	if err != nil {
		return nil, err
	}
	out := c.derive(b)
	if err := out.record(operation, []string{c.id}, map[string]any{"n": n}); err != nil {
		return nil, err
	}
	return out, nil
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func (c *Column) String() string {
	return fmt.Sprintf("Column(%s, %d rows)", c.Kind(), c.Len())
}
