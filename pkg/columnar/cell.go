package columnar

import (
	"reflect"

	"github.com/ajitpratap0/colkit/pkg/cells"
	"github.com/ajitpratap0/colkit/pkg/errors"
)

// CellColumn stores deferred cells. Reads return the cell handle unless
// materialized, in which case the cell is loaded.
type CellColumn struct {
	cells []cells.Cell
}

// NewCellColumn creates a cell backend. The slice is not copied.
func NewCellColumn(cs []cells.Cell) *CellColumn {
	return &CellColumn{cells: cs}
}

func (c *CellColumn) Kind() Kind { return KindCell }
func (c *CellColumn) Len() int   { return len(c.cells) }

func (c *CellColumn) Cell(i int, materialize bool) (any, error) {
	if i < 0 || i >= len(c.cells) {
		return nil, outOfRange(i, len(c.cells))
	}
	if !materialize {
		return c.cells[i], nil
	}
	v, err := c.cells[i].Get()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to materialize cell").
			WithDetail("index", i)
	}
	return v, nil
}

func (c *CellColumn) SetCell(i int, v any) error {
	if i < 0 || i >= len(c.cells) {
		return outOfRange(i, len(c.cells))
	}
	cell, ok := v.(cells.Cell)
	if !ok {
		return errors.Newf(errors.ErrorTypeUnsupportedDataType, "cannot store %T in cell column", v).
			WithDetail("index", i)
	}
	c.cells[i] = cell
	return nil
}

func (c *CellColumn) Take(positions []int) Backend {
	out := make([]cells.Cell, len(positions))
	for j, p := range positions {
		out[j] = c.cells[p]
	}
	return NewCellColumn(out)
}

// Equal compares cell handles, not their materialized values
func (c *CellColumn) Equal(other Backend) bool {
	o, ok := other.(*CellColumn)
	if !ok || len(c.cells) != len(o.cells) {
		return false
	}
	for i := range c.cells {
		if !reflect.DeepEqual(c.cells[i], o.cells[i]) {
			return false
		}
	}
	return true
}
