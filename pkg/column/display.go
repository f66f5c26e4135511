package column

import (
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/colkit/pkg/columnar"
)

// Ellipsis marks the rows Render leaves out
const Ellipsis = "..."

// ToSeries copies the column into a labeled series in row order. Deferred
// cells are not loaded. Series columns keep their labels.
func (c *Column) ToSeries() (*columnar.Series, error) {
	if s, ok := c.backend.(*columnar.Series); ok {
		return s.Take(seq(s.Len())).(*columnar.Series), nil
	}
	values, err := c.Rows()
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []any{}
	}
	return columnar.NewSeries("", values), nil
}

// Render formats rows for display with the column's formatter, one
// "label<TAB>value" line per row. Columns longer than maxRows show the first
// and last maxRows/2 rows around an Ellipsis line. maxRows <= 0 renders
// every row.
func (c *Column) Render(maxRows int) ([]string, error) {
	n := c.Len()
	positions := seq(n)
	truncated := maxRows > 0 && n > maxRows
	if truncated {
		half := maxRows / 2
		positions = append(seq(half), tailPositions(n, half)...)
	}

	var labels []int
	if s, ok := c.backend.(*columnar.Series); ok {
		labels = s.Index
	}

	lines := make([]string, 0, len(positions)+1)
	for j, p := range positions {
		if truncated && j == maxRows/2 {
			lines = append(lines, Ellipsis)
		}
		v, err := c.GetCell(p, false)
		if err != nil {
			return nil, err
		}
		label := p
		if p < len(labels) {
			label = labels[p]
		}
		lines = append(lines, strconv.Itoa(label)+"\t"+c.formatter.Format(v))
	}
	if truncated && maxRows/2 == len(positions) {
		lines = append(lines, Ellipsis)
	}
	return lines, nil
}

func tailPositions(n, k int) []int {
	out := make([]int, k)
	for i := range out {
		out[i] = n - k + i
	}
	return out
}

// ToArrow exports the column. The caller must Release the array.
func (c *Column) ToArrow(mem memory.Allocator) (arrow.Array, error) {
	a, ok := c.backend.(columnar.Arrower)
	if !ok {
		return nil, notSupported("to_arrow", c)
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return a.ToArrow(mem)
}
