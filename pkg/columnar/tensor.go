package columnar

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ajitpratap0/colkit/pkg/errors"
)

// Tensor stores fixed-width float vectors, one matrix row per cell. An
// empty tensor keeps a nil matrix since gonum rejects zero dimensions.
type Tensor struct {
	data *mat.Dense
	rows int
	cols int
}

// NewTensor wraps m. The matrix is not copied.
func NewTensor(m *mat.Dense) *Tensor {
	if m == nil || m.IsEmpty() {
		return &Tensor{}
	}
	r, c := m.Dims()
	return &Tensor{data: m, rows: r, cols: c}
}

// NewTensorFromRows builds a tensor from equal-width rows
func NewTensorFromRows(rows [][]float64) (*Tensor, error) {
	if len(rows) == 0 {
		return &Tensor{}, nil
	}
	width := len(rows[0])
	if width == 0 {
		return nil, errors.New(errors.ErrorTypeShapeMismatch, "tensor rows must not be empty")
	}
	flat := make([]float64, 0, len(rows)*width)
	for i, r := range rows {
		if len(r) != width {
			return nil, errors.Newf(errors.ErrorTypeHeterogeneousBatch, "row %d has width %d, expected %d", i, len(r), width).
				WithDetail("index", i)
		}
		flat = append(flat, r...)
	}
	return NewTensor(mat.NewDense(len(rows), width, flat)), nil
}

func (t *Tensor) Kind() Kind { return KindTensor }
func (t *Tensor) Len() int   { return t.rows }

// Width is the number of elements per cell
func (t *Tensor) Width() int { return t.cols }

// Matrix exposes the underlying matrix, nil when empty
func (t *Tensor) Matrix() *mat.Dense { return t.data }

func (t *Tensor) Cell(i int, _ bool) (any, error) {
	if i < 0 || i >= t.rows {
		return nil, outOfRange(i, t.rows)
	}
	return mat.NewVecDense(t.cols, mat.Row(nil, i, t.data)), nil
}

func (t *Tensor) SetCell(i int, v any) error {
	if i < 0 || i >= t.rows {
		return outOfRange(i, t.rows)
	}
	row, ok := vectorData(v)
	if !ok {
		return errors.Newf(errors.ErrorTypeUnsupportedDataType, "cannot store %T in tensor column", v).
			WithDetail("index", i)
	}
	if len(row) != t.cols {
		return errors.Newf(errors.ErrorTypeShapeMismatch, "value has width %d, expected %d", len(row), t.cols).
			WithDetail("index", i)
	}
	t.data.SetRow(i, row)
	return nil
}

func (t *Tensor) Take(positions []int) Backend {
	if len(positions) == 0 {
		return &Tensor{}
	}
	out := mat.NewDense(len(positions), t.cols, nil)
	for j, p := range positions {
		out.SetRow(j, t.data.RawRowView(p))
	}
	return NewTensor(out)
}

func (t *Tensor) Append(other Backend) (Backend, error) {
	o, ok := other.(*Tensor)
	if !ok {
		return nil, kindMismatch(t, other)
	}
	switch {
	case o.rows == 0:
		return t.Take(seq(t.rows)), nil
	case t.rows == 0:
		return o.Take(seq(o.rows)), nil
	case t.cols != o.cols:
		return nil, errors.Newf(errors.ErrorTypeShapeMismatch, "cannot append width %d to width %d", o.cols, t.cols)
	}
	var out mat.Dense
	out.Stack(t.data, o.data)
	return NewTensor(&out), nil
}

func (t *Tensor) Equal(other Backend) bool {
	o, ok := other.(*Tensor)
	if !ok || t.rows != o.rows {
		return false
	}
	if t.rows == 0 {
		return true
	}
	return t.cols == o.cols && mat.Equal(t.data, o.data)
}

// vectorData copies a vector-like value into a flat slice
func vectorData(v any) ([]float64, bool) {
	switch x := v.(type) {
	case []float64:
		return x, true
	case mat.Vector:
		out := make([]float64, x.Len())
		for i := range out {
			out[i] = x.AtVec(i)
		}
		return out, true
	}
	return nil, false
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
