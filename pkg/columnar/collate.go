package columnar

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ajitpratap0/colkit/pkg/cells"
	"github.com/ajitpratap0/colkit/pkg/errors"
)

// KindOf classifies a single value by the backend that would store it
func KindOf(v any) Kind {
	if _, ok := numericDType(v); ok {
		return KindNumeric
	}
	switch v.(type) {
	case []float64, mat.Vector:
		return KindTensor
	case string:
		return KindSeries
	case cells.Cell:
		return KindCell
	}
	return KindList
}

// Collate folds per-row values into one backend. The first value decides
// the representation and every later value must match it: a numeric batch
// keeps the first value's dtype, a tensor batch its width and a text batch
// holds only strings.
func Collate(values []any) (Backend, error) {
	if len(values) == 0 {
		return NewList(nil), nil
	}
	kind := KindOf(values[0])
	if kind == KindSeries {
		for i, v := range values {
			if _, ok := v.(string); !ok {
				return nil, heterogeneous(i, v, kind)
			}
		}
	}
	return CollateAs(kind, values)
}

// CollateAs folds values into a backend of the given kind. List and series
// backends accept any value.
func CollateAs(kind Kind, values []any) (Backend, error) {
	switch kind {
	case KindNumeric:
		return collateNumeric(values)
	case KindTensor:
		return collateTensor(values)
	case KindSeries:
		out := make([]any, len(values))
		copy(out, values)
		return NewSeries("", out), nil
	case KindCell:
		cs := make([]cells.Cell, len(values))
		for i, v := range values {
			c, ok := v.(cells.Cell)
			if !ok {
				return nil, heterogeneous(i, v, kind)
			}
			cs[i] = c
		}
		return NewCellColumn(cs), nil
	default:
		out := make([]any, len(values))
		copy(out, values)
		return NewList(out), nil
	}
}

func collateNumeric(values []any) (Backend, error) {
	if len(values) == 0 {
		return NewNumeric([]int64{}), nil
	}
	dtype, ok := numericDType(values[0])
	if !ok {
		return nil, heterogeneous(0, values[0], KindNumeric)
	}
	switch dtype {
	case DTypeFloat64:
		return collateTyped[float64](values, dtype)
	case DTypeBool:
		return collateTyped[bool](values, dtype)
	default:
		return collateTyped[int64](values, dtype)
	}
}

func collateTyped[T Number](values []any, dtype DType) (Backend, error) {
	out := make([]T, len(values))
	for i, v := range values {
		if d, ok := numericDType(v); !ok || d != dtype {
			return nil, heterogeneous(i, v, KindNumeric).WithDetail("dtype", dtype.String())
		}
		x, _ := convertNumber[T](v)
		out[i] = x
	}
	return NewNumeric(out), nil
}

func collateTensor(values []any) (Backend, error) {
	rows := make([][]float64, len(values))
	for i, v := range values {
		row, ok := vectorData(v)
		if !ok {
			return nil, heterogeneous(i, v, KindTensor)
		}
		rows[i] = row
	}
	return NewTensorFromRows(rows)
}

func heterogeneous(i int, v any, kind Kind) *errors.Error {
	return errors.Newf(errors.ErrorTypeHeterogeneousBatch, "row %d of type %T does not fit a %s batch", i, v, kind).
		WithDetail("index", i).
		WithDetail("kind", kind.String())
}
