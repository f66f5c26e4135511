package column

import (
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"gonum.org/v1/gonum/mat"

	"github.com/ajitpratap0/colkit/pkg/batchfn"
	"github.com/ajitpratap0/colkit/pkg/columnar"
	"github.com/ajitpratap0/colkit/pkg/errors"
)

// FromData builds a column over raw, choosing the backend in this order:
//
//  1. *Column is returned as is
//  2. *columnar.Series and other columnar.Backend values are wrapped
//  3. gonum vectors become float64 numeric columns, matrices tensors
//  4. typed numeric, bool and string slices and Arrow arrays
//  5. any other slice or array, classified by its first element: cells,
//     numbers and bools, float vectors, strings, then a generic list
//
// Only the first element is inspected. Numeric, tensor and cell columns
// reject a later element that does not fit with HeterogeneousBatch; series
// and list columns keep later elements as given, so []any{"a", 1} is a
// series. Empty sequences become empty lists.
func FromData(raw any, opts ...Option) (*Column, error) {
	if c, ok := raw.(*Column); ok {
		return c, nil
	}
	b, err := backendFor(raw)
	if err != nil {
		return nil, err
	}
	return New(b, opts...), nil
}

func backendFor(raw any) (columnar.Backend, error) {
	switch v := raw.(type) {
	case nil:
		return nil, errors.New(errors.ErrorTypeUnsupportedDataType, "cannot build a column from nil")
	case *columnar.Series:
		return v, nil
	case columnar.Backend:
		return v, nil
	case mat.Vector:
		return columnar.NewNumeric(mat.Col(nil, 0, v)), nil
	case mat.Matrix:
		return columnar.NewTensor(mat.DenseCopyOf(v)), nil
	case []int64:
		return columnar.NewNumeric(slices.Clone(v)), nil
	case []float64:
		return columnar.NewNumeric(slices.Clone(v)), nil
	case []bool:
		return columnar.NewNumeric(slices.Clone(v)), nil
	case []int:
		return columnar.NewNumeric(widen[int, int64](v)), nil
	case []int32:
		return columnar.NewNumeric(widen[int32, int64](v)), nil
	case []float32:
		return columnar.NewNumeric(widen[float32, float64](v)), nil
	case []string:
		return columnar.NewStringSeries(v), nil
	case arrow.Array:
		return columnar.FromArrow(v)
	case string:
		return nil, errors.New(errors.ErrorTypeUnsupportedDataType, "a string is not a sequence of rows")
	}

	values, ok := batchfn.Sequence(raw)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeUnsupportedDataType, "cannot build a column from %T", raw)
	}
	if len(values) == 0 {
		return columnar.NewList([]any{}), nil
	}
	return columnar.CollateAs(columnar.KindOf(values[0]), values)
}

func widen[S int | int32 | float32, T int64 | float64](in []S) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = T(v)
	}
	return out
}
