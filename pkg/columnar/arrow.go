package columnar

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/ajitpratap0/colkit/pkg/errors"
)

// FromArrow copies an Arrow array into a backend. Integer and float arrays
// become numeric backends and must be free of nulls; string arrays become
// series with nulls kept as nil. Values never alias the array's buffers.
func FromArrow(arr arrow.Array) (Backend, error) {
	switch a := arr.(type) {
	case *array.String:
		values := make([]any, a.Len())
		for i := range values {
			if a.IsValid(i) {
				values[i] = strings.Clone(a.Value(i))
			}
		}
		return NewSeries("", values), nil
	}

	if arr.NullN() > 0 {
		return nil, errors.Newf(errors.ErrorTypeUnsupportedDataType, "arrow %s array has %d nulls", arr.DataType(), arr.NullN())
	}
	switch a := arr.(type) {
	case *array.Int64:
		return NewNumeric(append([]int64(nil), a.Int64Values()...)), nil
	case *array.Int32:
		out := make([]int64, a.Len())
		for i, v := range a.Int32Values() {
			out[i] = int64(v)
		}
		return NewNumeric(out), nil
	case *array.Float64:
		return NewNumeric(append([]float64(nil), a.Float64Values()...)), nil
	case *array.Float32:
		out := make([]float64, a.Len())
		for i, v := range a.Float32Values() {
			out[i] = float64(v)
		}
		return NewNumeric(out), nil
	case *array.Boolean:
		out := make([]bool, a.Len())
		for i := range out {
			out[i] = a.Value(i)
		}
		return NewNumeric(out), nil
	}
	return nil, errors.Newf(errors.ErrorTypeUnsupportedDataType, "unsupported arrow type %s", arr.DataType())
}
