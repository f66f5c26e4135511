package columnar

import (
	"cmp"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/colkit/pkg/errors"
)

// Number is the set of element types a numeric backend can hold
type Number interface {
	int64 | float64 | bool
}

// Numeric stores fixed-width values of one dtype
type Numeric[T Number] struct {
	values []T
}

// NewNumeric creates a numeric backend over values. The slice is not copied.
func NewNumeric[T Number](values []T) *Numeric[T] {
	return &Numeric[T]{values: values}
}

func (n *Numeric[T]) Kind() Kind { return KindNumeric }
func (n *Numeric[T]) Len() int   { return len(n.values) }

// DType reports the element type
func (n *Numeric[T]) DType() DType {
	var zero T
	switch any(zero).(type) {
	case float64:
		return DTypeFloat64
	case bool:
		return DTypeBool
	default:
		return DTypeInt64
	}
}

// Values exposes the underlying slice
func (n *Numeric[T]) Values() []T {
	return n.values
}

func (n *Numeric[T]) Cell(i int, _ bool) (any, error) {
	if i < 0 || i >= len(n.values) {
		return nil, outOfRange(i, len(n.values))
	}
	return n.values[i], nil
}

func (n *Numeric[T]) SetCell(i int, v any) error {
	if i < 0 || i >= len(n.values) {
		return outOfRange(i, len(n.values))
	}
	x, ok := convertNumber[T](v)
	if !ok {
		return errors.Newf(errors.ErrorTypeUnsupportedDataType, "cannot store %T in %s column", v, n.DType()).
			WithDetail("index", i)
	}
	n.values[i] = x
	return nil
}

func (n *Numeric[T]) Take(positions []int) Backend {
	out := make([]T, len(positions))
	for j, p := range positions {
		out[j] = n.values[p]
	}
	return NewNumeric(out)
}

func (n *Numeric[T]) Append(other Backend) (Backend, error) {
	o, ok := other.(*Numeric[T])
	if !ok {
		return nil, kindMismatch(n, other)
	}
	return NewNumeric(slices.Concat(n.values, o.values)), nil
}

func (n *Numeric[T]) Equal(other Backend) bool {
	o, ok := other.(*Numeric[T])
	return ok && slices.Equal(n.values, o.values)
}

// Argsort returns the stable ordering of rows by value
func (n *Numeric[T]) Argsort(descending bool) ([]int, error) {
	idx := make([]int, len(n.values))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		c := compareNumber(n.values[a], n.values[b])
		if descending {
			return -c
		}
		return c
	})
	return idx, nil
}

func (n *Numeric[T]) ToArrow(mem memory.Allocator) (arrow.Array, error) {
	switch v := any(n.values).(type) {
	case []int64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return b.NewArray(), nil
	case []float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return b.NewArray(), nil
	case []bool:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return b.NewArray(), nil
	}
	return nil, errors.New(errors.ErrorTypeInternal, "unknown numeric dtype")
}

func compareNumber[T Number](a, b T) int {
	switch x := any(a).(type) {
	case int64:
		return cmp.Compare(x, any(b).(int64))
	case float64:
		return cmp.Compare(x, any(b).(float64))
	case bool:
		y := any(b).(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	}
	return 0
}

func convertNumber[T Number](v any) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case int64:
		i, ok := toInt64(v)
		return any(i).(T), ok
	case float64:
		f, ok := toFloat64(v)
		return any(f).(T), ok
	case bool:
		b, ok := v.(bool)
		return any(b).(T), ok
	}
	return zero, false
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true //nolint:gosec // row values, overflow is the caller's concern
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true //nolint:gosec // row values, overflow is the caller's concern
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// numericDType classifies a scalar. ok is false for non-numeric values.
func numericDType(v any) (DType, bool) {
	switch v.(type) {
	case bool:
		return DTypeBool, true
	case float32, float64:
		return DTypeFloat64, true
	}
	if _, ok := toInt64(v); ok {
		return DTypeInt64, true
	}
	return 0, false
}
