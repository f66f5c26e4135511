package columnar

import (
	"reflect"

	"github.com/ajitpratap0/colkit/pkg/errors"
)

// List stores arbitrary values
type List struct {
	values []any
}

// NewList creates a list backend over values. The slice is not copied.
func NewList(values []any) *List {
	return &List{values: values}
}

func (l *List) Kind() Kind { return KindList }
func (l *List) Len() int   { return len(l.values) }

func (l *List) Cell(i int, _ bool) (any, error) {
	if i < 0 || i >= len(l.values) {
		return nil, outOfRange(i, len(l.values))
	}
	return l.values[i], nil
}

func (l *List) SetCell(i int, v any) error {
	if i < 0 || i >= len(l.values) {
		return outOfRange(i, len(l.values))
	}
	l.values[i] = v
	return nil
}

func (l *List) Take(positions []int) Backend {
	out := make([]any, len(positions))
	for j, p := range positions {
		out[j] = l.values[p]
	}
	return NewList(out)
}

func (l *List) Append(other Backend) (Backend, error) {
	o, ok := other.(*List)
	if !ok {
		return nil, kindMismatch(l, other)
	}
	out := make([]any, 0, len(l.values)+len(o.values))
	out = append(out, l.values...)
	out = append(out, o.values...)
	return NewList(out), nil
}

func (l *List) Equal(other Backend) bool {
	o, ok := other.(*List)
	return ok && reflect.DeepEqual(l.values, o.values)
}

func outOfRange(i, length int) error {
	return errors.Newf(errors.ErrorTypeIndexOutOfRange, "row %d out of range for length %d", i, length).
		WithDetail("index", i).
		WithDetail("length", length)
}

func kindMismatch(b, other Backend) error {
	return errors.Newf(errors.ErrorTypeHeterogeneousBatch, "cannot combine %s backend with %T", b.Kind(), other).
		WithDetail("kind", b.Kind().String())
}
