package columnar

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Kind identifies the concrete representation behind a column
type Kind int

const (
	KindList Kind = iota
	KindNumeric
	KindTensor
	KindSeries
	KindCell
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindNumeric:
		return "numeric"
	case KindTensor:
		return "tensor"
	case KindSeries:
		return "series"
	case KindCell:
		return "cell"
	default:
		return "unknown"
	}
}

// DType is the element type of a numeric backend
type DType int

const (
	DTypeInt64 DType = iota
	DTypeFloat64
	DTypeBool
)

func (d DType) String() string {
	switch d {
	case DTypeInt64:
		return "int64"
	case DTypeFloat64:
		return "float64"
	case DTypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Backend is the storage behind a column. Implementations own their data
// exclusively; Take and Append return new backends and never alias the
// receiver's storage.
type Backend interface {
	Kind() Kind
	Len() int
	// Cell returns the value at row i. materialize only matters for
	// backends holding deferred values.
	Cell(i int, materialize bool) (any, error)
	SetCell(i int, v any) error
}

// Taker is implemented by backends that can gather rows in one step
type Taker interface {
	Take(positions []int) Backend
}

// Sorter is implemented by backends with a natural row order
type Sorter interface {
	Argsort(descending bool) ([]int, error)
}

// Appender is implemented by backends that can be concatenated with a
// backend of the same kind
type Appender interface {
	Append(other Backend) (Backend, error)
}

// Equaler is implemented by backends that can compare themselves by value
type Equaler interface {
	Equal(other Backend) bool
}

// Arrower is implemented by backends that export to an Arrow array. The
// caller owns the returned array and must Release it.
type Arrower interface {
	ToArrow(mem memory.Allocator) (arrow.Array, error)
}

// Values reads every row of b in order
func Values(b Backend, materialize bool) ([]any, error) {
	if b == nil {
		return nil, nil
	}
	out := make([]any, b.Len())
	for i := range out {
		v, err := b.Cell(i, materialize)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
