// Package index normalizes heterogeneous index expressions into either a
// single non-negative position or an ordered list of positions.
//
// Accepted expressions:
//   - any Go integer (negative values count from the end)
//   - Slice, with Python slice semantics (see Range, From, To, All)
//   - []int, []int64, []int32 position lists
//   - []bool masks, which must be as long as the container
//   - Arrow *array.Int64, *array.Int32 and *array.Boolean arrays
//   - Tuple with exactly one element, treated as that element
package index

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/ajitpratap0/colkit/pkg/errors"
)

// Normalized is the canonical form of an index expression
type Normalized struct {
	// Scalar reports whether the expression selected one position
	Scalar bool
	// Pos is the selected position when Scalar is true
	Pos int
	// Positions holds the selected positions in order when Scalar is false
	Positions []int
}

// Tuple mirrors a numpy tuple index. Only the single-element form is
// accepted; it selects exactly like its lone element.
type Tuple []any

// Translate normalizes idx against a container of the given length
func Translate(idx any, length int) (Normalized, error) {
	switch v := idx.(type) {
	case Tuple:
		if len(v) != 1 {
			return Normalized{}, errors.Newf(errors.ErrorTypeNotSupported,
				"tuple index with %d elements is not supported", len(v)).
				WithDetail("elements", len(v))
		}
		return Translate(v[0], length)
	case Slice:
		positions, err := v.Positions(length)
		return Normalized{Positions: positions}, err
	case *Slice:
		if v == nil {
			return Normalized{}, errors.New(errors.ErrorTypeInvalidIndex, "nil slice index")
		}
		positions, err := v.Positions(length)
		return Normalized{Positions: positions}, err
	case []bool:
		return fromMask(v, length)
	case []int:
		return fromInts(v, length)
	case []int64:
		out := make([]int, len(v))
		for i, p := range v {
			out[i] = int(p)
		}
		return fromInts(out, length)
	case []int32:
		out := make([]int, len(v))
		for i, p := range v {
			out[i] = int(p)
		}
		return fromInts(out, length)
	case *array.Boolean:
		mask := make([]bool, v.Len())
		for i := range mask {
			mask[i] = v.IsValid(i) && v.Value(i)
		}
		return fromMask(mask, length)
	case *array.Int64:
		if v.NullN() > 0 {
			return Normalized{}, errors.New(errors.ErrorTypeInvalidIndex, "index array contains nulls")
		}
		out := make([]int, v.Len())
		for i := range out {
			out[i] = int(v.Value(i))
		}
		return fromInts(out, length)
	case *array.Int32:
		if v.NullN() > 0 {
			return Normalized{}, errors.New(errors.ErrorTypeInvalidIndex, "index array contains nulls")
		}
		out := make([]int, v.Len())
		for i := range out {
			out[i] = int(v.Value(i))
		}
		return fromInts(out, length)
	}

	if u, ok := asUint64(idx); ok && u > math.MaxInt {
		return Normalized{}, errors.Newf(errors.ErrorTypeIndexOutOfRange,
			"index %d is out of range for length %d", u, length).
			WithDetail("index", u).
			WithDetail("length", length)
	}
	if p, ok := asInt(idx); ok {
		pos, err := wrap(p, length)
		if err != nil {
			return Normalized{}, err
		}
		return Normalized{Scalar: true, Pos: pos}, nil
	}

	return Normalized{}, errors.Newf(errors.ErrorTypeInvalidIndex, "cannot index with %T", idx)
}

// IsBatch reports whether idx would select a sequence rather than one position
func IsBatch(idx any) bool {
	if t, ok := idx.(Tuple); ok && len(t) == 1 {
		return IsBatch(t[0])
	}
	_, scalar := asInt(idx)
	return !scalar
}

func fromMask(mask []bool, length int) (Normalized, error) {
	if len(mask) != length {
		return Normalized{}, errors.Newf(errors.ErrorTypeShapeMismatch,
			"mask of length %d does not match length %d", len(mask), length).
			WithDetail("mask_length", len(mask)).
			WithDetail("length", length)
	}
	positions := make([]int, 0, len(mask))
	for i, keep := range mask {
		if keep {
			positions = append(positions, i)
		}
	}
	return Normalized{Positions: positions}, nil
}

func fromInts(in []int, length int) (Normalized, error) {
	positions := make([]int, len(in))
	for i, p := range in {
		pos, err := wrap(p, length)
		if err != nil {
			return Normalized{}, err
		}
		positions[i] = pos
	}
	return Normalized{Positions: positions}, nil
}

func wrap(p, length int) (int, error) {
	if p < -length || p >= length {
		return 0, errors.Newf(errors.ErrorTypeIndexOutOfRange,
			"index %d is out of range for length %d", p, length).
			WithDetail("index", p).
			WithDetail("length", length)
	}
	if p < 0 {
		p += length
	}
	return p, nil
}

func asUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint:
		return uint64(n), true
	case uint64:
		return n, true
	case uintptr:
		return uint64(n), true
	}
	return 0, false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case uintptr:
		return int(n), true
	default:
		return 0, false
	}
}
