package columnar

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/json"
)

// Series is a labeled sequence of values. It backs text columns and is the
// exported form of any column for display.
type Series struct {
	Name   string
	Index  []int
	Values []any
}

// NewSeries creates a series labeled 0..len(values)-1
func NewSeries(name string, values []any) *Series {
	return &Series{Name: name, Index: seq(len(values)), Values: values}
}

// NewStringSeries creates an unnamed series of strings
func NewStringSeries(values []string) *Series {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return NewSeries("", vals)
}

func (s *Series) Kind() Kind { return KindSeries }
func (s *Series) Len() int   { return len(s.Values) }

func (s *Series) Cell(i int, _ bool) (any, error) {
	if i < 0 || i >= len(s.Values) {
		return nil, outOfRange(i, len(s.Values))
	}
	return s.Values[i], nil
}

func (s *Series) SetCell(i int, v any) error {
	if i < 0 || i >= len(s.Values) {
		return outOfRange(i, len(s.Values))
	}
	s.Values[i] = v
	return nil
}

// Take keeps the index labels of the selected rows
func (s *Series) Take(positions []int) Backend {
	out := &Series{
		Name:   s.Name,
		Index:  make([]int, len(positions)),
		Values: make([]any, len(positions)),
	}
	for j, p := range positions {
		out.Index[j] = s.label(p)
		out.Values[j] = s.Values[p]
	}
	return out
}

func (s *Series) label(i int) int {
	if i < len(s.Index) {
		return s.Index[i]
	}
	return i
}

func (s *Series) Append(other Backend) (Backend, error) {
	o, ok := other.(*Series)
	if !ok {
		return nil, kindMismatch(s, other)
	}
	out := &Series{Name: s.Name}
	for i := range s.Values {
		out.Index = append(out.Index, s.label(i))
	}
	for i := range o.Values {
		out.Index = append(out.Index, o.label(i))
	}
	out.Values = slices.Concat(s.Values, o.Values)
	return out, nil
}

func (s *Series) Equal(other Backend) bool {
	o, ok := other.(*Series)
	return ok && reflect.DeepEqual(s.Values, o.Values)
}

// Argsort orders rows by value. All values must be strings or all numeric.
func (s *Series) Argsort(descending bool) ([]int, error) {
	keys, err := s.sortKeys()
	if err != nil {
		return nil, err
	}
	idx := seq(len(s.Values))
	slices.SortStableFunc(idx, func(a, b int) int {
		c := keys(a, b)
		if descending {
			return -c
		}
		return c
	})
	return idx, nil
}

func (s *Series) sortKeys() (func(a, b int) int, error) {
	if strs, ok := s.Strings(); ok {
		return func(a, b int) int { return cmp.Compare(strs[a], strs[b]) }, nil
	}
	nums := make([]float64, len(s.Values))
	for i, v := range s.Values {
		f, ok := toFloat64(v)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeNotSupported, "cannot order series value of type %T", v).
				WithDetail("index", i)
		}
		nums[i] = f
	}
	return func(a, b int) int { return cmp.Compare(nums[a], nums[b]) }, nil
}

// Strings returns the values as strings when every value is one
func (s *Series) Strings() ([]string, bool) {
	out := make([]string, len(s.Values))
	for i, v := range s.Values {
		str, ok := v.(string)
		if !ok {
			return nil, false
		}
		out[i] = str
	}
	return out, true
}

// ToArrow exports a string series; nil values become nulls
func (s *Series) ToArrow(mem memory.Allocator) (arrow.Array, error) {
	b := array.NewStringBuilder(mem)
	defer b.Release()
	for i, v := range s.Values {
		switch x := v.(type) {
		case nil:
			b.AppendNull()
		case string:
			b.Append(x)
		default:
			return nil, errors.Newf(errors.ErrorTypeUnsupportedDataType, "cannot export %T as arrow string", v).
				WithDetail("index", i)
		}
	}
	return b.NewArray(), nil
}

type seriesJSON struct {
	Name   string `json:"name,omitempty"`
	Index  []int  `json:"index"`
	Values []any  `json:"values"`
}

func (s *Series) MarshalJSON() ([]byte, error) {
	index := make([]int, len(s.Values))
	for i := range index {
		index[i] = s.label(i)
	}
	return json.Marshal(seriesJSON{Name: s.Name, Index: index, Values: s.Values})
}

func (s *Series) UnmarshalJSON(data []byte) error {
	var raw seriesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Index != nil && len(raw.Index) != len(raw.Values) {
		return errors.Newf(errors.ErrorTypeLengthMismatch, "series has %d labels for %d values", len(raw.Index), len(raw.Values))
	}
	s.Name = raw.Name
	s.Values = raw.Values
	s.Index = raw.Index
	if s.Index == nil {
		s.Index = seq(len(s.Values))
	}
	return nil
}

func (s *Series) String() string {
	return fmt.Sprintf("Series(name=%q, len=%d)", s.Name, len(s.Values))
}
