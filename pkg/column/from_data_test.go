package column

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ajitpratap0/colkit/pkg/cells"
	"github.com/ajitpratap0/colkit/pkg/columnar"
	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/testutil"
)

func TestFromDataKinds(t *testing.T) {
	testutil.UseTestLogger(t)
	series := columnar.NewStringSeries([]string{"x"})

	tests := []struct {
		name string
		raw  any
		kind columnar.Kind
		rows int
	}{
		{"series", series, columnar.KindSeries, 1},
		{"backend", columnar.NewList([]any{1, 2}), columnar.KindList, 2},
		{"vector", mat.NewVecDense(3, []float64{1, 2, 3}), columnar.KindNumeric, 3},
		{"matrix", mat.NewDense(2, 3, nil), columnar.KindTensor, 2},
		{"int64s", []int64{1, 2}, columnar.KindNumeric, 2},
		{"ints", []int{1, 2, 3}, columnar.KindNumeric, 3},
		{"int32s", []int32{1}, columnar.KindNumeric, 1},
		{"float32s", []float32{1.5}, columnar.KindNumeric, 1},
		{"bools", []bool{true}, columnar.KindNumeric, 1},
		{"strings", []string{"a", "b"}, columnar.KindSeries, 2},
		{"cells", []cells.Cell{cells.Value{V: 1}}, columnar.KindCell, 1},
		{"image cells", []*cells.ImageCell{cells.NewImageCell("a.png", nil)}, columnar.KindCell, 1},
		{"any numbers", []any{1, 2}, columnar.KindNumeric, 2},
		{"float rows", [][]float64{{1, 2}, {3, 4}}, columnar.KindTensor, 2},
		{"any strings", []any{"a", 3}, columnar.KindSeries, 2},
		{"vectors", []mat.Vector{mat.NewVecDense(2, nil)}, columnar.KindTensor, 1},
		{"generic", []any{map[string]int{"a": 1}, nil}, columnar.KindList, 2},
		{"array", [2]string{"a", "b"}, columnar.KindSeries, 2},
		{"empty", []any{}, columnar.KindList, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := FromData(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, c.Kind())
			assert.Equal(t, tt.rows, c.Len())
		})
	}
}

func TestFromDataPassthrough(t *testing.T) {
	c := ints(t, 1)
	got, err := FromData(c)
	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestFromDataCopiesSlices(t *testing.T) {
	testutil.UseTestLogger(t)
	raw := []int64{1, 2}
	c, err := FromData(raw)
	require.NoError(t, err)
	raw[0] = 100

	v, err := c.At(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestFromDataArrow(t *testing.T) {
	testutil.UseTestLogger(t)
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	fb := array.NewFloat64Builder(mem)
	defer fb.Release()
	fb.AppendValues([]float64{0.5, 1.5}, nil)
	floats := fb.NewArray()
	defer floats.Release()

	c, err := FromData(floats)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1.5}, numericValues[float64](t, c))

	sb := array.NewStringBuilder(mem)
	defer sb.Release()
	sb.Append("a")
	sb.AppendNull()
	strs := sb.NewArray()
	defer strs.Release()

	c, err = FromData(strs)
	require.NoError(t, err)
	assert.Equal(t, columnar.KindSeries, c.Kind())
	rows, err := c.Rows()
	require.NoError(t, err)
	assert.Equal(t, []any{"a", nil}, rows)
}

func TestFromDataRejects(t *testing.T) {
	testutil.UseTestLogger(t)
	for _, raw := range []any{nil, "abc", 42, struct{}{}} {
		_, err := FromData(raw)
		assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedDataType), "%T", raw)
	}

	_, err := FromData([]any{1, "x"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeHeterogeneousBatch))
}

func TestFromDataInspectsFirstElement(t *testing.T) {
	testutil.UseTestLogger(t)

	s, err := FromData([]any{"a", 1, nil})
	require.NoError(t, err)
	assert.Equal(t, columnar.KindSeries, s.Kind())
	v, err := s.At(1)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	l, err := FromData([]any{map[string]int{"a": 1}, "b"})
	require.NoError(t, err)
	assert.Equal(t, columnar.KindList, l.Kind())
	v, err = l.At(1)
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	_, err = FromData([]any{[]float64{1, 2}, "x"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeHeterogeneousBatch))
}

func TestFromDataOptions(t *testing.T) {
	testutil.UseTestLogger(t)
	asList := func(values []any) (columnar.Backend, error) { return columnar.NewList(values), nil }
	c, err := FromData([]int64{1, 2}, WithCollate(asList))
	require.NoError(t, err)
	sub, err := c.Select([]int{0}, true)
	require.NoError(t, err)
	assert.Equal(t, columnar.KindList, sub.Kind())
}
