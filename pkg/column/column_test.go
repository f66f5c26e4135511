package column

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ajitpratap0/colkit/pkg/cells"
	"github.com/ajitpratap0/colkit/pkg/columnar"
	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/formatter"
	"github.com/ajitpratap0/colkit/pkg/index"
	"github.com/ajitpratap0/colkit/pkg/provenance"
	"github.com/ajitpratap0/colkit/pkg/testutil"
)

func ints(t *testing.T, values ...int64) *Column {
	t.Helper()
	testutil.UseTestLogger(t)
	return New(columnar.NewNumeric(values))
}

func numericValues[T columnar.Number](t *testing.T, c *Column) []T {
	t.Helper()
	require.NotNil(t, c)
	n, ok := c.Backend().(*columnar.Numeric[T])
	require.True(t, ok, "backend is %T", c.Backend())
	return n.Values()
}

func TestEmptyColumn(t *testing.T) {
	testutil.UseTestLogger(t)
	c := New(nil)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, columnar.KindList, c.Kind())
	assert.NotEmpty(t, c.ID())

	_, err := c.At(0)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIndexOutOfRange))

	sub, err := c.Select(index.All(), true)
	require.NoError(t, err)
	assert.Equal(t, 0, sub.Len())
}

func TestAtMatchesGetCell(t *testing.T) {
	c := ints(t, 10, 20, 30, 40, 50)
	for i := 0; i < c.Len(); i++ {
		got, err := c.At(i)
		require.NoError(t, err)
		want, err := c.GetCell(i, true)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		neg, err := c.At(i - c.Len())
		require.NoError(t, err)
		assert.Equal(t, got, neg)
	}

	_, err := c.At(5)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIndexOutOfRange))
	_, err = c.At(-6)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIndexOutOfRange))
}

func TestSliceViewEquivalence(t *testing.T) {
	c := ints(t, 10, 20, 30, 40, 50)
	for _, r := range [][2]int{{0, 5}, {1, 4}, {2, 3}, {3, 3}, {-3, 5}} {
		sub, err := c.Select(index.Range(r[0], r[1]), true)
		require.NoError(t, err)
		start := r[0]
		if start < 0 {
			start += c.Len()
		}
		for j := 0; j < sub.Len(); j++ {
			got, err := sub.At(j)
			require.NoError(t, err)
			want, err := c.At(start + j)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}
}

func TestSelectionIsIndependent(t *testing.T) {
	c := ints(t, 1, 2, 3)
	sub, err := c.Select([]int{0, 1}, true)
	require.NoError(t, err)
	require.NoError(t, sub.Set(0, int64(100)))

	v, err := c.At(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestMaskIndex(t *testing.T) {
	c := ints(t, 1, 2, 3)

	sub, err := c.Select([]bool{true, false, true}, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, numericValues[int64](t, sub))

	_, err = c.At([]bool{true, false})
	assert.True(t, errors.IsType(err, errors.ErrorTypeShapeMismatch))
}

func TestTupleIndex(t *testing.T) {
	c := ints(t, 1, 2, 3)

	v, err := c.At(index.Tuple{1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = c.At(index.Tuple{0, 1})
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotSupported))
}

func TestSelectRejectsScalar(t *testing.T) {
	c := ints(t, 1, 2, 3)
	_, err := c.Select(1, true)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidIndex))
}

func TestCollateRoundTrip(t *testing.T) {
	testutil.UseTestLogger(t)
	tensor, err := columnar.NewTensorFromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	for _, c := range []*Column{
		New(columnar.NewNumeric([]float64{1.5, 2.5})),
		New(columnar.NewNumeric([]bool{true, false})),
		New(columnar.NewStringSeries([]string{"x", "y"})),
		New(tensor),
		New(columnar.NewList([]any{[]int{1}, "a", nil})),
	} {
		values := make([]any, c.Len())
		for i := range values {
			values[i], err = c.GetCell(i, false)
			require.NoError(t, err)
		}
		b, err := columnar.Collate(values)
		require.NoError(t, err)
		eq, err := c.IsEqual(New(b))
		require.NoError(t, err)
		assert.True(t, eq, "kind %s", c.Kind())
	}
}

func TestSet(t *testing.T) {
	c := ints(t, 1, 2, 3, 4)

	require.NoError(t, c.Set(-1, int64(40)))
	require.NoError(t, c.Set([]int{0, 2}, []int64{10, 30}))
	require.NoError(t, c.Set(index.Range(1, 2), []any{20}))
	assert.Equal(t, []int64{10, 20, 30, 40}, numericValues[int64](t, c))

	err := c.Set([]int{0, 1}, []int64{1})
	assert.True(t, errors.IsType(err, errors.ErrorTypeLengthMismatch))

	err = c.Set([]int{0, 1}, int64(7))
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedDataType))

	err = c.Set(9, int64(7))
	assert.True(t, errors.IsType(err, errors.ErrorTypeIndexOutOfRange))
}

func TestSetRejectedLeavesRowsUnchanged(t *testing.T) {
	testutil.UseTestLogger(t)
	c := ints(t, 1, 2, 3)

	err := c.Set([]int{0, 1, 2}, []any{int64(7), int64(8), "x"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedDataType))
	assert.Equal(t, []int64{1, 2, 3}, numericValues[int64](t, c))

	err = c.Set([]int{0, 0, 1}, []any{int64(7), int64(8), "x"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedDataType))
	assert.Equal(t, []int64{1, 2, 3}, numericValues[int64](t, c))

	tensor, err := columnar.NewTensorFromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	m := New(tensor)
	err = m.Set([]int{0, 1}, [][]float64{{9, 9}, {9, 9, 9}})
	assert.True(t, errors.IsType(err, errors.ErrorTypeShapeMismatch))
	for i, want := range [][]float64{{1, 2}, {3, 4}} {
		v, err := m.At(i)
		require.NoError(t, err)
		assert.Equal(t, want, mat.Col(nil, 0, v.(mat.Vector)))
	}
}

func lazyCells(calls *int, values ...int64) []cells.Cell {
	out := make([]cells.Cell, len(values))
	for i, v := range values {
		out[i] = cells.FuncCell{Fn: func() (any, error) {
			*calls++
			return v, nil
		}}
	}
	return out
}

func TestMapCannotCorruptCachedCells(t *testing.T) {
	testutil.UseTestLogger(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), []byte("hello"), 0o600))
	loader, err := cells.NewLoader(dir, 1<<20)
	require.NoError(t, err)
	defer loader.Close()

	c := New(columnar.NewCellColumn([]cells.Cell{cells.NewFileCell("a.bin", loader)}))
	_, err = c.At(0)
	require.NoError(t, err)

	out, err := c.Map(func(b []byte) int64 {
		b[0] = 'X'
		return int64(len(b))
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, numericValues[int64](t, out))

	v, err := c.At(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), v)
}

func TestLazyAndMaterializedReads(t *testing.T) {
	testutil.UseTestLogger(t)
	calls := 0
	c := New(columnar.NewCellColumn(lazyCells(&calls, 7, 8, 9)))

	v, err := c.Lz().Get(0)
	require.NoError(t, err)
	assert.Implements(t, (*cells.Cell)(nil), v)
	assert.Equal(t, 0, calls)

	lazy, err := c.Lz().Get(index.All())
	require.NoError(t, err)
	assert.Equal(t, columnar.KindCell, lazy.(*Column).Kind())
	assert.Equal(t, 0, calls)

	v, err = c.Mz().Get(1)
	require.NoError(t, err)
	assert.Equal(t, int64(8), v)

	eager, err := lazy.(*Column).At(index.All())
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8, 9}, numericValues[int64](t, eager.(*Column)))
	assert.Equal(t, 4, calls)

	assert.True(t, c.Lz().Mz().Materialize())
	assert.False(t, c.Loc().Materialize())
	assert.Equal(t, 3, c.Lz().Len())
}

func TestLabelLookup(t *testing.T) {
	testutil.UseTestLogger(t)
	c := New(columnar.NewStringSeries([]string{"a", "b", "c", "d"}))
	sub, err := c.Select([]int{3, 1}, false)
	require.NoError(t, err)

	v, err := sub.Loc().Get(3)
	require.NoError(t, err)
	assert.Equal(t, "d", v)

	v, err = sub.Lz().Get(0)
	require.NoError(t, err)
	assert.Equal(t, "d", v)

	picked, err := sub.Loc().Mz().Get([]int{1, 3})
	require.NoError(t, err)
	s, err := picked.(*Column).ToSeries()
	require.NoError(t, err)
	assert.Equal(t, []any{"b", "d"}, s.Values)
	assert.Equal(t, []int{1, 3}, s.Index)

	_, err = sub.Loc().Get(0)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidIndex))

	n := ints(t, 5, 6)
	v, err = n.Loc().Get(1)
	require.NoError(t, err)
	assert.Equal(t, int64(6), v)
}

func TestDerivedColumnsInherit(t *testing.T) {
	testutil.UseTestLogger(t)
	reg := provenance.New()
	f := formatter.Func(func(any) string { return "*" })
	c := New(columnar.NewNumeric([]int64{1, 2, 3}), WithFormatter(f), WithProvenance(reg))

	sub, err := c.Select(index.To(2), true)
	require.NoError(t, err)
	assert.Equal(t, "*", sub.Formatter().Format(1))
	assert.Same(t, reg, sub.Registry())
	assert.NotEqual(t, c.ID(), sub.ID())

	sub.SetFormatter(nil)
	assert.Equal(t, "1", sub.Formatter().Format(1))
}

func TestCollateOverride(t *testing.T) {
	testutil.UseTestLogger(t)
	asList := func(values []any) (columnar.Backend, error) {
		return columnar.NewList(values), nil
	}
	c := New(columnar.NewNumeric([]int64{1, 2, 3}), WithCollate(asList))
	sub, err := c.Select([]int{2, 0}, true)
	require.NoError(t, err)
	assert.Equal(t, columnar.KindList, sub.Kind())
	rows, err := sub.Rows()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(3), int64(1)}, rows)
}

func TestProvenanceRecorded(t *testing.T) {
	testutil.UseTestLogger(t)
	reg := provenance.New()
	c, err := FromData([]int64{10, 20, 30, 40, 50}, WithProvenance(reg))
	require.NoError(t, err)

	sub, err := c.Select(index.From(1), true)
	require.NoError(t, err)
	out, err := sub.Filter(func(x int64) bool { return x > 25 })
	require.NoError(t, err)
	require.NoError(t, out.Set(0, int64(0)))

	edges := reg.Query(out.ID())
	var ops []string
	for _, e := range edges {
		ops = append(ops, e.Operation)
	}
	assert.Equal(t, []string{"filter", "set", "get"}, ops)
	assert.Equal(t, []string{sub.ID(), c.ID()}, reg.Ancestors(out.ID()))
}
