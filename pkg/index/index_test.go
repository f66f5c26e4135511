package index

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/colkit/pkg/errors"
)

func TestTranslateScalar(t *testing.T) {
	tests := []struct {
		name string
		idx  any
		want int
	}{
		{name: "zero", idx: 0, want: 0},
		{name: "last", idx: 4, want: 4},
		{name: "negative", idx: -1, want: 4},
		{name: "most negative", idx: -5, want: 0},
		{name: "int64", idx: int64(2), want: 2},
		{name: "uint8", idx: uint8(3), want: 3},
		{name: "single element tuple", idx: Tuple{-2}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Translate(tt.idx, 5)
			require.NoError(t, err)
			assert.True(t, got.Scalar)
			assert.Equal(t, tt.want, got.Pos)
		})
	}
}

func TestTranslateOutOfRange(t *testing.T) {
	for _, idx := range []any{5, -6, 100, []int{0, 5}, uint(5), uint64(math.MaxUint64), uint(1 << 63)} {
		_, err := Translate(idx, 5)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeIndexOutOfRange), "index %v", idx)
	}
}

func TestTranslateUnsignedOverflow(t *testing.T) {
	_, err := Translate(uint64(math.MaxUint64), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 18446744073709551615 is out of range")

	got, err := Translate(uint64(4), 5)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Pos)
}

func TestTranslateSlices(t *testing.T) {
	tests := []struct {
		name  string
		slice Slice
		want  []int
	}{
		{name: "range", slice: Range(1, 3), want: []int{1, 2}},
		{name: "open", slice: All(), want: []int{0, 1, 2, 3, 4}},
		{name: "from negative", slice: From(-2), want: []int{3, 4}},
		{name: "to negative", slice: To(-3), want: []int{0, 1}},
		{name: "clipped", slice: Range(-100, 100), want: []int{0, 1, 2, 3, 4}},
		{name: "empty", slice: Range(3, 1), want: []int{}},
		{name: "stepped", slice: All().Every(2), want: []int{0, 2, 4}},
		{name: "reversed", slice: All().Every(-1), want: []int{4, 3, 2, 1, 0}},
		{name: "reversed stepped", slice: From(3).Every(-2), want: []int{3, 1}},
		{name: "start past end", slice: From(9), want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Translate(tt.slice, 5)
			require.NoError(t, err)
			assert.False(t, got.Scalar)
			assert.Equal(t, tt.want, got.Positions)
		})
	}
}

func TestTranslateZeroStep(t *testing.T) {
	_, err := Translate(All().Every(0), 5)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidIndex))
}

func TestTranslateMask(t *testing.T) {
	got, err := Translate([]bool{true, false, true}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, got.Positions)

	_, err = Translate([]bool{true, false}, 3)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeShapeMismatch))
}

func TestTranslatePositionLists(t *testing.T) {
	got, err := Translate([]int{3, -1, 0, 3}, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 0, 3}, got.Positions)

	got, err = Translate([]int64{1, 2}, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got.Positions)
}

func TestTranslateArrowArrays(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ib := array.NewInt64Builder(mem)
	defer ib.Release()
	ib.AppendValues([]int64{4, 0}, nil)
	ints := ib.NewInt64Array()
	defer ints.Release()

	got, err := Translate(ints, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 0}, got.Positions)

	bb := array.NewBooleanBuilder(mem)
	defer bb.Release()
	bb.AppendValues([]bool{false, true, true}, nil)
	mask := bb.NewBooleanArray()
	defer mask.Release()

	got, err = Translate(mask, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got.Positions)
}

func TestTranslateRejects(t *testing.T) {
	_, err := Translate("a", 3)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidIndex))

	_, err = Translate(Tuple{0, 1}, 3)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotSupported))
}

func TestIsBatch(t *testing.T) {
	assert.False(t, IsBatch(1))
	assert.False(t, IsBatch(Tuple{1}))
	assert.True(t, IsBatch([]int{1}))
	assert.True(t, IsBatch(Range(0, 1)))
}
