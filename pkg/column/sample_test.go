package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/colkit/pkg/columnar"
	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/provenance"
	"github.com/ajitpratap0/colkit/pkg/sample"
	"github.com/ajitpratap0/colkit/pkg/testutil"
)

func TestSampleDistinctRows(t *testing.T) {
	c := ints(t, 0, 1, 2, 3, 4)
	for seed := uint64(0); seed < 20; seed++ {
		out, err := c.Sample(sample.N(3), sample.Seed(seed))
		require.NoError(t, err)
		got := numericValues[int64](t, out)
		require.Len(t, got, 3)
		seen := map[int64]bool{}
		for _, v := range got {
			assert.Less(t, v, int64(5))
			assert.False(t, seen[v], "row %d drawn twice", v)
			seen[v] = true
		}
	}
}

func TestSampleReproducible(t *testing.T) {
	c := ints(t, 1, 2, 3, 4, 5, 6, 7, 8)
	a, err := c.Sample(sample.Frac(0.5), sample.Seed(7))
	require.NoError(t, err)
	b, err := c.Sample(sample.Frac(0.5), sample.Seed(7))
	require.NoError(t, err)
	assert.Equal(t, numericValues[int64](t, a), numericValues[int64](t, b))
	assert.Equal(t, 4, a.Len())
}

func TestSampleErrors(t *testing.T) {
	c := ints(t, 1, 2, 3)

	_, err := c.Sample(sample.N(1), sample.Frac(0.5))
	assert.True(t, errors.IsType(err, errors.ErrorTypeAmbiguousSampleSize))

	_, err = c.Sample(sample.N(2), sample.Weights([]float64{1, 1}))
	assert.True(t, errors.IsType(err, errors.ErrorTypeLengthMismatch))

	_, err = c.Sample(sample.N(4))
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidSample))
}

func TestSampleWeightsAndLaziness(t *testing.T) {
	testutil.UseTestLogger(t)
	reg := provenance.New()
	calls := 0
	c := New(columnar.NewCellColumn(lazyCells(&calls, 1, 2, 3)), WithProvenance(reg))

	out, err := c.Sample(sample.N(5), sample.Replace(), sample.Weights([]float64{0, 0, 2}), sample.Seed(1))
	require.NoError(t, err)
	assert.Equal(t, columnar.KindCell, out.Kind())
	assert.Equal(t, 0, calls)

	eager, err := out.At(0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), eager)

	edges := reg.Query(out.ID())
	require.Len(t, edges, 1)
	assert.Equal(t, "sample", edges[0].Operation)
}
