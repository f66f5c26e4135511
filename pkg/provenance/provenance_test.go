package provenance

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/colkit/pkg/errors"
)

func TestRecordAndQuery(t *testing.T) {
	reg := New()

	_, err := reg.Record("b", "map", []string{"a"}, map[string]any{"batch_size": 1})
	require.NoError(t, err)
	_, err = reg.Record("c", "filter", []string{"b"}, nil)
	require.NoError(t, err)
	_, err = reg.Record("d", "concat", []string{"c", "x"}, nil)
	require.NoError(t, err)

	edges := reg.Query("d")
	require.Len(t, edges, 3)
	assert.Equal(t, "concat", edges[0].Operation)
	assert.Equal(t, "filter", edges[1].Operation)
	assert.Equal(t, "map", edges[2].Operation)
	assert.Equal(t, 1, edges[2].Metadata["batch_size"])

	assert.Equal(t, []string{"c", "x", "b", "a"}, reg.Ancestors("d"))
	assert.Empty(t, reg.Query("a"))
	assert.Nil(t, reg.Query("unknown"))
}

func TestQueryReturnsSharedAncestorsOnce(t *testing.T) {
	reg := New()
	_, err := reg.Record("left", "get", []string{"root"}, nil)
	require.NoError(t, err)
	_, err = reg.Record("right", "get", []string{"root"}, nil)
	require.NoError(t, err)
	_, err = reg.Record("root", "set", nil, nil)
	require.NoError(t, err)
	_, err = reg.Record("joined", "concat", []string{"left", "right"}, nil)
	require.NoError(t, err)

	edges := reg.Query("joined")
	ops := make([]string, len(edges))
	for i, e := range edges {
		ops[i] = e.Operation
	}
	assert.Equal(t, []string{"concat", "get", "get", "set"}, ops)
}

func TestRecordRejectsCycles(t *testing.T) {
	reg := New()

	_, err := reg.Record("a", "set", []string{"a"}, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeProvenance))

	_, err = reg.Record("b", "map", []string{"a"}, nil)
	require.NoError(t, err)
	_, err = reg.Record("a", "map", []string{"b"}, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeProvenance))

	_, err = reg.Record("", "map", nil, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeProvenance))
}

func TestRecordedEdgesAreImmutable(t *testing.T) {
	reg := New()
	inputs := []string{"a"}
	meta := map[string]any{"k": "v"}
	_, err := reg.Record("b", "map", inputs, meta)
	require.NoError(t, err)

	inputs[0] = "changed"
	meta["k"] = "changed"

	e := reg.Edges()[0]
	assert.Equal(t, []string{"a"}, e.Inputs)
	assert.Equal(t, "v", e.Metadata["k"])
	assert.Equal(t, uint64(1), e.Seq)
}

func TestConcurrentRecord(t *testing.T) {
	reg := New()
	const workers, perWorker = 8, 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := reg.Record(fmt.Sprintf("out-%d-%d", w, i), "map", []string{"src"}, nil)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, reg.Len())
	seen := make(map[uint64]bool)
	for _, e := range reg.Edges() {
		assert.False(t, seen[e.Seq])
		seen[e.Seq] = true
	}
}
