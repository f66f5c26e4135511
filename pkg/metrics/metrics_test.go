package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTimerObserveOperation(t *testing.T) {
	timer := NewTimer("unit_test_op")
	time.Sleep(time.Millisecond)

	d := timer.ObserveOperation("numeric")
	assert.GreaterOrEqual(t, d, time.Millisecond)
	assert.Equal(t, "unit_test_op", timer.Name())
	assert.Equal(t, 1, testutil.CollectAndCount(OperationDuration, "colkit_operation_duration_seconds"))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(RowsMapped.WithLabelValues("map", "row", "success"))
	RowsMapped.WithLabelValues("map", "row", "success").Add(3)
	assert.Equal(t, before+3, testutil.ToFloat64(RowsMapped.WithLabelValues("map", "row", "success")))
}
