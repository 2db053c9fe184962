package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(statusTransitions.WithLabelValues("settlement", "draft", "pending_hr"))
	RecordTransition("settlement", "draft", "pending_hr")
	after := testutil.ToFloat64(statusTransitions.WithLabelValues("settlement", "draft", "pending_hr"))

	assert.Equal(t, before+1, after)
}

func TestRecordRejected(t *testing.T) {
	RecordRejected("separation", "rejected", "approved")
	assert.Equal(t, float64(1), testutil.ToFloat64(rejectedTransitions.WithLabelValues("separation", "rejected", "approved")))
}
