package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderRunLifecycle(t *testing.T) {
	m := NewRecorder()

	m.RunStarted("metrics-test")
	assert.Equal(t, 1.0, testutil.ToFloat64(runsInProgress.WithLabelValues("metrics-test")))

	m.RunFinished("metrics-test", true, 2*time.Second)
	assert.Equal(t, 0.0, testutil.ToFloat64(runsInProgress.WithLabelValues("metrics-test")))
	assert.Equal(t, 1.0, testutil.ToFloat64(runsTotal.WithLabelValues("metrics-test", "completed")))
	assert.Greater(t, testutil.ToFloat64(lastSuccess.WithLabelValues("metrics-test")), 0.0)

	m.RunStarted("metrics-test")
	m.RunFinished("metrics-test", false, time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(runsTotal.WithLabelValues("metrics-test", "failed")))
}

func TestRecorderCounts(t *testing.T) {
	m := NewRecorder()

	m.FeedRead("metrics-count", "products", 10, 2)
	m.ProductsEmitted("metrics-count", 3, 1, 4)

	assert.Equal(t, 10.0, testutil.ToFloat64(recordsRead.WithLabelValues("metrics-count", "products")))
	assert.Equal(t, 2.0, testutil.ToFloat64(recordsSkipped.WithLabelValues("metrics-count", "products")))
	assert.Equal(t, 3.0, testutil.ToFloat64(productsEmitted.WithLabelValues("metrics-count", "simple")))
	assert.Equal(t, 4.0, testutil.ToFloat64(productsEmitted.WithLabelValues("metrics-count", "variation")))
}
