package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, "2xx", classifyStatus(200))
	assert.Equal(t, "3xx", classifyStatus(303))
	assert.Equal(t, "4xx", classifyStatus(404))
	assert.Equal(t, "5xx", classifyStatus(502))
	assert.Equal(t, "unknown", classifyStatus(99))
}

func TestRecordFetchFailure(t *testing.T) {
	before := testutil.ToFloat64(fetchFailuresTotal.WithLabelValues("Catalog", "shops"))
	RecordFetchFailure("Catalog", "shops")
	assert.Equal(t, before+1, testutil.ToFloat64(fetchFailuresTotal.WithLabelValues("Catalog", "shops")))
}

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/shops", "2xx"))
	RecordRequest("GET", "/api/shops", 200, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/shops", "2xx")))
}
