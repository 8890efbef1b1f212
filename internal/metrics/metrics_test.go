package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/v1/activities", "200"))

	RecordHTTPRequest("GET", "/api/v1/activities", 200, 15*time.Millisecond)
	RecordHTTPRequest("GET", "/api/v1/activities", 200, 30*time.Millisecond)

	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/v1/activities", "200"))
	assert.Equal(t, before+2, after)
}
