package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/evaluations", "200"))

	RecordAPIRequest("POST", "/api/v1/evaluations", 200, 15*time.Millisecond)
	RecordAPIRequest("POST", "/api/v1/evaluations", 200, 20*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/evaluations", "200"))
	assert.Equal(t, before+2, after)
}

func TestCatalogProducts(t *testing.T) {
	CatalogProducts.Set(1472)
	assert.Equal(t, 1472.0, testutil.ToFloat64(CatalogProducts))
}
