package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	counter := httpRequests.WithLabelValues("GET", "/health", "200")
	before := promtestutil.ToFloat64(counter)

	ObserveRequest("GET", "/health", 200, 5*time.Millisecond)

	assert.Equal(t, before+1, promtestutil.ToFloat64(counter))
	assert.Greater(t, promtestutil.CollectAndCount(httpDuration), 0)
}

func TestObserveRecommend(t *testing.T) {
	counter := recommendTotal.WithLabelValues("hybrid", "false")
	before := promtestutil.ToFloat64(counter)

	ObserveRecommend("hybrid", false, 12*time.Millisecond)

	assert.Equal(t, before+1, promtestutil.ToFloat64(counter))
	assert.Greater(t, promtestutil.CollectAndCount(recommendDuration), 0)
}

func TestCacheLookupCounters(t *testing.T) {
	hits := cacheLookups.WithLabelValues("hit")
	misses := cacheLookups.WithLabelValues("miss")
	beforeHits := promtestutil.ToFloat64(hits)
	beforeMisses := promtestutil.ToFloat64(misses)

	CacheHit()
	CacheMiss()
	CacheMiss()

	assert.Equal(t, beforeHits+1, promtestutil.ToFloat64(hits))
	assert.Equal(t, beforeMisses+2, promtestutil.ToFloat64(misses))
}

func TestHandler_Exposition(t *testing.T) {
	ObserveRequest("GET", "/health", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vibecurator_http_requests_total")
}
