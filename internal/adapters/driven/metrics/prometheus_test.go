package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legumeinfo/lis-search/internal/core/domain"
)

func TestCollector_ObserveRequest(t *testing.T) {
	c := NewCollector("test")

	c.ObserveRequest("genes", "search", domain.OutcomeSuccess, 120*time.Millisecond)
	c.ObserveRequest("genes", "search", domain.OutcomeSuccess, 80*time.Millisecond)
	c.ObserveRequest("genes", "search", domain.OutcomeAborted, time.Second)
	c.ObserveRequest("traits", "download", domain.OutcomeError, time.Second)

	assert.InDelta(t, 2, testutil.ToFloat64(c.requestsTotal.WithLabelValues("genes", "search", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.requestsTotal.WithLabelValues("genes", "search", "aborted")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.requestsTotal.WithLabelValues("traits", "download", "error")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(c.requestDuration))
}

func TestCollector_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector("a")
		NewCollector("b")
	})
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("1.2.3")
	c.ObserveRequest("genes", "search", domain.OutcomeEmpty, time.Millisecond)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `lis_search_requests_total{controller="genes",op="search",outcome="empty"} 1`)
	assert.Contains(t, string(body), `lis_search_build_info{version="1.2.3"} 1`)
}
