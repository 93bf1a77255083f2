package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoflow-labs/todo-service/internal/logging"
	"github.com/todoflow-labs/todo-service/internal/metrics"
)

func TestHandlerExposesCounters(t *testing.T) {
	metrics.TodoRequests.WithLabelValues("create", metrics.Success).Inc()

	srv := httptest.NewServer(metrics.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `todo_requests_total{op="create",outcome="success"}`)
}

func TestCounterIncrements(t *testing.T) {
	c := metrics.TodoRequests.WithLabelValues("delete", metrics.NotFound)
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestServeDisabled(t *testing.T) {
	assert.Nil(t, metrics.Serve("", logging.Nop()))
}
