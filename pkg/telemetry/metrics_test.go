package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_ExposesRecordedCounter(t *testing.T) {
	// given
	m, err := NewMetrics("catalog")
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Provider.Shutdown(context.Background()) })

	counter, err := m.Provider.Meter("test").Int64Counter("catalog.test.calls")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	// when
	rec := httptest.NewRecorder()
	m.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// then
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Regexp(t, `catalog_test_calls_total(\{[^}]*\})? 3`, string(body))
}
