package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIsolated(t *testing.T) {
	// Two collectors must not collide on registration
	m1 := NewMetrics()
	m2 := NewMetrics()

	m1.RecordOperation("create", true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m1.FSOperations.WithLabelValues("create", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m2.FSOperations.WithLabelValues("create", "success")))
}

func TestRecordCommand(t *testing.T) {
	m := NewMetrics()

	m.RecordCommand("ls", 0, time.Millisecond)
	m.RecordCommand("ls", 1, time.Millisecond)
	m.RecordCommand("cat", 0, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("ls", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("ls", "error")))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalCommands)
	assert.Equal(t, int64(1), snap.FailedCommands)
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/items/:id", "404")))
	assert.Equal(t, int64(1), m.Snapshot().TotalErrors)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "vfsd_uptime_seconds"))
}
