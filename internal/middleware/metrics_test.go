package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/quick"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-board-api/internal/metrics"
)

func setupTestRouter(m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Metrics(m))
	return router
}

func newTestMetrics() *metrics.Metrics {
	return metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
}

func requestCount(t *testing.T, m *metrics.Metrics, method, endpoint, status string) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, m.HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Write(metric))
	return metric.Counter.GetValue()
}

// Every non-excluded request increments the counter for its route pattern and status class
func TestProperty_HTTPRequestMetricsIncrement(t *testing.T) {
	m := newTestMetrics()
	router := setupTestRouter(m)

	var code int
	router.GET("/api/boards/:boardId", func(c *gin.Context) {
		c.Status(code)
	})

	property := func(statusCode uint16) bool {
		if statusCode < 200 || statusCode >= 600 {
			return true
		}
		code = int(statusCode)
		class := string("0123456789"[statusCode/100]) + "xx"
		before := requestCount(t, m, "GET", "/api/boards/:boardId", class)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/boards/b1", nil))

		return w.Code == int(statusCode) &&
			requestCount(t, m, "GET", "/api/boards/:boardId", class) == before+1
	}

	if err := quick.Check(property, &quick.Config{MaxCount: 100}); err != nil {
		t.Errorf("Property test failed: %v", err)
	}
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	m := newTestMetrics()
	router := setupTestRouter(m)
	router.PUT("/api/tasks/:taskId/move", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, id := range []string{"t1", "t2", "t3"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("PUT", "/api/tasks/"+id+"/move", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, float64(3), requestCount(t, m, "PUT", "/api/tasks/:taskId/move", "2xx"))
}

func TestMetricsMiddleware_ExcludedEndpoints(t *testing.T) {
	m := newTestMetrics()
	router := setupTestRouter(m)

	excluded := []string{"/metrics", "/health", "/ready", "/api/health", "/api/ws"}
	for _, path := range excluded {
		router.GET(path, func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
	}

	for _, path := range excluded {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Zero(t, requestCount(t, m, "GET", path, "2xx"))
		})
	}
}

func TestMetricsMiddleware_ErrorStatusCodes(t *testing.T) {
	m := newTestMetrics()
	router := setupTestRouter(m)

	router.GET("/api/boards/:boardId/snapshot", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	router.PUT("/api/tasks/:taskId/move", func(c *gin.Context) {
		c.Status(http.StatusServiceUnavailable)
	})

	testCases := []struct {
		method   string
		path     string
		endpoint string
		status   string
	}{
		{"GET", "/api/boards/b1/snapshot", "/api/boards/:boardId/snapshot", "4xx"},
		{"PUT", "/api/tasks/t1/move", "/api/tasks/:taskId/move", "5xx"},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

			assert.Equal(t, float64(1), requestCount(t, m, tc.method, tc.endpoint, tc.status))
		})
	}
}

func TestMetricsMiddleware_UnmatchedRoutesShareOneLabel(t *testing.T) {
	m := newTestMetrics()
	router := setupTestRouter(m)

	for _, path := range []string{"/wp-login.php", "/.env", "/api/nope"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	assert.Equal(t, float64(3), requestCount(t, m, "GET", "unmatched", "4xx"))
}
