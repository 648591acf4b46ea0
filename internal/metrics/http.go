package metrics

import (
	"strings"
	"time"
)

// RecordHTTPRequest records one completed request under its route pattern
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	m.safeExecute("RecordHTTPRequest", func() {
		route = RouteLabel(route)
		m.HTTPRequestsTotal.WithLabelValues(method, route, categorizeStatus(statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	})
}

// RouteLabel collapses requests that matched no route into one label so
// scanners cannot blow up the series count
func RouteLabel(route string) string {
	if route == "" {
		return "unmatched"
	}
	return route
}

func categorizeStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

// ShouldSkipEndpoint reports paths kept out of the request metrics: probes
// and scrapes at the root or under the base path, swagger assets, and the
// websocket upgrade, whose duration is the connection lifetime.
func ShouldSkipEndpoint(path string) bool {
	if path == "/metrics" || strings.Contains(path, "/swagger/") {
		return true
	}
	for _, suffix := range []string{"/health", "/ready", "/ws"} {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}
