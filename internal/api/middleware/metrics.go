package middleware

import (
	"net/http"
	"sync/atomic"
	"time"
)

// MetricsCollector counts requests handled by the server.
type MetricsCollector struct {
	requests      atomic.Int64
	errors        atomic.Int64
	inFlight      atomic.Int64
	totalDuration atomic.Int64
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

// MetricsSnapshot is a point-in-time copy of the collector.
type MetricsSnapshot struct {
	Requests      int64   `json:"request_count"`
	Errors        int64   `json:"error_count"`
	InFlight      int64   `json:"in_flight"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
}

func (mc *MetricsCollector) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Requests: mc.requests.Load(),
		Errors:   mc.errors.Load(),
		InFlight: mc.inFlight.Load(),
	}
	if s.Requests > 0 {
		s.AvgDurationMS = float64(mc.totalDuration.Load()) / float64(s.Requests) / float64(time.Millisecond)
	}
	return s
}

// Middleware counts requests and 4xx/5xx responses.
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mc.inFlight.Add(1)
		start := time.Now()

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		mc.inFlight.Add(-1)
		mc.totalDuration.Add(int64(time.Since(start)))
		mc.requests.Add(1)
		if rw.statusCode >= 400 {
			mc.errors.Add(1)
		}
	})
}
