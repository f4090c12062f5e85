package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/pkg/metrics"
)

// MetricsMiddleware records count, latency and failures of every request
// to endpoint.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next(rec, r)

		code := rec.status()
		status := strconv.Itoa(code)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, float64(time.Since(start).Microseconds())/1000)
		if kind := failureKind(code); kind != "" {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, kind)
		}
	}
}

// failureKind buckets an error status for the error counter. Success
// codes have no kind.
func failureKind(code int) string {
	switch {
	case code < http.StatusBadRequest:
		return ""
	case code == http.StatusGatewayTimeout:
		return "timeout"
	case code == http.StatusServiceUnavailable, code == http.StatusTooManyRequests:
		return "busy"
	case code >= http.StatusInternalServerError:
		return "server_error"
	case code == http.StatusUnprocessableEntity:
		return "infeasible"
	case code == http.StatusNotFound:
		return "not_found"
	default:
		return "client_error"
	}
}

// statusRecorder remembers the first status written. A handler that only
// calls Write gets 200.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.code == 0 {
		s.code = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.code == 0 {
		s.code = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) status() int {
	if s.code == 0 {
		return http.StatusOK
	}
	return s.code
}
