package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/horus/pkg/metrics"
)

// MetricsMiddleware counts requests and failures per endpoint. Latency is
// observed for every endpoint except the long-lived snapshot stream.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	streaming := endpoint == "stream"
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		status := strconv.Itoa(rec.statusCode)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		if !streaming {
			metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, float64(time.Since(start).Milliseconds()))
		}

		if rec.statusCode >= http.StatusBadRequest {
			code := errorCode(rec.statusCode)
			metrics.RecordErrorByEndpoint(endpoint, r.Method, code)
			metrics.RecordErrorByType(code, errorSeverity(rec.statusCode))
		}
	}
}

// errorCode names a failed status the way error bodies do.
func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusTooManyRequests:
		return "backpressure"
	case http.StatusServiceUnavailable:
		return "unavailable"
	}
	if status >= http.StatusInternalServerError {
		return "internal"
	}
	return "client_error"
}

// errorSeverity ranks failures: server faults are high, load shedding is
// medium, client mistakes are low.
func errorSeverity(status int) string {
	switch {
	case status == http.StatusTooManyRequests, status == http.StatusServiceUnavailable:
		return "medium"
	case status >= http.StatusInternalServerError:
		return "high"
	default:
		return "low"
	}
}

// responseWriter records the status written by the wrapped handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Flush forwards to the wrapped writer when it can flush.
func (rw *responseWriter) Flush() {
	_ = rw.FlushError()
}

// FlushError flushes the wrapped writer and reports http.ErrNotSupported
// when it cannot flush.
func (rw *responseWriter) FlushError() error {
	return http.NewResponseController(rw.ResponseWriter).Flush()
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
