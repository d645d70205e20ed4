package server

import (
	"net/http"
	"time"

	"github.com/privcal/calagent/internal/instrumentation"
)

// InstrumentHTTPHandler wraps an HTTP handler and records request count
// and duration per method, path and status. A nil metrics recorder
// returns the handler unwrapped.
func InstrumentHTTPHandler(metrics *instrumentation.Metrics, next http.Handler) http.Handler {
	if metrics == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, sw.status, time.Since(start))
	})
}

// statusWriter captures the response status code. Flush is forwarded so
// the streamable transport keeps working through the wrapper.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
