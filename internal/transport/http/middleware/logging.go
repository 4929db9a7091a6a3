package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"adminportal/internal/requestctx"
)

// Recorder receives request timings; *metrics.Collector satisfies it.
type Recorder interface {
	Record(method string, status int, duration time.Duration)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Logger writes one access line per request and feeds the metrics recorder
// when one is given.
func Logger(recorder Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)
			elapsed := time.Since(start)

			if recorder != nil {
				recorder.Record(r.Method, sr.status, elapsed)
			}
			ctx := r.Context()
			slog.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sr.status,
				"bytes", sr.bytes,
				"durationMs", elapsed.Milliseconds(),
				"requestId", requestctx.GetRequestID(ctx),
				"clientIp", requestctx.GetClientIP(ctx),
			)
		})
	}
}
