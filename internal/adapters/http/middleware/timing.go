package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"opsboard/internal/adapters/http/perf"
)

// DefaultSlowRequestMs is used when OPSBOARD_SLOW_REQUEST_MS is unset.
const DefaultSlowRequestMs = 200

var slowRequestThreshold = sync.OnceValue(func() float64 {
	if v := os.Getenv("OPSBOARD_SLOW_REQUEST_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return float64(n)
		}
	}
	return DefaultSlowRequestMs
})

var lastRequestID atomic.Uint64

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

var statusWriters = sync.Pool{New: func() any { return new(statusWriter) }}

// Timing logs every request's duration under a sequential request ID and
// records it in collector (which may be nil). Static assets are skipped.
// Slow requests log at WARN, the rest at DEBUG.
func Timing(collector *perf.Collector) func(http.Handler) http.Handler {
	threshold := slowRequestThreshold()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			id := lastRequestID.Add(1)
			sw := statusWriters.Get().(*statusWriter)
			sw.ResponseWriter, sw.status = w, http.StatusOK

			defer func() {
				ms := float64(time.Since(start).Microseconds()) / 1000.0
				level := slog.LevelDebug
				msg := "request"
				if ms >= threshold {
					level, msg = slog.LevelWarn, "slow_request"
				}
				slog.Log(r.Context(), level, msg,
					"request_id", id,
					"method", r.Method,
					"path", r.URL.Path,
					"status", sw.status,
					"duration_ms", ms,
				)
				if collector != nil {
					collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Path:       r.Method + " " + r.URL.Path,
						StatusCode: sw.status,
						DurationMs: ms,
						Timestamp:  start,
					})
				}
				sw.ResponseWriter = nil
				statusWriters.Put(sw)
			}()

			w.Header().Set("X-Request-ID", strconv.FormatUint(id, 10))
			next.ServeHTTP(sw, r)
		})
	}
}
