package middleware

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"photocontest/internal/adapters/http/perf"
)

// DefaultSlowRequest applies when Timing is given no threshold.
const DefaultSlowRequest = 200 * time.Millisecond

var requestSeq atomic.Uint64

// untimedPrefixes are served files. Their latency says nothing about voting.
var untimedPrefixes = []string{"/static/", "/media/"}

// contestWriter remembers the status of a contest request and whether the
// connection left HTTP for the /admin/live websocket.
type contestWriter struct {
	http.ResponseWriter
	status   int
	upgraded bool
}

func (cw *contestWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

// Hijack hands the connection to the live hub.
// POST: on success the request is marked upgraded and excluded from latency stats
func (cw *contestWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("live upgrade: response writer cannot hijack")
	}
	conn, rw, err := hj.Hijack()
	if err == nil {
		cw.status = http.StatusSwitchingProtocols
		cw.upgraded = true
	}
	return conn, rw, err
}

func (cw *contestWriter) Flush() {
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func untimed(path string) bool {
	for _, prefix := range untimedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Timing logs page and API latency and feeds the admin perf dashboard.
// Requests slower than slow log at WARN. A live dashboard upgrade is logged
// as a live_event and never counted as a request, since its handshake time
// would skew the slowest-path table.
// PRE: slow <= 0 selects DefaultSlowRequest; collector may be nil
func Timing(collector *perf.Collector, slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequest
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if untimed(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			id := requestSeq.Add(1)
			cw := &contestWriter{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				elapsed := time.Since(start)
				ms := float64(elapsed.Microseconds()) / 1000.0

				if cw.upgraded {
					slog.Debug("live_event", "event", "upgraded", "request_id", id, "path", r.URL.Path, "handshake_ms", ms)
					return
				}

				attrs := []any{"request_id", id, "method", r.Method, "path", r.URL.Path, "status", cw.status, "duration_ms", ms}
				if elapsed >= slow {
					slog.Warn("slow_request", attrs...)
				} else {
					slog.Debug("request", attrs...)
				}
				if collector != nil {
					collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Path:       r.Method + " " + r.URL.Path,
						StatusCode: cw.status,
						DurationMs: ms,
						Timestamp:  start,
					})
				}
			}()

			next.ServeHTTP(cw, r)
		})
	}
}
