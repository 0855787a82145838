package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// statusRecorder wraps http.ResponseWriter to capture the status code for
// logging and metrics, plus the account id once the auth gate resolves it.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
	account    string
}

// recordAccount stamps the resolved account id on every recorder in the
// writer chain, so Logging sees it even when Metrics wraps the writer again
// between the two.
func recordAccount(w http.ResponseWriter, id string) {
	for {
		sr, ok := w.(*statusRecorder)
		if !ok {
			return
		}
		sr.account = id
		w = sr.ResponseWriter
	}
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// Logging emits one structured line per request: method, path, status,
// duration, and the account id when the request was authenticated.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rec, r)

			args := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.statusCode),
				slog.Duration("duration", time.Since(start)),
			}
			if rec.account != "" {
				args = append(args, slog.String("account", rec.account))
			}

			level := slog.LevelInfo
			switch {
			case rec.statusCode >= 500:
				level = slog.LevelError
			case rec.statusCode >= 400:
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "http request", args...)
		})
	}
}

// Observer receives one observation per completed request.
type Observer interface {
	ObserveHTTP(method, path string, status int, seconds float64)
}

// Metrics records per-request observations into the given collector. The
// path label is the mux route template, not the raw URL, to keep label
// cardinality bounded.
func Metrics(observer Observer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rec, r)

			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if template, err := route.GetPathTemplate(); err == nil {
					path = template
				}
			}

			observer.ObserveHTTP(r.Method, path, rec.statusCode, time.Since(start).Seconds())
		})
	}
}
