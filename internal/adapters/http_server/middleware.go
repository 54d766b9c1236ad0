package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"atl_hub/internal/adapters/observability"
)

func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return http.TimeoutHandler(next, d, "timeout") }
}

// pageInfo is filled in by page handlers so the access log and metrics can
// say which page was rendered and how it resolved.
type pageInfo struct {
	kind     string
	search   bool
	degraded []string
}

type pageInfoKey struct{}

func annotate(r *http.Request, kind string, search bool, degraded []string) {
	if pi, ok := r.Context().Value(pageInfoKey{}).(*pageInfo); ok {
		pi.kind, pi.search, pi.degraded = kind, search, degraded
	}
}

// Observe records request metrics and writes one access log line per request.
// Page requests additionally carry the page kind, search state and the names
// of degraded sections.
func Observe(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			pi := &pageInfo{}
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), pageInfoKey{}, pi)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			dur := time.Since(start)
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			observability.ObserveHTTP(route, r.Method, status, dur)

			ev := l.Info().
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("route", route).
				Str("method", r.Method).
				Int("status", status).
				Dur("duration", dur).
				Str("remote", r.RemoteAddr)
			if pi.kind != "" {
				observability.ObservePage(pi.kind, pi.search, len(pi.degraded) > 0)
				ev = ev.Str("page", pi.kind).Bool("search", pi.search).Strs("degraded", pi.degraded)
			}
			ev.Msg("http_request")
		})
	}
}
