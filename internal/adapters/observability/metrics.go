package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "atlhub", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "atlhub", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "atlhub", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "atlhub", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	SectionResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "atlhub", Name: "section_resolutions_total", Help: "Page sections by the tier that supplied them."},
		[]string{"page", "category", "tier"}, // tier: 0,1,2|none
	)
	TierFetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "atlhub", Name: "tier_fetch_failures_total", Help: "Tier fetches that failed and were treated as empty."},
		[]string{"page", "category"},
	)
	PageRenders = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "atlhub", Name: "page_renders_total", Help: "Pages served over HTTP."},
		[]string{"page", "search", "degraded"},
	)
)

// Serve exposes reg on a separate listener. An empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, SectionResolutions, TierFetchFailures, PageRenders)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

// ObserveSection counts which tier a section settled on; tier < 0 is the
// empty state.
func ObserveSection(page, category string, tier int) {
	t := "none"
	if tier >= 0 {
		t = strconv.Itoa(tier)
	}
	SectionResolutions.WithLabelValues(page, category, t).Inc()
}

func ObservePage(page string, search, degraded bool) {
	PageRenders.WithLabelValues(page, strconv.FormatBool(search), strconv.FormatBool(degraded)).Inc()
}

func ObserveTierFailure(page, category string) {
	TierFetchFailures.WithLabelValues(page, category).Inc()
}

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}
