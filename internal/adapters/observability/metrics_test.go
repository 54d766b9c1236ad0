package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"atl_hub/internal/adapters/observability"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	return string(body)
}

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record one sample so counters are non-zero
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)

	out := scrape(t, observability.MetricsHandler(reg))
	if !strings.Contains(out, "atlhub_http_requests_total") {
		t.Fatalf("expected atlhub_http_requests_total in output")
	}
}

func TestObserveSection_EmptyStateLabel(t *testing.T) {
	reg := observability.InitRegistry()

	observability.ObserveSection("neighborhood", "stories", 1)
	observability.ObserveSection("neighborhood", "eats", -1)
	observability.ObserveTierFailure("neighborhood", "events")

	out := scrape(t, observability.MetricsHandler(reg))
	for _, want := range []string{
		`atlhub_section_resolutions_total{category="stories",page="neighborhood",tier="1"}`,
		`atlhub_section_resolutions_total{category="eats",page="neighborhood",tier="none"}`,
		`atlhub_tier_fetch_failures_total{category="events",page="neighborhood"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output", want)
		}
	}
}

func TestObservePage_Labels(t *testing.T) {
	reg := observability.InitRegistry()

	observability.ObservePage("city", true, false)

	out := scrape(t, observability.MetricsHandler(reg))
	want := `atlhub_page_renders_total{degraded="false",page="city",search="true"}`
	if !strings.Contains(out, want) {
		t.Fatalf("expected %s in output", want)
	}
}
