package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	server "atl_hub/internal/adapters/http_server"
	"atl_hub/internal/app"
	"atl_hub/internal/domain"
)

// ---- fakes ----

type locations struct{ err error }

func (l locations) NeighborhoodBySlug(ctx context.Context, slug string) (domain.Neighborhood, error) {
	if l.err != nil {
		return domain.Neighborhood{}, l.err
	}
	if slug != "inman-park" {
		return domain.Neighborhood{}, domain.ErrNotFound
	}
	return domain.Neighborhood{ID: "n-ip", Name: "Inman Park", Slug: "inman-park"}, nil
}
func (l locations) ListNeighborhoods(ctx context.Context) ([]domain.Neighborhood, error) {
	return nil, nil
}
func (l locations) NeighborhoodsInArea(ctx context.Context, id domain.ID) ([]domain.Neighborhood, error) {
	return nil, nil
}
func (l locations) AreaByID(ctx context.Context, id domain.ID) (domain.Area, error) {
	return domain.Area{}, domain.ErrNotFound
}
func (l locations) CityBySlug(ctx context.Context, slug string) (domain.City, error) {
	if slug != "decatur" {
		return domain.City{}, domain.ErrNotFound
	}
	return domain.City{ID: "c-dec", Name: "Decatur", Slug: "decatur"}, nil
}

type content struct{}

func (content) FetchStories(ctx context.Context, f domain.StoryFilter) ([]domain.Story, error) {
	if len(f.LocationIDs) == 0 {
		return []domain.Story{{ID: "s-city", Title: "Citywide"}}, nil
	}
	return nil, nil
}
func (content) FetchBusinesses(ctx context.Context, f domain.BusinessFilter) ([]domain.Business, error) {
	return nil, errors.New("businesses unavailable")
}
func (content) FetchEvents(ctx context.Context, f domain.EventFilter) ([]domain.Event, error) {
	return nil, nil
}
func (content) FetchMedia(ctx context.Context, f domain.MediaFilter) ([]domain.MediaItem, error) {
	return nil, nil
}
func (content) ResolveCategoryIDBySlug(ctx context.Context, slug string) (domain.ID, bool, error) {
	return "cat-" + slug, true, nil
}

func newServer(l domain.LocationRepository) *httptest.Server {
	srv := server.New(5 * time.Second)
	srv.MountHandlers(&server.Handlers{Pages: app.NewPageService(l, content{}, app.DefaultLabels())})
	return httptest.NewServer(srv.Mux())
}

// ---- tests ----

func TestGetNeighborhood_OK(t *testing.T) {
	ts := newServer(locations{})
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/neighborhoods/inman-park")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NotEmpty(t, res.Header.Get("ETag"))

	var page app.NeighborhoodPage
	require.NoError(t, json.NewDecoder(res.Body).Decode(&page))
	require.Equal(t, "Atlanta", page.Stories.Label)
	require.Len(t, page.Stories.Items, 1)
	require.True(t, page.Eats.Degraded)
	require.Equal(t, "Top Restaurants in Atlanta", page.Eats.Headline)
}

func TestGetNeighborhood_ETagNotModified(t *testing.T) {
	ts := newServer(locations{})
	defer ts.Close()

	first, err := http.Get(ts.URL + "/v1/neighborhoods/inman-park")
	require.NoError(t, err)
	first.Body.Close()
	etag := first.Header.Get("ETag")

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/neighborhoods/inman-park", nil)
	req.Header.Set("If-None-Match", etag)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusNotModified, res.StatusCode)
}

func TestGetNeighborhood_NotFound(t *testing.T) {
	ts := newServer(locations{})
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/neighborhoods/atlantis")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	require.Equal(t, "application/problem+json", res.Header.Get("Content-Type"))
}

func TestGetNeighborhood_RootLookupFailure(t *testing.T) {
	ts := newServer(locations{err: errors.New("db down")})
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/neighborhoods/inman-park")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

func TestGetCity_OK(t *testing.T) {
	ts := newServer(locations{})
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/cities/decatur?q=")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var page app.CityPage
	require.NoError(t, json.NewDecoder(res.Body).Decode(&page))
	require.Equal(t, "Decatur", page.City.Name)
	require.Equal(t, "Atlanta Metro", page.Stories.Label)
}

func TestHealthz(t *testing.T) {
	ts := newServer(locations{})
	defer ts.Close()

	res, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
}

// accessLog swaps the global logger for one writing into a buffer. The server
// must be built after this so its access middleware picks the buffer up.
func accessLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestAccessLog_CarriesPageResolution(t *testing.T) {
	buf := accessLog(t)
	srv := server.New(5 * time.Second)
	srv.MountHandlers(&server.Handlers{Pages: app.NewPageService(locations{}, content{}, app.DefaultLabels())})

	rr := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/neighborhoods/inman-park?q=tacos", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var line struct {
		Msg      string   `json:"message"`
		Route    string   `json:"route"`
		Status   int      `json:"status"`
		Page     string   `json:"page"`
		Search   bool     `json:"search"`
		Degraded []string `json:"degraded"`
	}
	// tier failures are logged first; the access line comes last
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &line))
	require.Equal(t, "http_request", line.Msg)
	require.Equal(t, "/v1/neighborhoods/{slug}", line.Route)
	require.Equal(t, http.StatusOK, line.Status)
	require.Equal(t, "neighborhood", line.Page)
	require.True(t, line.Search)
	require.Equal(t, []string{"eats", "featured_in_hub"}, line.Degraded)
}

func TestAccessLog_NonPageRouteHasNoPageFields(t *testing.T) {
	buf := accessLog(t)
	srv := server.New(5 * time.Second)
	srv.MountHandlers(&server.Handlers{Pages: app.NewPageService(locations{}, content{}, app.DefaultLabels())})

	rr := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, buf.String(), `"route":"/healthz"`)
	require.NotContains(t, buf.String(), `"page"`)
}

func TestMetricsNotOnPublicRouter(t *testing.T) {
	ts := newServer(locations{})
	defer ts.Close()

	res, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}
