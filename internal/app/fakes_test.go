package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"atl_hub/internal/domain"
)

// ---- fakes ----

type fakeLocations struct {
	neighborhoods []domain.Neighborhood
	areas         map[domain.ID]domain.Area
	cities        []domain.City
	areaErr       error
	listErr       error
}

func (f *fakeLocations) NeighborhoodBySlug(ctx context.Context, slug string) (domain.Neighborhood, error) {
	for _, n := range f.neighborhoods {
		if n.Slug == slug {
			return n, nil
		}
	}
	return domain.Neighborhood{}, domain.ErrNotFound
}

func (f *fakeLocations) ListNeighborhoods(ctx context.Context) ([]domain.Neighborhood, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.neighborhoods, nil
}

func (f *fakeLocations) NeighborhoodsInArea(ctx context.Context, areaID domain.ID) ([]domain.Neighborhood, error) {
	var out []domain.Neighborhood
	for _, n := range f.neighborhoods {
		if n.AreaID == areaID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeLocations) AreaByID(ctx context.Context, id domain.ID) (domain.Area, error) {
	if f.areaErr != nil {
		return domain.Area{}, f.areaErr
	}
	a, ok := f.areas[id]
	if !ok {
		return domain.Area{}, domain.ErrNotFound
	}
	return a, nil
}

func (f *fakeLocations) CityBySlug(ctx context.Context, slug string) (domain.City, error) {
	for _, c := range f.cities {
		if c.Slug == slug {
			return c, nil
		}
	}
	return domain.City{}, domain.ErrNotFound
}

type fakeContent struct {
	stories    []domain.Story
	businesses []domain.Business
	events     []domain.Event
	media      []domain.MediaItem
	categories map[string]domain.ID

	// fetches scoped to any of these location ids fail
	failScope map[domain.ID]bool
	// return every match regardless of the requested limit
	ignoreLimit bool

	mu            sync.Mutex
	businessCalls []domain.BusinessFilter
	storyCalls    []domain.StoryFilter
	eventCalls    []domain.EventFilter
}

var errBoom = errors.New("connection reset")

func inScope(kind domain.LocationKind, ids []domain.ID, neighborhoodID, cityID domain.ID) bool {
	if len(ids) == 0 {
		return true
	}
	want := neighborhoodID
	if kind == domain.KindCity {
		want = cityID
	}
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

func matches(search, text string) bool {
	return search == "" || strings.Contains(strings.ToLower(text), strings.ToLower(search))
}

func (f *fakeContent) failing(ids []domain.ID) bool {
	for _, id := range ids {
		if f.failScope[id] {
			return true
		}
	}
	return false
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func (f *fakeContent) limitFor(n int) int {
	if f.ignoreLimit {
		return 0
	}
	return n
}

func (f *fakeContent) FetchStories(ctx context.Context, flt domain.StoryFilter) ([]domain.Story, error) {
	f.mu.Lock()
	f.storyCalls = append(f.storyCalls, flt)
	f.mu.Unlock()
	if f.failing(flt.LocationIDs) {
		return nil, errBoom
	}
	var out []domain.Story
	for _, s := range f.stories {
		if inScope(flt.Scope, flt.LocationIDs, s.NeighborhoodID, s.CityID) && matches(flt.Search, s.Title) {
			out = append(out, s)
		}
	}
	return limit(out, f.limitFor(flt.Limit)), nil
}

func (f *fakeContent) FetchBusinesses(ctx context.Context, flt domain.BusinessFilter) ([]domain.Business, error) {
	f.mu.Lock()
	f.businessCalls = append(f.businessCalls, flt)
	f.mu.Unlock()
	if f.failing(flt.LocationIDs) {
		return nil, errBoom
	}
	var out []domain.Business
	for _, b := range f.businesses {
		if flt.CategoryID != "" && b.CategoryID != flt.CategoryID {
			continue
		}
		if flt.Featured && !b.Featured {
			continue
		}
		if inScope(flt.Scope, flt.LocationIDs, b.NeighborhoodID, b.CityID) && matches(flt.Search, b.Name) {
			out = append(out, b)
		}
	}
	return limit(out, f.limitFor(flt.Limit)), nil
}

func (f *fakeContent) FetchEvents(ctx context.Context, flt domain.EventFilter) ([]domain.Event, error) {
	f.mu.Lock()
	f.eventCalls = append(f.eventCalls, flt)
	f.mu.Unlock()
	if f.failing(flt.LocationIDs) {
		return nil, errBoom
	}
	var out []domain.Event
	for _, e := range f.events {
		if inScope(flt.Scope, flt.LocationIDs, e.NeighborhoodID, e.CityID) && matches(flt.Search, e.Title) {
			out = append(out, e)
		}
	}
	return limit(out, f.limitFor(flt.Limit)), nil
}

func (f *fakeContent) FetchMedia(ctx context.Context, flt domain.MediaFilter) ([]domain.MediaItem, error) {
	var out []domain.MediaItem
	for _, m := range f.media {
		if flt.TargetType == domain.KindNone || (m.TargetType == flt.TargetType && inScope("", flt.TargetIDs, m.TargetID, "")) {
			out = append(out, m)
		}
	}
	return limit(out, f.limitFor(flt.Limit)), nil
}

func (f *fakeContent) ResolveCategoryIDBySlug(ctx context.Context, slug string) (domain.ID, bool, error) {
	id, ok := f.categories[slug]
	return id, ok, nil
}

func (f *fakeContent) diningCalls() []domain.BusinessFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.BusinessFilter
	for _, c := range f.businessCalls {
		if c.CategoryID == "cat-dining" {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeContent) featuredCalls() []domain.BusinessFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.BusinessFilter
	for _, c := range f.businessCalls {
		if c.Featured {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeContent) storiesRequested() []domain.StoryFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.StoryFilter(nil), f.storyCalls...)
}

func (f *fakeContent) eventsRequested() []domain.EventFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.EventFilter(nil), f.eventCalls...)
}

// ---- fixtures ----

func westside() *fakeLocations {
	return &fakeLocations{
		neighborhoods: []domain.Neighborhood{
			{ID: "n-wm", Name: "West Midtown", Slug: "west-midtown", AreaID: "a-ws"},
			{ID: "n-bt", Name: "Blandtown", Slug: "blandtown", AreaID: "a-ws"},
			{ID: "n-ip", Name: "Inman Park", Slug: "inman-park", AreaID: "a-es"},
			{ID: "n-lone", Name: "Lonely Acres", Slug: "lonely-acres"},
		},
		areas: map[domain.ID]domain.Area{
			"a-ws": {ID: "a-ws", Name: "Westside", Slug: "westside"},
			"a-es": {ID: "a-es", Name: "Eastside", Slug: "eastside"},
		},
		cities: []domain.City{{ID: "c-dec", Name: "Decatur", Slug: "decatur"}},
	}
}

func categories() map[string]domain.ID {
	return map[string]domain.ID{"dining": "cat-dining", "events": "cat-events"}
}
