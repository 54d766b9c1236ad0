package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"atl_hub/internal/adapters/observability"
	"atl_hub/internal/domain"
	"atl_hub/internal/resolve"
)

const (
	StoriesLimit  = 4
	EatsLimit     = 6
	EventsLimit   = 6
	MediaLimit    = 3
	FeaturedLimit = 6
	OverflowLimit = 6

	// exclusion runs before the cap, so fetch wide
	featuredFetchLimit = 24

	DiningCategorySlug = "dining"
	EventsCategorySlug = "events"
)

const (
	pageNeighborhood = "neighborhood"
	pageCity         = "city"
)

type Labels struct {
	Citywide string // last neighborhood-page tier
	Metro    string // last city-page tier
}

func DefaultLabels() Labels { return Labels{Citywide: "Atlanta", Metro: "Atlanta Metro"} }

type PageService struct {
	locations domain.LocationRepository
	content   domain.ContentSource
	labels    Labels
}

func NewPageService(l domain.LocationRepository, c domain.ContentSource, labels Labels) *PageService {
	d := DefaultLabels()
	if labels.Citywide == "" {
		labels.Citywide = d.Citywide
	}
	if labels.Metro == "" {
		labels.Metro = d.Metro
	}
	return &PageService{locations: l, content: c, labels: labels}
}

// Neighborhood assembles the neighborhood page for slug. Only a failed root
// lookup is returned as an error; every content problem degrades to empty.
func (s *PageService) Neighborhood(ctx context.Context, slug, search string) (NeighborhoodPage, error) {
	n, err := s.locations.NeighborhoodBySlug(ctx, slug)
	if err != nil {
		return NeighborhoodPage{}, rootErr("neighborhood", slug, err)
	}
	search = strings.TrimSpace(search)
	searching := search != ""

	area, siblings := s.areaOf(ctx, n)
	siblingIDs := make([]domain.ID, 0, len(siblings))
	for _, sb := range siblings {
		siblingIDs = append(siblingIDs, sb.ID)
	}
	diningID, eventsID := s.categories(ctx)

	ladder := neighborhoodLadder(n, area, siblingIDs, s.labels.Citywide)
	mediaLadder := neighborhoodMediaLadder(n, area, s.labels.Citywide)
	runOverflow := area != nil && len(siblingIDs) > 0 && !searching

	var (
		stories  resolve.Result[domain.Story]
		extra    resolve.Result[domain.Story]
		eats     resolve.Result[domain.Business]
		events   resolve.Result[domain.Event]
		media    resolve.Result[domain.MediaItem]
		featured resolve.Result[domain.Business]
	)
	// categories are independent; tiers inside each one stay sequential
	var g errgroup.Group
	g.Go(func() error {
		stories = resolve.FirstNonEmpty(ctx, s.storyTiers(ladder, search), searching)
		return nil
	})
	if runOverflow {
		g.Go(func() error {
			extra = resolve.FirstNonEmpty(ctx, []resolve.Tier[domain.Story]{{
				Label: area.Name,
				Fetch: func(ctx context.Context) ([]domain.Story, error) {
					return s.content.FetchStories(ctx, domain.StoryFilter{
						Scope: domain.KindNeighborhood, LocationIDs: siblingIDs, Limit: OverflowLimit + StoriesLimit,
					})
				},
			}}, false)
			return nil
		})
	}
	g.Go(func() error {
		eats = resolve.FirstNonEmpty(ctx, s.eatsTiers(ladder, diningID, search), searching)
		return nil
	})
	g.Go(func() error {
		events = resolve.FirstNonEmpty(ctx, s.eventTiers(ladder, search), searching)
		return nil
	})
	g.Go(func() error {
		media = resolve.FirstNonEmpty(ctx, s.mediaTiers(mediaLadder), false)
		return nil
	})
	g.Go(func() error {
		featured = resolve.FirstNonEmpty(ctx, s.featuredTiers(ladder), false)
		return nil
	})
	_ = g.Wait()

	record(pageNeighborhood, "stories", n.Slug, stories)
	if runOverflow {
		record(pageNeighborhood, "more_stories", n.Slug, extra)
	}
	record(pageNeighborhood, "eats", n.Slug, eats)
	record(pageNeighborhood, "events", n.Slug, events)
	record(pageNeighborhood, "media", n.Slug, media)
	record(pageNeighborhood, "featured", n.Slug, featured)

	// claim order: stories, overflow, eats, events
	storyItems := resolve.Truncate(stories.Items, StoriesLimit)
	more := []domain.Story{}
	if runOverflow {
		more = resolve.Supplement(storyItems, extra.Items, OverflowLimit)
	}
	claimed := resolve.Seed(resolve.NewClaimSet(), storyItems)
	claimed = resolve.Seed(claimed, more)
	eatItems, claimed := resolve.ClaimN(claimed, eats.Items, EatsLimit)
	eventItems := resolve.Filter(claimed, events.Items)

	page := NeighborhoodPage{
		Neighborhood:  n,
		Area:          area,
		Siblings:      siblings,
		Search:        search,
		Stories:       section(stories, storyItems),
		MoreStories:   section(extra, more),
		Eats:          section(eats, eatItems),
		Events:        section(events, resolve.Truncate(eventItems, EventsLimit)),
		Media:         mediaSection(media),
		FeaturedInHub: section(featured, featuredItems(featured.Items, diningID, eventsID)),
	}
	if !runOverflow {
		page.MoreStories.Tier = -1
	}
	page.Eats.Headline = resolve.Headline(n.Slug, resolve.EatsHeadlines, page.Eats.Label)
	page.Events.Headline = resolve.Headline(n.Slug, resolve.EventsHeadlines, page.Events.Label)
	return page, nil
}

// City assembles a "Beyond ATL" city page: the city itself, then metro-wide.
func (s *PageService) City(ctx context.Context, slug, search string) (CityPage, error) {
	c, err := s.locations.CityBySlug(ctx, slug)
	if err != nil {
		return CityPage{}, rootErr("city", slug, err)
	}
	search = strings.TrimSpace(search)
	searching := search != ""
	diningID, eventsID := s.categories(ctx)
	ladder := cityLadder(c, s.labels.Metro)

	var (
		stories  resolve.Result[domain.Story]
		eats     resolve.Result[domain.Business]
		events   resolve.Result[domain.Event]
		media    resolve.Result[domain.MediaItem]
		featured resolve.Result[domain.Business]
	)
	var g errgroup.Group
	g.Go(func() error {
		stories = resolve.FirstNonEmpty(ctx, s.storyTiers(ladder, search), searching)
		return nil
	})
	g.Go(func() error {
		eats = resolve.FirstNonEmpty(ctx, s.eatsTiers(ladder, diningID, search), searching)
		return nil
	})
	g.Go(func() error {
		events = resolve.FirstNonEmpty(ctx, s.eventTiers(ladder, search), searching)
		return nil
	})
	g.Go(func() error {
		media = resolve.FirstNonEmpty(ctx, s.mediaTiers(ladder), false)
		return nil
	})
	g.Go(func() error {
		featured = resolve.FirstNonEmpty(ctx, s.featuredTiers(ladder), false)
		return nil
	})
	_ = g.Wait()

	record(pageCity, "stories", c.Slug, stories)
	record(pageCity, "eats", c.Slug, eats)
	record(pageCity, "events", c.Slug, events)
	record(pageCity, "media", c.Slug, media)
	record(pageCity, "featured", c.Slug, featured)

	storyItems := resolve.Truncate(stories.Items, StoriesLimit)
	claimed := resolve.Seed(resolve.NewClaimSet(), storyItems)
	eatItems, claimed := resolve.ClaimN(claimed, eats.Items, EatsLimit)
	eventItems := resolve.Filter(claimed, events.Items)

	page := CityPage{
		City:          c,
		Search:        search,
		Stories:       section(stories, storyItems),
		Eats:          section(eats, eatItems),
		Events:        section(events, resolve.Truncate(eventItems, EventsLimit)),
		Media:         mediaSection(media),
		FeaturedInHub: section(featured, featuredItems(featured.Items, diningID, eventsID)),
	}
	page.Eats.Headline = resolve.Headline(c.Slug, resolve.EatsHeadlines, page.Eats.Label)
	page.Events.Headline = resolve.Headline(c.Slug, resolve.EventsHeadlines, page.Events.Label)
	return page, nil
}

func rootErr(kind, slug string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s %q: %w", kind, slug, domain.ErrLocationNotFound)
	}
	return fmt.Errorf("load %s %q: %w", kind, slug, err)
}

// areaOf loads the neighborhood's area and its other neighborhoods. Lookup
// failures below the root degrade to "no area" / "no siblings".
func (s *PageService) areaOf(ctx context.Context, n domain.Neighborhood) (*domain.Area, []domain.Neighborhood) {
	siblings := []domain.Neighborhood{}
	if !n.HasArea() {
		return nil, siblings
	}
	a, err := s.locations.AreaByID(ctx, n.AreaID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Str("neighborhood", n.Slug).Str("area_id", n.AreaID).Msg("area lookup failed")
		}
		return nil, siblings
	}
	all, err := s.locations.NeighborhoodsInArea(ctx, a.ID)
	if err != nil {
		log.Warn().Err(err).Str("neighborhood", n.Slug).Str("area", a.Slug).Msg("sibling lookup failed")
		return &a, siblings
	}
	for _, sb := range all {
		if sb.ID != n.ID {
			siblings = append(siblings, sb)
		}
	}
	return &a, siblings
}

func (s *PageService) categories(ctx context.Context) (dining, events domain.ID) {
	return s.categoryID(ctx, DiningCategorySlug), s.categoryID(ctx, EventsCategorySlug)
}

func (s *PageService) categoryID(ctx context.Context, slug string) domain.ID {
	id, ok, err := s.content.ResolveCategoryIDBySlug(ctx, slug)
	if err != nil {
		log.Warn().Err(err).Str("category", slug).Msg("category lookup failed")
		return ""
	}
	if !ok {
		return ""
	}
	return id
}

// featuredItems drops businesses already represented by the dining and
// events sections, by category rather than by claimed id.
func featuredItems(bs []domain.Business, diningID, eventsID domain.ID) []domain.Business {
	return resolve.Truncate(resolve.ExcludeCategories(bs, diningID, eventsID), FeaturedLimit)
}

func section[T any](r resolve.Result[T], items []T) Section[T] {
	if items == nil {
		items = []T{}
	}
	return Section[T]{Items: items, Label: r.Label, Tier: r.Tier, Degraded: r.Degraded()}
}

func mediaSection(r resolve.Result[domain.MediaItem]) MediaSection {
	items := resolve.Truncate(r.Items, MediaLimit)
	ms := MediaSection{Playlist: []domain.MediaItem{}, Label: r.Label, Tier: r.Tier, Degraded: r.Degraded()}
	if len(items) > 0 {
		first := items[0]
		ms.Featured = &first
		ms.Playlist = append(ms.Playlist, items[1:]...)
	}
	return ms
}

func record[T any](page, category, slug string, r resolve.Result[T]) {
	for _, f := range r.Failures {
		observability.ObserveTierFailure(page, category)
		log.Warn().
			Err(f.Err).
			Str("page", page).
			Str("category", category).
			Str("slug", slug).
			Int("tier", f.Tier).
			Str("label", f.Label).
			Msg("tier fetch failed; treating as empty")
	}
	observability.ObserveSection(page, category, r.Tier)
}
