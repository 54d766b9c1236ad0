package app

import (
	"context"

	"atl_hub/internal/domain"
	"atl_hub/internal/resolve"
)

// rung is one step of a location ladder: a label plus the scope to query.
// An empty ids list with KindNone means unscoped.
type rung struct {
	label string
	kind  domain.LocationKind
	ids   []domain.ID
}

// content ladder for a neighborhood: self, siblings, citywide.
func neighborhoodLadder(n domain.Neighborhood, area *domain.Area, siblingIDs []domain.ID, citywide string) []rung {
	out := []rung{{label: n.Name, kind: domain.KindNeighborhood, ids: []domain.ID{n.ID}}}
	if area != nil && len(siblingIDs) > 0 {
		out = append(out, rung{label: area.Name, kind: domain.KindNeighborhood, ids: siblingIDs})
	}
	return append(out, rung{label: citywide, kind: domain.KindNone})
}

// media ladder for a neighborhood: self, area, citywide.
func neighborhoodMediaLadder(n domain.Neighborhood, area *domain.Area, citywide string) []rung {
	out := []rung{{label: n.Name, kind: domain.KindNeighborhood, ids: []domain.ID{n.ID}}}
	if area != nil {
		out = append(out, rung{label: area.Name, kind: domain.KindArea, ids: []domain.ID{area.ID}})
	}
	return append(out, rung{label: citywide, kind: domain.KindNone})
}

func cityLadder(c domain.City, metro string) []rung {
	return []rung{
		{label: c.Name, kind: domain.KindCity, ids: []domain.ID{c.ID}},
		{label: metro, kind: domain.KindNone},
	}
}

func build[T any](rungs []rung, fetch func(ctx context.Context, r rung) ([]T, error)) []resolve.Tier[T] {
	tiers := make([]resolve.Tier[T], 0, len(rungs))
	for _, r := range rungs {
		r := r
		tiers = append(tiers, resolve.Tier[T]{
			Label: r.label,
			Fetch: func(ctx context.Context) ([]T, error) { return fetch(ctx, r) },
		})
	}
	return tiers
}

func (s *PageService) storyTiers(rungs []rung, search string) []resolve.Tier[domain.Story] {
	return build(rungs, func(ctx context.Context, r rung) ([]domain.Story, error) {
		return s.content.FetchStories(ctx, domain.StoryFilter{
			Scope: r.kind, LocationIDs: r.ids, Limit: StoriesLimit, Search: search,
		})
	})
}

// eatsTiers issues nothing when the dining category is unknown so the
// section settles on its empty state instead of listing every business.
func (s *PageService) eatsTiers(rungs []rung, diningID domain.ID, search string) []resolve.Tier[domain.Business] {
	return build(rungs, func(ctx context.Context, r rung) ([]domain.Business, error) {
		if diningID == "" {
			return nil, nil
		}
		return s.content.FetchBusinesses(ctx, domain.BusinessFilter{
			CategoryID: diningID, Scope: r.kind, LocationIDs: r.ids, Limit: EatsLimit, Search: search,
		})
	})
}

func (s *PageService) eventTiers(rungs []rung, search string) []resolve.Tier[domain.Event] {
	return build(rungs, func(ctx context.Context, r rung) ([]domain.Event, error) {
		return s.content.FetchEvents(ctx, domain.EventFilter{
			Scope: r.kind, LocationIDs: r.ids, Upcoming: true, Limit: EventsLimit, Search: search,
		})
	})
}

func (s *PageService) mediaTiers(rungs []rung) []resolve.Tier[domain.MediaItem] {
	return build(rungs, func(ctx context.Context, r rung) ([]domain.MediaItem, error) {
		return s.content.FetchMedia(ctx, domain.MediaFilter{
			TargetType: r.kind, TargetIDs: r.ids, Limit: MediaLimit,
		})
	})
}

func (s *PageService) featuredTiers(rungs []rung) []resolve.Tier[domain.Business] {
	return build(rungs, func(ctx context.Context, r rung) ([]domain.Business, error) {
		return s.content.FetchBusinesses(ctx, domain.BusinessFilter{
			Scope: r.kind, LocationIDs: r.ids, Limit: featuredFetchLimit, Featured: true,
		})
	})
}
