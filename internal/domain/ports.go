package domain

import "context"

type LocationRepository interface {
	NeighborhoodBySlug(ctx context.Context, slug string) (Neighborhood, error)
	ListNeighborhoods(ctx context.Context) ([]Neighborhood, error)
	NeighborhoodsInArea(ctx context.Context, areaID ID) ([]Neighborhood, error)
	AreaByID(ctx context.Context, id ID) (Area, error)
	CityBySlug(ctx context.Context, slug string) (City, error)
}

// ContentSource is the read side of the CMS. Implementations should return
// an empty slice rather than an error when nothing matches.
type ContentSource interface {
	FetchStories(ctx context.Context, f StoryFilter) ([]Story, error)
	FetchBusinesses(ctx context.Context, f BusinessFilter) ([]Business, error)
	FetchEvents(ctx context.Context, f EventFilter) ([]Event, error)
	FetchMedia(ctx context.Context, f MediaFilter) ([]MediaItem, error)
	// ResolveCategoryIDBySlug returns ok=false when no category has the slug.
	ResolveCategoryIDBySlug(ctx context.Context, slug string) (id ID, ok bool, err error)
}

// Filters. Scope says whether LocationIDs hold neighborhood or city ids; an
// empty LocationIDs means unscoped (citywide).

type StoryFilter struct {
	Scope       LocationKind
	LocationIDs []ID
	Limit       int
	Search      string
}

type BusinessFilter struct {
	CategoryID  ID
	Scope       LocationKind
	LocationIDs []ID
	Limit       int
	Search      string
	Featured    bool
}

type EventFilter struct {
	Scope       LocationKind
	LocationIDs []ID
	Upcoming    bool
	Limit       int
	Search      string
}

type MediaFilter struct {
	TargetType LocationKind
	TargetIDs  []ID
	Limit      int
}
