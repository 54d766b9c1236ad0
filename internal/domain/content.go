package domain

import "time"

// Item is anything a page section can show. IDs are unique across content
// types so sections can be deduplicated against each other.
type Item interface {
	ContentID() ID
}

type Story struct {
	ID             ID        `json:"id"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	Excerpt        string    `json:"excerpt,omitempty"`
	NeighborhoodID ID        `json:"neighborhood_id,omitempty"`
	CityID         ID        `json:"city_id,omitempty"`
	PublishedAt    time.Time `json:"published_at"`
}

type Business struct {
	ID             ID     `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	CategoryID     ID     `json:"category_id,omitempty"`
	NeighborhoodID ID     `json:"neighborhood_id,omitempty"`
	CityID         ID     `json:"city_id,omitempty"`
	Featured       bool   `json:"featured"`
}

type Event struct {
	ID             ID        `json:"id"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	StartsAt       time.Time `json:"starts_at"`
	NeighborhoodID ID        `json:"neighborhood_id,omitempty"`
	CityID         ID        `json:"city_id,omitempty"`
}

type MediaItem struct {
	ID         ID           `json:"id"`
	Title      string       `json:"title"`
	URL        string       `json:"url"`
	TargetType LocationKind `json:"target_type"`
	TargetID   ID           `json:"target_id,omitempty"`
}

func (s Story) ContentID() ID     { return s.ID }
func (b Business) ContentID() ID  { return b.ID }
func (e Event) ContentID() ID     { return e.ID }
func (m MediaItem) ContentID() ID { return m.ID }
