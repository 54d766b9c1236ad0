package app

import (
	"sort"

	"atl_hub/internal/domain"
)

// Section is one resolved block of a location page. Tier is the index of the
// tier that supplied the items, -1 for the empty state.
type Section[T any] struct {
	Items    []T    `json:"items"`
	Label    string `json:"label"`
	Headline string `json:"headline,omitempty"`
	Tier     int    `json:"tier"`
	Degraded bool   `json:"degraded"`
}

type MediaSection struct {
	Featured *domain.MediaItem `json:"featured,omitempty"`
	Playlist []domain.MediaItem `json:"playlist"`
	Label    string             `json:"label"`
	Tier     int                `json:"tier"`
	Degraded bool               `json:"degraded"`
}

type NeighborhoodPage struct {
	Neighborhood domain.Neighborhood   `json:"neighborhood"`
	Area         *domain.Area          `json:"area,omitempty"`
	Siblings     []domain.Neighborhood `json:"siblings"`
	Search       string                `json:"search,omitempty"`

	Stories       Section[domain.Story]    `json:"stories"`
	MoreStories   Section[domain.Story]    `json:"more_stories"`
	Eats          Section[domain.Business] `json:"eats"`
	Events        Section[domain.Event]    `json:"events"`
	Media         MediaSection             `json:"media"`
	FeaturedInHub Section[domain.Business] `json:"featured_in_hub"`
}

type CityPage struct {
	City   domain.City `json:"city"`
	Search string      `json:"search,omitempty"`

	Stories       Section[domain.Story]    `json:"stories"`
	Eats          Section[domain.Business] `json:"eats"`
	Events        Section[domain.Event]    `json:"events"`
	Media         MediaSection             `json:"media"`
	FeaturedInHub Section[domain.Business] `json:"featured_in_hub"`
}

// DegradedSections names the sections that had at least one failed tier.
func (p NeighborhoodPage) DegradedSections() []string {
	return degraded(map[string]bool{
		"stories":         p.Stories.Degraded,
		"more_stories":    p.MoreStories.Degraded,
		"eats":            p.Eats.Degraded,
		"events":          p.Events.Degraded,
		"media":           p.Media.Degraded,
		"featured_in_hub": p.FeaturedInHub.Degraded,
	})
}

func (p CityPage) DegradedSections() []string {
	return degraded(map[string]bool{
		"stories":         p.Stories.Degraded,
		"eats":            p.Eats.Degraded,
		"events":          p.Events.Degraded,
		"media":           p.Media.Degraded,
		"featured_in_hub": p.FeaturedInHub.Degraded,
	})
}

func degraded(sections map[string]bool) []string {
	out := []string{}
	for name, d := range sections {
		if d {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
