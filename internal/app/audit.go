package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"atl_hub/internal/domain"
)

// SectionSummary is the resolution outcome of one section, without items.
type SectionSummary struct {
	Label    string `json:"label"`
	Tier     int    `json:"tier"`
	Count    int    `json:"count"`
	Degraded bool   `json:"degraded"`
}

// Stories outcomes reported per neighborhood.
const (
	StoriesOwn     = "own"
	StoriesWidened = "widened"
	StoriesEmpty   = "empty"
)

type AuditEntry struct {
	Slug     string                    `json:"slug"`
	Sections map[string]SectionSummary `json:"sections,omitempty"`
	// Stories is StoriesOwn, StoriesWidened or StoriesEmpty; unset on error.
	Stories string `json:"stories,omitempty"`
	// Widened is set when Stories came from a wider tier, not from the empty state.
	Widened bool   `json:"widened"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

type Auditor struct {
	pages     *PageService
	locations domain.LocationRepository
	workers   int64
}

func NewAuditor(p *PageService, l domain.LocationRepository, workers int) *Auditor {
	if workers <= 0 {
		workers = 1
	}
	return &Auditor{pages: p, locations: l, workers: int64(workers)}
}

// Run renders every neighborhood page with at most workers in flight.
// Entries keep the listing order.
func (a *Auditor) Run(ctx context.Context) ([]AuditEntry, error) {
	ns, err := a.locations.ListNeighborhoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("list neighborhoods: %w", err)
	}

	out := make([]AuditEntry, len(ns))
	sem := semaphore.NewWeighted(a.workers)
	var wg sync.WaitGroup

	for i, n := range ns {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return out[:i], err
		}
		wg.Add(1)
		go func(i int, slug string) {
			defer wg.Done()
			defer sem.Release(1)
			out[i] = a.auditOne(ctx, slug)
		}(i, n.Slug)
	}

	wg.Wait()
	return out, nil
}

func (a *Auditor) auditOne(ctx context.Context, slug string) AuditEntry {
	e := AuditEntry{Slug: slug}
	page, err := a.pages.Neighborhood(ctx, slug, "")
	if err != nil {
		e.Err = err
		e.Error = err.Error()
		log.Warn().Str("slug", slug).Err(err).Msg("audit render failed")
		return e
	}
	e.Sections = map[string]SectionSummary{
		"stories":         summary(page.Stories),
		"more_stories":    summary(page.MoreStories),
		"eats":            summary(page.Eats),
		"events":          summary(page.Events),
		"featured_in_hub": summary(page.FeaturedInHub),
		"media": {
			Label:    page.Media.Label,
			Tier:     page.Media.Tier,
			Count:    len(page.Media.Playlist) + boolInt(page.Media.Featured != nil),
			Degraded: page.Media.Degraded,
		},
	}
	switch t := page.Stories.Tier; {
	case t < 0:
		e.Stories = StoriesEmpty
	case t == 0:
		e.Stories = StoriesOwn
	default:
		e.Stories = StoriesWidened
		e.Widened = true
	}
	return e
}

func summary[T any](s Section[T]) SectionSummary {
	return SectionSummary{Label: s.Label, Tier: s.Tier, Count: len(s.Items), Degraded: s.Degraded}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
