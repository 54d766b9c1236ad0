package resolve

import "atl_hub/internal/domain"

// ClaimSet holds the content ids already shown on a page. It is a value:
// Claim returns a new set and never mutates the one passed in.
type ClaimSet struct {
	ids map[domain.ID]struct{}
}

func NewClaimSet() ClaimSet { return ClaimSet{ids: map[domain.ID]struct{}{}} }

func (c ClaimSet) Has(id domain.ID) bool {
	_, ok := c.ids[id]
	return ok
}

func (c ClaimSet) Len() int { return len(c.ids) }

func (c ClaimSet) with(items int) ClaimSet {
	next := make(map[domain.ID]struct{}, len(c.ids)+items)
	for id := range c.ids {
		next[id] = struct{}{}
	}
	return ClaimSet{ids: next}
}

// Seed claims every item unconditionally.
func Seed[T domain.Item](set ClaimSet, items []T) ClaimSet {
	next := set.with(len(items))
	for _, it := range items {
		next.ids[it.ContentID()] = struct{}{}
	}
	return next
}

// Claim drops items whose id is already claimed and claims the survivors.
// First claim wins; a later section never gets a contested item back.
func Claim[T domain.Item](set ClaimSet, items []T) ([]T, ClaimSet) {
	kept := Filter(set, items)
	return kept, Seed(set, kept)
}

// ClaimN is Claim capped at n survivors. Items past the cap are neither
// returned nor claimed, so a later section can still show them.
func ClaimN[T domain.Item](set ClaimSet, items []T, n int) ([]T, ClaimSet) {
	kept := Truncate(Filter(set, items), n)
	return kept, Seed(set, kept)
}

// Filter drops claimed items without claiming the rest.
func Filter[T domain.Item](set ClaimSet, items []T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !set.Has(it.ContentID()) {
			out = append(out, it)
		}
	}
	return out
}

// ExcludeCategories removes businesses in any of the given categories.
// Empty category ids are ignored.
func ExcludeCategories(bs []domain.Business, categoryIDs ...domain.ID) []domain.Business {
	skip := make(map[domain.ID]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		if id != "" {
			skip[id] = struct{}{}
		}
	}
	out := make([]domain.Business, 0, len(bs))
	for _, b := range bs {
		if _, ok := skip[b.CategoryID]; ok && b.CategoryID != "" {
			continue
		}
		out = append(out, b)
	}
	return out
}
