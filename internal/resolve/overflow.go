package resolve

import "atl_hub/internal/domain"

// Supplement returns up to limit candidates that are not already in primary.
// It adds to a section; it never replaces it.
func Supplement[T domain.Item](primary, candidates []T, limit int) []T {
	seen := Seed(NewClaimSet(), primary)
	return Truncate(Filter(seen, candidates), limit)
}
