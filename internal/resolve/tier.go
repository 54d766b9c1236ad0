package resolve

import (
	"context"
	"fmt"
)

// Tier is one candidate scope in a widening sequence.
type Tier[T any] struct {
	Label string
	Fetch func(ctx context.Context) ([]T, error)
}

type Failure struct {
	Tier  int
	Label string
	Err   error
}

// Result is what FirstNonEmpty settled on. Tier is the index of the tier
// whose items were used, or -1 when the section ended empty.
type Result[T any] struct {
	Items    []T
	Label    string
	Tier     int
	Failures []Failure
}

// Degraded reports whether any executed tier failed. A failed tier still
// counts as empty for widening.
func (r Result[T]) Degraded() bool { return len(r.Failures) > 0 }

// FirstNonEmpty runs tiers in order and returns the first non-empty result.
// With search active only the first tier runs, empty or not. If every tier
// is empty the result is empty and carries the last tier's label.
func FirstNonEmpty[T any](ctx context.Context, tiers []Tier[T], searchActive bool) Result[T] {
	res := Result[T]{Tier: -1}
	if len(tiers) == 0 {
		return res
	}
	if searchActive {
		tiers = tiers[:1]
	}
	for i, t := range tiers {
		res.Label = t.Label
		items, err := safeFetch(ctx, t)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Tier: i, Label: t.Label, Err: err})
		}
		if len(items) > 0 {
			res.Items = items
			res.Tier = i
			return res
		}
	}
	res.Items = []T{}
	return res
}

func safeFetch[T any](ctx context.Context, t Tier[T]) (items []T, err error) {
	if t.Fetch == nil {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			items, err = nil, fmt.Errorf("tier %q panicked: %v", t.Label, r)
		}
	}()
	items, err = t.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Truncate returns at most n items. n <= 0 leaves the slice untouched.
func Truncate[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
