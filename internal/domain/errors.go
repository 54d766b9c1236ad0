package domain

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// ErrLocationNotFound is returned when the page's root slug does not resolve.
// It wraps ErrNotFound.
var ErrLocationNotFound = fmt.Errorf("location %w", ErrNotFound)
