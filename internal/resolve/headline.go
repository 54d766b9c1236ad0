package resolve

import (
	"strings"
	"unicode/utf16"
)

var EatsHeadlines = []string{
	"Best Places to Eat in",
	"Where to Eat in",
	"Top Restaurants in",
	"Eats & Drinks in",
	"Where Locals Eat in",
}

var EventsHeadlines = []string{
	"Things to Do in",
	"Upcoming Events in",
	"What's Happening in",
	"Events in",
}

// slugHash is the 31-multiplier string hash over UTF-16 code units with
// 32-bit wraparound on every step.
func slugHash(slug string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(slug)) {
		h = (h << 5) - h + int32(c)
	}
	return h
}

// PickHeadline deterministically selects one of options for slug.
func PickHeadline(slug string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	h := int64(slugHash(slug))
	if h < 0 {
		h = -h
	}
	return options[h%int64(len(options))]
}

// Headline joins the phrasing picked for slug with the section label.
func Headline(slug string, options []string, label string) string {
	p := PickHeadline(slug, options)
	return strings.TrimSpace(p + " " + label)
}
