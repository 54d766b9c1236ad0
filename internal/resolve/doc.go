// Package resolve decides which geographic tier of content a location page
// shows, labels it, and keeps sections on one page from repeating items.
//
// Each content category is described as an ordered list of tiers, narrowest
// first. FirstNonEmpty walks that list until a tier yields something; an
// explicit search pins the section to its first tier. Once every category
// has resolved, sections claim ids in a fixed order (Stories, overflow,
// Eats & Drinks, Events) so an item only appears once.
package resolve
