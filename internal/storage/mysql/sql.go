package mysql

// -----------------------------------------------------------------------------
// LOCATIONS
// -----------------------------------------------------------------------------

const neighborhoodBySlugSQL = `
SELECT id, name, slug, area_id
FROM neighborhoods
WHERE slug = ?
`

const listNeighborhoodsSQL = `
SELECT id, name, slug, area_id
FROM neighborhoods
ORDER BY slug
`

const neighborhoodsInAreaSQL = `
SELECT id, name, slug, area_id
FROM neighborhoods
WHERE area_id = ?
ORDER BY name
`

const areaByIDSQL = `
SELECT id, name, slug, city_id
FROM areas
WHERE id = ?
`

const cityBySlugSQL = `
SELECT id, name, slug
FROM cities
WHERE slug = ?
`

const categoryBySlugSQL = `SELECT id FROM categories WHERE slug = ?`

// -----------------------------------------------------------------------------
// CONTENT (WHERE clauses are appended by the repo)
// -----------------------------------------------------------------------------

const selectStoriesSQL = `
SELECT id, title, slug, excerpt, neighborhood_id, city_id, published_at
FROM stories`

const orderStoriesSQL = ` ORDER BY published_at DESC, id DESC LIMIT ?`

const selectBusinessesSQL = `
SELECT id, name, slug, category_id, neighborhood_id, city_id, featured
FROM businesses`

const orderBusinessesSQL = ` ORDER BY name, id LIMIT ?`

const selectEventsSQL = `
SELECT id, title, slug, starts_at, neighborhood_id, city_id
FROM events`

// soonest first
const orderEventsSQL = ` ORDER BY starts_at ASC, id LIMIT ?`

const selectMediaSQL = `
SELECT id, title, url, target_type, target_id
FROM media_items`

const orderMediaSQL = ` ORDER BY created_at DESC, id DESC LIMIT ?`
