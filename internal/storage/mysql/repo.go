package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"atl_hub/internal/domain"
)

const defaultLimit = 20

type Repo struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Repo { return &Repo{db: db, now: time.Now} }

// WithClock overrides the clock used for "upcoming" event filtering.
func (r *Repo) WithClock(now func() time.Time) *Repo {
	r.now = now
	return r
}

// ---- locations ----

func (r *Repo) NeighborhoodBySlug(ctx context.Context, slug string) (domain.Neighborhood, error) {
	n, err := scanNeighborhood(r.db.QueryRowContext(ctx, neighborhoodBySlugSQL, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Neighborhood{}, domain.ErrNotFound
	}
	return n, err
}

func (r *Repo) ListNeighborhoods(ctx context.Context) ([]domain.Neighborhood, error) {
	return r.neighborhoods(ctx, listNeighborhoodsSQL)
}

func (r *Repo) NeighborhoodsInArea(ctx context.Context, areaID domain.ID) ([]domain.Neighborhood, error) {
	return r.neighborhoods(ctx, neighborhoodsInAreaSQL, areaID)
}

func (r *Repo) neighborhoods(ctx context.Context, q string, args ...any) ([]domain.Neighborhood, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Neighborhood{}
	for rows.Next() {
		n, err := scanNeighborhood(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanNeighborhood(s scanner) (domain.Neighborhood, error) {
	var n domain.Neighborhood
	var areaID sql.NullString
	if err := s.Scan(&n.ID, &n.Name, &n.Slug, &areaID); err != nil {
		return domain.Neighborhood{}, err
	}
	n.AreaID = areaID.String
	return n, nil
}

func (r *Repo) AreaByID(ctx context.Context, id domain.ID) (domain.Area, error) {
	var a domain.Area
	var cityID sql.NullString
	err := r.db.QueryRowContext(ctx, areaByIDSQL, id).Scan(&a.ID, &a.Name, &a.Slug, &cityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Area{}, domain.ErrNotFound
		}
		return domain.Area{}, err
	}
	a.CityID = cityID.String
	return a, nil
}

func (r *Repo) CityBySlug(ctx context.Context, slug string) (domain.City, error) {
	var c domain.City
	err := r.db.QueryRowContext(ctx, cityBySlugSQL, slug).Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.City{}, domain.ErrNotFound
		}
		return domain.City{}, err
	}
	return c, nil
}

func (r *Repo) ResolveCategoryIDBySlug(ctx context.Context, slug string) (domain.ID, bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx, categoryBySlugSQL, slug).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("category %q: %w", slug, err)
	}
	return id, true, nil
}

// ---- content ----

// where accumulates AND-ed conditions and their args.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) in(col string, ids []domain.ID) {
	if len(ids) == 0 {
		return
	}
	ph := make([]string, len(ids))
	for i, id := range ids {
		ph[i] = "?"
		w.args = append(w.args, id)
	}
	w.conds = append(w.conds, col+" IN ("+strings.Join(ph, ",")+")")
}

// scope filters on the column matching kind. KindNone and empty ids leave
// the query unscoped.
func (w *where) scope(kind domain.LocationKind, ids []domain.ID) {
	switch kind {
	case domain.KindNeighborhood:
		w.in("neighborhood_id", ids)
	case domain.KindCity:
		w.in("city_id", ids)
	}
}

func (w *where) search(col, q string) {
	if q = strings.TrimSpace(q); q != "" {
		w.add(col+" LIKE ?", "%"+escapeLike(q)+"%")
	}
}

func (w *where) sql(base, tail string, limit int) (string, []any) {
	if limit <= 0 {
		limit = defaultLimit
	}
	q := base
	if len(w.conds) > 0 {
		q += "\nWHERE " + strings.Join(w.conds, " AND ")
	}
	return q + tail, append(w.args, limit)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *Repo) FetchStories(ctx context.Context, f domain.StoryFilter) ([]domain.Story, error) {
	var w where
	w.scope(f.Scope, f.LocationIDs)
	w.search("title", f.Search)
	q, args := w.sql(selectStoriesSQL, orderStoriesSQL, f.Limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch stories: %w", err)
	}
	defer rows.Close()

	out := []domain.Story{}
	for rows.Next() {
		var s domain.Story
		var excerpt, nID, cID sql.NullString
		if err := rows.Scan(&s.ID, &s.Title, &s.Slug, &excerpt, &nID, &cID, &s.PublishedAt); err != nil {
			return nil, err
		}
		s.Excerpt, s.NeighborhoodID, s.CityID = excerpt.String, nID.String, cID.String
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) FetchBusinesses(ctx context.Context, f domain.BusinessFilter) ([]domain.Business, error) {
	var w where
	if f.CategoryID != "" {
		w.add("category_id = ?", f.CategoryID)
	}
	if f.Featured {
		w.add("featured = TRUE")
	}
	w.scope(f.Scope, f.LocationIDs)
	w.search("name", f.Search)
	q, args := w.sql(selectBusinessesSQL, orderBusinessesSQL, f.Limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch businesses: %w", err)
	}
	defer rows.Close()

	out := []domain.Business{}
	for rows.Next() {
		var b domain.Business
		var catID, nID, cID sql.NullString
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &catID, &nID, &cID, &b.Featured); err != nil {
			return nil, err
		}
		b.CategoryID, b.NeighborhoodID, b.CityID = catID.String, nID.String, cID.String
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) FetchEvents(ctx context.Context, f domain.EventFilter) ([]domain.Event, error) {
	var w where
	if f.Upcoming {
		w.add("starts_at >= ?", r.now().UTC())
	}
	w.scope(f.Scope, f.LocationIDs)
	w.search("title", f.Search)
	q, args := w.sql(selectEventsSQL, orderEventsSQL, f.Limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	defer rows.Close()

	out := []domain.Event{}
	for rows.Next() {
		var e domain.Event
		var nID, cID sql.NullString
		if err := rows.Scan(&e.ID, &e.Title, &e.Slug, &e.StartsAt, &nID, &cID); err != nil {
			return nil, err
		}
		e.NeighborhoodID, e.CityID = nID.String, cID.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) FetchMedia(ctx context.Context, f domain.MediaFilter) ([]domain.MediaItem, error) {
	var w where
	if f.TargetType != "" && f.TargetType != domain.KindNone {
		w.add("target_type = ?", string(f.TargetType))
		w.in("target_id", f.TargetIDs)
	}
	q, args := w.sql(selectMediaSQL, orderMediaSQL, f.Limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}
	defer rows.Close()

	out := []domain.MediaItem{}
	for rows.Next() {
		var m domain.MediaItem
		var tt string
		var tID sql.NullString
		if err := rows.Scan(&m.ID, &m.Title, &m.URL, &tt, &tID); err != nil {
			return nil, err
		}
		m.TargetType, m.TargetID = domain.LocationKind(tt), tID.String
		out = append(out, m)
	}
	return out, rows.Err()
}
