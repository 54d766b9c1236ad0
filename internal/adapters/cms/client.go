package cms

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"atl_hub/internal/adapters/observability"
	"atl_hub/internal/domain"
)

// Client reads content from the headless CMS JSON API.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var (
	ErrNotFound     = errors.New("cms: not found")
	ErrUnauthorized = errors.New("cms: unauthorized")
	ErrForbidden    = errors.New("cms: forbidden")
)

type envelope[T any] struct {
	Data []T `json:"data"`
}

// ---- ContentSource ----

func scopeParams(v url.Values, kind domain.LocationKind, ids []domain.ID) {
	if len(ids) == 0 || kind == "" || kind == domain.KindNone {
		return
	}
	v.Set("scope", string(kind))
	v.Set("location_ids", strings.Join(ids, ","))
}

func setIf(v url.Values, k, val string) {
	if val = strings.TrimSpace(val); val != "" {
		v.Set(k, val)
	}
}

func (c *Client) FetchStories(ctx context.Context, f domain.StoryFilter) ([]domain.Story, error) {
	v := url.Values{}
	scopeParams(v, f.Scope, f.LocationIDs)
	setIf(v, "q", f.Search)
	v.Set("limit", strconv.Itoa(f.Limit))
	return list[domain.Story](ctx, c, "stories", v)
}

func (c *Client) FetchBusinesses(ctx context.Context, f domain.BusinessFilter) ([]domain.Business, error) {
	v := url.Values{}
	setIf(v, "category_id", f.CategoryID)
	scopeParams(v, f.Scope, f.LocationIDs)
	setIf(v, "q", f.Search)
	if f.Featured {
		v.Set("featured", "true")
	}
	v.Set("limit", strconv.Itoa(f.Limit))
	return list[domain.Business](ctx, c, "businesses", v)
}

func (c *Client) FetchEvents(ctx context.Context, f domain.EventFilter) ([]domain.Event, error) {
	v := url.Values{}
	scopeParams(v, f.Scope, f.LocationIDs)
	setIf(v, "q", f.Search)
	if f.Upcoming {
		v.Set("upcoming", "true")
	}
	v.Set("limit", strconv.Itoa(f.Limit))
	return list[domain.Event](ctx, c, "events", v)
}

func (c *Client) FetchMedia(ctx context.Context, f domain.MediaFilter) ([]domain.MediaItem, error) {
	v := url.Values{}
	tt := f.TargetType
	if tt == "" {
		tt = domain.KindNone
	}
	v.Set("target_type", string(tt))
	if len(f.TargetIDs) > 0 {
		v.Set("target_ids", strings.Join(f.TargetIDs, ","))
	}
	v.Set("limit", strconv.Itoa(f.Limit))
	return list[domain.MediaItem](ctx, c, "media", v)
}

func (c *Client) ResolveCategoryIDBySlug(ctx context.Context, slug string) (domain.ID, bool, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := c.get(ctx, "categories", c.base+"/categories/"+url.PathEscape(slug), &out)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return out.ID, out.ID != "", nil
}

// list GETs a collection endpoint. 404 means an empty collection.
func list[T any](ctx context.Context, c *Client, endpoint string, v url.Values) ([]T, error) {
	var env envelope[T]
	err := c.get(ctx, endpoint, c.base+"/"+endpoint+"?"+v.Encode(), &env)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cms %s: %w", endpoint, err)
	}
	if env.Data == nil {
		env.Data = []T{}
	}
	return env.Data, nil
}

// ---- Internals ----

// get performs a GET with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, endpoint, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.key)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "atl-hub/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("cms", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			log.Debug().Str("endpoint", endpoint).Str("err_type", observability.LabelErr(err)).Int("attempt", i).Msg("cms request failed")
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("cms", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 100ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 100 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
