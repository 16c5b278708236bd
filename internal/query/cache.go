// Package query is the caller-side policy in front of the profile use cases:
// results stay fresh for a configurable window, concurrent identical lookups
// share one upstream call, and single-profile lookups are retried once on
// transient transport failures.
//
// Only successful results are cached. Validation, not-found and transport
// failures always reach the caller and are never remembered. Callers get
// their own copies of cached profiles and may modify them freely.
package query

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
	"github.com/tbourn/brasil-beauty-backend/internal/remote"
	"github.com/tbourn/brasil-beauty-backend/internal/services"
	"github.com/tbourn/brasil-beauty-backend/internal/validation"
)

// Models is the use-case surface the cache wraps (satisfied by
// *services.ModelService).
type Models interface {
	ListModels(ctx context.Context, filters *validation.ModelFiltersDTO) ([]domain.Profile, *domain.ListMeta, error)
	GetModelByID(ctx context.Context, id string) (*domain.Profile, error)
	SearchModels(ctx context.Context, query string) ([]domain.Profile, error)
}

// Options configure a Cache. Zero values take the defaults.
type Options struct {
	// TTL is the freshness window (default 5 minutes).
	TTL time.Duration
	// MaxEntries bounds the number of cached results (default 512).
	MaxEntries int
	// RetryDelay is the pause before the single retry of GetModelByID
	// (default 1 second). Retries happen only for retryable transport errors.
	RetryDelay time.Duration
	// Retries is how many extra attempts GetModelByID gets (default 1;
	// negative disables retrying).
	Retries int
}

const (
	defaultTTL        = 5 * time.Minute
	defaultMaxEntries = 512
	defaultRetryDelay = time.Second
)

// entry is one cached result; exactly one field is meaningful per key kind.
type entry struct {
	items []domain.Profile
	meta  *domain.ListMeta
	one   *domain.Profile
}

// Cache wraps Models with the freshness, collapsing and retry policy. It is
// safe for concurrent use.
type Cache struct {
	svc     Models
	lru     *expirable.LRU[string, entry]
	flight  singleflight.Group
	retries uint64
	delay   time.Duration
}

// New returns a Cache in front of svc.
func New(svc Models, opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = defaultMaxEntries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	retries := 1
	if opts.Retries != 0 {
		retries = max(opts.Retries, 0)
	}
	return &Cache{
		svc:     svc,
		lru:     expirable.NewLRU[string, entry](opts.MaxEntries, nil, opts.TTL),
		retries: uint64(retries),
		delay:   opts.RetryDelay,
	}
}

// ListModels serves a listing from cache or the service. Invalid filters are
// rejected by the service and never cached.
func (c *Cache) ListModels(ctx context.Context, filters *validation.ModelFiltersDTO) ([]domain.Profile, *domain.ListMeta, error) {
	key := "list:" + filterKey(filters)
	e, err := c.load(ctx, kindList, key, func(ctx context.Context) (entry, error) {
		items, meta, err := c.svc.ListModels(ctx, filters)
		return entry{items: items, meta: meta}, err
	})
	if err != nil {
		return nil, nil, err
	}
	return domain.CloneProfiles(e.items), cloneMeta(e.meta), nil
}

// GetModelByID serves one profile, retrying once when the upstream failure
// is transient.
func (c *Cache) GetModelByID(ctx context.Context, id string) (*domain.Profile, error) {
	e, err := c.load(ctx, kindModel, "model:"+id, func(ctx context.Context) (entry, error) {
		var p *domain.Profile
		op := func() error {
			var err error
			p, err = c.svc.GetModelByID(ctx, id)
			if err != nil && !remote.IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(c.delay), c.retries), ctx)
		err := backoff.RetryNotify(op, b, func(error, time.Duration) { retriesTotal.Inc() })
		return entry{one: p}, err
	})
	if err != nil || e.one == nil {
		return nil, err
	}
	p := e.one.Clone()
	return &p, nil
}

// SearchModels serves a free-text search. Blank queries are answered by the
// service without a cache entry.
func (c *Cache) SearchModels(ctx context.Context, q string) ([]domain.Profile, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return c.svc.SearchModels(ctx, q)
	}
	e, err := c.load(ctx, kindSearch, "search:"+q, func(ctx context.Context) (entry, error) {
		items, err := c.svc.SearchModels(ctx, q)
		return entry{items: items}, err
	})
	if err != nil {
		return nil, err
	}
	return domain.CloneProfiles(e.items), nil
}

// ListByCategory groups the cached full listing into the three categories.
func (c *Cache) ListByCategory(ctx context.Context) ([]services.CategoryGroup, error) {
	items, _, err := c.ListModels(ctx, nil)
	if err != nil {
		return nil, err
	}
	return services.GroupByCategory(items), nil
}

// Purge drops every cached result.
func (c *Cache) Purge() { c.lru.Purge() }

// Len returns the number of cached results.
func (c *Cache) Len() int { return c.lru.Len() }

// load returns a fresh cached entry or runs fetch once for all concurrent
// callers of key. The shared fetch is detached from any single caller's
// cancellation so one impatient client does not fail the others.
func (c *Cache) load(ctx context.Context, kind, key string, fetch func(context.Context) (entry, error)) (entry, error) {
	if e, ok := c.lru.Get(key); ok {
		lookupsTotal.WithLabelValues(kind, "hit").Inc()
		return e, nil
	}

	ch := c.flight.DoChan(key, func() (any, error) {
		e, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return entry{}, err
		}
		c.lru.Add(key, e)
		return e, nil
	})

	select {
	case <-ctx.Done():
		return entry{}, ctx.Err()
	case res := <-ch:
		switch {
		case res.Err != nil:
			lookupsTotal.WithLabelValues(kind, "error").Inc()
		case res.Shared:
			lookupsTotal.WithLabelValues(kind, "shared").Inc()
		default:
			lookupsTotal.WithLabelValues(kind, "miss").Inc()
		}
		if res.Err != nil {
			return entry{}, res.Err
		}
		return res.Val.(entry), nil
	}
}

func cloneMeta(m *domain.ListMeta) *domain.ListMeta {
	if m == nil {
		return nil
	}
	cp := *m
	return &cp
}

// filterKey canonicalizes a filter DTO. Struct field order makes the JSON
// encoding stable; nil means "no filters".
func filterKey(f *validation.ModelFiltersDTO) string {
	if f == nil {
		return "*"
	}
	b, err := json.Marshal(f)
	if err != nil {
		return "*invalid"
	}
	return string(b)
}
