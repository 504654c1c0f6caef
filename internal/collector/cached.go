package collector

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"NormPeakPlot/internal/model"
)

// CachedSource memoizes Source results in memory for a TTL.
type CachedSource struct {
	Source SeriesSource
	cache  *gocache.Cache
}

// NewCachedSource wraps src with a cache of the given TTL.
func NewCachedSource(src SeriesSource, ttl time.Duration) *CachedSource {
	return &CachedSource{
		Source: src,
		cache:  gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedSource) Name() string { return c.Source.Name() }

func (c *CachedSource) Fetch(ctx context.Context, spec model.SeriesSpec) ([]model.Observation, error) {
	key := c.Source.Name() + ":" + spec.FREDID
	if v, found := c.cache.Get(key); found {
		return append([]model.Observation(nil), v.([]model.Observation)...), nil
	}
	obs, err := c.Source.Fetch(ctx, spec)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, append([]model.Observation(nil), obs...))
	return obs, nil
}

// Flush drops every cached series.
func (c *CachedSource) Flush() { c.cache.Flush() }
