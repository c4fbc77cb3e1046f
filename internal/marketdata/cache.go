package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/aristath/riskwatch/internal/domain"
)

// Provider supplies daily price history for an asset. Any provider error is
// treated as "no data" by the cache.
type Provider interface {
	FetchDailyHistory(ctx context.Context, asset string, lookbackDays int) ([]domain.PricePoint, error)
}

// FallbackStore is an optional durable layer consulted when the provider
// fails, and written through on successful fetches.
type FallbackStore interface {
	SaveSeries(series domain.AssetSeries) error
	GetDailyPrices(symbol string, limit int) ([]domain.PricePoint, error)
}

// fetchTimeout bounds a single provider call once it is detached from the
// requesting caller's context.
const fetchTimeout = 30 * time.Second

type cacheEntry struct {
	series    domain.AssetSeries
	expiresAt time.Time
}

// Cache is a TTL'd, single-flight series cache keyed by (asset, lookback).
// Concurrent requests for the same key share one provider call; unrelated
// keys never contend beyond the map lock.
type Cache struct {
	provider Provider
	store    FallbackStore
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// New creates a series cache. store may be nil.
func New(provider Provider, store FallbackStore, ttl time.Duration, log zerolog.Logger) *Cache {
	return &Cache{
		provider: provider,
		store:    store,
		ttl:      ttl,
		log:      log.With().Str("component", "series_cache").Logger(),
		now:      time.Now,
		entries:  make(map[string]cacheEntry),
	}
}

func cacheKey(asset string, lookbackDays int) string {
	return fmt.Sprintf("%s|%d", asset, lookbackDays)
}

// GetOrFetch returns the cached series for (asset, lookbackDays) or fetches
// it from the provider. Provider failure falls back to the durable store;
// when both fail and no live entry exists the error wraps
// domain.ErrDataUnavailable.
//
// Cancellation of ctx abandons only this caller: an in-flight fetch runs to
// completion on a detached context and still populates the cache for
// future callers.
func (c *Cache) GetOrFetch(ctx context.Context, asset string, lookbackDays int) (domain.AssetSeries, error) {
	key := cacheKey(asset, lookbackDays)

	if series, ok := c.lookup(key); ok {
		return series, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.fetch(asset, lookbackDays, key)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.AssetSeries{}, res.Err
		}
		return res.Val.(domain.AssetSeries), nil
	case <-ctx.Done():
		return domain.AssetSeries{}, ctx.Err()
	}
}

func (c *Cache) lookup(key string) (domain.AssetSeries, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiresAt) {
		return domain.AssetSeries{}, false
	}
	return entry.series, true
}

func (c *Cache) storeEntry(key string, series domain.AssetSeries) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{series: series, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// fetch runs inside the single flight for key. It is detached from any
// caller's context so an abandoned flight still completes.
func (c *Cache) fetch(asset string, lookbackDays int, key string) (interface{}, error) {
	// A previous flight may have populated the entry between our caller's
	// miss and this flight starting.
	if series, ok := c.lookup(key); ok {
		return series, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	points, err := c.provider.FetchDailyHistory(ctx, asset, lookbackDays)
	if err == nil && len(points) == 0 {
		err = fmt.Errorf("provider returned empty series for %s", asset)
	}

	if err != nil {
		c.log.Warn().Err(err).Str("asset", asset).Msg("Provider fetch failed")
		return c.fallbackSeries(asset, lookbackDays, key, err)
	}

	series := domain.AssetSeries{Asset: asset, Points: points}
	c.storeEntry(key, series)

	if c.store != nil {
		if err := c.store.SaveSeries(series); err != nil {
			c.log.Warn().Err(err).Str("asset", asset).Msg("Failed to persist series")
		}
	}

	return series, nil
}

// fallbackSeries serves the durable store when the provider fails
func (c *Cache) fallbackSeries(asset string, lookbackDays int, key string, cause error) (interface{}, error) {
	if c.store != nil {
		points, err := c.store.GetDailyPrices(asset, lookbackDays+1)
		if err == nil && len(points) > 0 {
			c.log.Info().
				Str("asset", asset).
				Int("count", len(points)).
				Msg("Serving series from history store")

			series := domain.AssetSeries{Asset: asset, Points: points}
			c.storeEntry(key, series)
			return series, nil
		}
	}

	return nil, fmt.Errorf("%w for %s: %v", domain.ErrDataUnavailable, asset, cause)
}
