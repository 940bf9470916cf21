package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/coocood/freecache"
	"github.com/google/uuid"
)

const megabyte = 1024 * 1024

// HistoryCache is a HistoryFetcher that caches another fetcher's results.
// Entries are keyed by (user, exercise, cutoff). Each (user, exercise) pair
// carries a generation token that is part of every entry key, so Invalidate
// drops all cutoffs of a pair by rotating the token.
type HistoryCache struct {
	next     HistoryFetcher
	cache    *freecache.Cache
	ttl      time.Duration
	onLookup func(hit bool)
}

// CacheOption configures a HistoryCache.
type CacheOption func(*HistoryCache)

// WithLookupObserver registers a callback invoked on every lookup.
func WithLookupObserver(fn func(hit bool)) CacheOption {
	return func(c *HistoryCache) {
		c.onLookup = fn
	}
}

// NewHistoryCache wraps next with a cache of sizeMB megabytes. Entries expire
// after ttl; a ttl of zero keeps them until evicted or invalidated.
func NewHistoryCache(next HistoryFetcher, sizeMB int, ttl time.Duration, opts ...CacheOption) *HistoryCache {
	c := &HistoryCache{
		next:  next,
		cache: freecache.NewCache(sizeMB * megabyte),
		ttl:   ttl,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchHistoricSets returns cached sets when present, otherwise fetches and stores them.
// Fetch errors are returned unchanged and never cached.
func (c *HistoryCache) FetchHistoricSets(ctx context.Context, userID int, exerciseID string, before time.Time) ([]models.Set, error) {
	key := c.entryKey(userID, exerciseID, before)

	if data, err := c.cache.Get(key); err == nil {
		var sets []models.Set
		if err := json.Unmarshal(data, &sets); err == nil {
			c.observe(true)
			return sets, nil
		}
		c.cache.Del(key)
	}
	c.observe(false)

	sets, err := c.next.FetchHistoricSets(ctx, userID, exerciseID, before)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(sets); err == nil {
		// Oversized histories fail with ErrLargeEntry and are simply not cached.
		_ = c.cache.Set(key, data, int(c.ttl.Seconds()))
	}
	return sets, nil
}

// Invalidate drops every cached history of the given user and exercise.
func (c *HistoryCache) Invalidate(userID int, exerciseID string) {
	_ = c.cache.Set(generationKey(userID, exerciseID), []byte(uuid.NewString()), 0)
}

func (c *HistoryCache) entryKey(userID int, exerciseID string, before time.Time) []byte {
	return []byte(fmt.Sprintf("sets|%d|%s|%s|%d", userID, exerciseID, c.generation(userID, exerciseID), before.UnixNano()))
}

func (c *HistoryCache) generation(userID int, exerciseID string) string {
	gk := generationKey(userID, exerciseID)
	gen, err := c.cache.Get(gk)
	if err == nil {
		return string(gen)
	}
	if !errors.Is(err, freecache.ErrNotFound) {
		return uuid.NewString()
	}
	token := uuid.NewString()
	_ = c.cache.Set(gk, []byte(token), 0)
	return token
}

func (c *HistoryCache) observe(hit bool) {
	if c.onLookup != nil {
		c.onLookup(hit)
	}
}

func generationKey(userID int, exerciseID string) []byte {
	return []byte(fmt.Sprintf("gen|%d|%s", userID, exerciseID))
}
