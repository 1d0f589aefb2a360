package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/search"
	"github.com/redis/go-redis/v9"
)

var versionKey = keyPrefix + "providers:version"

// ProviderPage is one cached directory listing. Version is the cache
// version it was looked up under; Set stores the page under that version.
type ProviderPage struct {
	Providers []models.ServiceProvider `json:"providers"`
	Total     int64                    `json:"total"`
	Version   int64                    `json:"-"`
}

// ProviderCache caches directory listings. Invalidate bumps a version
// number that is part of every key, so stale entries are never read and
// simply expire.
type ProviderCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProviderCache(client *redis.Client, ttl time.Duration) *ProviderCache {
	return &ProviderCache{client: client, ttl: ttl}
}

func (c *ProviderCache) version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Get returns the cached page and true on a hit. On a miss the returned
// page is empty and carries the version to fill it under.
func (c *ProviderCache) Get(ctx context.Context, f search.ProviderFilter) (*ProviderPage, bool, error) {
	v, err := c.version(ctx)
	if err != nil {
		return nil, false, err
	}
	raw, err := c.client.Get(ctx, cacheKey(v, f)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &ProviderPage{Version: v}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var page ProviderPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, false, err
	}
	page.Version = v
	return &page, true, nil
}

// Set stores page under page.Version. A page read before an Invalidate
// lands under the old version and is never served.
func (c *ProviderCache) Set(ctx context.Context, f search.ProviderFilter, page *ProviderPage) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(page.Version, f), raw, c.ttl).Err()
}

func (c *ProviderCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, versionKey).Err()
}

func cacheKey(version int64, f search.ProviderFilter) string {
	return fmt.Sprintf("%sproviders:v%d:%s|%s|%s|%d|%d", keyPrefix, version,
		strings.ToLower(strings.TrimSpace(f.Query)),
		f.Category,
		strings.ToLower(strings.TrimSpace(f.Location)),
		f.Page, f.Limit)
}
