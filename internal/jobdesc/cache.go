package jobdesc

import (
	"context"
	"strings"
	"time"

	"resume-enhancer/internal/shared/telemetry"
	"resume-enhancer/internal/shared/util"
)

const cacheKeyPrefix = "jobdesc:"

// Cache stores JSON values with a TTL.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Source fetches job posting text.
type Source interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// CachedFetcher serves repeated URLs from Cache. Cache errors fall through
// to Next.
type CachedFetcher struct {
	Next  Source
	Cache Cache
	TTL   time.Duration
}

type cachedPosting struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Fetch returns the cached posting for url or fetches and stores it.
func (f *CachedFetcher) Fetch(ctx context.Context, url string) (string, error) {
	url = strings.TrimSpace(url)
	key := cacheKeyPrefix + util.SHA256Hex([]byte(url))

	var hit cachedPosting
	if ok, err := f.Cache.GetJSON(ctx, key, &hit); err == nil && ok && hit.URL == url && hit.Text != "" {
		telemetry.Info("jobdesc.cache_hit", map[string]any{"url": url})
		return hit.Text, nil
	}

	text, err := f.Next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if err := f.Cache.SetJSON(ctx, key, cachedPosting{URL: url, Text: text}, f.TTL); err != nil {
		telemetry.Warn("jobdesc.cache_store_failed", map[string]any{"url": url, "error": err})
	}
	return text, nil
}
