// Package content fetches chapter content from the remote source with a hard
// timeout ceiling and falls back to the local cache when the remote is slow,
// down, or has nothing. A chapter missing from both is reported as
// ErrContentUnavailable, which callers render as "coming soon".
package content

import (
	"context"
	"edugate/models"
	"errors"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrContentUnavailable means neither the remote source nor the local cache
// has the chapter. Benign: rendered as a coming-soon state, not a failure.
var ErrContentUnavailable = errors.New("content unavailable")

// ErrStoreUnavailable is the internal fetch failure before fallback. It never
// leaves this package unless the fallback also fails.
var ErrStoreUnavailable = errors.New("content store unavailable")

// Source resolves content keys against the remote API, refreshing the local
// cache on every successful read.
type Source struct {
	client  *resty.Client
	cache   Cache
	timeout time.Duration
}

func NewSource(baseURL string, timeoutMs int, cache Cache) *Source {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(time.Duration(timeoutMs) * time.Millisecond)
	return &Source{
		client:  client,
		cache:   cache,
		timeout: time.Duration(timeoutMs) * time.Millisecond,
	}
}

// Fetch returns the content item for the key. The remote call is bounded by
// the configured ceiling; after that the local fallback path is taken
// unconditionally.
func (s *Source) Fetch(ctx context.Context, key Key) (*models.ContentItem, error) {
	item, err := s.fetchRemote(ctx, key)
	if err == nil && item != nil {
		if cacheErr := s.cache.Put(*item); cacheErr != nil {
			log.Printf("[CONTENT] Failed to refresh cache for %s: %v", key, cacheErr)
		}
		return item, nil
	}
	if err != nil {
		log.Printf("[CONTENT] Remote fetch failed for %s, using local cache: %v", key, err)
	}

	cached, cacheErr := s.cache.Get(key.String())
	if cacheErr != nil {
		log.Printf("[CONTENT] Local cache read failed for %s: %v", key, cacheErr)
		return nil, ErrContentUnavailable
	}
	if cached == nil {
		return nil, ErrContentUnavailable
	}
	return cached, nil
}

func (s *Source) fetchRemote(ctx context.Context, key Key) (*models.ContentItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var item models.ContentItem
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&item).
		Get("/content/" + key.String())
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	if resp.StatusCode() == 404 {
		// Remote answered and has nothing; the cache may still have a copy.
		return nil, nil
	}
	if !resp.IsSuccess() {
		return nil, ErrStoreUnavailable
	}
	if item.Key == "" {
		item.Key = key.String()
	}
	return &item, nil
}
