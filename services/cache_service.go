package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// CacheEntry represents a cached item with expiration
type CacheEntry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// IsExpired checks if the cache entry has expired
func (ce *CacheEntry) IsExpired(now time.Time) bool {
	return now.After(ce.ExpiresAt)
}

// CacheService is an in-memory TTL cache with a size bound. When full, the
// entry closest to expiry is evicted. Expired entries are purged by
// CleanupExpired, which the cache cleanup job calls.
type CacheService struct {
	cache      map[string]*CacheEntry
	mutex      sync.RWMutex
	defaultTTL time.Duration
	maxSize    int
	hits       int64
	misses     int64
	now        func() time.Time
}

// NewCacheService creates a cache with the given default TTL and size bound
func NewCacheService(cfg shared.CacheConfig) *CacheService {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 10 * time.Minute
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1000
	}
	return &CacheService{
		cache:      make(map[string]*CacheEntry),
		defaultTTL: cfg.DefaultTTL,
		maxSize:    cfg.MaxSize,
		now:        time.Now,
	}
}

// Get retrieves a value from cache
func (cs *CacheService) Get(key string) (interface{}, bool) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	entry, exists := cs.cache[key]
	if !exists || entry.IsExpired(cs.now()) {
		cs.misses++
		return nil, false
	}
	cs.hits++
	return entry.Data, true
}

// Set stores a value in cache with default TTL
func (cs *CacheService) Set(key string, value interface{}) {
	cs.SetWithTTL(key, value, cs.defaultTTL)
}

// SetWithTTL stores a value in cache with custom TTL
func (cs *CacheService) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if _, exists := cs.cache[key]; !exists && len(cs.cache) >= cs.maxSize {
		cs.evictOldest()
	}

	cs.cache[key] = &CacheEntry{
		Data:      value,
		ExpiresAt: cs.now().Add(ttl),
	}
}

// evictOldest removes the entry that expires first
func (cs *CacheService) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range cs.cache {
		if oldestKey == "" || entry.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.ExpiresAt
		}
	}

	if oldestKey != "" {
		delete(cs.cache, oldestKey)
	}
}

// Delete removes a value from cache
func (cs *CacheService) Delete(key string) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	delete(cs.cache, key)
}

// DeletePrefix removes every key starting with prefix
func (cs *CacheService) DeletePrefix(prefix string) int {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	removed := 0
	for key := range cs.cache {
		if strings.HasPrefix(key, prefix) {
			delete(cs.cache, key)
			removed++
		}
	}
	return removed
}

// Clear removes all values from cache
func (cs *CacheService) Clear() {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.cache = make(map[string]*CacheEntry)
}

// Size returns the number of items in cache
func (cs *CacheService) Size() int {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	return len(cs.cache)
}

// DefaultTTL returns the TTL used by Set
func (cs *CacheService) DefaultTTL() time.Duration {
	return cs.defaultTTL
}

// CleanupExpired removes expired entries and returns how many were removed
func (cs *CacheService) CleanupExpired() int {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	now := cs.now()
	removed := 0
	for key, entry := range cs.cache {
		if entry.IsExpired(now) {
			delete(cs.cache, key)
			removed++
		}
	}
	return removed
}

// GetCacheStats returns cache statistics
func (cs *CacheService) GetCacheStats() map[string]interface{} {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	return map[string]interface{}{
		"size":     len(cs.cache),
		"max_size": cs.maxSize,
		"hits":     cs.hits,
		"misses":   cs.misses,
		"type":     "in-memory",
	}
}

// ContentFetcher is the part of the upstream client the content cache wraps
type ContentFetcher interface {
	FetchExam(ctx context.Context, examID, token string) (*models.ExamContent, error)
	SearchExams(ctx context.Context, query, token string) ([]models.ExamSummary, error)
}

// CachedContentService wraps a ContentFetcher with caching. Exam content is
// immutable for a page load, so serving it from cache is safe within the TTL.
type CachedContentService struct {
	fetcher      ContentFetcher
	cache        *CacheService
	flight       singleflight.Group
	fetchTimeout time.Duration
	logger       *logrus.Entry
}

// sharedFetchTimeout bounds a coalesced upstream fetch, which outlives the
// cancellation of whichever caller started it
const sharedFetchTimeout = 30 * time.Second

// NewCachedContentService creates a new cached content service
func NewCachedContentService(fetcher ContentFetcher, cache *CacheService) *CachedContentService {
	return &CachedContentService{
		fetcher:      fetcher,
		cache:        cache,
		fetchTimeout: sharedFetchTimeout,
		logger:       logrus.WithField("component", "CachedContentService"),
	}
}

// coalesce runs fetch once per key for all concurrent callers. The fetch runs
// on a context detached from the first caller, and each caller stops waiting
// when its own ctx is done.
func (s *CachedContentService) coalesce(ctx context.Context, key string, fetch func(ctx context.Context) (interface{}, error)) (interface{}, bool, error) {
	results := s.flight.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		return fetch(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-results:
		return res.Val, res.Shared, res.Err
	}
}

// FetchExam returns exam content, using cache when possible
func (s *CachedContentService) FetchExam(ctx context.Context, examID, token string) (*models.ExamContent, error) {
	cacheKey := fmt.Sprintf("exam:%s", examID)

	if cached, found := s.cache.Get(cacheKey); found {
		if exam, ok := cached.(*models.ExamContent); ok {
			s.logger.WithField("exam_id", examID).Debug("Exam content served from cache")
			return exam, nil
		}
	}

	// concurrent misses for the same exam share one upstream call
	value, deduped, err := s.coalesce(ctx, cacheKey, func(fetchCtx context.Context) (interface{}, error) {
		exam, err := s.fetcher.FetchExam(fetchCtx, examID, token)
		if err != nil {
			return nil, err
		}
		s.cache.Set(cacheKey, exam)
		return exam, nil
	})
	if err != nil {
		return nil, err
	}
	if deduped {
		s.logger.WithField("exam_id", examID).Debug("Exam fetch shared with a concurrent request")
	}
	return value.(*models.ExamContent), nil
}

// SearchExams returns directory search results, using cache when possible
func (s *CachedContentService) SearchExams(ctx context.Context, query, token string) ([]models.ExamSummary, error) {
	cacheKey := fmt.Sprintf("exam_search:%s", strings.ToLower(strings.TrimSpace(query)))

	if cached, found := s.cache.Get(cacheKey); found {
		if results, ok := cached.([]models.ExamSummary); ok {
			return results, nil
		}
	}

	value, _, err := s.coalesce(ctx, cacheKey, func(fetchCtx context.Context) (interface{}, error) {
		results, err := s.fetcher.SearchExams(fetchCtx, query, token)
		if err != nil {
			return nil, err
		}
		// search results change more often than exam bodies
		s.cache.SetWithTTL(cacheKey, results, s.cache.DefaultTTL()/2)
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]models.ExamSummary), nil
}

// InvalidateExam removes cached content for one exam
func (s *CachedContentService) InvalidateExam(examID string) {
	s.cache.Delete(fmt.Sprintf("exam:%s", examID))
}

// InvalidateAll removes all cached content
func (s *CachedContentService) InvalidateAll() {
	s.cache.DeletePrefix("exam:")
	s.cache.DeletePrefix("exam_search:")
}
