package falkordb

import (
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/corelens/rca-engine/internal/logging"
	"github.com/corelens/rca-engine/internal/store"
)

// CacheConfig controls the read-through analysis-result cache.
type CacheConfig struct {
	Capacity int
	TTL      time.Duration
}

// DefaultCacheConfig picks a small TTL and a bounded entry count
// rather than an estimated byte budget: an AnalysisRecord is a
// handful of strings and floats, not an open-ended Cypher result set.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{Capacity: 512, TTL: 2 * time.Minute}
}

type cacheEntry struct {
	record    store.AnalysisRecord
	expiresAt time.Time
}

// queryCache is a TTL-bounded LRU cache of LoadAnalysisResult lookups,
// tracking hits and misses so its lifetime hit rate can be exported.
type queryCache struct {
	mu     sync.RWMutex
	lru    *lru.Cache[string, cacheEntry]
	ttl    time.Duration
	logger *logging.Logger

	hits   uint64
	misses uint64
}

func newQueryCache(config CacheConfig) (*queryCache, error) {
	if config.Capacity <= 0 {
		config.Capacity = DefaultCacheConfig().Capacity
	}
	if config.TTL <= 0 {
		config.TTL = DefaultCacheConfig().TTL
	}

	c, err := lru.New[string, cacheEntry](config.Capacity)
	if err != nil {
		return nil, err
	}

	return &queryCache{
		lru:    c,
		ttl:    config.TTL,
		logger: logging.GetLogger("store.falkordb.cache"),
	}, nil
}

func (qc *queryCache) get(incidentID string) (store.AnalysisRecord, bool) {
	qc.mu.RLock()
	defer qc.mu.RUnlock()

	entry, ok := qc.lru.Get(incidentID)
	if !ok {
		atomic.AddUint64(&qc.misses, 1)
		return store.AnalysisRecord{}, false
	}
	if time.Now().After(entry.expiresAt) {
		atomic.AddUint64(&qc.misses, 1)
		return store.AnalysisRecord{}, false
	}

	atomic.AddUint64(&qc.hits, 1)
	return entry.record, true
}

func (qc *queryCache) put(incidentID string, record store.AnalysisRecord) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.lru.Add(incidentID, cacheEntry{record: record, expiresAt: time.Now().Add(qc.ttl)})
}

func (qc *queryCache) invalidate(incidentID string) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.lru.Remove(incidentID)
}

// hitRate returns the cache's lifetime hit rate, for export through
// internal/metrics' query-cache hit-rate gauge.
func (qc *queryCache) hitRate() float64 {
	hits := atomic.LoadUint64(&qc.hits)
	misses := atomic.LoadUint64(&qc.misses)
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
