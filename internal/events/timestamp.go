package events

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	dps "github.com/markusmobius/go-dateparser"

	"github.com/corelens/rca-engine/internal/rcaconst"
)

// timestampCache accelerates repeat timestamp formats in a hot
// ingestion loop by remembering the parsed instant for a raw string.
// It tracks lifetime hits/misses so the rate can be exported as a
// metrics gauge.
type timestampCache struct {
	mu    sync.Mutex
	cache *lru.Cache[string, time.Time]

	hits   uint64
	misses uint64
}

var sharedTimestampCache = newTimestampCache(rcaconst.TimestampParseCacheSize)

func newTimestampCache(size int) *timestampCache {
	c, err := lru.New[string, time.Time](size)
	if err != nil {
		// size is always a positive compile-time constant; this path
		// is unreachable in practice.
		c, _ = lru.New[string, time.Time](rcaconst.TimestampParseCacheSize)
	}
	return &timestampCache{cache: c}
}

func (c *timestampCache) get(key string) (time.Time, bool) {
	c.mu.Lock()
	t, ok := c.cache.Get(key)
	c.mu.Unlock()
	if ok {
		atomic.AddUint64(&c.hits, 1)
	} else {
		atomic.AddUint64(&c.misses, 1)
	}
	return t, ok
}

func (c *timestampCache) put(key string, t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(key, t)
}

// hitRate returns the cache's lifetime hit rate.
func (c *timestampCache) hitRate() float64 {
	hits := atomic.LoadUint64(&c.hits)
	misses := atomic.LoadUint64(&c.misses)
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// TimestampParseCacheHitRate returns the shared timestamp parse
// cache's lifetime hit rate, for export through internal/metrics'
// parse-cache hit-rate gauge.
func TimestampParseCacheHitRate() float64 {
	return sharedTimestampCache.hitRate()
}

var dateParser = dps.Parser{}

// parseTimestampValue attempts to interpret raw as an instant. It
// accepts Unix seconds (int64/float64/numeric string), RFC3339
// strings, and falls back to best-effort human-readable date parsing.
// Parse failure returns ok=false and is always non-fatal to the
// caller: an event with an unparseable timestamp is still accepted,
// just with Timestamp left nil.
func parseTimestampValue(raw interface{}) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case int64:
		return time.Unix(v, 0).UTC(), true
	case int:
		return time.Unix(int64(v), 0).UTC(), true
	case float64:
		sec := int64(v)
		nsec := int64((v - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec).UTC(), true
	case string:
		return parseTimestampString(v)
	default:
		return time.Time{}, false
	}
}

func parseTimestampString(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	if cached, ok := sharedTimestampCache.get(s); ok {
		return cached, true
	}

	if unixSeconds, err := strconv.ParseInt(s, 10, 64); err == nil {
		t := time.Unix(unixSeconds, 0).UTC()
		sharedTimestampCache.put(s, t)
		return t, true
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t = t.UTC()
		sharedTimestampCache.put(s, t)
		return t, true
	}

	cfg := &dps.Configuration{PreferredDateSource: dps.CurrentPeriod}
	parsed, err := dateParser.Parse(cfg, s)
	if err != nil || parsed.IsZero() {
		return time.Time{}, false
	}

	t := parsed.Time.UTC()
	sharedTimestampCache.put(s, t)
	return t, true
}
