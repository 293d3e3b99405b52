// Package cache stores SEC API responses on disk, one JSON file per call.
//
// A call is identified by the callee name and its arguments. The key is
// hashed with xxhash into the file name; the readable key is kept inside the
// file so Clear can match on it. Entries older than the caller's TTL are
// ignored and overwritten by the next fetch; nothing is purged in the
// background and there is no size bound.
package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"sec_insights/pkg/core/logging"
	"sec_insights/pkg/core/metrics"
)

// Entry is the on-disk layout of a cached response.
type Entry struct {
	CachedAt time.Time       `json:"cached_at"`
	Data     json.RawMessage `json:"data"`
	CacheKey string          `json:"cache_key"`
}

// Cache is a directory of cached responses.
type Cache struct {
	dir     string
	now     func() time.Time
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithMetrics records hits, misses and write failures.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithLogger sets the logger used for swallowed cache errors.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Cache) { c.log = l }
}

// New creates a cache rooted at dir. The directory is created lazily on the
// first write.
func New(dir string, opts ...Option) *Cache {
	c := &Cache{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.OrDefault(c.log).WithField("component", "cache")
	return c
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Key builds the readable cache key for a call, e.g.
// "CompanyFacts_0000320193".
func Key(name string, args ...any) string {
	var b strings.Builder
	b.WriteString(name)
	for _, a := range args {
		b.WriteByte('_')
		fmt.Fprint(&b, a)
	}
	return b.String()
}

// filePath maps a key to its file.
func (c *Cache) filePath(key string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%016x.json", xxhash.Sum64String(key)))
}

// GetOrCompute returns the cached payload for name+args when present and not
// older than ttl (ttl 0 never expires). Otherwise compute is called and its
// result stored. Errors from compute are returned unchanged; errors while
// reading or writing the cache are logged and never fail the call.
func (c *Cache) GetOrCompute(name string, ttl time.Duration, args []any, compute func() (json.RawMessage, error)) (json.RawMessage, error) {
	key := Key(name, args...)
	path := c.filePath(key)

	if data, ok := c.lookup(path, key, ttl); ok {
		c.metrics.CacheHit()
		return data, nil
	}
	c.metrics.CacheMiss()

	data, err := compute()
	if err != nil {
		return nil, err
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("Not caching invalid JSON payload")
		c.metrics.CacheWriteError()
		return data, nil
	}
	data = compact.Bytes()

	if err := c.write(path, Entry{CachedAt: c.now(), Data: data, CacheKey: key}); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("Error caching response")
		c.metrics.CacheWriteError()
	} else {
		c.log.WithField("key", key).Debug("Cached response")
	}
	return data, nil
}

func (c *Cache) lookup(path, key string, ttl time.Duration) (json.RawMessage, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.WithError(err).WithField("key", key).Warn("Error reading cache")
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("Error reading cache")
		return nil, false
	}

	if ttl > 0 && c.now().Sub(entry.CachedAt) > ttl {
		c.log.WithField("key", key).Debug("Cache expired")
		return nil, false
	}
	c.log.WithField("key", key).Debug("Cache hit")
	return entry.Data, true
}

// write replaces the file in one rename so readers never see partial data.
func (c *Cache) write(path string, entry Entry) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Clear deletes cached responses and returns how many files were removed.
// With an empty pattern every entry goes. Otherwise only entries whose stored
// cache_key contains pattern are removed; files that cannot be read or parsed
// are skipped with a warning and left in place.
func (c *Cache) Clear(pattern string) (int, error) {
	files, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("failed to list cache dir: %w", err)
	}

	count := 0
	for _, file := range files {
		if pattern != "" {
			raw, err := os.ReadFile(file)
			if err != nil {
				c.log.WithError(err).WithField("file", file).Warn("Error processing cache file")
				continue
			}
			if !gjson.ValidBytes(raw) {
				c.log.WithField("file", file).Warn("Skipping corrupt cache file")
				continue
			}
			if !strings.Contains(gjson.GetBytes(raw, "cache_key").String(), pattern) {
				continue
			}
		}
		if err := os.Remove(file); err != nil {
			c.log.WithError(err).WithField("file", file).Warn("Error removing cache file")
			continue
		}
		count++
	}
	return count, nil
}
