package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const entryExt = ".json"

// Entry is one stored model response.
type Entry struct {
	Key       string    `json:"key"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
	TTL       int       `json:"ttl"`
}

// Cache stores model responses on disk, one file per key, with an optional
// in-memory LRU in front for the lifetime of the process.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
	mem     *lru.Cache[string, Entry]
	now     func() time.Time
}

// New opens the cache in dir, or the default cache directory when dir is
// empty. ttlSeconds <= 0 means entries never expire. memEntries bounds the
// in-memory layer; zero or less disables it. A disabled cache misses on every
// Get and ignores Put.
func New(enabled bool, dir string, ttlSeconds, memEntries int) (*Cache, error) {
	if !enabled {
		return &Cache{now: time.Now}, nil
	}
	c := &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		enabled: true,
		now:     time.Now,
	}
	if memEntries > 0 {
		mem, err := lru.New[string, Entry](memEntries)
		if err != nil {
			return nil, fmt.Errorf("creating memory cache: %w", err)
		}
		c.mem = mem
	}
	if c.dir == "" {
		d, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		c.dir = d
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return c, nil
}

// Get returns the stored response for key, or ("", false) on a miss or an
// expired entry.
func (c *Cache) Get(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	if c.mem != nil {
		if e, ok := c.mem.Get(key); ok {
			if !c.expired(e) {
				return e.Response, true
			}
			c.mem.Remove(key)
		}
	}

	path := c.entryPath(key)
	e, err := readEntry(path)
	if err != nil {
		return "", false
	}
	if c.expired(e) {
		_ = os.Remove(path)
		return "", false
	}
	if c.mem != nil {
		c.mem.Add(key, e)
	}
	return e.Response, true
}

// Put stores response under key. The file is written to a temp name and
// renamed so concurrent readers never see a partial entry.
func (c *Cache) Put(key, response string) error {
	if !c.enabled {
		return nil
	}
	e := Entry{
		Key:       HashKey(key),
		Response:  response,
		CreatedAt: c.now(),
		TTL:       int(c.ttl / time.Second),
	}
	if c.mem != nil {
		c.mem.Add(key, e)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("creating cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.entryPath(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storing cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	if c.mem != nil {
		c.mem.Purge()
	}
	return c.each(func(path string, _ fs.FileInfo) {
		_ = os.Remove(path)
	})
}

// Prune removes expired entries and reports how many were removed.
// Unreadable entries count as expired.
func (c *Cache) Prune() (int, error) {
	if !c.enabled {
		return 0, nil
	}
	removed := 0
	err := c.each(func(path string, _ fs.FileInfo) {
		e, err := readEntry(path)
		if err == nil && !c.expired(e) {
			return
		}
		if os.Remove(path) == nil {
			removed++
		}
	})
	if c.mem != nil {
		for _, k := range c.mem.Keys() {
			if e, ok := c.mem.Peek(k); ok && c.expired(e) {
				c.mem.Remove(k)
			}
		}
	}
	return removed, err
}

// Stats describes the cache contents.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Expired    int    `json:"expired"`
	InMemory   int    `json:"inMemory"`
}

func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.dir}
	if !c.enabled {
		return stats, nil
	}
	if c.mem != nil {
		stats.InMemory = c.mem.Len()
	}
	err := c.each(func(path string, info fs.FileInfo) {
		stats.Entries++
		stats.TotalBytes += info.Size()
		if e, err := readEntry(path); err == nil && c.expired(e) {
			stats.Expired++
		}
	})
	return stats, err
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string { return c.dir }

// Enabled reports whether caching is on.
func (c *Cache) Enabled() bool { return c.enabled }

// HashKey returns the hex SHA-256 of key; it names the entry file.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

// each calls fn for every entry file in the cache directory.
func (c *Cache) each(fn func(path string, info fs.FileInfo)) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, de := range entries {
		if de.IsDir() || filepath.Ext(de.Name()) != entryExt {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		fn(filepath.Join(c.dir, de.Name()), info)
	}
	return nil
}

func readEntry(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return e, nil
}

func (c *Cache) expired(e Entry) bool {
	return c.ttl > 0 && c.now().Sub(e.CreatedAt) > c.ttl
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, HashKey(key)+entryExt)
}

func defaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "inspect"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "inspect"), nil
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "inspect", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "inspect", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "inspect"), nil
	}
}
