package fetch

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"qwend/internal/common/fsutil"
)

// Cache stores assembled artifacts on disk so a restart does not re-download
// them. It is keyed by the final path element of the source URL.
type Cache struct {
	dir string
}

// NewCache resolves dir (expanding a leading '~') and ensures it exists.
func NewCache(dir string) (*Cache, error) {
	abs, err := fsutil.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	return &Cache{dir: abs}, nil
}

// Key derives the cache file name for a source URL.
func (c *Cache) Key(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return filepath.Base(rawURL)
	}
	return filepath.Base(u.Path)
}

// Get returns the cached artifact bytes, if present.
func (c *Cache) Get(key string) ([]byte, bool) {
	p := filepath.Join(c.dir, key)
	if !fsutil.PathExists(p) {
		return nil, false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	return b, true
}

// Put writes an artifact to the cache. Write-then-rename so a crashed write
// never leaves a truncated artifact behind.
func (c *Cache) Put(key string, b []byte) error {
	p := filepath.Join(c.dir, key)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}
