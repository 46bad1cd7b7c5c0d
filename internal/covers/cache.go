// Package covers keeps a local mirror of remote cover images so the API can
// serve them without hitting the upstream image host on every request.
package covers

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// maxCoverBytes caps a single download. Covers from catalog APIs are a few
// hundred kilobytes at most.
const maxCoverBytes = 10 << 20

// Cache stores downloaded cover images on disk, keyed by book ID and the
// hash of the source URL so a changed URL invalidates the old file.
type Cache struct {
	dir        string
	httpClient *http.Client
}

// NewCache creates a cover cache rooted at dir, creating it if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create covers dir: %w", err)
	}

	return &Cache{
		dir: dir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Get returns the path of the cached cover for a book, downloading it on a
// miss. An empty coverURL yields an empty path with no error.
func (c *Cache) Get(ctx context.Context, bookID uint, coverURL string) (string, error) {
	if coverURL == "" {
		return "", nil
	}

	path := filepath.Join(c.dir, c.filename(bookID, coverURL))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := c.download(ctx, coverURL, path); err != nil {
		return "", err
	}
	return path, nil
}

// Invalidate drops every cached file for a book, including files left
// behind by earlier cover URLs. Called when the book is deleted.
func (c *Cache) Invalidate(bookID uint) error {
	matches, err := filepath.Glob(filepath.Join(c.dir, fmt.Sprintf("%d_*.img", bookID)))
	if err != nil {
		return err
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (c *Cache) filename(bookID uint, coverURL string) string {
	sum := sha256.Sum256([]byte(coverURL))
	return fmt.Sprintf("%d_%x.img", bookID, sum[:8])
}

func (c *Cache) download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Shelfmark/1.0 (https://github.com/okatkov/shelfmark)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch cover: status %d", resp.StatusCode)
	}

	// Write to a temp file in the same directory so the final rename is
	// atomic and readers never see a partial image.
	tmp, err := os.CreateTemp(c.dir, "download_*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmp, io.LimitReader(resp.Body, maxCoverBytes)); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}
