package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// BookMetadata is the subset of catalog fields an external source can supply.
type BookMetadata struct {
	Title           string `json:"title,omitempty"`
	Author          string `json:"author,omitempty"`
	CoverURL        string `json:"cover_url,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty"`
}

// MetadataProvider looks up book metadata by ISBN.
type MetadataProvider interface {
	SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error)
}

// OpenLibraryClient fetches book metadata from the OpenLibrary API.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	coverURL    string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewOpenLibraryClient creates a new OpenLibrary API client. The API asks
// for at most one request per second per client.
func NewOpenLibraryClient() *OpenLibraryClient {
	return &OpenLibraryClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     "https://openlibrary.org",
		coverURL:    "https://covers.openlibrary.org",
		rateLimiter: newRateLimiter(time.Second),
	}
}

// NewOpenLibraryClientWithBaseURL is used by tests to point at a fake server.
func NewOpenLibraryClientWithBaseURL(baseURL string) *OpenLibraryClient {
	c := NewOpenLibraryClient()
	c.baseURL = baseURL
	c.coverURL = baseURL
	c.rateLimiter = newRateLimiter(0)
	return c
}

// openLibraryBook mirrors the fields of /isbn/{isbn}.json that we use.
type openLibraryBook struct {
	Title   string `json:"title"`
	Authors []struct {
		Key string `json:"key"`
	} `json:"authors"`
	PublishDate string `json:"publish_date"`
	Covers      []int  `json:"covers"`
}

type openLibraryAuthor struct {
	Name string `json:"name"`
}

// SearchByISBN looks up a book by its ISBN and returns metadata.
func (c *OpenLibraryClient) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("invalid ISBN")
	}

	c.rateLimiter.wait()

	var book openLibraryBook
	if err := c.getJSON(ctx, fmt.Sprintf("%s/isbn/%s.json", c.baseURL, isbn), &book); err != nil {
		return nil, err
	}

	meta := &BookMetadata{
		Title:           book.Title,
		PublicationYear: parsePublicationYear(book.PublishDate),
	}
	if len(book.Covers) > 0 {
		meta.CoverURL = fmt.Sprintf("%s/b/id/%d-L.jpg", c.coverURL, book.Covers[0])
	}
	if len(book.Authors) > 0 {
		name, err := c.fetchAuthorName(ctx, book.Authors[0].Key)
		if err == nil {
			meta.Author = name
		}
	}

	return meta, nil
}

// fetchAuthorName resolves an author reference like /authors/OL23919A.
func (c *OpenLibraryClient) fetchAuthorName(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty author key")
	}

	c.rateLimiter.wait()

	var author openLibraryAuthor
	if err := c.getJSON(ctx, fmt.Sprintf("%s%s.json", c.baseURL, key), &author); err != nil {
		return "", err
	}
	return author.Name, nil
}

func (c *OpenLibraryClient) getJSON(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Shelfmark/1.0 (https://github.com/okatkov/shelfmark)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("not found: %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// normalizeISBN strips hyphens and spaces; a valid result is 10 or 13 digits
// (an ISBN-10 may end in X).
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.ToUpper(isbn)

	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	for i, r := range isbn {
		if r >= '0' && r <= '9' {
			continue
		}
		if r == 'X' && len(isbn) == 10 && i == 9 {
			continue
		}
		return ""
	}
	return isbn
}

// parsePublicationYear extracts a four-digit year from the free-form
// publish_date field ("1851", "May 1851", "1851-10-18").
func parsePublicationYear(date string) int {
	for i := 0; i+4 <= len(date); i++ {
		if !isDigit(date[i]) {
			continue
		}
		if i+4 < len(date) && isDigit(date[i+4]) {
			continue
		}
		year := 0
		ok := true
		for j := i; j < i+4; j++ {
			if !isDigit(date[j]) {
				ok = false
				break
			}
			year = year*10 + int(date[j]-'0')
		}
		if ok && year >= 1000 {
			return year
		}
	}
	return 0
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
