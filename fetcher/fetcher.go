package fetcher

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seo-optimizer/competitor-audit/analyzer"
	"github.com/seo-optimizer/competitor-audit/stats"
)

const (
	userAgent = "CompetitorAudit/1.0"

	// maxPageBytes caps how much of a response body is read
	maxPageBytes = 10 << 20
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// Cache entry with expiration
type cacheEntry struct {
	page      analyzer.PageDocument
	timestamp time.Time
}

// CacheStats provides statistics about the fetcher's page cache
type CacheStats struct {
	Entries     int           `json:"entries"`
	TTL         time.Duration `json:"ttl"`
	MaxSize     int           `json:"maxSize"`
	Hits        int           `json:"hits"`
	Misses      int           `json:"misses"`
	LastCleanup time.Time     `json:"lastCleanup"`
}

// Options configures a Fetcher. Zero values fall back to the defaults below.
type Options struct {
	Timeout         time.Duration // default 15s
	CacheTTL        time.Duration // default 30m
	MaxCacheSize    int           // default 1000
	CleanupInterval time.Duration // default 5m
	Stats           *stats.Storage
	Transport       http.RoundTripper
}

// Fetcher downloads pages and extracts them into analyzer.PageDocument values
type Fetcher struct {
	client          *http.Client
	cache           map[string]cacheEntry
	cacheMutex      sync.RWMutex
	cacheTTL        time.Duration
	maxCacheSize    int
	lastCleanup     time.Time
	cleanupInterval time.Duration
	stats           *stats.Storage
	now             func() time.Time
	stop            chan struct{}
	stopOnce        sync.Once
}

// New creates a Fetcher and starts its cache cleanup goroutine. Call Close to
// stop it.
func New(opts Options) *Fetcher {
	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}

	f := &Fetcher{
		client: &http.Client{
			Timeout:   orDefault(opts.Timeout, 15*time.Second),
			Transport: transport,
		},
		cache:           make(map[string]cacheEntry),
		cacheTTL:        orDefault(opts.CacheTTL, 30*time.Minute),
		maxCacheSize:    orDefault(opts.MaxCacheSize, 1000),
		cleanupInterval: orDefault(opts.CleanupInterval, 5*time.Minute),
		lastCleanup:     time.Now(),
		stats:           opts.Stats,
		now:             time.Now,
		stop:            make(chan struct{}),
	}

	go f.periodicCleanup()

	return f
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// Close stops the cleanup goroutine and drops the cache
func (f *Fetcher) Close() {
	if f == nil {
		return
	}
	f.stopOnce.Do(func() {
		close(f.stop)
	})
	f.ClearCache()
}

func (f *Fetcher) periodicCleanup() {
	ticker := time.NewTicker(f.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.cleanup()
		case <-f.stop:
			return
		}
	}
}

// cleanup removes expired entries and enforces the size limit, oldest first
func (f *Fetcher) cleanup() {
	now := f.now()

	f.cacheMutex.Lock()
	defer f.cacheMutex.Unlock()

	for key, entry := range f.cache {
		if now.Sub(entry.timestamp) > f.cacheTTL {
			delete(f.cache, key)
		}
	}

	if len(f.cache) > f.maxCacheSize {
		keys := slices.Collect(maps.Keys(f.cache))
		slices.SortFunc(keys, func(a, b string) int {
			return f.cache[a].timestamp.Compare(f.cache[b].timestamp)
		})
		for _, key := range keys[:len(keys)-f.maxCacheSize] {
			delete(f.cache, key)
		}
	}

	f.lastCleanup = now
}

// ClearCache empties the page cache
func (f *Fetcher) ClearCache() {
	f.cacheMutex.Lock()
	defer f.cacheMutex.Unlock()
	f.cache = make(map[string]cacheEntry)
}

// generateCacheKey creates a unique key for the URL
func generateCacheKey(url string) string {
	hash := md5.Sum([]byte(url))
	return hex.EncodeToString(hash[:])
}

// IsCached reports whether url has an unexpired cache entry
func (f *Fetcher) IsCached(url string) bool {
	f.cacheMutex.RLock()
	defer f.cacheMutex.RUnlock()

	entry, found := f.cache[generateCacheKey(url)]
	return found && f.now().Sub(entry.timestamp) < f.cacheTTL
}

// GetCacheStats returns the current cache size and this month's hit counters
func (f *Fetcher) GetCacheStats() CacheStats {
	f.cacheMutex.RLock()
	cs := CacheStats{
		Entries:     len(f.cache),
		TTL:         f.cacheTTL,
		MaxSize:     f.maxCacheSize,
		LastCleanup: f.lastCleanup,
	}
	f.cacheMutex.RUnlock()

	if f.stats != nil {
		current := f.stats.GetCurrentStats()
		cs.Hits = current.PageCacheHits
		cs.Misses = current.PageCacheMisses
	}
	return cs
}

func (f *Fetcher) count(d stats.Delta) {
	if f.stats != nil {
		f.stats.Increment(d)
	}
}

// Fetch returns the extracted document for url, serving it from the cache when
// a fresh entry exists
func (f *Fetcher) Fetch(ctx context.Context, url string) (analyzer.PageDocument, error) {
	cacheKey := generateCacheKey(url)

	f.cacheMutex.RLock()
	entry, found := f.cache[cacheKey]
	f.cacheMutex.RUnlock()
	if found && f.now().Sub(entry.timestamp) < f.cacheTTL {
		f.count(stats.Delta{PageCacheHits: 1})
		return clonePage(entry.page), nil
	}

	f.count(stats.Delta{PageCacheMisses: 1})

	page, err := f.FetchUncached(ctx, url)
	if err != nil {
		return analyzer.PageDocument{}, err
	}

	f.cacheMutex.Lock()
	f.cache[cacheKey] = cacheEntry{page: clonePage(page), timestamp: f.now()}
	f.cacheMutex.Unlock()

	return page, nil
}

// FetchUncached downloads and extracts url without touching the cache
func (f *Fetcher) FetchUncached(ctx context.Context, url string) (analyzer.PageDocument, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return analyzer.PageDocument{}, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return analyzer.PageDocument{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return analyzer.PageDocument{}, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	pageSize := 0
	if contentLength := resp.Header.Get("Content-Length"); contentLength != "" {
		if size, err := strconv.Atoi(contentLength); err == nil {
			pageSize = size
		}
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if _, err := io.Copy(buf, io.LimitReader(resp.Body, maxPageBytes)); err != nil {
		return analyzer.PageDocument{}, fmt.Errorf("read %s: %w", url, err)
	}
	if pageSize == 0 {
		pageSize = buf.Len()
	}

	loadTime := time.Since(startTime)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return analyzer.PageDocument{}, fmt.Errorf("parse %s: %w", url, err)
	}

	return Extract(doc, url, pageSize, loadTime), nil
}

// clonePage copies the slices and the score map so cached documents are never
// shared with callers
func clonePage(p analyzer.PageDocument) analyzer.PageDocument {
	p.H2 = slices.Clone(p.H2)
	p.Schema = slices.Clone(p.Schema)
	p.Scores = maps.Clone(p.Scores)
	return p
}
