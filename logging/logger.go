package logging

import (
	"cmp"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"sync"
	"time"
)

// Environment variable name for controlling statistics visibility
const ENV_DEV_MODE = "DEV_MODE"

// Statistics represents the collected request statistics
type Statistics struct {
	UniqueVisitors     map[string]time.Time `json:"uniqueVisitors"`     // IP -> Last Visit Time
	ComparisonRequests int                  `json:"comparisonRequests"` // Total number of comparison requests
	ErrorCount         int                  `json:"errorCount"`         // Number of failed comparisons
	PopularKeywords    map[string]int       `json:"popularKeywords"`    // Keyword -> Count
	PopularDomains     map[string]int       `json:"popularDomains"`     // Competitor host -> Count
	AverageLoadTime    float64              `json:"averageLoadTime"`    // Average latency in milliseconds
	TotalLoadTime      float64              `json:"totalLoadTime"`
	LastPersisted      time.Time            `json:"lastPersisted"`

	path    string
	devMode bool
	mutex   sync.RWMutex
}

// New creates statistics persisted at path and loads any existing file. A
// load failure is logged and the statistics start empty.
func New(path string, devMode bool) *Statistics {
	s := &Statistics{
		UniqueVisitors:  make(map[string]time.Time),
		PopularKeywords: make(map[string]int),
		PopularDomains:  make(map[string]int),
		LastPersisted:   time.Now(),
		path:            path,
		devMode:         devMode,
	}

	// Try to load existing statistics
	if err := s.Load(); err != nil {
		fmt.Printf("Could not load existing statistics: %v\n", err)
	}
	return s
}

// DevModeFromEnv reports whether DEV_MODE is set to "true"
func DevModeFromEnv() bool {
	return os.Getenv(ENV_DEV_MODE) == "true"
}

// TrackVisitor records a unique visitor
func (s *Statistics) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = time.Now()
}

// hostOf returns the host of a public URL. Local and unparsable URLs yield "".
func hostOf(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	// Don't track our own local URLs
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return ""
	}
	return strings.TrimPrefix(host, "www.")
}

// TrackComparison records one comparison request
func (s *Statistics) TrackComparison(keyword, competitorURL string, loadTime float64, hasError bool) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ComparisonRequests++

	if k := strings.ToLower(strings.TrimSpace(keyword)); k != "" {
		s.PopularKeywords[k]++
	}
	// Only track public competitor hosts
	if host := hostOf(competitorURL); host != "" {
		s.PopularDomains[host]++
	}

	if hasError {
		s.ErrorCount++
	}

	// Update average load time
	s.TotalLoadTime += loadTime
	s.AverageLoadTime = s.TotalLoadTime / float64(s.ComparisonRequests)

	return s.ComparisonRequests
}

func (s *Statistics) uniqueVisitorsSince(cutoff time.Time) int {
	count := 0
	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

// GetUniqueVisitorsCount returns the number of unique visitors in the last 24 hours
func (s *Statistics) GetUniqueVisitorsCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.uniqueVisitorsSince(time.Now().Add(-24 * time.Hour))
}

// Counted is a key with its occurrence count
type Counted struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

func topN(counts map[string]int, n int) []Counted {
	out := make([]Counted, 0, len(counts))
	for k, v := range counts {
		out = append(out, Counted{Key: k, Count: v})
	}
	slices.SortFunc(out, func(a, b Counted) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out[:min(n, len(out))]
}

// GetPopularKeywords returns the n most compared keywords, most frequent first
func (s *Statistics) GetPopularKeywords(n int) []Counted {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return topN(s.PopularKeywords, n)
}

func (s *Statistics) errorRate() float64 {
	if s.ComparisonRequests == 0 {
		return 0
	}
	return (float64(s.ErrorCount) / float64(s.ComparisonRequests)) * 100
}

// GetErrorRate returns the error rate as a percentage
func (s *Statistics) GetErrorRate() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.errorRate()
}

// Save persists the statistics to the configured file
func (s *Statistics) Save() error {
	s.mutex.Lock()
	s.LastPersisted = time.Now()
	data, err := json.Marshal(s)
	s.mutex.Unlock()
	if err != nil {
		return fmt.Errorf("could not encode statistics: %w", err)
	}

	// Write to temporary file first
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("could not write statistics file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not replace statistics file: %w", err)
	}
	return nil
}

// Load reads the statistics from the configured file
func (s *Statistics) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not open statistics file: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("could not decode statistics: %w", err)
	}
	if s.UniqueVisitors == nil {
		s.UniqueVisitors = make(map[string]time.Time)
	}
	if s.PopularKeywords == nil {
		s.PopularKeywords = make(map[string]int)
	}
	if s.PopularDomains == nil {
		s.PopularDomains = make(map[string]int)
	}
	return nil
}

// GetStatistics returns a summary of the statistics. Popular keywords and
// domains are only included in development mode.
func (s *Statistics) GetStatistics() map[string]interface{} {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	summary := map[string]interface{}{
		"uniqueVisitors24h": s.uniqueVisitorsSince(time.Now().Add(-24 * time.Hour)),
		"totalRequests":     s.ComparisonRequests,
		"errorRate":         s.errorRate(),
		"averageLoadTime":   s.AverageLoadTime,
	}

	// In development mode, include keywords and domains
	if s.devMode {
		summary["popularKeywords"] = topN(s.PopularKeywords, 5)
		summary["popularDomains"] = topN(s.PopularDomains, 5)
	}
	return summary
}
