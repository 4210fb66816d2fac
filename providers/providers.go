// Package providers supplies backlink metrics and SERP features for a URL.
//
// No live data source is wired in. Simulated derives stable pseudo-random
// values from the URL so that repeated audits of the same pages agree, and
// Static serves fixtures.
package providers

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"

	"github.com/seo-optimizer/competitor-audit/analyzer"
)

// ErrNotFound is returned by Static for URLs it has no fixture for
var ErrNotFound = errors.New("no data for url")

// BacklinkProvider looks up the backlink profile of a URL
type BacklinkProvider interface {
	Backlinks(ctx context.Context, url string) (analyzer.BacklinkMetrics, error)
}

// SERPProvider looks up the search result features of a URL for a phrase
type SERPProvider interface {
	Features(ctx context.Context, url, phrase string) (analyzer.SERPFeatures, error)
}

var competitionLevels = []string{"Low", "Medium", "High"}

// Simulated generates deterministic metrics seeded from its inputs
type Simulated struct {
	// Salt is mixed into every seed; changing it yields a different but
	// still deterministic data set
	Salt string
}

func (s Simulated) rng(parts ...string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(s.Salt))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	seed := h.Sum64()
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// between returns a value in [lo, lo+n)
func between(r *rand.Rand, lo, n int) int {
	return lo + r.IntN(n)
}

// Backlinks implements BacklinkProvider
func (s Simulated) Backlinks(ctx context.Context, url string) (analyzer.BacklinkMetrics, error) {
	if err := ctx.Err(); err != nil {
		return analyzer.BacklinkMetrics{}, err
	}

	r := s.rng("backlinks", url)
	return analyzer.BacklinkMetrics{
		TotalBacklinks:   between(r, 100, 1000),
		ReferringDomains: between(r, 20, 200),
		DomainAuthority:  between(r, 30, 40),
		TrustFlow:        between(r, 20, 50),
		CitationFlow:     between(r, 10, 60),
		ToxicBacklinks:   r.IntN(50),
		TopReferringDomains: []analyzer.ReferringDomain{
			{Domain: "example.com", Backlinks: between(r, 5, 20)},
			{Domain: "sample.org", Backlinks: between(r, 3, 15)},
			{Domain: "demo.net", Backlinks: between(r, 2, 10)},
		},
		BacklinkTypes: analyzer.BacklinkTypes{
			Dofollow: between(r, 20, 80),
			Nofollow: between(r, 5, 30),
			Text:     between(r, 15, 70),
			Image:    between(r, 3, 20),
		},
	}, nil
}

// Features implements SERPProvider
func (s Simulated) Features(ctx context.Context, url, phrase string) (analyzer.SERPFeatures, error) {
	if err := ctx.Err(); err != nil {
		return analyzer.SERPFeatures{}, err
	}

	r := s.rng("serp", url, phrase)
	return analyzer.SERPFeatures{
		HasFeaturedSnippet: r.Float64() > 0.7,
		HasKnowledgePanel:  r.Float64() > 0.8,
		HasLocalPack:       r.Float64() > 0.9,
		HasImageResults:    r.Float64() > 0.5,
		HasVideoResults:    r.Float64() > 0.8,
		HasShoppingResults: r.Float64() > 0.9,
		HasPeopleAlsoAsk:   r.Float64() > 0.6,
		EstimatedPosition:  between(r, 1, 20),
		SearchVolume:       between(r, 1000, 10000),
		Competition:        competitionLevels[r.IntN(len(competitionLevels))],
	}, nil
}

// Static serves fixed fixtures keyed by URL
type Static struct {
	BacklinkData map[string]analyzer.BacklinkMetrics
	SERPData     map[string]analyzer.SERPFeatures
}

// Backlinks implements BacklinkProvider
func (s Static) Backlinks(_ context.Context, url string) (analyzer.BacklinkMetrics, error) {
	m, ok := s.BacklinkData[url]
	if !ok {
		return analyzer.BacklinkMetrics{}, fmt.Errorf("backlinks for %s: %w", url, ErrNotFound)
	}
	return m, nil
}

// Features implements SERPProvider. The phrase is ignored.
func (s Static) Features(_ context.Context, url, _ string) (analyzer.SERPFeatures, error) {
	f, ok := s.SERPData[url]
	if !ok {
		return analyzer.SERPFeatures{}, fmt.Errorf("serp features for %s: %w", url, ErrNotFound)
	}
	return f, nil
}

// Failing always returns Err. It stands in for an unavailable data source.
type Failing struct {
	Err error
}

func (f Failing) err() error {
	if f.Err == nil {
		return errors.New("provider unavailable")
	}
	return f.Err
}

// Backlinks implements BacklinkProvider
func (f Failing) Backlinks(context.Context, string) (analyzer.BacklinkMetrics, error) {
	return analyzer.BacklinkMetrics{}, f.err()
}

// Features implements SERPProvider
func (f Failing) Features(context.Context, string, string) (analyzer.SERPFeatures, error) {
	return analyzer.SERPFeatures{}, f.err()
}
