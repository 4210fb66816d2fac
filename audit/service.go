// Package audit runs a full competitor comparison: it gathers both pages and
// their external metrics concurrently, then hands everything to
// analyzer.Compare.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/seo-optimizer/competitor-audit/analyzer"
	"github.com/seo-optimizer/competitor-audit/providers"
	"github.com/seo-optimizer/competitor-audit/stats"
)

// ErrInvalidRequest is wrapped by every request validation failure
var ErrInvalidRequest = errors.New("invalid audit request")

// PageSource fetches and extracts a page
type PageSource interface {
	Fetch(ctx context.Context, url string) (analyzer.PageDocument, error)
}

// Request names the two pages to compare and the target phrase
type Request struct {
	MyURL         string `json:"myUrl"`
	CompetitorURL string `json:"competitorUrl"`
	Keyword       string `json:"keyword"`
}

// Result is a comparison report plus the audit's identity and any collaborator
// failures that were replaced by defaults
type Result struct {
	ID string `json:"id"`
	analyzer.ComparisonReport
	Pages    analyzer.PagePair[analyzer.PageDocument] `json:"pages"`
	Warnings []string                                 `json:"warnings"`
}

// Options tunes a Service. Zero durations fall back to the defaults.
type Options struct {
	CollaboratorTimeout time.Duration // default 10s
	AuditTimeout        time.Duration // default 30s
	Stats               *stats.Storage
}

// Service orchestrates the collaborators of one audit
type Service struct {
	pages               PageSource
	backlinks           providers.BacklinkProvider
	serp                providers.SERPProvider
	stats               *stats.Storage
	collaboratorTimeout time.Duration
	auditTimeout        time.Duration
	tracer              trace.Tracer
	now                 func() time.Time
	newID               func() string
}

// NewService creates a Service
func NewService(pages PageSource, backlinks providers.BacklinkProvider, serp providers.SERPProvider, opts Options) *Service {
	s := &Service{
		pages:               pages,
		backlinks:           backlinks,
		serp:                serp,
		stats:               opts.Stats,
		collaboratorTimeout: opts.CollaboratorTimeout,
		auditTimeout:        opts.AuditTimeout,
		tracer:              otel.Tracer("competitor-audit"),
		now:                 time.Now,
		newID:               uuid.NewString,
	}
	if s.collaboratorTimeout <= 0 {
		s.collaboratorTimeout = 10 * time.Second
	}
	if s.auditTimeout <= 0 {
		s.auditTimeout = 30 * time.Second
	}
	return s
}

// Validate normalizes req in place and reports the first problem with it
func (req *Request) Validate() error {
	req.MyURL = strings.TrimSpace(req.MyURL)
	req.CompetitorURL = strings.TrimSpace(req.CompetitorURL)
	req.Keyword = strings.TrimSpace(req.Keyword)

	if req.MyURL == "" || req.CompetitorURL == "" || req.Keyword == "" {
		return fmt.Errorf("%w: myUrl, competitorUrl, and keyword are required", ErrInvalidRequest)
	}
	for _, raw := range []string{req.MyURL, req.CompetitorURL} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrInvalidRequest, raw)
		}
	}
	return nil
}

// collaborator slots, in the order their warnings are reported
const (
	slotMyPage = iota
	slotCompetitorPage
	slotMyBacklinks
	slotCompetitorBacklinks
	slotMySERP
	slotCompetitorSERP
	slotCount
)

// Compare runs one audit. Collaborator failures never fail the audit: the
// affected input falls back to its zero default and a warning is attached. An
// error is returned only for an invalid request or when ctx ends first.
func (s *Service) Compare(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.auditTimeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "audit.compare")
	defer span.End()
	span.SetAttributes(
		attribute.String("audit.keyword", req.Keyword),
		attribute.String("audit.my_url", req.MyURL),
		attribute.String("audit.competitor_url", req.CompetitorURL),
	)

	in := analyzer.Input{
		MyPage:              analyzer.PageDocument{URL: req.MyURL},
		CompetitorPage:      analyzer.PageDocument{URL: req.CompetitorURL},
		Phrase:              req.Keyword,
		MyBacklinks:         analyzer.DefaultBacklinks(),
		CompetitorBacklinks: analyzer.DefaultBacklinks(),
		MySERP:              analyzer.DefaultSERPFeatures(),
		CompetitorSERP:      analyzer.DefaultSERPFeatures(),
	}

	var (
		warnings [slotCount]string
		mu       sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)

	// run calls fn under the collaborator timeout. A failure is recorded as a
	// warning unless the audit itself has been canceled.
	run := func(slot int, name, target string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.collaboratorTimeout)
			defer cancel()

			cctx, span := s.tracer.Start(cctx, "audit."+name)
			defer span.End()
			span.SetAttributes(attribute.String("audit.target", target))

			err := fn(cctx)
			if err == nil {
				return nil
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			log.Printf("Audit collaborator %s failed for %s: %v", name, target, err)
			mu.Lock()
			warnings[slot] = fmt.Sprintf("%s failed for %s: %v", name, target, err)
			mu.Unlock()
			return nil
		})
	}

	run(slotMyPage, "fetch_page", req.MyURL, func(ctx context.Context) error {
		page, err := s.pages.Fetch(ctx, req.MyURL)
		if err == nil {
			in.MyPage = page
		}
		return err
	})
	run(slotCompetitorPage, "fetch_page", req.CompetitorURL, func(ctx context.Context) error {
		page, err := s.pages.Fetch(ctx, req.CompetitorURL)
		if err == nil {
			in.CompetitorPage = page
		}
		return err
	})
	run(slotMyBacklinks, "backlinks", req.MyURL, func(ctx context.Context) error {
		m, err := s.backlinks.Backlinks(ctx, req.MyURL)
		if err == nil {
			in.MyBacklinks = m
		}
		return err
	})
	run(slotCompetitorBacklinks, "backlinks", req.CompetitorURL, func(ctx context.Context) error {
		m, err := s.backlinks.Backlinks(ctx, req.CompetitorURL)
		if err == nil {
			in.CompetitorBacklinks = m
		}
		return err
	})
	run(slotMySERP, "serp_features", req.MyURL, func(ctx context.Context) error {
		f, err := s.serp.Features(ctx, req.MyURL, req.Keyword)
		if err == nil {
			in.MySERP = f
		}
		return err
	})
	run(slotCompetitorSERP, "serp_features", req.CompetitorURL, func(ctx context.Context) error {
		f, err := s.serp.Features(ctx, req.CompetitorURL, req.Keyword)
		if err == nil {
			in.CompetitorSERP = f
		}
		return err
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, fmt.Errorf("audit canceled: %w", err)
	}

	result := Result{
		ID:       s.newID(),
		Warnings: []string{},
	}
	for _, w := range warnings {
		if w != "" {
			result.Warnings = append(result.Warnings, w)
		}
	}

	in.AnalyzedAt = s.now().UTC()
	result.ComparisonReport = analyzer.Compare(in)
	result.Pages = analyzer.PagePair[analyzer.PageDocument]{MyPage: in.MyPage, CompetitorPage: in.CompetitorPage}

	span.SetAttributes(
		attribute.String("audit.id", result.ID),
		attribute.Int("audit.warnings", len(result.Warnings)),
		attribute.Int("audit.recommendations", result.Recommendations.Total()),
	)

	if s.stats != nil {
		s.stats.Increment(stats.Delta{Comparisons: 1, CollaboratorFailures: len(result.Warnings)})
	}

	return result, nil
}
