// Package research implements the vendor research pipeline: classify a
// task, pull profile URLs off a category listing page, scrape and
// upsert each profile, then re-rank stored vendors against the user's
// to-do list.
package research

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aisleworks/vendor-research/internal/model"
	"github.com/aisleworks/vendor-research/internal/resilience"
	"github.com/aisleworks/vendor-research/internal/store"
	"github.com/aisleworks/vendor-research/internal/taxonomy"
	"github.com/aisleworks/vendor-research/pkg/firecrawl"
)

const defaultMaxListingURLs = 1000

// Pipeline wires the classifier, extraction client, generator, and
// store into the research workflow.
type Pipeline struct {
	store     store.Store
	registry  *taxonomy.Registry
	extractor firecrawl.Client
	generator Generator
	limiter   *rate.Limiter
	retry     resilience.Policy

	maxListingURLs int
}

// Generator produces a text completion for a prompt. Satisfied by the
// textgen adapters.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRateLimit caps outbound extraction calls per second.
func WithRateLimit(perSec float64) Option {
	return func(p *Pipeline) {
		p.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
	}
}

// WithMaxListingURLs bounds how many profile URLs one run will scrape.
func WithMaxListingURLs(n int) Option {
	return func(p *Pipeline) {
		p.maxListingURLs = n
	}
}

// WithRetryPolicy overrides the retry policy for scrape calls.
func WithRetryPolicy(policy resilience.Policy) Option {
	return func(p *Pipeline) {
		p.retry = policy
	}
}

// New creates a research Pipeline.
func New(st store.Store, registry *taxonomy.Registry, extractor firecrawl.Client, generator Generator, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:          st,
		registry:       registry,
		extractor:      extractor,
		generator:      generator,
		limiter:        rate.NewLimiter(rate.Limit(1), 1),
		retry:          resilience.DefaultPolicy(),
		maxListingURLs: defaultMaxListingURLs,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the full research workflow for one task string.
//
// Classification misses and empty listings come back as results with
// the Error field set, not as Go errors; only failures that prevent
// the run from starting (a listing transport fault, store loss) return
// an error.
func (p *Pipeline) Run(ctx context.Context, query, userID string) (*model.ResearchResult, error) {
	cat, ok := p.registry.Classify(query)
	if !ok {
		zap.L().Info("no category matched task",
			zap.String("user_id", userID),
			zap.String("query", query),
		)
		return &model.ResearchResult{
			Category: "unknown",
			Error:    "no matching vendor category",
		}, nil
	}

	log := zap.L().With(
		zap.String("user_id", userID),
		zap.String("category", cat.Name),
	)

	// Advisory step: flag the matching to-do item before scraping.
	// Failure here never aborts the run.
	p.markToDoTriggered(ctx, userID, query, cat)

	urls, err := p.FindProfileURLs(ctx, cat)
	if err != nil {
		return nil, eris.Wrap(err, "research: fetch listing")
	}
	if len(urls) == 0 {
		log.Info("listing returned no profile urls")
		return &model.ResearchResult{
			Category: cat.Name,
			Error:    "no vendors found at listing",
		}, nil
	}

	if len(urls) > p.maxListingURLs {
		log.Warn("listing exceeds scrape cap, truncating",
			zap.Int("urls", len(urls)),
			zap.Int("cap", p.maxListingURLs),
		)
		urls = urls[:p.maxListingURLs]
	}

	result := &model.ResearchResult{
		Category:  cat.Name,
		URLsFound: len(urls),
	}

	// Sequential on purpose: the extraction service is rate-limited and
	// billed per call, and per-URL failure attribution stays simple.
	for _, pageURL := range urls {
		if ctx.Err() != nil {
			log.Warn("research run interrupted", zap.Error(ctx.Err()))
			break
		}

		rec, err := p.ScrapeVendor(ctx, pageURL, cat)
		if err != nil {
			log.Warn("scrape failed, skipping url",
				zap.String("url", pageURL),
				zap.Error(err),
			)
			continue
		}
		result.Scraped = append(result.Scraped, model.ScrapedVendor{
			ID:   rec.ID,
			Name: rec.Name,
			URL:  rec.SourceURL,
		})
	}

	if _, err := p.RankRelevantVendors(ctx, userID); err != nil {
		log.Warn("relevance ranking failed after scrape", zap.Error(err))
	}

	log.Info("research run complete",
		zap.Int("urls_found", result.URLsFound),
		zap.Int("scraped", len(result.Scraped)),
	)
	return result, nil
}

// markToDoTriggered flags the first unsent to-do item whose task text
// mentions the query or the category, scanning sections in order. Best
// effort: a missing list or save failure is logged and swallowed.
func (p *Pipeline) markToDoTriggered(ctx context.Context, userID, query string, cat *taxonomy.Category) {
	list, err := p.store.GetToDoList(ctx, userID)
	if err != nil {
		zap.L().Debug("no to-do list for user, skipping flag",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return
	}

	loweredQuery := strings.ToLower(query)
	loweredCat := strings.ToLower(cat.Name)

	for si := range list.Sections {
		for ii := range list.Sections[si].Items {
			item := &list.Sections[si].Items[ii]
			if item.AISent {
				continue
			}
			task := strings.ToLower(item.Task)
			if !strings.Contains(task, loweredQuery) && !strings.Contains(task, loweredCat) {
				continue
			}

			item.AISent = true
			if err := p.store.SaveToDoList(ctx, list); err != nil {
				zap.L().Warn("failed to persist to-do flag",
					zap.String("user_id", userID),
					zap.Error(err),
				)
			}
			return
		}
	}

	zap.L().Debug("no matching to-do item to flag",
		zap.String("user_id", userID),
		zap.String("category", cat.Name),
	)
}
