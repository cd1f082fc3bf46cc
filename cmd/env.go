package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aisleworks/vendor-research/internal/research"
	"github.com/aisleworks/vendor-research/internal/store"
	"github.com/aisleworks/vendor-research/internal/taxonomy"
	"github.com/aisleworks/vendor-research/internal/textgen"
	"github.com/aisleworks/vendor-research/pkg/anthropic"
	"github.com/aisleworks/vendor-research/pkg/firecrawl"
	"github.com/aisleworks/vendor-research/pkg/perplexity"
)

// env holds the initialized store, registry, and pipeline shared by the
// serve/research/rank/vendors commands.
type env struct {
	Store    store.Store
	Registry *taxonomy.Registry
	Pipeline *research.Pipeline
	Bookings *research.BookingManager
}

// Close releases resources held by the environment.
func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.Path
		if dsn == "" {
			dsn = "vendors.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initTaxonomy() (*taxonomy.Registry, error) {
	if cfg.Taxonomy.Path == "" {
		return taxonomy.Default(), nil
	}
	reg, err := taxonomy.LoadFile(cfg.Taxonomy.Path)
	if err != nil {
		return nil, eris.Wrap(err, "load taxonomy file")
	}
	zap.L().Info("taxonomy loaded from file",
		zap.String("path", cfg.Taxonomy.Path),
		zap.Int("categories", len(reg.Categories())),
	)
	return reg, nil
}

func initGenerator() (research.Generator, error) {
	switch cfg.TextGen.Provider {
	case "anthropic":
		return textgen.NewAnthropic(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model), nil
	case "perplexity":
		client := perplexity.NewClient(cfg.Perplexity.Key,
			perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexity.WithModel(cfg.Perplexity.Model),
		)
		return textgen.NewPerplexity(client, cfg.Perplexity.Model), nil
	default:
		return nil, eris.Errorf("unsupported textgen provider: %s", cfg.TextGen.Provider)
	}
}

// initEnv sets up the store, taxonomy, API clients, and the pipeline.
// Callers should defer env.Close().
func initEnv(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	registry, err := initTaxonomy()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	generator, err := initGenerator()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	extractor := firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))

	pipeline := research.New(st, registry, extractor, generator,
		research.WithRateLimit(cfg.Firecrawl.RatePerSec),
		research.WithMaxListingURLs(cfg.Research.MaxListingURLs),
	)

	return &env{
		Store:    st,
		Registry: registry,
		Pipeline: pipeline,
		Bookings: research.NewBookingManager(st),
	}, nil
}
