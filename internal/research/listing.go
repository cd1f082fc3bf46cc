package research

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aisleworks/vendor-research/internal/taxonomy"
	"github.com/aisleworks/vendor-research/pkg/firecrawl"
)

// FindProfileURLs asks the extraction service for the vendor profile
// URLs on a category's listing page.
//
// Quota exhaustion and malformed listing responses are soft: they log
// and return an empty slice so a multi-category batch keeps going.
// Transport faults are hard and propagate to the caller.
func (p *Pipeline) FindProfileURLs(ctx context.Context, cat *taxonomy.Category) ([]string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "research: rate limit wait")
	}

	log := zap.L().With(zap.String("category", cat.Name))

	resp, err := p.extractor.Extract(ctx, firecrawl.ExtractRequest{
		URLs:   []string{cat.ListingURL},
		Prompt: fmt.Sprintf(cat.ListingPrompt, cat.ListingURL),
	})
	if err != nil {
		if firecrawl.IsPaymentRequired(err) {
			log.Warn("extraction quota exhausted on listing fetch")
			return nil, nil
		}
		if firecrawl.IsAPIError(err) {
			log.Warn("listing extraction rejected", zap.Error(err))
			return nil, nil
		}
		return nil, eris.Wrap(err, "research: extract listing")
	}

	if !resp.Success {
		log.Warn("listing extraction reported failure", zap.String("error", resp.Error))
		return nil, nil
	}

	urls := stringSlice(resp.Data["urls"])
	if urls == nil {
		log.Warn("listing response missing urls array")
		return nil, nil
	}

	log.Info("listing extracted", zap.Int("urls", len(urls)))
	return urls, nil
}

// stringSlice coerces a decoded JSON value into []string, dropping
// non-string elements. Returns nil when v is not an array.
func stringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
