package research

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/aisleworks/vendor-research/internal/model"
	"github.com/aisleworks/vendor-research/internal/resilience"
	"github.com/aisleworks/vendor-research/internal/store"
	"github.com/aisleworks/vendor-research/internal/taxonomy"
	"github.com/aisleworks/vendor-research/pkg/firecrawl"
)

// ScrapeVendor extracts structured vendor fields from one profile page
// and upserts the record keyed by its source URL.
//
// A URL already in the store is returned as-is without a second
// extraction call. Unlike the listing fetch, every extraction failure
// here is hard, including quota exhaustion: the caller asked for this
// specific page and needs the failure for per-URL accounting.
func (p *Pipeline) ScrapeVendor(ctx context.Context, pageURL string, cat *taxonomy.Category) (*model.VendorRecord, error) {
	existing, err := p.store.GetVendorBySourceURL(ctx, pageURL)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, eris.Wrap(err, "research: lookup vendor by source url")
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "research: rate limit wait")
	}

	resp, err := resilience.RetryVal(ctx, p.retry, func(ctx context.Context) (*firecrawl.ExtractResponse, error) {
		return p.extractor.Extract(ctx, firecrawl.ExtractRequest{
			URLs:   []string{pageURL},
			Prompt: fmt.Sprintf(cat.ScrapePrompt, pageURL),
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "research: extract vendor page")
	}
	if !resp.Success {
		return nil, eris.New("research: vendor extraction failed: " + resp.Error)
	}

	rec := mapVendorFields(resp.Data, cat.Name, pageURL)
	rec.ScrapedAt = time.Now().UTC()

	stored, err := p.store.UpsertVendorBySourceURL(ctx, rec)
	if err != nil {
		return nil, eris.Wrap(err, "research: upsert vendor")
	}
	return stored, nil
}

// Fields lifted out of the raw extraction payload into typed columns.
// Everything else lands in the Attributes bag.
var modeledFields = map[string]bool{
	"name":        true,
	"about":       true,
	"website":     true,
	"phone":       true,
	"eventImages": true,
	"faqs":        true,
	"reviews":     true,
	"socialMedia": true,
	"details":     true,
}

// mapVendorFields converts the extraction payload into a VendorRecord.
// Absent optional fields become empty values, never missing keys.
func mapVendorFields(data map[string]any, vendorType, sourceURL string) *model.VendorRecord {
	rec := &model.VendorRecord{
		SourceURL:  sourceURL,
		VendorType: vendorType,
		Name:       stringField(data, "name"),
		About:      stringField(data, "about"),
		Website:    stringField(data, "website"),
		Phone:      stringField(data, "phone"),
	}

	rec.EventImages = stringSlice(data["eventImages"])
	rec.Details = stringSlice(data["details"])

	for _, raw := range anySlice(data["faqs"]) {
		if m, ok := raw.(map[string]any); ok {
			rec.FAQs = append(rec.FAQs, model.FAQ{
				Question: stringField(m, "question"),
				Answer:   stringField(m, "answer"),
			})
		}
	}

	for _, raw := range anySlice(data["reviews"]) {
		if m, ok := raw.(map[string]any); ok {
			rec.Reviews = append(rec.Reviews, model.Review{
				Reviewer: stringField(m, "reviewer"),
				Date:     stringField(m, "date"),
				Comment:  stringField(m, "comment"),
			})
		}
	}

	if m, ok := data["socialMedia"].(map[string]any); ok {
		rec.SocialMedia = make(map[string]string, len(m))
		for k, v := range m {
			if s, ok := v.(string); ok {
				rec.SocialMedia[k] = s
			}
		}
	}

	// Category-specific extras (price range, capacity, service area...)
	// go into the flat attribute bag.
	for k, v := range data {
		if modeledFields[k] {
			continue
		}
		if s := stringify(v); s != "" {
			if rec.Attributes == nil {
				rec.Attributes = make(map[string]string)
			}
			rec.Attributes[k] = s
		}
	}

	rec.Normalize()
	return rec
}

func stringField(data map[string]any, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

func anySlice(v any) []any {
	arr, _ := v.([]any)
	return arr
}

// stringify renders scalar payload values; structured values are
// skipped rather than dumped as Go syntax.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
