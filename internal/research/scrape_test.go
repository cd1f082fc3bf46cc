package research

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aisleworks/vendor-research/internal/model"
	"github.com/aisleworks/vendor-research/internal/store"
	"github.com/aisleworks/vendor-research/pkg/firecrawl"
)

func TestScrapeVendor_NewRecord(t *testing.T) {
	st := new(mockStore)
	ex := new(mockExtractor)

	st.On("GetVendorBySourceURL", mock.Anything, "https://x.com/a").
		Return(nil, store.ErrNotFound).Once()
	ex.On("Extract", mock.Anything, mock.MatchedBy(func(req extractReq) bool {
		return req.URLs[0] == "https://x.com/a"
	})).Return(extractResp(map[string]any{
		"name":  "Spin Master",
		"about": "Open-format wedding DJ",
	}), nil).Once()
	st.On("UpsertVendorBySourceURL", mock.Anything, mock.MatchedBy(func(v *model.VendorRecord) bool {
		return v.SourceURL == "https://x.com/a" &&
			v.Name == "Spin Master" &&
			v.VendorType == "DJ" &&
			!v.ScrapedAt.IsZero()
	})).Return(&model.VendorRecord{ID: "v1", Name: "Spin Master", SourceURL: "https://x.com/a"}, nil).Once()

	p := newTestPipeline(t, st, ex, new(mockGenerator))
	rec, err := p.ScrapeVendor(context.Background(), "https://x.com/a", djCategory(t))
	require.NoError(t, err)
	assert.Equal(t, "v1", rec.ID)
	st.AssertExpectations(t)
	ex.AssertExpectations(t)
}

func TestScrapeVendor_ExistingRecordSkipsExtraction(t *testing.T) {
	st := new(mockStore)
	ex := new(mockExtractor)

	known := &model.VendorRecord{ID: "v1", SourceURL: "https://x.com/a", Name: "Spin Master"}
	st.On("GetVendorBySourceURL", mock.Anything, "https://x.com/a").Return(known, nil).Once()

	p := newTestPipeline(t, st, ex, new(mockGenerator))
	rec, err := p.ScrapeVendor(context.Background(), "https://x.com/a", djCategory(t))
	require.NoError(t, err)
	assert.Same(t, known, rec)

	ex.AssertNotCalled(t, "Extract")
	st.AssertNotCalled(t, "UpsertVendorBySourceURL")
}

func TestScrapeVendor_QuotaIsHard(t *testing.T) {
	st := new(mockStore)
	ex := new(mockExtractor)

	st.On("GetVendorBySourceURL", mock.Anything, "https://x.com/a").
		Return(nil, store.ErrNotFound).Once()
	ex.On("Extract", mock.Anything, mock.Anything).
		Return(nil, &firecrawl.APIError{StatusCode: 402, Body: "insufficient credits"}).Once()

	p := newTestPipeline(t, st, ex, new(mockGenerator))
	_, err := p.ScrapeVendor(context.Background(), "https://x.com/a", djCategory(t))
	require.Error(t, err)
	assert.True(t, firecrawl.IsPaymentRequired(err))
	st.AssertNotCalled(t, "UpsertVendorBySourceURL")
}

func TestScrapeVendor_FailureFlagIsHard(t *testing.T) {
	st := new(mockStore)
	ex := new(mockExtractor)

	st.On("GetVendorBySourceURL", mock.Anything, "https://x.com/a").
		Return(nil, store.ErrNotFound).Once()
	ex.On("Extract", mock.Anything, mock.Anything).
		Return(extractRespFailed("page unreadable"), nil).Once()

	p := newTestPipeline(t, st, ex, new(mockGenerator))
	_, err := p.ScrapeVendor(context.Background(), "https://x.com/a", djCategory(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page unreadable")
}

func TestMapVendorFields_Defaults(t *testing.T) {
	rec := mapVendorFields(map[string]any{"name": "Spin Master"}, "DJ", "https://x.com/a")

	assert.Equal(t, "Spin Master", rec.Name)
	assert.Equal(t, "DJ", rec.VendorType)
	assert.Equal(t, "https://x.com/a", rec.SourceURL)

	// Absent optionals become empty values, never nil.
	assert.NotNil(t, rec.EventImages)
	assert.NotNil(t, rec.FAQs)
	assert.NotNil(t, rec.Reviews)
	assert.NotNil(t, rec.SocialMedia)
	assert.NotNil(t, rec.Details)
	assert.NotNil(t, rec.Attributes)
	assert.Empty(t, rec.About)
}

func TestMapVendorFields_FullPayload(t *testing.T) {
	rec := mapVendorFields(map[string]any{
		"name":        "Spin Master",
		"about":       "Open-format wedding DJ",
		"website":     "https://spinmaster.example.com",
		"phone":       "555-0101",
		"eventImages": []any{"https://img/1.jpg", "https://img/2.jpg"},
		"details":     []any{"MC services included"},
		"faqs": []any{
			map[string]any{"question": "Do you take requests?", "answer": "Yes"},
		},
		"reviews": []any{
			map[string]any{"reviewer": "Amy", "date": "2026-05-01", "comment": "Great!"},
		},
		"socialMedia": map[string]any{"instagram": "https://ig/spinmaster"},
		"priceRange":  "$$",
		"maxGuests":   250.0,
		"insured":     true,
	}, "DJ", "https://x.com/a")

	assert.Equal(t, []string{"https://img/1.jpg", "https://img/2.jpg"}, rec.EventImages)
	assert.Equal(t, []string{"MC services included"}, rec.Details)
	require.Len(t, rec.FAQs, 1)
	assert.Equal(t, "Do you take requests?", rec.FAQs[0].Question)
	require.Len(t, rec.Reviews, 1)
	assert.Equal(t, "Amy", rec.Reviews[0].Reviewer)
	assert.Equal(t, "https://ig/spinmaster", rec.SocialMedia["instagram"])

	// Unmodeled scalars land in the attribute bag.
	assert.Equal(t, "$$", rec.Attributes["priceRange"])
	assert.Equal(t, "250", rec.Attributes["maxGuests"])
	assert.Equal(t, "true", rec.Attributes["insured"])
}
