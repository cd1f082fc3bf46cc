package model

import "time"

// FAQ is a question/answer pair lifted from a vendor's profile page.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Review is a single customer review scraped from a vendor's profile page.
type Review struct {
	Reviewer string `json:"reviewer"`
	Date     string `json:"date"`
	Comment  string `json:"comment"`
}

// VendorRecord is one scraped wedding vendor. SourceURL is the natural key:
// the store holds at most one record per distinct source URL, and re-scraping
// the same URL replaces the record's fields in place.
type VendorRecord struct {
	ID         string `json:"id"`
	SourceURL  string `json:"sourceUrl"`
	Name       string `json:"name"`
	VendorType string `json:"vendorType"`
	About      string `json:"about"`

	// Attributes holds category-specific fields (price range, service area,
	// capacity, ...) keyed by field name. Which keys matter for a category is
	// decided by the taxonomy's digest field list, not by the record itself.
	Attributes map[string]string `json:"attributes"`

	EventImages []string          `json:"eventImages"`
	FAQs        []FAQ             `json:"faqs"`
	Reviews     []Review          `json:"reviews"`
	SocialMedia map[string]string `json:"socialMedia"`
	Website     string            `json:"website"`
	Phone       string            `json:"phone"`
	Details     []string          `json:"details"`
	ScrapedAt   time.Time         `json:"scrapedAt"`
}

// Normalize replaces nil collections with empty ones so the record always
// serializes with empty-array/empty-object defaults rather than null.
func (v *VendorRecord) Normalize() {
	if v.Attributes == nil {
		v.Attributes = map[string]string{}
	}
	if v.EventImages == nil {
		v.EventImages = []string{}
	}
	if v.FAQs == nil {
		v.FAQs = []FAQ{}
	}
	if v.Reviews == nil {
		v.Reviews = []Review{}
	}
	if v.SocialMedia == nil {
		v.SocialMedia = map[string]string{}
	}
	if v.Details == nil {
		v.Details = []string{}
	}
}
