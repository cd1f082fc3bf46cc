package model

// ScrapedVendor is a per-URL success entry in a research run's result.
type ScrapedVendor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ResearchResult is the aggregate outcome of one research run. Error is
// informational ("unknown category", "no vendors found at listing") — a
// populated Error with a 200-shaped result distinguishes "nothing found"
// from a hard failure.
type ResearchResult struct {
	Category  string          `json:"category"`
	URLsFound int             `json:"urlsFound"`
	Scraped   []ScrapedVendor `json:"scraped"`
	Error     string          `json:"error,omitempty"`
}

// BookingCode names the outcome of a booking toggle.
type BookingCode string

const (
	BookingCodeBooked            BookingCode = "BOOKED"
	BookingCodeUnbooked          BookingCode = "UNBOOKED"
	BookingCodeTypeAlreadyBooked BookingCode = "TYPE_ALREADY_BOOKED"
)

// BookingResult reports a booking toggle. TYPE_ALREADY_BOOKED is a
// structured rejection, not an error: the booked set is left unchanged.
type BookingResult struct {
	Added      bool        `json:"added"`
	Message    BookingCode `json:"message"`
	VendorType string      `json:"vendorType,omitempty"`
}
