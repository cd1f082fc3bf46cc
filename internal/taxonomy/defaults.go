package taxonomy

import "fmt"

const listingPromptFmt = "Visit the wedding vendor directory page at %s and extract the URL of every individual vendor profile page listed there. Respond with a JSON object of the form {\"urls\": [\"...\"]} containing only profile page URLs."

func scrapePromptFor(kind, extra string) string {
	return fmt.Sprintf("Visit the %s profile page at %%s and extract: name, about, %s, website, phone, socialMedia (map of platform to URL), eventImages (list of image URLs), faqs (list of {question, answer}), reviews (list of {reviewer, date, comment}), details (list of short facts). Respond with a single JSON object using exactly those keys.", kind, extra)
}

// defaultCategories is the compiled-in taxonomy. A YAML file configured
// via taxonomy.path replaces it wholesale.
var defaultCategories = []Category{
	{
		Name:          "Photographer",
		Keywords:      []string{"photographer", "photography", "photo", "photos", "engagement shoot"},
		ListingURL:    "https://www.theknot.com/marketplace/wedding-photographers",
		ListingPrompt: listingPromptFmt,
		ScrapePrompt:  scrapePromptFor("wedding photographer", "priceRange, photographyStyle, serviceArea"),
		DigestFields:  []string{"priceRange", "photographyStyle", "serviceArea"},
	},
	{
		Name:          "Videographer",
		Keywords:      []string{"videographer", "videography", "video", "film", "cinematograph"},
		ListingURL:    "https://www.theknot.com/marketplace/wedding-videographers",
		ListingPrompt: listingPromptFmt,
		ScrapePrompt:  scrapePromptFor("wedding videographer", "priceRange, filmStyle, serviceArea"),
		DigestFields:  []string{"priceRange", "filmStyle", "serviceArea"},
	},
	{
		Name:          "DJ",
		Keywords:      []string{"dj", "music", "band", "entertainment", "dance"},
		ListingURL:    "https://www.theknot.com/marketplace/wedding-djs",
		ListingPrompt: listingPromptFmt,
		ScrapePrompt:  scrapePromptFor("wedding DJ", "priceRange, musicGenres, serviceArea"),
		DigestFields:  []string{"priceRange", "musicGenres", "serviceArea"},
	},
	{
		Name:          "Florist",
		Keywords:      []string{"florist", "flower", "flowers", "floral", "bouquet", "centerpiece"},
		ListingURL:    "https://www.theknot.com/marketplace/wedding-florists",
		ListingPrompt: listingPromptFmt,
		ScrapePrompt:  scrapePromptFor("wedding florist", "priceRange, floralStyles, serviceArea"),
		DigestFields:  []string{"priceRange", "floralStyles", "serviceArea"},
	},
	{
		Name:          "Caterer",
		Keywords:      []string{"caterer", "catering", "food", "menu", "dinner", "buffet"},
		ListingURL:    "https://www.theknot.com/marketplace/wedding-caterers",
		ListingPrompt: listingPromptFmt,
		ScrapePrompt:  scrapePromptFor("wedding caterer", "priceRange, cuisines, dietaryOptions, serviceArea"),
		DigestFields:  []string{"priceRange", "cuisines", "dietaryOptions"},
	},
	{
		Name:          "Venue",
		Keywords:      []string{"venue", "reception", "ceremony site", "ballroom", "location", "hall"},
		ListingURL:    "https://www.theknot.com/marketplace/wedding-reception-venues",
		ListingPrompt: listingPromptFmt,
		ScrapePrompt:  scrapePromptFor("wedding venue", "priceRange, guestCapacity, settings, serviceArea"),
		DigestFields:  []string{"priceRange", "guestCapacity", "settings"},
	},
	{
		Name:          "Cake",
		Keywords:      []string{"cake", "bakery", "dessert", "baker", "pastry"},
		ListingURL:    "https://www.theknot.com/marketplace/wedding-cake-bakeries",
		ListingPrompt: listingPromptFmt,
		ScrapePrompt:  scrapePromptFor("wedding cake bakery", "priceRange, cakeFlavors, dietaryOptions"),
		DigestFields:  []string{"priceRange", "cakeFlavors", "dietaryOptions"},
	},
	{
		Name:          "Hair & Makeup",
		Keywords:      []string{"hair", "makeup", "beauty", "stylist", "salon"},
		ListingURL:    "https://www.theknot.com/marketplace/wedding-hair-makeup",
		ListingPrompt: listingPromptFmt,
		ScrapePrompt:  scrapePromptFor("wedding hair and makeup artist", "priceRange, services, travelsToYou"),
		DigestFields:  []string{"priceRange", "services"},
	},
	{
		Name:          "Officiant",
		Keywords:      []string{"officiant", "celebrant", "minister", "ceremony script", "vows"},
		ListingURL:    "https://www.theknot.com/marketplace/wedding-officiants",
		ListingPrompt: listingPromptFmt,
		ScrapePrompt:  scrapePromptFor("wedding officiant", "priceRange, ceremonyTypes, languages"),
		DigestFields:  []string{"ceremonyTypes", "languages"},
	},
	{
		Name:          "Transportation",
		Keywords:      []string{"transportation", "limo", "shuttle", "car service", "getaway car"},
		ListingURL:    "https://www.theknot.com/marketplace/wedding-transportation",
		ListingPrompt: listingPromptFmt,
		ScrapePrompt:  scrapePromptFor("wedding transportation company", "priceRange, fleet, passengerCapacity"),
		DigestFields:  []string{"priceRange", "fleet", "passengerCapacity"},
	},
}

// Default returns the compiled-in registry.
func Default() *Registry {
	r, err := NewRegistry(defaultCategories)
	if err != nil {
		// The compiled-in set is validated by tests; this is unreachable.
		panic(err)
	}
	return r
}
