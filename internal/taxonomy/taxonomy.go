// Package taxonomy holds the static vendor category registry and the
// keyword classifier that maps free-form task text to a category.
package taxonomy

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// Category is one configured vendor domain. Immutable after registry
// construction.
type Category struct {
	// Name uniquely identifies the category and doubles as the stored
	// vendorType on scraped records.
	Name string `yaml:"name" json:"name"`

	// Keywords are matched as substrings of case-folded task text.
	Keywords []string `yaml:"keywords" json:"keywords"`

	// ListingURL is the directory page profile URLs are pulled from.
	ListingURL string `yaml:"listing_url" json:"listingUrl"`

	// ListingPrompt is the extraction prompt for the listing page; the
	// listing URL is substituted for the single %s verb.
	ListingPrompt string `yaml:"listing_prompt" json:"listingPrompt"`

	// ScrapePrompt is the extraction prompt for one profile page; the page
	// URL is substituted for the single %s verb.
	ScrapePrompt string `yaml:"scrape_prompt" json:"scrapePrompt"`

	// DigestFields lists the attribute keys that describe vendors of this
	// category in ranking digests. Empty means fall back to the about text.
	DigestFields []string `yaml:"digest_fields" json:"digestFields"`
}

// Registry is an ordered, immutable set of categories. Declaration order
// is the classifier's tie-break order.
type Registry struct {
	categories []Category
	byName     map[string]int
	folded     [][]string // per category, case-folded keywords
}

var folder = cases.Fold()

// NewRegistry validates and indexes the given categories.
func NewRegistry(categories []Category) (*Registry, error) {
	if len(categories) == 0 {
		return nil, eris.New("taxonomy: no categories")
	}

	r := &Registry{
		categories: categories,
		byName:     make(map[string]int, len(categories)),
		folded:     make([][]string, len(categories)),
	}
	for i, c := range categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, eris.Errorf("taxonomy: category %d has no name", i)
		}
		if _, dup := r.byName[c.Name]; dup {
			return nil, eris.Errorf("taxonomy: duplicate category %q", c.Name)
		}
		if len(c.Keywords) == 0 {
			return nil, eris.Errorf("taxonomy: category %q has no keywords", c.Name)
		}
		r.byName[c.Name] = i

		fk := make([]string, len(c.Keywords))
		for j, kw := range c.Keywords {
			fk[j] = folder.String(kw)
		}
		r.folded[i] = fk
	}
	return r, nil
}

// LoadFile reads a YAML array of categories from path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "taxonomy: read file")
	}

	var categories []Category
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, eris.Wrap(err, "taxonomy: unmarshal file")
	}

	return NewRegistry(categories)
}

// Get returns the category with the given name.
func (r *Registry) Get(name string) (*Category, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return &r.categories[i], true
}

// Categories returns the categories in declaration order.
func (r *Registry) Categories() []Category {
	out := make([]Category, len(r.categories))
	copy(out, r.categories)
	return out
}

// Classify scores the text against every category's keyword set and
// returns the best nonzero match. Scoring is substring containment over
// case-folded text: crude on purpose, since inputs are short AI-written
// task descriptions. A zero score across the board is a normal outcome,
// reported by the second return value.
func (r *Registry) Classify(text string) (*Category, bool) {
	folded := folder.String(text)

	best := -1
	bestScore := 0
	for i := range r.categories {
		score := 0
		for _, kw := range r.folded[i] {
			if strings.Contains(folded, kw) {
				score++
			}
		}
		// Strict > keeps the first-declared category on ties.
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 {
		return nil, false
	}
	return &r.categories[best], true
}
