// Package entities pulls coarse entities (years, numbers, capitalized names)
// out of market text and scores their overlap between two markets.
package entities

import "regexp"

// Entities holds the raw substrings found in one text.
type Entities struct {
	Dates     []string `json:"dates"`
	Numbers   []string `json:"numbers"`
	Companies []string `json:"companies"`
}

// Empty reports whether nothing was extracted.
func (e Entities) Empty() bool {
	return len(e.Dates) == 0 && len(e.Numbers) == 0 && len(e.Companies) == 0
}

// Extractor turns free text into Entities. Implementations must be safe for
// concurrent use; the matcher calls them from several workers.
type Extractor interface {
	Extract(text string) Entities
}

var (
	dateRe    = regexp.MustCompile(`20\d{2}(?:-\d{2})?`)
	numberRe  = regexp.MustCompile(`\d+(?:\.\d+)?%?`)
	companyRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
)

// RegexExtractor is the pattern-based extractor. Any capitalized word counts
// as a company candidate, including sentence-initial words like "Will".
type RegexExtractor struct{}

// NewRegexExtractor returns the default extractor.
func NewRegexExtractor() RegexExtractor {
	return RegexExtractor{}
}

func (RegexExtractor) Extract(text string) Entities {
	if text == "" {
		return Entities{}
	}
	return Entities{
		Dates:     nonNil(dateRe.FindAllString(text, -1)),
		Numbers:   nonNil(numberRe.FindAllString(text, -1)),
		Companies: nonNil(companyRe.FindAllString(text, -1)),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
