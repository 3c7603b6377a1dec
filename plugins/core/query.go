package core

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// QueryDetails is the travel intent pulled from a raw user sentence.
// Empty strings mean the field was not found; a nil Budget means no ceiling.
type QueryDetails struct {
	Origin      string   `json:"origin,omitempty"`
	Destination string   `json:"destination,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
}

// Extractor derives QueryDetails from free text
type Extractor interface {
	Extract(query string) QueryDetails
}

const (
	// place is one or more words made of letters, apostrophes or hyphens
	place = `([\p{L}'\-]+(?:\s+[\p{L}'\-]+)*?)`

	budgetWords = `under|below|maximum|less\s+than|not\s+more`

	// a place name ends at punctuation, a digit, the end of input or one of these words
	originStops      = `to|for|on|not|please|with|` + budgetWords
	destinationStops = `from|for|on|not|please|with|` + budgetWords
)

var (
	fromPattern        = regexp.MustCompile(`(?i)\bfrom\s+` + place + `(?:\s+(?:` + originStops + `)\b|\s*[?!.,;:]|\s*\d|\s*$)`)
	inPattern          = regexp.MustCompile(`(?i)\bin\s+` + place + `(?:\s+(?:` + originStops + `)\b|\s*[?!.,;:]|\s*\d|\s*$)`)
	destinationPattern = regexp.MustCompile(`(?i)\bto\s+` + place + `(?:\s+(?:` + destinationStops + `)\b|\s*[?!.,;:]|\s*\d|\s*$)`)
	forInPattern       = regexp.MustCompile(`(?i)\bfor\b.*?\bin\s+` + place + `(?:\s+(?:` + destinationStops + `)\b|\s*[?!.,;:]|\s*\d|\s*$)`)
	budgetPattern      = regexp.MustCompile(`(?i)\b(?:` + budgetWords + `)(?:\s+than)?\s*\$?\s*(\d[\d,]*(?:\.\d+)?)(?:\s*(?:dollars?|usd))?`)
)

// RegexExtractor pulls origin, destination and budget with independent patterns.
//
// Origin follows "from", or "in" when no "from" phrase exists. Destination follows "to", or "for ... in" when
// no "to" phrase exists. Budget follows "under", "below", "maximum", "less than"
// or "not more (than)". When both a "from" and a "to" phrase are present, the
// destination after the origin is preferred, and a "for ... in" destination equal
// to the origin is dropped.
type RegexExtractor struct{}

var _ Extractor = (*RegexExtractor)(nil)

func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

func (e *RegexExtractor) Extract(query string) QueryDetails {
	var details QueryDetails

	originEnd := -1
	m := fromPattern.FindStringSubmatchIndex(query)
	if m == nil {
		m = inPattern.FindStringSubmatchIndex(query)
	}
	if m != nil {
		details.Origin = e.normalize(query[m[2]:m[3]])
		originEnd = m[3]
	}

	destination := ""
	if originEnd >= 0 {
		if m := destinationPattern.FindStringSubmatch(query[originEnd:]); m != nil {
			destination = m[1]
		}
	}
	if destination == "" {
		if m := destinationPattern.FindStringSubmatch(query); m != nil {
			destination = m[1]
		}
	}
	if destination != "" {
		details.Destination = e.normalize(destination)
	} else if m := forInPattern.FindStringSubmatch(query); m != nil {
		if d := e.normalize(m[1]); d != details.Origin {
			details.Destination = d
		}
	}

	if m := budgetPattern.FindStringSubmatch(query); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			details.Budget = &v
		}
	}

	return details
}

// normalize trims, collapses inner whitespace and title-cases a place name
func (e *RegexExtractor) normalize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	// Casers keep state between calls, so each call gets its own
	return cases.Title(language.English).String(strings.ToLower(s))
}
