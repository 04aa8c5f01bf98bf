package news

import (
	"strings"
)

// MaxCategories bounds a single search.
const MaxCategories = 3

type SummaryType string

const (
	SummaryConcise  SummaryType = "concise"
	SummaryDetailed SummaryType = "detailed"
)

// ParseSummaryType accepts "concise" in any case; every other value means detailed.
func ParseSummaryType(s string) SummaryType {
	if strings.EqualFold(strings.TrimSpace(s), string(SummaryConcise)) {
		return SummaryConcise
	}
	return SummaryDetailed
}

type SummaryStyle string

const (
	StyleFormal    SummaryStyle = "formal"
	StyleInformal  SummaryStyle = "informal"
	StyleFunny     SummaryStyle = "funny"
	StyleTechnical SummaryStyle = "technical"
)

var Styles = []SummaryStyle{StyleFormal, StyleInformal, StyleFunny, StyleTechnical}

// ParseSummaryStyle maps a free-form tone to a known style. The second result
// is false when the value was coerced to formal.
func ParseSummaryStyle(s string) (SummaryStyle, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "humorous", "humourous":
		return StyleFunny, true
	case "conversational", "casual":
		return StyleInformal, true
	}
	for _, st := range Styles {
		if string(st) == v {
			return st, true
		}
	}
	return StyleFormal, false
}

const DefaultLanguage = "English"

var Languages = []string{"English", "Spanish", "French", "Deutsch"}

const DefaultRegion = "International"

var Regions = []string{
	"International",
	"United States",
	"United Kingdom",
	"Europe",
	"Latin America",
	"Asia",
	"Africa",
	"Middle East",
	"Oceania",
}

// SearchRequest is built per user action and never stored.
type SearchRequest struct {
	Region       string
	Categories   []string
	SummaryType  string
	SummaryStyle string
	Language     string
}

// NormalizeCategories case-folds and trims the input and splits values on
// commas. Order and duplicates are preserved.
func NormalizeCategories(raw []string) []Category {
	var out []Category
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			c := strings.ToLower(strings.TrimSpace(part))
			if c == "" {
				continue
			}
			out = append(out, Category(c))
		}
	}
	return out
}

// Options is the resolved, presentation side of a request.
type Options struct {
	Region   string
	Type     SummaryType
	Style    SummaryStyle
	Language string
	// Coerced lists the fields that fell back to a default.
	Coerced []string
}

// ResolveOptions applies the lenient defaults for presentation fields.
func (r SearchRequest) ResolveOptions() Options {
	o := Options{
		Region:   strings.TrimSpace(r.Region),
		Type:     ParseSummaryType(r.SummaryType),
		Language: strings.TrimSpace(r.Language),
	}
	if o.Region == "" {
		o.Region = DefaultRegion
		o.Coerced = append(o.Coerced, "region")
	}
	if o.Type == SummaryDetailed && !strings.EqualFold(strings.TrimSpace(r.SummaryType), string(SummaryDetailed)) {
		o.Coerced = append(o.Coerced, "summary_type")
	}
	var known bool
	o.Style, known = ParseSummaryStyle(r.SummaryStyle)
	if !known {
		o.Coerced = append(o.Coerced, "summary_style")
	}
	if o.Language == "" {
		o.Language = DefaultLanguage
		o.Coerced = append(o.Coerced, "language")
	}
	return o
}
