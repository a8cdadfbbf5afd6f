// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures for harvest: research
// papers and their taxonomy, import payloads, filter selections, and
// configuration.
package types

import (
	"fmt"
	"strings"
)

// MethodologyType classifies a paper's research methodology.
type MethodologyType string

const (
	MethodologyQualitative  MethodologyType = "qualitative"
	MethodologyQuantitative MethodologyType = "quantitative"
	MethodologyMixed        MethodologyType = "mixed"

	// MethodologyUnknown marks a value the backend sent that is not one of
	// the three canonical types.
	MethodologyUnknown MethodologyType = "unknown"
)

// MethodologyTypes lists the canonical methodology values in display order.
var MethodologyTypes = []MethodologyType{
	MethodologyQualitative,
	MethodologyQuantitative,
	MethodologyMixed,
}

// ParseMethodologyType returns the canonical methodology for s. Matching
// ignores case and surrounding space. Unknown values are an error.
func ParseMethodologyType(s string) (MethodologyType, error) {
	m := MethodologyType(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range MethodologyTypes {
		if m == c {
			return c, nil
		}
	}
	return MethodologyUnknown, fmt.Errorf("invalid methodology type %q", s)
}

// NormalizeMethodologyType is the lenient form of ParseMethodologyType used
// when ingesting API responses: unknown values become MethodologyUnknown and
// an empty value stays empty.
func NormalizeMethodologyType(s string) MethodologyType {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	m, err := ParseMethodologyType(s)
	if err != nil {
		return MethodologyUnknown
	}
	return m
}

// Label returns the capitalized display name ("Mixed Methods" for mixed).
func (m MethodologyType) Label() string {
	switch m {
	case MethodologyQualitative:
		return "Qualitative"
	case MethodologyQuantitative:
		return "Quantitative"
	case MethodologyMixed:
		return "Mixed Methods"
	default:
		return "Unknown"
	}
}

// CitationTrend describes the direction of a paper's citation count.
type CitationTrend string

const (
	TrendIncreasing CitationTrend = "increasing"
	TrendStable     CitationTrend = "stable"
	TrendDecreasing CitationTrend = "decreasing"
)

// CitationTrends lists the canonical trend values.
var CitationTrends = []CitationTrend{TrendIncreasing, TrendStable, TrendDecreasing}

// ParseCitationTrend returns the canonical trend for s.
func ParseCitationTrend(s string) (CitationTrend, error) {
	t := CitationTrend(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range CitationTrends {
		if t == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid citation trend %q", s)
}

// NormalizeCitationTrend maps unknown or empty trends to stable.
func NormalizeCitationTrend(s string) CitationTrend {
	t, err := ParseCitationTrend(s)
	if err != nil {
		return TrendStable
	}
	return t
}

// Author is a paper author.
type Author struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string `json:"name" yaml:"name"`
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	Country     string `json:"country,omitempty" yaml:"country,omitempty"`
}

// Keyword is a free-text topic label.
type Keyword struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name" yaml:"name"`
}

// KeywordCategory groups keywords for display. A keyword may appear in more
// than one category.
type KeywordCategory struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Keywords    []Keyword `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// ResearchPaper is a paper as returned by the backend, after boundary
// normalization of legacy date fields and enum values.
type ResearchPaper struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Abstract string   `json:"abstract" yaml:"abstract"`
	Authors  []Author `json:"authors" yaml:"authors"`

	// PublicationDate is YYYY-MM-DD when the backend knows the full date.
	PublicationDate string `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`

	// PublicationYear is the backend's string year field; it coexists with
	// PublicationDate on older records.
	PublicationYear string `json:"publication_year,omitempty" yaml:"publication_year,omitempty"`

	Journal         string          `json:"journal" yaml:"journal"`
	MethodologyType MethodologyType `json:"methodology_type" yaml:"methodology_type"`
	CitationCount   int             `json:"citation_count" yaml:"citation_count"`
	CitationTrend   CitationTrend   `json:"citation_trend" yaml:"citation_trend"`
	Keywords        []Keyword       `json:"keywords" yaml:"keywords"`

	DOI         string `json:"doi,omitempty" yaml:"doi,omitempty"`
	Volume      string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue       string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages       string `json:"pages,omitempty" yaml:"pages,omitempty"`
	DownloadURL string `json:"download_url,omitempty" yaml:"download_url,omitempty"`
	Slug        string `json:"slug,omitempty" yaml:"slug,omitempty"`
}

// KeywordNames returns the names of the paper's keywords in order.
func (p ResearchPaper) KeywordNames() []string {
	names := make([]string, 0, len(p.Keywords))
	for _, k := range p.Keywords {
		if k.Name != "" {
			names = append(names, k.Name)
		}
	}
	return names
}

// AuthorNames returns the names of the paper's authors in order.
func (p ResearchPaper) AuthorNames() []string {
	names := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		names = append(names, a.Name)
	}
	return names
}

// Date returns the best available publication date string: the full date
// when present, otherwise the year.
func (p ResearchPaper) Date() string {
	if p.PublicationDate != "" {
		return p.PublicationDate
	}
	return p.PublicationYear
}

// Year returns the four-digit publication year, or "" when unknown.
func (p ResearchPaper) Year() string {
	d := p.Date()
	if len(d) >= 4 {
		return d[:4]
	}
	return d
}

// Field exposes paper attributes by name for the filter engine. Both the
// camelCase names used by filter criteria and the backend's snake_case
// names are accepted.
func (p ResearchPaper) Field(name string) (any, bool) {
	switch name {
	case "id":
		return p.ID, true
	case "title":
		return p.Title, true
	case "abstract":
		return p.Abstract, true
	case "journal":
		return p.Journal, true
	case "slug":
		return p.Slug, true
	case "doi":
		return p.DOI, true
	case "authors":
		return p.AuthorNames(), true
	case "keywords":
		return p.KeywordNames(), true
	case "methodologyType", "methodology_type":
		return string(p.MethodologyType), true
	case "citationTrend", "citation_trend":
		return string(p.CitationTrend), true
	case "citationCount", "citation_count":
		return p.CitationCount, true
	case "publicationDate", "publication_date":
		if d := p.Date(); d != "" {
			return d, true
		}
		return nil, false
	case "publicationYear", "publication_year":
		return p.Year(), true
	default:
		return nil, false
	}
}
