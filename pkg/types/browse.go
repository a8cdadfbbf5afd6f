// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DateRange bounds a publication date. Either end may be zero, meaning
// unbounded on that side. Both bounds are inclusive.
type DateRange struct {
	Start time.Time `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	End   time.Time `json:"end_date,omitempty" yaml:"end_date,omitempty"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// FilterCriteria is the client-held filter selection for local filtering.
// The zero value matches every paper.
type FilterCriteria struct {
	DateRange        DateRange         `json:"date_range" yaml:"date_range,omitempty"`
	MethodologyTypes []MethodologyType `json:"methodology_types" yaml:"methodology_types,omitempty"`
	Keywords         []string          `json:"keywords" yaml:"keywords,omitempty"`
	MinCitations     int               `json:"min_citations" yaml:"min_citations,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate controller state.
func (c FilterCriteria) Clone() FilterCriteria {
	out := c
	out.MethodologyTypes = append([]MethodologyType(nil), c.MethodologyTypes...)
	out.Keywords = append([]string(nil), c.Keywords...)
	return out
}

// PaperQuery holds the server-side filter parameters of the papers
// endpoint. Zero fields are omitted from the request.
type PaperQuery struct {
	Q                string
	Keywords         []string
	Authors          []string
	MethodologyTypes []MethodologyType
	MinCitations     int
	YearFrom         int
	YearTo           int
	Journal          string

	// Sort is one of relevance, date_newest, date_oldest, citations_high,
	// citations_low, title_asc, title_desc. Empty means server default.
	Sort     string
	PageSize int
}

// IsEmpty reports whether no filter is set.
func (q PaperQuery) IsEmpty() bool {
	return q.Q == "" && len(q.Keywords) == 0 && len(q.Authors) == 0 &&
		len(q.MethodologyTypes) == 0 && q.MinCitations == 0 &&
		q.YearFrom == 0 && q.YearTo == 0 && q.Journal == ""
}

// PaperPage is one page of the paginated papers endpoint.
type PaperPage struct {
	Count    int             `json:"count"`
	Next     string          `json:"next,omitempty"`
	Previous string          `json:"previous,omitempty"`
	Results  []ResearchPaper `json:"results"`
}

// YearRange is the span of publication years present in the repository.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// FilterStats summarizes repository contents for the filter panel.
type FilterStats struct {
	TotalPapers          int `json:"total_papers"`
	TotalRegions         int `json:"total_regions"`
	TotalGeneralKeywords int `json:"total_general_keywords"`
}

// FilterOptions lists the values the dynamic filter panel offers.
type FilterOptions struct {
	MethodologyTypes  []string          `json:"methodology_types"`
	YearRange         YearRange         `json:"year_range"`
	YearsAvailable    []int             `json:"years_available"`
	RegionKeywords    []Keyword         `json:"region_keywords"`
	GeneralKeywords   []Keyword         `json:"general_keywords"`
	KeywordCategories []KeywordCategory `json:"keyword_categories"`
	Stats             FilterStats       `json:"stats"`
}
