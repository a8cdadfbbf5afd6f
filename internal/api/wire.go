// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/harvest/pkg/types"
)

// flexString decodes a JSON string, number, or null into a string.
// The backend sends integer primary keys and string slugs in the same
// positions depending on the view.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decoding %s as string or number: %w", b, err)
	}
	*s = flexString(n.String())
	return nil
}

// flexInt decodes a JSON number, numeric string, or null into an int.
// Strings with a non-numeric suffix keep their leading integer.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	*n = flexInt(leadingInt(string(s)))
	return nil
}

// leadingInt parses the leading decimal integer of s, or 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return v
}

type wireAuthor struct {
	ID          flexString `json:"id"`
	Name        string     `json:"name"`
	Affiliation string     `json:"affiliation"`
	Email       string     `json:"email"`
	Country     string     `json:"country"`
}

// UnmarshalJSON accepts a bare name string as well as an author object.
func (a *wireAuthor) UnmarshalJSON(b []byte) error {
	if s := bytes.TrimSpace(b); len(s) > 0 && s[0] == '"' {
		return json.Unmarshal(s, &a.Name)
	}
	type plain wireAuthor
	return json.Unmarshal(b, (*plain)(a))
}

func (a wireAuthor) author() types.Author {
	return types.Author{
		ID:          string(a.ID),
		Name:        a.Name,
		Affiliation: a.Affiliation,
		Email:       a.Email,
		Country:     a.Country,
	}
}

type wireKeyword struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
}

// UnmarshalJSON accepts a bare keyword string as well as a keyword object.
func (k *wireKeyword) UnmarshalJSON(b []byte) error {
	if s := bytes.TrimSpace(b); len(s) > 0 && s[0] == '"' {
		return json.Unmarshal(s, &k.Name)
	}
	type plain wireKeyword
	return json.Unmarshal(b, (*plain)(k))
}

func keywords(in []wireKeyword) []types.Keyword {
	out := make([]types.Keyword, len(in))
	for i, k := range in {
		out[i] = types.Keyword{ID: string(k.ID), Name: k.Name}
	}
	return out
}

// wirePaper is a paper as any backend version serializes it. Older
// responses use camelCase names and may carry only a year.
type wirePaper struct {
	ID                   flexString    `json:"id"`
	Title                string        `json:"title"`
	Abstract             string        `json:"abstract"`
	Authors              []wireAuthor  `json:"authors"`
	PublicationDate      string        `json:"publication_date"`
	PublicationDateCamel string        `json:"publicationDate"`
	PublicationYear      flexString    `json:"publication_year"`
	PublicationYearCamel flexString    `json:"publicationYear"`
	Journal              string        `json:"journal"`
	MethodologyType      string        `json:"methodology_type"`
	MethodologyTypeCamel string        `json:"methodologyType"`
	CitationCount        *flexInt      `json:"citation_count"`
	CitationCountCamel   *flexInt      `json:"citationCount"`
	CitationTrend        string        `json:"citation_trend"`
	CitationTrendCamel   string        `json:"citationTrend"`
	Keywords             []wireKeyword `json:"keywords"`
	DOI                  flexString    `json:"doi"`
	Volume               flexString    `json:"volume"`
	Issue                flexString    `json:"issue"`
	Pages                flexString    `json:"pages"`
	DownloadURL          string        `json:"download_url"`
	DownloadURLCamel     string        `json:"downloadUrl"`
	Slug                 string        `json:"slug"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// paper normalizes a wire paper. The year is derived from the date when
// only a date is present.
func (w wirePaper) paper() types.ResearchPaper {
	p := types.ResearchPaper{
		ID:              string(w.ID),
		Title:           w.Title,
		Abstract:        w.Abstract,
		PublicationDate: firstNonEmpty(w.PublicationDate, w.PublicationDateCamel),
		PublicationYear: firstNonEmpty(string(w.PublicationYear), string(w.PublicationYearCamel)),
		Journal:         w.Journal,
		MethodologyType: types.NormalizeMethodologyType(firstNonEmpty(w.MethodologyType, w.MethodologyTypeCamel)),
		CitationTrend:   types.NormalizeCitationTrend(firstNonEmpty(w.CitationTrend, w.CitationTrendCamel)),
		Keywords:        keywords(w.Keywords),
		DOI:             string(w.DOI),
		Volume:          string(w.Volume),
		Issue:           string(w.Issue),
		Pages:           string(w.Pages),
		DownloadURL:     firstNonEmpty(w.DownloadURL, w.DownloadURLCamel),
		Slug:            w.Slug,
	}
	switch {
	case w.CitationCount != nil:
		p.CitationCount = int(*w.CitationCount)
	case w.CitationCountCamel != nil:
		p.CitationCount = int(*w.CitationCountCamel)
	}
	if p.PublicationYear == "" && len(p.PublicationDate) >= 4 {
		if _, err := strconv.Atoi(p.PublicationDate[:4]); err == nil {
			p.PublicationYear = p.PublicationDate[:4]
		}
	}
	p.Authors = make([]types.Author, len(w.Authors))
	for i, a := range w.Authors {
		p.Authors[i] = a.author()
	}
	return p
}

func papers(in []wirePaper) []types.ResearchPaper {
	out := make([]types.ResearchPaper, len(in))
	for i, w := range in {
		out[i] = w.paper()
	}
	return out
}

type wirePage struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []wirePaper `json:"results"`
	Papers   []wirePaper `json:"papers"`
}

// decodePaperPage accepts a paginated page, a {"papers": [...]} object,
// or a bare array.
func decodePaperPage(data []byte) (types.PaperPage, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []wirePaper
		if err := json.Unmarshal(data, &list); err != nil {
			return types.PaperPage{}, fmt.Errorf("decode papers: %w", err)
		}
		return types.PaperPage{Count: len(list), Results: papers(list)}, nil
	}

	var w wirePage
	if err := json.Unmarshal(data, &w); err != nil {
		return types.PaperPage{}, fmt.Errorf("decode papers: %w", err)
	}
	results := w.Results
	if results == nil {
		results = w.Papers
	}
	page := types.PaperPage{Count: w.Count, Results: papers(results)}
	if page.Count == 0 {
		page.Count = len(results)
	}
	if w.Next != nil {
		page.Next = *w.Next
	}
	if w.Previous != nil {
		page.Previous = *w.Previous
	}
	return page, nil
}

// decodeList decodes a bare array or the results of a paginated page
// into out, which must point to a slice.
func decodeList(data []byte, out any) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, out)
	}
	var page struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return err
	}
	if len(page.Results) == 0 {
		return nil
	}
	return json.Unmarshal(page.Results, out)
}

type wireCategory struct {
	ID          flexString    `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Keywords    []wireKeyword `json:"keywords"`
}

func (c wireCategory) category() types.KeywordCategory {
	return types.KeywordCategory{
		ID:          string(c.ID),
		Name:        c.Name,
		Description: c.Description,
		Keywords:    keywords(c.Keywords),
	}
}

type wireFilterOptions struct {
	MethodologyTypes  []string          `json:"methodology_types"`
	YearRange         types.YearRange   `json:"year_range"`
	YearsAvailable    []int             `json:"years_available"`
	RegionKeywords    []wireKeyword     `json:"region_keywords"`
	GeneralKeywords   []wireKeyword     `json:"general_keywords"`
	KeywordCategories []wireCategory    `json:"keyword_categories"`
	Stats             types.FilterStats `json:"stats"`
}

func (w wireFilterOptions) options() types.FilterOptions {
	opts := types.FilterOptions{
		MethodologyTypes: w.MethodologyTypes,
		YearRange:        w.YearRange,
		YearsAvailable:   w.YearsAvailable,
		RegionKeywords:   keywords(w.RegionKeywords),
		GeneralKeywords:  keywords(w.GeneralKeywords),
		Stats:            w.Stats,
	}
	opts.KeywordCategories = make([]types.KeywordCategory, len(w.KeywordCategories))
	for i, c := range w.KeywordCategories {
		opts.KeywordCategories[i] = c.category()
	}
	return opts
}
