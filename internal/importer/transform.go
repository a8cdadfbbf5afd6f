// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package importer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/harvest/pkg/types"
)

var authorPattern = regexp.MustCompile(`^(.*?)(?:\s*\((.*?)\))?$`)

// ParseAuthors splits "Name (Affiliation); Name" into authors. The
// affiliation is empty when no parenthesized suffix is present. Blank
// entries are dropped.
func ParseAuthors(s string) []types.AuthorInput {
	var out []types.AuthorInput
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		a := types.AuthorInput{Name: part}
		if m := authorPattern.FindStringSubmatch(part); m != nil {
			a.Name = strings.TrimSpace(m[1])
			a.Affiliation = strings.TrimSpace(m[2])
		}
		out = append(out, a)
	}
	return out
}

// ParseKeywords splits a semicolon-separated keyword list.
func ParseKeywords(s string) []types.KeywordInput {
	var out []types.KeywordInput
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, types.KeywordInput{Name: part})
		}
	}
	return out
}

// leadingInt parses an optional sign and the leading digits of s after
// whitespace, ignoring anything that follows. Input without digits is 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// TransformRow maps a row to the create payload. An empty methodology is
// mixed and an empty trend is stable.
func TransformRow(row Row) types.PaperFormData {
	get := func(col string) string { return strings.TrimSpace(row[col]) }

	form := types.PaperFormData{
		Title:           get("title"),
		Abstract:        get("abstract"),
		Journal:         get("journal"),
		PublicationDate: get("publication_date"),
		MethodologyType: types.MethodologyMixed,
		CitationCount:   leadingInt(row["citation_count"]),
		CitationTrend:   types.TrendStable,
		Authors:         ParseAuthors(row["authors"]),
		Keywords:        ParseKeywords(row["keywords"]),
		DOI:             get("doi"),
		DownloadURL:     get("download_url"),
		Volume:          get("volume"),
		Issue:           get("issue"),
		Pages:           get("pages"),
	}
	if m := get("methodology_type"); m != "" {
		form.MethodologyType = types.MethodologyType(m)
	}
	if t := get("citation_trend"); t != "" {
		form.CitationTrend = types.CitationTrend(t)
	}
	if len(form.PublicationDate) >= 4 {
		form.PublicationYear = form.PublicationDate[:4]
	}
	if form.Authors == nil {
		form.Authors = []types.AuthorInput{}
	}
	if form.Keywords == nil {
		form.Keywords = []types.KeywordInput{}
	}
	return form
}

// Transform maps every row to a create payload, in order.
func Transform(rows []Row) []types.PaperFormData {
	out := make([]types.PaperFormData, len(rows))
	for i, row := range rows {
		out[i] = TransformRow(row)
	}
	return out
}
