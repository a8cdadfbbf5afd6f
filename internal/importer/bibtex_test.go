// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/harvest/pkg/types"
)

const sampleBib = `
@comment{exported by a reference manager}
@string{nat = "Nature"}

@article{smith2021,
  title    = {Impact of {Organic} Farming on Soil Health},
  author   = {Smith, Jane and Bob Lee and {Food and Agriculture Org.}},
  journal  = "Journal of " # "Agriculture",
  year     = 2021,
  month    = mar,
  keywords = {organic farming, soil health; sustainability},
  abstract = {A study of soil \& crops.},
  doi      = {10.1234/ja.2021.001},
  url      = {https://example.org/smith2021.pdf},
  volume   = {12},
  number   = {3},
  pages    = {45--67},
}

@inproceedings(lee2019,
  title     = "Farmer Interviews",
  author    = "Lee, Bob",
  booktitle = {Proceedings of Rural Studies},
  year      = {2019}
)
`

func TestParseBibTeX(t *testing.T) {
	rows, headers, err := ParseBibTeX(strings.NewReader(sampleBib))
	require.NoError(t, err)

	assert.Equal(t, TemplateHeaders, headers)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "Impact of Organic Farming on Soil Health", first.Get("title"))
	assert.Equal(t, "Jane Smith; Bob Lee; Food and Agriculture Org.", first.Get("authors"))
	assert.Equal(t, "Journal of Agriculture", first.Get("journal"))
	assert.Equal(t, "2021-03-01", first.Get("publication_date"))
	assert.Equal(t, "organic farming; soil health; sustainability", first.Get("keywords"))
	assert.Equal(t, "A study of soil & crops.", first.Get("abstract"))
	assert.Equal(t, "10.1234/ja.2021.001", first.Get("doi"))
	assert.Equal(t, "https://example.org/smith2021.pdf", first.Get("download_url"))
	assert.Equal(t, "3", first.Get("issue"))
	assert.Equal(t, "45-67", first.Get("pages"))
	assert.Empty(t, ValidateRow(first))

	second := rows[1]
	assert.Equal(t, "Bob Lee", second.Get("authors"))
	assert.Equal(t, "Proceedings of Rural Studies", second.Get("journal"))
	assert.Equal(t, "2019-01-01", second.Get("publication_date"))
	assert.Contains(t, ValidateRow(second), MsgAbstractRequired)
	assert.Contains(t, ValidateRow(second), MsgKeywordRequired)
}

func TestParseBibTeXTransformsToPayload(t *testing.T) {
	rows, _, err := ParseBibTeX(strings.NewReader(sampleBib))
	require.NoError(t, err)

	form := TransformRow(rows[0])
	assert.Equal(t, []types.AuthorInput{
		{Name: "Jane Smith"},
		{Name: "Bob Lee"},
		{Name: "Food and Agriculture Org."},
	}, form.Authors)
	assert.Equal(t, "2021", form.PublicationYear)
	assert.Equal(t, types.MethodologyMixed, form.MethodologyType)
}

func TestBibDate(t *testing.T) {
	tests := []struct {
		date, year, month string
		want              string
	}{
		{"2020-05-17", "", "", "2020-05-17"},
		{"2020-05", "", "", "2020-05-01"},
		{"", "2018", "", "2018-01-01"},
		{"", "2018", "September", "2018-09-01"},
		{"", "2018", "11", "2018-11-01"},
		{"", "2018", "smarch", "2018-01-01"},
		{"", "18", "", "18"},
		{"", "", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bibDate(tt.date, tt.year, tt.month), "%q %q %q", tt.date, tt.year, tt.month)
	}
}

func TestBibName(t *testing.T) {
	assert.Equal(t, "Jane Smith", bibName("Smith, Jane"))
	assert.Equal(t, "John Doe Jr", bibName("Doe, Jr, John"))
	assert.Equal(t, "Bob Lee", bibName("Bob Lee"))
}

func TestSplitBibAuthors(t *testing.T) {
	got := splitBibAuthors("A One and {B and C} AND D Four")
	assert.Equal(t, []string{"A One", "{B and C}", "D Four"}, got)

	assert.Equal(t, []string{"Sandy Anderson"}, splitBibAuthors("Sandy Anderson"))
}

func TestParseBibTeXErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unterminated entry", "@article{k,\n title = {x},\n", "unterminated entry"},
		{"unterminated value", "@article{k, title = {never closed", "unterminated field value"},
		{"missing equals", "@article{k, title {x}}", "expected '='"},
		{"line number", "\n\n@article{k, title {x}}", "BibTeX line 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseBibTeX(strings.NewReader(tt.in))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParseBibTeXNoEntries(t *testing.T) {
	rows, headers, err := ParseBibTeX(strings.NewReader("just some text, no entries"))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, TemplateHeaders, headers)

	rep := Validate(rows, headers)
	assert.Equal(t, []string{MsgEmptyFile}, rep.FileErrors)
}
