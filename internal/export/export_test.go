// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/harvest/internal/grid"
	"github.com/pdiddy/harvest/pkg/types"
)

func samplePapers(n int) []types.ResearchPaper {
	out := make([]types.ResearchPaper, n)
	for i := range out {
		out[i] = types.ResearchPaper{
			ID:              string(rune('a' + i)),
			Title:           "Paper",
			Authors:         []types.Author{{Name: "Jane Smith"}, {Name: "Bob Lee"}},
			PublicationDate: "2021-03-10",
			MethodologyType: types.MethodologyMixed,
			CitationCount:   i,
		}
	}
	return out
}

func TestSummary(t *testing.T) {
	papers := samplePapers(25)

	assert.Equal(t, "Showing 1-12 of 25 papers", Summary(grid.Paginate(papers, 1, 12)))
	assert.Equal(t, "Showing 25-25 of 25 papers", Summary(grid.Paginate(papers, 3, 12)))
	assert.Equal(t, "Showing 0 of 25 papers", Summary(grid.Paginate(papers, 9, 12)))
	assert.Equal(t, "Showing 0 of 0 papers", Summary(grid.Paginate([]types.ResearchPaper{}, 1, 12)))
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, grid.Paginate(samplePapers(3), 1, 2)))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines[0], "Methodology")
	assert.Contains(t, out, "Jane Smith et al.")
	assert.Contains(t, out, "Mixed Methods")
	assert.Contains(t, out, "2021")
	assert.Equal(t, "Showing 1-2 of 3 papers (page 1 of 2)", lines[len(lines)-1])
	assert.NotContains(t, out, "\nc ", "third paper is on page 2")
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, grid.Paginate([]types.ResearchPaper{}, 1, 12)))
	assert.Equal(t, "No papers found.\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Écolo...", truncate("Écologie agricole", 8))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, grid.Paginate(samplePapers(3), 2, 2)))

	var got []types.ResearchPaper
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)
}

func TestWriteCSL(t *testing.T) {
	papers := []types.ResearchPaper{{
		ID:              "7",
		Slug:            "soil-health",
		Title:           "Soil Health",
		Authors:         []types.Author{{Name: "Jane Q Smith"}, {Name: "FAO"}, {Name: " "}},
		PublicationDate: "2021-03-10",
		Journal:         "Journal of Agriculture",
		Volume:          "12",
		Pages:           "45-67",
		DOI:             "10.1234/x",
		Keywords:        []types.Keyword{{Name: "Soil"}, {Name: "Carbon"}},
	}, {
		ID:              "8",
		Title:           "Year only",
		PublicationYear: "2019",
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSL(&buf, papers))

	var items []CSLItem
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &items))
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "soil-health", first.ID)
	assert.Equal(t, "article-journal", first.Type)
	assert.Equal(t, []CSLName{{Given: "Jane Q", Family: "Smith"}, {Literal: "FAO"}}, first.Author)
	assert.Equal(t, [][]int{{2021, 3, 10}}, first.Issued.DateParts)
	assert.Equal(t, "Journal of Agriculture", first.ContainerTitle)
	assert.Equal(t, "Soil, Carbon", first.Keyword)
	assert.Contains(t, buf.String(), "container-title: Journal of Agriculture")
	assert.Contains(t, buf.String(), "DOI: 10.1234/x")

	assert.Equal(t, "8", items[1].ID)
	assert.Equal(t, [][]int{{2019}}, items[1].Issued.DateParts)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	f, err = ParseFormat("CSL")
	require.NoError(t, err)
	assert.Equal(t, FormatCSL, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
