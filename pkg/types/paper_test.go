// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethodologyType(t *testing.T) {
	tests := []struct {
		in   string
		want MethodologyType
		ok   bool
	}{
		{"qualitative", MethodologyQualitative, true},
		{" Quantitative ", MethodologyQuantitative, true},
		{"MIXED", MethodologyMixed, true},
		{"mixed methods", MethodologyUnknown, false},
		{"", MethodologyUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMethodologyType(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNormalizeMethodologyType(t *testing.T) {
	assert.Equal(t, MethodologyMixed, NormalizeMethodologyType("Mixed"))
	assert.Equal(t, MethodologyUnknown, NormalizeMethodologyType("survey"))
	assert.Equal(t, MethodologyType(""), NormalizeMethodologyType("  "))
}

func TestMethodologyLabel(t *testing.T) {
	assert.Equal(t, "Qualitative", MethodologyQualitative.Label())
	assert.Equal(t, "Quantitative", MethodologyQuantitative.Label())
	assert.Equal(t, "Mixed Methods", MethodologyMixed.Label())
	assert.Equal(t, "Unknown", MethodologyUnknown.Label())
	assert.Equal(t, "Unknown", MethodologyType("").Label())
}

func TestCitationTrend(t *testing.T) {
	got, err := ParseCitationTrend("Increasing")
	require.NoError(t, err)
	assert.Equal(t, TrendIncreasing, got)

	_, err = ParseCitationTrend("up")
	assert.Error(t, err)

	assert.Equal(t, TrendDecreasing, NormalizeCitationTrend("decreasing"))
	assert.Equal(t, TrendStable, NormalizeCitationTrend(""))
	assert.Equal(t, TrendStable, NormalizeCitationTrend("rising"))
}

func TestPaperDateAndYear(t *testing.T) {
	p := ResearchPaper{PublicationDate: "2021-06-15", PublicationYear: "2020"}
	assert.Equal(t, "2021-06-15", p.Date())
	assert.Equal(t, "2021", p.Year())

	p = ResearchPaper{PublicationYear: "2019"}
	assert.Equal(t, "2019", p.Date())
	assert.Equal(t, "2019", p.Year())

	assert.Equal(t, "", ResearchPaper{}.Year())
}

func TestPaperNames(t *testing.T) {
	p := ResearchPaper{
		Authors:  []Author{{Name: "Jane Smith"}, {Name: "Bob Lee"}},
		Keywords: []Keyword{{Name: "soil"}, {Name: ""}, {Name: "water"}},
	}
	assert.Equal(t, []string{"Jane Smith", "Bob Lee"}, p.AuthorNames())
	assert.Equal(t, []string{"soil", "water"}, p.KeywordNames())
	assert.Empty(t, ResearchPaper{}.KeywordNames())
}

func TestPaperField(t *testing.T) {
	p := ResearchPaper{
		ID:              "p1",
		Title:           "Soil Health",
		MethodologyType: MethodologyMixed,
		CitationCount:   42,
		CitationTrend:   TrendStable,
		PublicationYear: "2018",
		Keywords:        []Keyword{{Name: "soil"}},
	}

	tests := []struct {
		name string
		want any
	}{
		{"id", "p1"},
		{"title", "Soil Health"},
		{"methodologyType", "mixed"},
		{"methodology_type", "mixed"},
		{"citationCount", 42},
		{"citation_trend", "stable"},
		{"publicationDate", "2018"},
		{"publicationYear", "2018"},
		{"keywords", []string{"soil"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Field(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := p.Field("missing")
	assert.False(t, ok)
	_, ok = ResearchPaper{}.Field("publicationDate")
	assert.False(t, ok)
}

func TestFilterCriteriaClone(t *testing.T) {
	c := FilterCriteria{Keywords: []string{"a"}, MethodologyTypes: []MethodologyType{MethodologyMixed}}
	cp := c.Clone()
	cp.Keywords[0] = "b"
	cp.MethodologyTypes[0] = MethodologyQualitative
	assert.Equal(t, "a", c.Keywords[0])
	assert.Equal(t, MethodologyMixed, c.MethodologyTypes[0])
}

func TestPaperQueryIsEmpty(t *testing.T) {
	assert.True(t, PaperQuery{PageSize: 10, Sort: "title_asc"}.IsEmpty())
	assert.False(t, PaperQuery{Authors: []string{"x"}}.IsEmpty())
	assert.False(t, PaperQuery{YearTo: 2020}.IsEmpty())
}
