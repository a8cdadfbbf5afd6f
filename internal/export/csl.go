package export

import (
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/harvest/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form,
// so output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Volume         string    `yaml:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
	Keyword        string    `yaml:"keyword,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a date as CSL date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// WriteCSL writes papers as a CSL-YAML list.
func WriteCSL(w io.Writer, papers []types.ResearchPaper) error {
	items := make([]CSLItem, len(papers))
	for i, p := range papers {
		items[i] = toCSLItem(p)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(p types.ResearchPaper) CSLItem {
	item := CSLItem{
		ID:             p.ID,
		Type:           "article-journal",
		Title:          p.Title,
		Abstract:       p.Abstract,
		ContainerTitle: p.Journal,
		Volume:         p.Volume,
		Issue:          p.Issue,
		Page:           p.Pages,
		DOI:            p.DOI,
		URL:            p.DownloadURL,
		Keyword:        strings.Join(p.KeywordNames(), ", "),
	}
	if p.Slug != "" {
		item.ID = p.Slug
	}

	for _, a := range p.Authors {
		if n := parseAuthorName(a.Name); n != (CSLName{}) {
			item.Author = append(item.Author, n)
		}
	}

	if parts := dateParts(p.Date()); len(parts) > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{parts}}
	}
	return item
}

// dateParts reads YYYY, YYYY-MM or YYYY-MM-DD, stopping at the first part
// that is not a number.
func dateParts(d string) []int {
	if len(d) > len("2006-01-02") {
		d = d[:len("2006-01-02")]
	}
	var parts []int
	for _, s := range strings.SplitN(d, "-", 3) {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			break
		}
		parts = append(parts, n)
	}
	return parts
}

// parseAuthorName splits a full name on the last space: everything before
// is given, the last token is family. Single-token names use literal.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
