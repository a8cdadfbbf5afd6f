// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes papers as a terminal table, JSON, or CSL-YAML.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/harvest/internal/grid"
	"github.com/pdiddy/harvest/pkg/types"
)

// Format names an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSL   Format = "csl"
)

// ParseFormat returns the output format named s. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatCSL:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want table, json, or csl)", s)
}

// Write renders one page in format f.
func Write(w io.Writer, f Format, page grid.Window[types.ResearchPaper]) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, page.Items)
	case FormatCSL:
		return WriteCSL(w, page.Items)
	}
	return WriteTable(w, page)
}

// Summary is the "Showing a-b of n papers" line for a page.
func Summary[T any](page grid.Window[T]) string {
	if page.Total == 0 || page.Len() == 0 {
		return fmt.Sprintf("Showing 0 of %d papers", page.Total)
	}
	return fmt.Sprintf("Showing %d-%d of %d papers", page.StartIndex+1, page.EndIndex, page.Total)
}

// WriteTable writes a page as an aligned table followed by the summary
// and page position.
func WriteTable(w io.Writer, page grid.Window[types.ResearchPaper]) error {
	if page.Total == 0 {
		_, err := fmt.Fprintln(w, "No papers found.")
		return err
	}

	fmt.Fprintf(w, "%-8s  %-50s  %-20s  %-4s  %-13s  %s\n",
		"ID", "Title", "Authors", "Year", "Methodology", "Citations")
	fmt.Fprintln(w, strings.Repeat("-", 112))

	for _, p := range page.Items {
		fmt.Fprintf(w, "%-8s  %-50s  %-20s  %-4s  %-13s  %d\n",
			truncate(p.ID, 8), truncate(p.Title, 50), formatAuthors(p.AuthorNames()),
			p.Year(), p.MethodologyType.Label(), p.CitationCount)
	}

	_, err := fmt.Fprintf(w, "\n%s (page %d of %d)\n", Summary(page), page.Page, max(page.TotalPages, 1))
	return err
}

// WriteJSON writes papers as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
