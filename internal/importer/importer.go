// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package importer turns CSV, JSON, and BibTeX files into paper payloads
// for the bulk-import endpoint. Files are parsed into flat rows, validated
// row by row, and only rows without errors are submitted.
package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Row is one parsed record keyed by column name. A cell missing from a
// short row is an absent key.
type Row map[string]string

// Get returns the cell for col, or "".
func (r Row) Get(col string) string { return r[col] }

// Format identifies an import file format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatBibTeX Format = "bibtex"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatJSON, FormatBibTeX}

// ParseFormat returns the format named s ("bib" is accepted for BibTeX).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "bib", "bibtex":
		return FormatBibTeX, nil
	}
	return "", fmt.Errorf("unsupported import format %q (want csv, json, or bibtex)", s)
}

// DetectFormat picks a format from a file name's extension.
func DetectFormat(name string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot detect import format of %q: no extension", name)
	}
	return ParseFormat(ext)
}

// Parse reads rows in format f. headers are the columns the file declares;
// for formats without a header row they are the template columns.
func Parse(f Format, r io.Reader) ([]Row, []string, error) {
	switch f {
	case FormatCSV:
		return ParseCSV(r)
	case FormatJSON:
		return ParseJSON(r)
	case FormatBibTeX:
		return ParseBibTeX(r)
	}
	return nil, nil, fmt.Errorf("unsupported import format %q", f)
}
