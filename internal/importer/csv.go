// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// TemplateHeaders are the columns of the import template, in order.
var TemplateHeaders = []string{
	"title",
	"abstract",
	"journal",
	"publication_date",
	"methodology_type",
	"citation_count",
	"citation_trend",
	"authors",
	"keywords",
	"doi",
	"download_url",
	"volume",
	"issue",
	"pages",
}

var templateRows = [][]string{
	{
		"Impact of Urban Farming on Food Security",
		"This study examines how urban farming initiatives contribute to local food security in metropolitan areas.",
		"Journal of Sustainable Agriculture",
		"2023-05-15",
		"mixed",
		"12",
		"increasing",
		"Dr. Jane Smith (University of California); Prof. Robert Johnson (Stanford University)",
		"Urban Farming; Food Security; Sustainability",
		"10.1234/example.2023.001",
		"https://example.com/paper.pdf",
		"45",
		"3",
		"123-145",
	},
	{
		"Comparative Analysis of Organic Farming Methods",
		"This paper compares different organic farming techniques and their impact on crop yield and soil health.",
		"Environmental Science Journal",
		"2022-11-22",
		"quantitative",
		"8",
		"stable",
		"Dr. Michael Brown (Cornell University); Prof. Sarah Lee (University of Wisconsin)",
		"Organic Farming; Crop Yield; Soil Health; Agriculture",
		"10.5678/example.2022.002",
		"https://example.com/organic-farming.pdf",
		"32",
		"2",
		"78-95",
	},
}

// TemplateFileName is the suggested name for the downloaded template.
const TemplateFileName = "research_papers_template.csv"

// WriteTemplate writes the import template: the header row and two
// sample papers.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TemplateHeaders); err != nil {
		return fmt.Errorf("writing template header: %w", err)
	}
	if err := cw.WriteAll(templateRows); err != nil {
		return fmt.Errorf("writing template rows: %w", err)
	}
	return nil
}

// ParseCSV reads a CSV file with a header row. Header names are trimmed,
// blank lines are skipped, and rows may be shorter or longer than the
// header.
func ParseCSV(r io.Reader) ([]Row, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.TrimSpace(h)
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading CSV: %w", err)
		}
		if blankRecord(rec) {
			continue
		}
		row := make(Row, len(header))
		for i, cell := range rec {
			if i >= len(header) || header[i] == "" {
				continue
			}
			row[header[i]] = cell
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

func blankRecord(rec []string) bool {
	return len(rec) == 1 && strings.TrimSpace(rec[0]) == ""
}
