// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package importer

import (
	"regexp"
	"slices"
	"strings"
)

// RequiredColumns must all appear in an import file's header.
var RequiredColumns = []string{
	"title",
	"abstract",
	"journal",
	"publication_date",
	"authors",
	"keywords",
}

// Validation messages.
const (
	MsgEmptyFile          = "The CSV file is empty"
	MsgMissingColumns     = "Missing required columns: "
	MsgTitleRequired      = "Title is required"
	MsgAbstractRequired   = "Abstract is required"
	MsgJournalRequired    = "Journal is required"
	MsgDateRequired       = "Publication date is required"
	MsgDateFormat         = "Publication date must be in YYYY-MM-DD format"
	MsgMethodologyInvalid = "Methodology type must be one of: qualitative, quantitative, mixed"
	MsgTrendInvalid       = "Citation trend must be one of: increasing, stable, decreasing"
	MsgAuthorRequired     = "At least one author is required"
	MsgKeywordRequired    = "At least one keyword is required"
	MsgDownloadURL        = "Download URL must start with http:// or https://"
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	urlPattern  = regexp.MustCompile(`^https?://`)

	methodologies = []string{"qualitative", "quantitative", "mixed"}
	trends        = []string{"increasing", "stable", "decreasing"}
)

// RowError lists the problems of one row. Index is zero-based.
type RowError struct {
	Index  int
	Errors []string
}

// Report is the outcome of validating a parsed file.
type Report struct {
	Rows       int
	FileErrors []string
	RowErrors  []RowError
}

// Valid reports whether row i has no errors.
func (r Report) Valid(i int) bool {
	return !slices.ContainsFunc(r.RowErrors, func(e RowError) bool { return e.Index == i })
}

// ValidCount returns the number of rows without errors.
func (r Report) ValidCount() int {
	return r.Rows - len(r.RowErrors)
}

// OK reports whether the file has no errors at all.
func (r Report) OK() bool {
	return len(r.FileErrors) == 0 && len(r.RowErrors) == 0
}

// Validate checks the header for required columns and every row for
// required, well-formed values. An empty file yields only a file error.
func Validate(rows []Row, headers []string) Report {
	rep := Report{Rows: len(rows)}
	if len(rows) == 0 {
		rep.FileErrors = []string{MsgEmptyFile}
		return rep
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !slices.Contains(headers, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		rep.FileErrors = append(rep.FileErrors, MsgMissingColumns+strings.Join(missing, ", "))
	}

	for i, row := range rows {
		if errs := ValidateRow(row); len(errs) > 0 {
			rep.RowErrors = append(rep.RowErrors, RowError{Index: i, Errors: errs})
		}
	}
	return rep
}

// ValidateRow returns the problems with one row, in column order.
func ValidateRow(row Row) []string {
	var errs []string
	blank := func(col string) bool { return strings.TrimSpace(row[col]) == "" }

	if blank("title") {
		errs = append(errs, MsgTitleRequired)
	}
	if blank("abstract") {
		errs = append(errs, MsgAbstractRequired)
	}
	if blank("journal") {
		errs = append(errs, MsgJournalRequired)
	}

	if blank("publication_date") {
		errs = append(errs, MsgDateRequired)
	} else if !datePattern.MatchString(row["publication_date"]) {
		errs = append(errs, MsgDateFormat)
	}

	if m := strings.TrimSpace(row["methodology_type"]); m != "" && !slices.Contains(methodologies, m) {
		errs = append(errs, MsgMethodologyInvalid)
	}
	if t := strings.TrimSpace(row["citation_trend"]); t != "" && !slices.Contains(trends, t) {
		errs = append(errs, MsgTrendInvalid)
	}

	if blank("authors") {
		errs = append(errs, MsgAuthorRequired)
	}
	if blank("keywords") {
		errs = append(errs, MsgKeywordRequired)
	}

	if u := strings.TrimSpace(row["download_url"]); u != "" && !urlPattern.MatchString(u) {
		errs = append(errs, MsgDownloadURL)
	}
	return errs
}
