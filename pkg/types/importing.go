// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AuthorInput is an author in a create, update, or import payload.
type AuthorInput struct {
	Name        string `json:"name" yaml:"name"`
	Affiliation string `json:"affiliation" yaml:"affiliation"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
}

// KeywordInput is a keyword in a create, update, or import payload.
type KeywordInput struct {
	Name string `json:"name" yaml:"name"`
}

// PaperFormData is the nested shape the backend expects when creating,
// updating, or bulk-importing papers.
type PaperFormData struct {
	Title           string          `json:"title" yaml:"title"`
	Abstract        string          `json:"abstract" yaml:"abstract"`
	Authors         []AuthorInput   `json:"authors" yaml:"authors"`
	PublicationDate string          `json:"publication_date" yaml:"publication_date"`
	PublicationYear string          `json:"publication_year,omitempty" yaml:"publication_year,omitempty"`
	MethodologyType MethodologyType `json:"methodology_type" yaml:"methodology_type"`
	CitationCount   int             `json:"citation_count" yaml:"citation_count"`
	CitationTrend   CitationTrend   `json:"citation_trend" yaml:"citation_trend"`
	Journal         string          `json:"journal" yaml:"journal"`
	Keywords        []KeywordInput  `json:"keywords" yaml:"keywords"`
	DOI             string          `json:"doi" yaml:"doi"`
	DownloadURL     string          `json:"download_url" yaml:"download_url"`
	Volume          string          `json:"volume" yaml:"volume"`
	Issue           string          `json:"issue" yaml:"issue"`
	Pages           string          `json:"pages" yaml:"pages"`
}

// BulkImportError reports why the backend rejected one imported paper.
// Errors is either a message string or a field-to-messages map.
type BulkImportError struct {
	Index  int    `json:"index"`
	Title  string `json:"title"`
	Errors any    `json:"errors"`
}

// BulkImportResult is the backend's acknowledgement of a bulk import.
type BulkImportResult struct {
	SuccessCount int               `json:"success_count"`
	ErrorCount   int               `json:"error_count"`
	Errors       []BulkImportError `json:"errors"`
}

// ProgressFunc receives upload progress: sent bytes of total. total is -1
// when the size is unknown.
type ProgressFunc func(sent, total int64)
