// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/pdiddy/harvest/pkg/types"
)

// queryValues encodes q and page as papers-endpoint parameters. Zero
// fields are left out; keyword and methodology_type repeat.
func queryValues(q types.PaperQuery, page int) url.Values {
	v := url.Values{}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	for _, k := range q.Keywords {
		v.Add("keyword", k)
	}
	for _, a := range q.Authors {
		v.Add("author", a)
	}
	for _, m := range q.MethodologyTypes {
		v.Add("methodology_type", string(m))
	}
	if q.MinCitations > 0 {
		v.Set("min_citations", strconv.Itoa(q.MinCitations))
	}
	if q.YearFrom > 0 {
		v.Set("year_from", strconv.Itoa(q.YearFrom))
	}
	if q.YearTo > 0 {
		v.Set("year_to", strconv.Itoa(q.YearTo))
	}
	if q.Journal != "" {
		v.Set("journal", q.Journal)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	return v
}

// FetchPapers returns one page of papers matching q.
func (c *Client) FetchPapers(ctx context.Context, q types.PaperQuery, page int) (types.PaperPage, error) {
	data, err := c.do(ctx, "FetchPapers", http.MethodGet, "papers/", queryValues(q, page), nil, nil)
	if err != nil {
		return types.PaperPage{}, err
	}
	return decodePaperPage(data)
}

func (c *Client) decodePaper(op string, data []byte) (types.ResearchPaper, error) {
	var w wirePaper
	if err := json.Unmarshal(data, &w); err != nil {
		return types.ResearchPaper{}, fmt.Errorf("%s: decode paper: %w", op, err)
	}
	return w.paper(), nil
}

// GetPaper returns the paper with the given slug.
func (c *Client) GetPaper(ctx context.Context, slug string) (types.ResearchPaper, error) {
	data, err := c.do(ctx, "GetPaper", http.MethodGet, "papers/"+url.PathEscape(slug)+"/", nil, nil, nil)
	if err != nil {
		return types.ResearchPaper{}, err
	}
	return c.decodePaper("GetPaper", data)
}

// CreatePaper creates a paper and returns it as stored.
func (c *Client) CreatePaper(ctx context.Context, form types.PaperFormData) (types.ResearchPaper, error) {
	data, err := c.do(ctx, "CreatePaper", http.MethodPost, "papers/", nil, form, nil)
	if err != nil {
		return types.ResearchPaper{}, err
	}
	return c.decodePaper("CreatePaper", data)
}

// UpdatePaper replaces the paper with the given slug.
func (c *Client) UpdatePaper(ctx context.Context, slug string, form types.PaperFormData) (types.ResearchPaper, error) {
	data, err := c.do(ctx, "UpdatePaper", http.MethodPut, "papers/"+url.PathEscape(slug)+"/", nil, form, nil)
	if err != nil {
		return types.ResearchPaper{}, err
	}
	return c.decodePaper("UpdatePaper", data)
}

// DeletePaper deletes one paper by its lookup key.
func (c *Client) DeletePaper(ctx context.Context, id string) error {
	_, err := c.do(ctx, "DeletePaper", http.MethodDelete, "papers/"+url.PathEscape(id)+"/", nil, nil, nil)
	return err
}

// DeleteFailure records one paper a batch delete could not remove.
type DeleteFailure struct {
	ID  string
	Err error
}

// DeleteSummary counts the outcome of a batch delete.
type DeleteSummary struct {
	Deleted int
	Failed  int
	Errors  []DeleteFailure
}

// DeletePapers deletes ids one at a time and reports how many succeeded.
// A failure does not stop the batch.
func (c *Client) DeletePapers(ctx context.Context, ids []string) DeleteSummary {
	var sum DeleteSummary
	for _, id := range ids {
		if err := c.DeletePaper(ctx, id); err != nil {
			c.log.Warn("delete failed", zap.String("id", id), zap.Error(err))
			sum.Failed++
			sum.Errors = append(sum.Errors, DeleteFailure{ID: id, Err: err})
			continue
		}
		sum.Deleted++
	}
	return sum
}

// BulkImport submits papers in one request. progress, when set, observes
// the request body as it is uploaded. A backend that acknowledges with
// only {"status": "success"} is taken to have stored every paper.
func (c *Client) BulkImport(ctx context.Context, papers []types.PaperFormData, progress types.ProgressFunc) (types.BulkImportResult, error) {
	if papers == nil {
		papers = []types.PaperFormData{}
	}
	data, err := c.do(ctx, "BulkImport", http.MethodPost, "papers/bulk-import/", nil, papers, progress)
	if err != nil {
		return types.BulkImportResult{}, err
	}

	var ack struct {
		types.BulkImportResult
		Status string `json:"status"`
	}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &ack); err != nil {
			return types.BulkImportResult{}, fmt.Errorf("BulkImport: decode response: %w", err)
		}
	}
	res := ack.BulkImportResult
	if res.SuccessCount == 0 && res.ErrorCount == 0 && len(res.Errors) == 0 {
		res.SuccessCount = len(papers)
	}
	return res, nil
}

// SearchPapers runs the site-wide search. searchType narrows the fields
// searched (e.g. "title", "author"); empty searches everything.
func (c *Client) SearchPapers(ctx context.Context, query, searchType string) ([]types.ResearchPaper, error) {
	v := url.Values{"q": {query}}
	if searchType != "" {
		v.Set("type", searchType)
	}
	data, err := c.do(ctx, "SearchPapers", http.MethodGet, "search/", v, nil, nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePaperPage(data)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// RelatedPapers returns papers sharing keywords with the given paper.
func (c *Client) RelatedPapers(ctx context.Context, slug string) ([]types.ResearchPaper, error) {
	data, err := c.do(ctx, "RelatedPapers", http.MethodGet, "papers/"+url.PathEscape(slug)+"/related/", nil, nil, nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePaperPage(data)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// TrendingPapers returns papers with increasing citations, most cited
// first. limit <= 0 uses the server default.
func (c *Client) TrendingPapers(ctx context.Context, limit int) ([]types.ResearchPaper, error) {
	var v url.Values
	if limit > 0 {
		v = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	data, err := c.do(ctx, "TrendingPapers", http.MethodGet, "papers/trending/", v, nil, nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePaperPage(data)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}
