// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/harvest/internal/httputil"
	"github.com/pdiddy/harvest/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/api/", append([]Option{WithHTTPClient(ts.Client())}, opts...)...)
}

func TestFetchPapersSendsQuery(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"count": 2, "next": "http://x/?page=2", "previous": null, "results": [
			{"id": 7, "title": "Soil carbon", "authors": [{"id": 1, "name": "Jane Smith", "affiliation": "MIT"}],
			 "publication_year": 2021, "methodology_type": "quantitative", "citation_count": 12,
			 "citation_trend": "increasing", "keywords": [{"id": 3, "name": "Soil"}], "slug": "soil-carbon"},
			{"id": "legacy-1", "title": "Old record", "publicationDate": "2019-04-02", "methodologyType": "Unknown",
			 "citationCount": "5", "keywords": ["Water"]}
		]}`)
	}, WithToken("tok"), WithUserAgent("harvest-test"))

	page, err := c.FetchPapers(context.Background(), types.PaperQuery{
		Q:                "carbon",
		Keywords:         []string{"Soil", "Water"},
		MethodologyTypes: []types.MethodologyType{types.MethodologyQuantitative, types.MethodologyMixed},
		MinCitations:     5,
		YearFrom:         2018,
		YearTo:           2022,
		Journal:          "Nature",
		PageSize:         10,
	}, 2)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/api/research/papers/", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "carbon", q.Get("q"))
	assert.Equal(t, []string{"Soil", "Water"}, q["keyword"])
	assert.Equal(t, []string{"quantitative", "mixed"}, q["methodology_type"])
	assert.Equal(t, "5", q.Get("min_citations"))
	assert.Equal(t, "2018", q.Get("year_from"))
	assert.Equal(t, "2022", q.Get("year_to"))
	assert.Equal(t, "Nature", q.Get("journal"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "10", q.Get("page_size"))
	assert.Equal(t, "Bearer tok", got.Header.Get("Authorization"))
	assert.Equal(t, "harvest-test", got.Header.Get("User-Agent"))

	assert.Equal(t, 2, page.Count)
	assert.Equal(t, "http://x/?page=2", page.Next)
	assert.Empty(t, page.Previous)
	require.Len(t, page.Results, 2)

	p := page.Results[0]
	assert.Equal(t, "7", p.ID)
	assert.Equal(t, "2021", p.PublicationYear)
	assert.Equal(t, types.MethodologyQuantitative, p.MethodologyType)
	assert.Equal(t, types.TrendIncreasing, p.CitationTrend)
	assert.Equal(t, 12, p.CitationCount)
	assert.Equal(t, []types.Author{{ID: "1", Name: "Jane Smith", Affiliation: "MIT"}}, p.Authors)
	assert.Equal(t, []types.Keyword{{ID: "3", Name: "Soil"}}, p.Keywords)

	legacy := page.Results[1]
	assert.Equal(t, "legacy-1", legacy.ID)
	assert.Equal(t, "2019-04-02", legacy.PublicationDate)
	assert.Equal(t, "2019", legacy.PublicationYear, "year derived from date")
	assert.Equal(t, types.MethodologyUnknown, legacy.MethodologyType)
	assert.Equal(t, types.TrendStable, legacy.CitationTrend)
	assert.Equal(t, 5, legacy.CitationCount)
	assert.Equal(t, []string{"Water"}, legacy.KeywordNames())
}

func TestFetchPapersOmitsZeroParams(t *testing.T) {
	var rawQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		io.WriteString(w, `[]`)
	})

	page, err := c.FetchPapers(context.Background(), types.PaperQuery{}, 0)
	require.NoError(t, err)
	assert.Empty(t, rawQuery)
	assert.Zero(t, page.Count)
}

func TestSuccessEnvelopeIsUnwrapped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"success": true, "message": "ok", "data": {"id": 1, "title": "Wrapped", "slug": "wrapped"}}`)
	})

	p, err := c.GetPaper(context.Background(), "wrapped")
	require.NoError(t, err)
	assert.Equal(t, "Wrapped", p.Title)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		body           string
		wantNotFound   bool
		wantValidation bool
		wantUser       string
	}{
		{"detail", 404, `{"detail": "Not found."}`, true, false, "Not found."},
		{"field map", 400, `{"title": ["This field is required."], "journal": "Too long."}`, false, true,
			"Validation error: journal: Too long.; title: This field is required."},
		{"error key", 400, `{"error": "Expected a list of papers"}`, false, false, "Expected a list of papers"},
		{"html page", 500, `<html>boom</html>`, false, false, "Internal Server Error"},
		{"failed envelope", 200, `{"success": false, "message": "Import disabled"}`, false, false, "Import disabled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := c.GetPaper(context.Background(), "x")
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "GetPaper", apiErr.Op)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantNotFound, IsNotFound(err))
			assert.Equal(t, tt.wantValidation, IsValidation(err))
			assert.Equal(t, tt.wantUser, UserMessage(err))
		})
	}
}

func TestNetworkErrorIsGeneric(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := NewClient(url).FetchKeywords(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FetchKeywords")
	assert.Equal(t, GenericMessage, UserMessage(err))
	assert.Equal(t, "", UserMessage(nil))
}

func TestBulkImport(t *testing.T) {
	var received []types.PaperFormData
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/research/papers/bulk-import/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"status": "success"}`)
	})

	forms := []types.PaperFormData{
		{Title: "A", Authors: []types.AuthorInput{{Name: "Jane"}}, MethodologyType: types.MethodologyMixed},
		{Title: "B", Keywords: []types.KeywordInput{{Name: "Soil"}}},
	}
	var last, total atomic.Int64
	res, err := c.BulkImport(context.Background(), forms, func(sent, size int64) {
		last.Store(sent)
		total.Store(size)
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.SuccessCount)
	assert.Zero(t, res.ErrorCount)
	require.Len(t, received, 2)
	assert.Equal(t, "A", received[0].Title)
	assert.NotZero(t, total.Load())
	assert.Equal(t, total.Load(), last.Load(), "progress ends at the full body size")
}

func TestBulkImportPartialResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"success_count": 1, "error_count": 1, "errors": [{"index": 1, "title": "B", "errors": {"journal": ["required"]}}]}`)
	})

	res, err := c.BulkImport(context.Background(), make([]types.PaperFormData, 2), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 1, res.ErrorCount)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "B", res.Errors[0].Title)
}

func TestBulkImportRetriesRateLimit(t *testing.T) {
	var calls int32
	var lastLen int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		lastLen = len(body)
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, `{"success_count": 1, "error_count": 0, "errors": []}`)
	}, WithMaxRetries(2))

	res, err := c.BulkImport(context.Background(), []types.PaperFormData{{Title: "A"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.NotZero(t, lastLen, "body replayed on retry")
}

func TestDeletePapers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/api/research/papers/b/" {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"detail": "Not found."}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	sum := c.DeletePapers(context.Background(), []string{"a", "b", "c"})
	assert.Equal(t, 2, sum.Deleted)
	assert.Equal(t, 1, sum.Failed)
	require.Len(t, sum.Errors, 1)
	assert.Equal(t, "b", sum.Errors[0].ID)
	assert.True(t, IsNotFound(sum.Errors[0].Err))
}

func TestTaxonomyEndpoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/research/keywords/":
			assert.Equal(t, "soil", r.URL.Query().Get("name"))
			io.WriteString(w, `{"count": 1, "results": [{"id": 1, "name": "Soil"}]}`)
		case "/api/research/keyword-categories/":
			io.WriteString(w, `[{"id": 2, "name": "Regions", "description": "Where", "keywords": [{"id": 9, "name": "Africa"}]}]`)
		case "/api/research/authors/":
			io.WriteString(w, `[{"id": 4, "name": "Bob Lee", "affiliation": ""}]`)
		case "/api/research/filter-options/":
			io.WriteString(w, `{"methodology_types": ["mixed", "qualitative"], "year_range": {"min": 1900, "max": 2025},
				"years_available": [2019, 2021], "region_keywords": [{"id": 9, "name": "Africa"}],
				"general_keywords": [{"id": 1, "name": "Soil"}], "keyword_categories": [],
				"stats": {"total_papers": 2, "total_regions": 1, "total_general_keywords": 1}}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	kws, err := c.FetchKeywords(ctx, "soil")
	require.NoError(t, err)
	assert.Equal(t, []types.Keyword{{ID: "1", Name: "Soil"}}, kws)

	cats, err := c.FetchKeywordCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Regions", cats[0].Name)
	assert.Equal(t, []types.Keyword{{ID: "9", Name: "Africa"}}, cats[0].Keywords)

	authors, err := c.FetchAuthors(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []types.Author{{ID: "4", Name: "Bob Lee"}}, authors)

	opts, err := c.FetchFilterOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"mixed", "qualitative"}, opts.MethodologyTypes)
	assert.Equal(t, types.YearRange{Min: 1900, Max: 2025}, opts.YearRange)
	assert.Equal(t, []int{2019, 2021}, opts.YearsAvailable)
	assert.Equal(t, "Africa", opts.RegionKeywords[0].Name)
	assert.Equal(t, 2, opts.Stats.TotalPapers)
}

func TestSearchPapers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/research/search/", r.URL.Path)
		assert.Equal(t, "soil", r.URL.Query().Get("q"))
		assert.Equal(t, "title", r.URL.Query().Get("type"))
		io.WriteString(w, `{"papers": [{"id": 1, "title": "Soil"}]}`)
	})

	got, err := c.SearchPapers(context.Background(), "soil", "title")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Soil", got[0].Title)
}

func TestLeadingInt(t *testing.T) {
	for in, want := range map[string]int{"42": 42, " 7 ": 7, "12abc": 12, "-3": -3, "abc": 0, "": 0, "+": 0} {
		assert.Equal(t, want, leadingInt(in), in)
	}
}

func TestFetchPapersAuthorAndSort(t *testing.T) {
	var q map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query()
		io.WriteString(w, `{"count": 0, "results": []}`)
	})

	_, err := c.FetchPapers(context.Background(), types.PaperQuery{
		Authors: []string{"Jane Smith", "Bob Lee"},
		Sort:    "citations_high",
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Smith", "Bob Lee"}, q["author"])
	assert.Equal(t, []string{"citations_high"}, q["sort"])
}

func TestPaperEndpoints(t *testing.T) {
	var (
		method, path string
		body         map[string]any
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		body = nil
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&body)
		}
		switch r.URL.Path {
		case "/api/research/papers/soil-carbon/related/":
			io.WriteString(w, `[{"id": 2, "title": "Related"}]`)
		case "/api/research/papers/trending/":
			assert.Equal(t, "3", r.URL.Query().Get("limit"))
			io.WriteString(w, `{"results": [{"id": 3, "title": "Hot", "citation_trend": "increasing"}]}`)
		default:
			io.WriteString(w, `{"id": 1, "title": "Soil carbon", "slug": "soil-carbon", "publication_date": "2022-03-01"}`)
		}
	})
	ctx := context.Background()

	p, err := c.GetPaper(ctx, "soil-carbon")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, method)
	assert.Equal(t, "/api/research/papers/soil-carbon/", path)
	assert.Equal(t, "1", p.ID)
	assert.Equal(t, "2022", p.PublicationYear)

	_, err = c.CreatePaper(ctx, types.PaperFormData{Title: "New"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/api/research/papers/", path)
	assert.Equal(t, "New", body["title"])

	_, err = c.UpdatePaper(ctx, "soil-carbon", types.PaperFormData{Title: "Edited"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/api/research/papers/soil-carbon/", path)
	assert.Equal(t, "Edited", body["title"])

	related, err := c.RelatedPapers(ctx, "soil-carbon")
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "Related", related[0].Title)

	trending, err := c.TrendingPapers(ctx, 3)
	require.NoError(t, err)
	require.Len(t, trending, 1)
	assert.Equal(t, types.TrendIncreasing, trending[0].CitationTrend)
}

func TestWithTimeoutLeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	c := NewClient("", WithHTTPClient(shared), WithTimeout(time.Second))

	assert.Equal(t, time.Minute, shared.Timeout)
	assert.NotSame(t, shared, c.httpClient)
	assert.Equal(t, time.Second, c.httpClient.Timeout)

	c = NewClient("", WithHTTPClient(shared))
	assert.Same(t, shared, c.httpClient)

	c = NewClient("", WithHTTPClient(nil), WithTimeout(5*time.Second))
	require.NotNil(t, c.httpClient)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)

	c = NewClient("", WithTimeout(0))
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
}
