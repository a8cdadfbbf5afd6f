// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/harvest/pkg/types"
)

func nameQuery(name string) url.Values {
	if name == "" {
		return nil
	}
	return url.Values{"name": {name}}
}

// FetchKeywords lists keywords, optionally those whose name contains name.
func (c *Client) FetchKeywords(ctx context.Context, name string) ([]types.Keyword, error) {
	data, err := c.do(ctx, "FetchKeywords", http.MethodGet, "keywords/", nameQuery(name), nil, nil)
	if err != nil {
		return nil, err
	}
	var list []wireKeyword
	if err := decodeList(data, &list); err != nil {
		return nil, fmt.Errorf("FetchKeywords: decode: %w", err)
	}
	return keywords(list), nil
}

// FetchKeywordCategories lists keyword categories with their keywords.
func (c *Client) FetchKeywordCategories(ctx context.Context) ([]types.KeywordCategory, error) {
	data, err := c.do(ctx, "FetchKeywordCategories", http.MethodGet, "keyword-categories/", nil, nil, nil)
	if err != nil {
		return nil, err
	}
	var list []wireCategory
	if err := decodeList(data, &list); err != nil {
		return nil, fmt.Errorf("FetchKeywordCategories: decode: %w", err)
	}
	out := make([]types.KeywordCategory, len(list))
	for i, cat := range list {
		out[i] = cat.category()
	}
	return out, nil
}

// FetchAuthors lists authors, optionally those whose name contains name.
func (c *Client) FetchAuthors(ctx context.Context, name string) ([]types.Author, error) {
	data, err := c.do(ctx, "FetchAuthors", http.MethodGet, "authors/", nameQuery(name), nil, nil)
	if err != nil {
		return nil, err
	}
	var list []wireAuthor
	if err := decodeList(data, &list); err != nil {
		return nil, fmt.Errorf("FetchAuthors: decode: %w", err)
	}
	out := make([]types.Author, len(list))
	for i, a := range list {
		out[i] = a.author()
	}
	return out, nil
}

// FetchFilterOptions returns what the dynamic filter panel can offer.
func (c *Client) FetchFilterOptions(ctx context.Context) (types.FilterOptions, error) {
	data, err := c.do(ctx, "FetchFilterOptions", http.MethodGet, "filter-options/", nil, nil, nil)
	if err != nil {
		return types.FilterOptions{}, err
	}
	var w wireFilterOptions
	if err := json.Unmarshal(data, &w); err != nil {
		return types.FilterOptions{}, fmt.Errorf("FetchFilterOptions: decode: %w", err)
	}
	return w.options(), nil
}
