// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package browse holds the filter state behind the paper browser, either
// filtering a loaded collection locally or driving server-side queries.
package browse

import (
	"slices"
	"strings"
	"sync"

	"github.com/pdiddy/harvest/internal/filter"
	"github.com/pdiddy/harvest/internal/grid"
	"github.com/pdiddy/harvest/pkg/types"
)

// LocalState is a snapshot of a Local controller.
type LocalState struct {
	Criteria types.FilterCriteria
	Window   grid.Window[types.ResearchPaper]
}

// Local filters an in-memory collection and paginates the matches. Every
// criteria change returns to page 1. It is safe for concurrent use;
// onChange runs after the lock is released.
type Local struct {
	mu       sync.Mutex
	papers   []types.ResearchPaper
	criteria types.FilterCriteria
	matched  []types.ResearchPaper
	page     int
	pageSize int
	onChange func(LocalState)
}

// NewLocal returns a controller over papers with no criteria set.
// pageSize <= 0 means grid.DefaultPageSize. onChange may be nil.
func NewLocal(papers []types.ResearchPaper, pageSize int, onChange func(LocalState)) *Local {
	if pageSize <= 0 {
		pageSize = grid.DefaultPageSize
	}
	return &Local{
		papers:   papers,
		matched:  papers,
		page:     1,
		pageSize: pageSize,
		onChange: onChange,
	}
}

// State returns the current criteria and page window.
func (l *Local) State() LocalState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

func (l *Local) snapshot() LocalState {
	return LocalState{
		Criteria: l.criteria.Clone(),
		Window:   grid.Paginate(l.matched, l.page, l.pageSize),
	}
}

// update applies fn to the criteria, refilters, and returns to page 1.
func (l *Local) update(fn func(c *types.FilterCriteria)) {
	l.mu.Lock()
	fn(&l.criteria)
	l.matched = filter.Papers(l.papers, l.criteria)
	l.page = 1
	st := l.snapshot()
	l.mu.Unlock()
	l.notify(st)
}

func (l *Local) notify(st LocalState) {
	if l.onChange != nil {
		l.onChange(st)
	}
}

// SetDateRange sets the publication date bounds.
func (l *Local) SetDateRange(r types.DateRange) {
	l.update(func(c *types.FilterCriteria) { c.DateRange = r })
}

// ToggleMethodology adds m to the selected methodologies, or removes it
// when already selected.
func (l *Local) ToggleMethodology(m types.MethodologyType) {
	l.update(func(c *types.FilterCriteria) {
		if i := slices.Index(c.MethodologyTypes, m); i >= 0 {
			c.MethodologyTypes = slices.Delete(slices.Clone(c.MethodologyTypes), i, i+1)
			return
		}
		c.MethodologyTypes = append(slices.Clone(c.MethodologyTypes), m)
	})
}

// SetMethodologies replaces the selected methodologies.
func (l *Local) SetMethodologies(ms []types.MethodologyType) {
	l.update(func(c *types.FilterCriteria) { c.MethodologyTypes = slices.Clone(ms) })
}

func keywordIndex(list []string, k string) int {
	return slices.IndexFunc(list, func(s string) bool { return strings.EqualFold(s, k) })
}

// AddKeyword selects a keyword in capital case. Adding a keyword already
// selected in any letter case does nothing but still resets the page.
func (l *Local) AddKeyword(k string) {
	k = filter.CapitalCase(strings.TrimSpace(k))
	l.update(func(c *types.FilterCriteria) {
		if k == "" || keywordIndex(c.Keywords, k) >= 0 {
			return
		}
		c.Keywords = append(slices.Clone(c.Keywords), k)
	})
}

// RemoveKeyword deselects a keyword, ignoring case.
func (l *Local) RemoveKeyword(k string) {
	k = strings.TrimSpace(k)
	l.update(func(c *types.FilterCriteria) {
		if i := keywordIndex(c.Keywords, k); i >= 0 {
			c.Keywords = slices.Delete(slices.Clone(c.Keywords), i, i+1)
		}
	})
}

// ToggleKeyword selects k or deselects it when already selected.
func (l *Local) ToggleKeyword(k string) {
	k = filter.CapitalCase(strings.TrimSpace(k))
	l.update(func(c *types.FilterCriteria) {
		if i := keywordIndex(c.Keywords, k); i >= 0 {
			c.Keywords = slices.Delete(slices.Clone(c.Keywords), i, i+1)
			return
		}
		if k != "" {
			c.Keywords = append(slices.Clone(c.Keywords), k)
		}
	})
}

// SetKeywords replaces the selected keywords.
func (l *Local) SetKeywords(ks []string) {
	var norm []string
	for _, k := range ks {
		k = filter.CapitalCase(strings.TrimSpace(k))
		if k != "" && keywordIndex(norm, k) < 0 {
			norm = append(norm, k)
		}
	}
	l.update(func(c *types.FilterCriteria) { c.Keywords = norm })
}

// SetMinCitations sets the citation threshold. Negative values mean 0.
func (l *Local) SetMinCitations(n int) {
	l.update(func(c *types.FilterCriteria) { c.MinCitations = max(n, 0) })
}

// ClearMinCitations removes the citation threshold.
func (l *Local) ClearMinCitations() {
	l.update(func(c *types.FilterCriteria) { c.MinCitations = 0 })
}

// Reset clears every criterion.
func (l *Local) Reset() {
	l.update(func(c *types.FilterCriteria) { *c = types.FilterCriteria{} })
}

// SetCriteria replaces the whole selection, e.g. from a saved preset.
func (l *Local) SetCriteria(sel types.FilterCriteria) {
	sel = sel.Clone()
	l.update(func(c *types.FilterCriteria) { *c = sel })
}

// SetPapers replaces the collection and keeps the criteria.
func (l *Local) SetPapers(papers []types.ResearchPaper) {
	l.mu.Lock()
	l.papers = papers
	l.mu.Unlock()
	l.update(func(*types.FilterCriteria) {})
}

// SetPage moves to page p, clamped to the available pages.
func (l *Local) SetPage(p int) {
	l.mu.Lock()
	l.page = grid.ClampPage(p, grid.TotalPages(len(l.matched), l.pageSize))
	st := l.snapshot()
	l.mu.Unlock()
	l.notify(st)
}

// SetPageSize changes the page size and returns to page 1.
func (l *Local) SetPageSize(n int) {
	if n <= 0 {
		n = grid.DefaultPageSize
	}
	l.mu.Lock()
	l.pageSize = n
	l.page = 1
	st := l.snapshot()
	l.mu.Unlock()
	l.notify(st)
}
