// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package browse

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/harvest/internal/grid"
	"github.com/pdiddy/harvest/pkg/types"
)

// Defaults for RemoteOptions.
const (
	DefaultRemotePageSize = 10
	DefaultDebounce       = 300 * time.Millisecond
)

// PaperFetcher fetches one page of papers matching a query.
type PaperFetcher interface {
	FetchPapers(ctx context.Context, q types.PaperQuery, page int) (types.PaperPage, error)
}

// RemoteOptions configures a Remote controller.
type RemoteOptions struct {
	PageSize int           // papers per server page (default 10)
	Debounce time.Duration // quiet period for free-text search (default 300ms)
	Logger   *zap.Logger

	// OnResult receives each applied fetch outcome, in request order. It
	// may call back into the controller.
	OnResult func(RemoteState)
}

// RemoteState is a snapshot of a Remote controller.
type RemoteState struct {
	Query      types.PaperQuery
	Page       int
	Papers     []types.ResearchPaper
	Count      int
	TotalPages int
	Loading    bool
	Err        error
}

// Selection is what the dynamic filter panel applies in one step. Regions
// are keywords too and are merged into the keyword list.
type Selection struct {
	Keywords         []string
	Regions          []string
	MethodologyTypes []types.MethodologyType
	YearFrom         int
	YearTo           int
	MinCitations     int
}

// Remote drives server-side filtering. Each change issues a page-1 fetch;
// only the response to the latest request is applied. Free-text search is
// debounced.
type Remote struct {
	fetcher  PaperFetcher
	log      *zap.Logger
	debounce time.Duration
	onResult func(RemoteState)

	// notifyMu orders OnResult calls with the sequence check.
	notifyMu sync.Mutex

	mu      sync.Mutex
	query   types.PaperQuery
	pending string
	timer   *time.Timer

	// searchGen invalidates debounce timers that fired late.
	searchGen uint64
	seq       uint64
	cancel    context.CancelFunc
	state     RemoteState

	// idle is open while a fetch is in flight and closed once the latest
	// one is applied. notifying is set while OnResult runs.
	idle      chan struct{}
	closed    bool
	notifying bool
	wg        sync.WaitGroup
}

// NewRemote returns a controller that fetches through f. No request is
// sent until the first change or Refresh.
func NewRemote(f PaperFetcher, opts RemoteOptions) *Remote {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultRemotePageSize
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r := &Remote{
		fetcher:  f,
		log:      opts.Logger,
		debounce: opts.Debounce,
		onResult: opts.OnResult,
		query:    types.PaperQuery{PageSize: opts.PageSize},
	}
	r.state = RemoteState{Query: r.query, Page: 1}
	return r
}

// State returns the latest applied state.
func (r *Remote) State() RemoteState {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.state
	st.Papers = slices.Clone(st.Papers)
	return st
}

// SetSearchText schedules a search for text after the debounce period. A
// later call within the period replaces it.
func (r *Remote) SetSearchText(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.pending = text
	if r.timer != nil {
		r.timer.Stop()
	}
	r.searchGen++
	gen := r.searchGen
	r.timer = time.AfterFunc(r.debounce, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		// A newer keystroke or an explicit flush took over.
		if gen != r.searchGen {
			return
		}
		r.changeLocked(func(q *types.PaperQuery) { q.Q = strings.TrimSpace(r.pending) })
	})
}

// FlushSearch applies pending search text now and fetches page 1.
func (r *Remote) FlushSearch() {
	r.change(func(q *types.PaperQuery) { q.Q = strings.TrimSpace(r.pending) })
}

// SetYearRange bounds the publication year. 0 leaves a side open.
func (r *Remote) SetYearRange(from, to int) {
	r.change(func(q *types.PaperQuery) { q.YearFrom, q.YearTo = max(from, 0), max(to, 0) })
}

// SetMethodologies replaces the methodology filter.
func (r *Remote) SetMethodologies(ms []types.MethodologyType) {
	r.change(func(q *types.PaperQuery) { q.MethodologyTypes = slices.Clone(ms) })
}

// SetKeywords replaces the keyword filter.
func (r *Remote) SetKeywords(ks []string) {
	r.change(func(q *types.PaperQuery) { q.Keywords = mergeKeywords(ks) })
}

// SetAuthors replaces the author filter.
func (r *Remote) SetAuthors(as []string) {
	r.change(func(q *types.PaperQuery) { q.Authors = mergeKeywords(as) })
}

// SetMinCitations sets the citation threshold. 0 clears it.
func (r *Remote) SetMinCitations(n int) {
	r.change(func(q *types.PaperQuery) { q.MinCitations = max(n, 0) })
}

// SetJournal filters by journal name.
func (r *Remote) SetJournal(j string) {
	r.change(func(q *types.PaperQuery) { q.Journal = strings.TrimSpace(j) })
}

// SetSort sets the server ordering.
func (r *Remote) SetSort(s string) {
	r.change(func(q *types.PaperQuery) { q.Sort = s })
}

// ApplyOptions applies a filter panel selection in one request.
func (r *Remote) ApplyOptions(sel Selection) {
	r.change(func(q *types.PaperQuery) {
		q.Keywords = mergeKeywords(sel.Keywords, sel.Regions)
		q.MethodologyTypes = slices.Clone(sel.MethodologyTypes)
		q.YearFrom, q.YearTo = max(sel.YearFrom, 0), max(sel.YearTo, 0)
		q.MinCitations = max(sel.MinCitations, 0)
	})
}

// Reset clears every filter and the search text.
func (r *Remote) Reset() {
	r.change(func(q *types.PaperQuery) {
		r.pending = ""
		*q = types.PaperQuery{PageSize: q.PageSize}
	})
}

// Refresh refetches the current page with the current query.
func (r *Remote) Refresh() {
	r.mu.Lock()
	page := r.state.Page
	r.mu.Unlock()
	r.SetPage(page)
}

// SetPage fetches page p (at least 1) with the current query.
func (r *Remote) SetPage(p int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchLocked(max(p, 1))
}

// change edits the query under the lock and fetches page 1. Any pending
// debounced search is folded in or discarded by fn.
func (r *Remote) change(fn func(q *types.PaperQuery)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changeLocked(fn)
}

func (r *Remote) changeLocked(fn func(q *types.PaperQuery)) {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.searchGen++
	fn(&r.query)
	r.fetchLocked(1)
}

// fetchLocked starts a fetch that supersedes any in flight. r.mu is held.
func (r *Remote) fetchLocked(page int) {
	if r.closed {
		return
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.seq++
	seq := r.seq
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	q := r.query
	q.Keywords = slices.Clone(q.Keywords)
	q.Authors = slices.Clone(q.Authors)
	q.MethodologyTypes = slices.Clone(q.MethodologyTypes)
	r.state.Query = q
	r.state.Page = page
	r.state.Loading = true
	if r.idle == nil {
		r.idle = make(chan struct{})
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		res, err := r.fetcher.FetchPapers(ctx, q, page)
		r.apply(seq, page, res, err)
	}()
}

func (r *Remote) apply(seq uint64, page int, res types.PaperPage, err error) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	if seq != r.seq || r.closed {
		r.mu.Unlock()
		return
	}
	r.cancel = nil
	r.state.Loading = false
	r.markIdleLocked()
	if err != nil {
		r.log.Warn("fetch papers failed", zap.Int("page", page), zap.Error(err))
		r.state.Err = err
	} else {
		r.state.Err = nil
		r.state.Papers = dedupeByID(res.Results)
		r.state.Count = res.Count
		r.state.TotalPages = grid.TotalPages(res.Count, r.query.PageSize)
	}
	st := r.state
	st.Papers = slices.Clone(st.Papers)
	notify := r.onResult != nil
	r.notifying = notify
	r.mu.Unlock()

	if notify {
		r.onResult(st)
		r.mu.Lock()
		r.notifying = false
		r.mu.Unlock()
	}
}

// Close stops the debouncer, cancels the fetch in flight, and waits for
// outstanding fetches to return. Called from OnResult it does not wait.
func (r *Remote) Close() {
	r.mu.Lock()
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.markIdleLocked()
	wait := !r.notifying
	r.mu.Unlock()
	if wait {
		r.wg.Wait()
	}
}

func (r *Remote) markIdleLocked() {
	if r.idle != nil {
		close(r.idle)
		r.idle = nil
	}
}

// Wait blocks until the latest fetch has been applied, or the controller
// is closed, and returns the state. It returns at once when nothing is in
// flight. A pending debounced search is not waited for.
func (r *Remote) Wait(ctx context.Context) (RemoteState, error) {
	r.mu.Lock()
	idle := r.idle
	r.mu.Unlock()
	if idle != nil {
		select {
		case <-idle:
		case <-ctx.Done():
			return RemoteState{}, ctx.Err()
		}
	}
	return r.State(), nil
}

// mergeKeywords concatenates keyword lists, dropping blanks and repeats
// that differ only in case.
func mergeKeywords(lists ...[]string) []string {
	var out []string
	for _, list := range lists {
		for _, k := range list {
			k = strings.TrimSpace(k)
			if k == "" || slices.ContainsFunc(out, func(s string) bool { return strings.EqualFold(s, k) }) {
				continue
			}
			out = append(out, k)
		}
	}
	return out
}

// dedupeByID keeps the first paper for each id. Papers without an id are
// kept.
func dedupeByID(papers []types.ResearchPaper) []types.ResearchPaper {
	seen := make(map[string]struct{}, len(papers))
	out := make([]types.ResearchPaper, 0, len(papers))
	for _, p := range papers {
		if p.ID != "" {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
		}
		out = append(out, p)
	}
	return out
}
