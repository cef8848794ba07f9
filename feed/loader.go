// Package feed loads the gallery feed page by page and keeps it free of
// duplicate posts.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/samber/lo"

	gallery "github.com/facttic/go-gallery"
)

// ErrClosed is returned once the loader has been torn down.
var ErrClosed = errors.New("feed: loader closed")

// Fetcher fetches one page of posts. *gallery.Client satisfies it.
type Fetcher interface {
	GetTweets(ctx context.Context, page, perPage int) (*gallery.Page, error)
}

// Viewport is the scroll geometry sampled on a scroll event.
type Viewport struct {
	// ContentBottom is the bottom edge of the page content relative to the
	// top of the window.
	ContentBottom float64

	// WindowHeight is the height of the visible window.
	WindowHeight float64
}

// AtBottom reports whether the end of the content is inside the window.
func (v Viewport) AtBottom() bool {
	return v.ContentBottom <= v.WindowHeight
}

// State is a point-in-time copy of the loader state.
type State struct {
	Items    []gallery.Post
	NextPage int
	PageSize int
	Total    int
	Loading  bool
	Err      error
}

// HasMore reports whether the server holds posts not loaded yet.
func (s State) HasMore() bool {
	return s.Total > len(s.Items)
}

// Loader owns the feed state. At most one page request is in flight.
type Loader struct {
	fetcher Fetcher
	paging  gallery.Constants

	mu       sync.Mutex
	items    []gallery.Post
	nextPage int
	pageSize int
	total    int
	loading  bool
	closed   bool
	lastErr  error
	onChange func(State)
}

// New creates a Loader. Zero paging sizes fall back to gallery.DefaultConstants.
func New(f Fetcher, paging gallery.Constants) *Loader {
	if paging.InitialAmount <= 0 {
		paging.InitialAmount = gallery.DefaultConstants.InitialAmount
	}
	if paging.PerPage <= 0 {
		paging.PerPage = gallery.DefaultConstants.PerPage
	}
	return &Loader{
		fetcher:  f,
		paging:   paging,
		nextPage: 1,
		pageSize: paging.InitialAmount,
	}
}

// OnChange registers fn to run after every state change. fn runs outside the
// loader lock and may call State.
func (l *Loader) OnChange(fn func(State)) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// Start fetches the first page with the initial page size. It is a no-op
// while a fetch is in flight.
func (l *Loader) Start(ctx context.Context) (bool, error) {
	return l.FetchPage(ctx, 1, l.paging.InitialAmount)
}

// OnScrollNearEnd fetches the next page when the server has more posts, the
// end of the content is visible and nothing is loading. It is cheap enough
// to call on every scroll event.
func (l *Loader) OnScrollNearEnd(ctx context.Context, vp Viewport) (bool, error) {
	l.mu.Lock()
	should := !l.closed && !l.loading && l.total > len(l.items) && vp.AtBottom()
	loaded := len(l.items)
	l.mu.Unlock()
	if !should {
		return false, nil
	}
	return l.FetchPage(ctx, NextPageNumber(loaded, l.paging.PerPage), l.paging.PerPage)
}

// NextPageNumber returns the page requested after loaded posts when pages
// hold perPage posts: round(loaded/perPage)+1, halves rounding up.
func NextPageNumber(loaded, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	return int(math.Floor(float64(loaded)/float64(perPage)+0.5)) + 1
}

// FetchPage requests one page and merges it into the feed. It reports whether
// a request was issued; while another fetch is in flight it returns
// (false, nil) without touching the network. A failed fetch clears the
// loading flag and is kept as State.Err until the next success.
func (l *Loader) FetchPage(ctx context.Context, page, perPage int) (bool, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false, ErrClosed
	}
	if l.loading {
		l.mu.Unlock()
		return false, nil
	}
	l.loading = true
	l.pageSize = perPage
	l.mu.Unlock()
	l.notify()

	res, err := l.fetcher.GetTweets(ctx, page, perPage)

	l.mu.Lock()
	l.loading = false
	if l.closed {
		l.mu.Unlock()
		slog.Debug("dropping feed page delivered after close", slog.Int("page", page))
		return true, ErrClosed
	}
	if err != nil {
		l.lastErr = fmt.Errorf("fetch page %d: %w", page, err)
		err = l.lastErr
		l.mu.Unlock()
		slog.Warn("feed page failed", slog.Int("page", page), slog.Int("per_page", perPage), slog.Any("error", err))
		l.notify()
		return true, err
	}
	before := len(l.items)
	l.items = merge(l.items, res.List)
	l.total = res.Total
	l.nextPage = page + 1
	l.lastErr = nil
	added, total := len(l.items)-before, l.total
	l.mu.Unlock()

	slog.Debug("feed page merged",
		slog.Int("page", page),
		slog.Int("received", len(res.List)),
		slog.Int("added", added),
		slog.Int("total", total))
	l.notify()
	return true, nil
}

// State returns a copy of the current state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stateLocked()
}

// Close tears the loader down. In-flight responses are dropped on arrival
// and later fetches return ErrClosed.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	l.onChange = nil
	l.mu.Unlock()
}

func (l *Loader) stateLocked() State {
	return State{
		Items:    slices.Clone(l.items),
		NextPage: l.nextPage,
		PageSize: l.pageSize,
		Total:    l.total,
		Loading:  l.loading,
		Err:      l.lastErr,
	}
}

func (l *Loader) notify() {
	l.mu.Lock()
	fn := l.onChange
	st := l.stateLocked()
	l.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

// merge appends incoming posts whose ids are not in items yet, keeping the
// order of first receipt.
func merge(items, incoming []gallery.Post) []gallery.Post {
	all := append(slices.Clip(items), incoming...)
	return lo.UniqBy(all, func(p gallery.Post) string { return p.ID })
}
