package card

import (
	"sync"
	"time"

	gallery "github.com/facttic/go-gallery"
)

// DefaultHoverDelay is how long the pointer must rest on an item before its
// card opens.
const DefaultHoverDelay = 800 * time.Millisecond

// Selection is the post whose card is open and the item rect it anchors to.
type Selection struct {
	Post   gallery.Post
	Anchor Rect
}

// Timer is a cancelable pending callback. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. The default is time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

// Option configures a Selector.
type Option func(*Selector)

// WithHoverDelay overrides DefaultHoverDelay.
func WithHoverDelay(d time.Duration) Option {
	return func(s *Selector) { s.hoverDelay = d }
}

// WithAfterFunc replaces the timer source, for tests.
func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Selector) { s.afterFunc = fn }
}

// Selector holds the single card selection slot and the hover-delay timer.
// At most one hover timer is live; starting a hover cancels the previous one.
type Selector struct {
	hoverDelay time.Duration
	afterFunc  AfterFunc

	mu       sync.Mutex
	current  *Selection
	pending  Timer
	gen      uint64 // bumped on every cancel; stale timer callbacks compare against it
	stopped  bool
	onChange func(Selection, bool)
}

// NewSelector creates an empty Selector.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		hoverDelay: DefaultHoverDelay,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// OnChange registers fn to run whenever the selection is set or cleared.
func (s *Selector) OnChange(fn func(sel Selection, ok bool)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Click opens the card for post immediately, cancelling a pending hover.
func (s *Selector) Click(post gallery.Post, anchor Rect) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.cancelLocked()
	s.current = &Selection{Post: post, Anchor: anchor}
	s.mu.Unlock()
	s.notify()
}

// Enter starts the hover delay for post. anchor is captured now and used
// when the timer fires, wherever the pointer is by then.
func (s *Selector) Enter(post gallery.Post, anchor Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.cancelLocked()
	gen := s.gen
	sel := Selection{Post: post, Anchor: anchor}
	s.pending = s.afterFunc(s.hoverDelay, func() { s.fire(gen, sel) })
}

// Leave cancels a pending hover. An open card stays open.
func (s *Selector) Leave() {
	s.mu.Lock()
	s.cancelLocked()
	s.mu.Unlock()
}

// Close clears the selection. Used for the close button and overlay dismiss.
func (s *Selector) Close() {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.mu.Unlock()
	if had {
		s.notify()
	}
}

// Current returns the open selection, if any.
func (s *Selector) Current() (Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Selection{}, false
	}
	return *s.current, true
}

// Pending reports whether a hover timer is armed.
func (s *Selector) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Stop cancels any pending hover and ignores all later events.
func (s *Selector) Stop() {
	s.mu.Lock()
	s.cancelLocked()
	s.stopped = true
	s.onChange = nil
	s.mu.Unlock()
}

func (s *Selector) fire(gen uint64, sel Selection) {
	s.mu.Lock()
	if s.stopped || gen != s.gen || s.pending == nil {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.current = &sel
	s.mu.Unlock()
	s.notify()
}

func (s *Selector) cancelLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.gen++
}

func (s *Selector) notify() {
	s.mu.Lock()
	fn := s.onChange
	var sel Selection
	ok := s.current != nil
	if ok {
		sel = *s.current
	}
	s.mu.Unlock()
	if fn != nil {
		fn(sel, ok)
	}
}
