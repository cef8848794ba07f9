// Package page wires the feed loader, the detail card and the moderation
// calls into the single controller behind the gallery page.
package page

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	gallery "github.com/facttic/go-gallery"
	"github.com/facttic/go-gallery/card"
	"github.com/facttic/go-gallery/feed"
)

// ErrNotAuthenticated is returned by moderation actions while the auth flag is off.
var ErrNotAuthenticated = errors.New("page: moderation requires an authenticated session")

// API is the backend surface the page uses. *gallery.Client satisfies it.
type API interface {
	feed.Fetcher
	GetUsersCount(ctx context.Context) (int, error)
	DeleteTweet(ctx context.Context, tweetID string) error
	BanUser(ctx context.Context, userID string) (*gallery.BanResult, error)
}

// CardView is the open detail card, positioned inside the container.
type CardView struct {
	Post     gallery.Post
	Position card.Point

	// ShowActions enables the delete/ban buttons.
	ShowActions bool
}

// View is an immutable snapshot handed to the renderer.
type View struct {
	Posts         []gallery.Post
	Loading       bool
	Total         int
	HasMore       bool
	UsersCount    int
	Authenticated bool
	Card          *CardView
	Err           error
}

// Controller owns all page state. Renderers read it through Snapshot and
// change it only through the action methods.
type Controller struct {
	api      API
	loader   *feed.Loader
	selector *card.Selector

	mu            sync.Mutex
	authenticated bool
	usersCount    int
	closed        bool
	onChange      func()
}

// New creates a Controller. opts configure the card selector.
func New(api API, paging gallery.Constants, opts ...card.Option) *Controller {
	c := &Controller{
		api:      api,
		loader:   feed.New(api, paging),
		selector: card.NewSelector(opts...),
	}
	c.loader.OnChange(func(feed.State) { c.changed() })
	c.selector.OnChange(func(card.Selection, bool) { c.changed() })
	return c
}

// OnChange registers fn to run after any state change, e.g. to schedule a redraw.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Mount issues the first feed page and the users-count read. The two run
// concurrently and independently; a failed count leaves the counter at 0.
// The returned error is the feed's.
func (c *Controller) Mount(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		_, err := c.loader.Start(ctx)
		return err
	})
	g.Go(func() error {
		c.refreshUsersCount(ctx)
		return nil
	})
	return g.Wait()
}

func (c *Controller) refreshUsersCount(ctx context.Context) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	n, err := c.api.GetUsersCount(ctx)
	if err != nil {
		slog.Debug("users count unavailable", slog.Any("error", err))
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.usersCount = n
	c.mu.Unlock()
	c.changed()
}

// OnScroll loads the next page when the viewport reached the end of the feed.
func (c *Controller) OnScroll(ctx context.Context, vp feed.Viewport) (bool, error) {
	return c.loader.OnScrollNearEnd(ctx, vp)
}

// Click opens the card for post at once.
func (c *Controller) Click(post gallery.Post, anchor card.Rect) { c.selector.Click(post, anchor) }

// Enter arms the hover delay for post.
func (c *Controller) Enter(post gallery.Post, anchor card.Rect) { c.selector.Enter(post, anchor) }

// Leave cancels a pending hover.
func (c *Controller) Leave() { c.selector.Leave() }

// CloseCard closes the card (close button or overlay dismiss).
func (c *Controller) CloseCard() { c.selector.Close() }

// SetAuthenticated mirrors the auth flag carried by navigation state.
func (c *Controller) SetAuthenticated(v bool) {
	c.mu.Lock()
	changed := c.authenticated != v
	c.authenticated = v
	c.mu.Unlock()
	if changed {
		c.changed()
	}
}

func (c *Controller) isAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// DeletePost deletes a post server-side. The post stays in the local feed
// until it is fetched again.
func (c *Controller) DeletePost(ctx context.Context, postID string) error {
	if !c.isAuthenticated() {
		return ErrNotAuthenticated
	}
	if err := c.api.DeleteTweet(ctx, postID); err != nil {
		slog.Warn("delete failed", slog.String("tweet_id", postID), slog.Any("error", err))
		return err
	}
	return nil
}

// BanAuthor bans the author of a post. The local feed is left as is.
func (c *Controller) BanAuthor(ctx context.Context, post gallery.Post) (*gallery.BanResult, error) {
	if !c.isAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	res, err := c.api.BanUser(ctx, post.AuthorID)
	if err != nil {
		slog.Warn("ban failed", slog.String("user_id", post.AuthorID), slog.Any("error", err))
		return nil, err
	}
	return res, nil
}

// Snapshot returns the page state; container is the current bounding box of
// the gallery container, used to place the card.
func (c *Controller) Snapshot(container card.Rect) View {
	st := c.loader.State()

	c.mu.Lock()
	v := View{
		Posts:         st.Items,
		Loading:       st.Loading,
		Total:         st.Total,
		HasMore:       st.HasMore(),
		UsersCount:    c.usersCount,
		Authenticated: c.authenticated,
		Err:           st.Err,
	}
	c.mu.Unlock()

	if sel, ok := c.selector.Current(); ok {
		v.Card = &CardView{
			Post:        sel.Post,
			Position:    card.Position(container, sel.Anchor),
			ShowActions: v.Authenticated,
		}
	}
	return v
}

// Close tears the page down: the hover timer is cancelled and late network
// responses are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.onChange = nil
	c.mu.Unlock()
	c.loader.Close()
	c.selector.Stop()
}

func (c *Controller) changed() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
