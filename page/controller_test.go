package page

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gallery "github.com/facttic/go-gallery"
	"github.com/facttic/go-gallery/card"
	"github.com/facttic/go-gallery/feed"
)

type fakeAPI struct {
	mu       sync.Mutex
	pages    []*gallery.Page
	pageErr  error
	count    int
	countErr error
	counted  int
	deleted  []string
	banned   []string
	modErr   error
	requests []int
}

func (f *fakeAPI) GetTweets(_ context.Context, page, _ int) (*gallery.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, page)
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	p := f.pages[0]
	if len(f.pages) > 1 {
		f.pages = f.pages[1:]
	}
	return p, nil
}

func (f *fakeAPI) GetUsersCount(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counted++
	return f.count, f.countErr
}

func (f *fakeAPI) DeleteTweet(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.modErr
}

func (f *fakeAPI) BanUser(_ context.Context, userID string) (*gallery.BanResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banned = append(f.banned, userID)
	if f.modErr != nil {
		return nil, f.modErr
	}
	return &gallery.BanResult{UserID: userID, RemovedTweetsCount: 2}, nil
}

var (
	paging    = gallery.Constants{InitialAmount: 3, PerPage: 2}
	post1     = gallery.Post{ID: "1", AuthorID: "u1"}
	post2     = gallery.Post{ID: "2", AuthorID: "u2"}
	post3     = gallery.Post{ID: "3", AuthorID: "u1"}
	container = card.Rect{Left: 100, Top: 50, Width: 360}
	atEnd     = feed.Viewport{ContentBottom: 500, WindowHeight: 900}
)

func TestMount(t *testing.T) {
	api := &fakeAPI{
		pages: []*gallery.Page{{List: []gallery.Post{post1, post2}, Total: 3}},
		count: 250,
	}
	c := New(api, paging)
	defer c.Close()

	require.NoError(t, c.Mount(context.Background()))
	v := c.Snapshot(container)
	assert.Equal(t, []gallery.Post{post1, post2}, v.Posts)
	assert.Equal(t, 3, v.Total)
	assert.True(t, v.HasMore)
	assert.Equal(t, 250, v.UsersCount)
	assert.False(t, v.Loading)
	assert.Nil(t, v.Card)
	assert.NoError(t, v.Err)
}

func TestMount_UsersCountFailureIgnored(t *testing.T) {
	api := &fakeAPI{
		pages:    []*gallery.Page{{List: []gallery.Post{post1}, Total: 1}},
		count:    99,
		countErr: &gallery.APIError{Endpoint: "UsersCount", Status: 500},
	}
	c := New(api, paging)

	require.NoError(t, c.Mount(context.Background()))
	v := c.Snapshot(container)
	assert.Zero(t, v.UsersCount)
	assert.Len(t, v.Posts, 1)
}

func TestMount_FeedFailureIsRetryable(t *testing.T) {
	boom := errors.New("network down")
	api := &fakeAPI{pageErr: boom, count: 5}
	c := New(api, paging)

	require.ErrorIs(t, c.Mount(context.Background()), boom)
	v := c.Snapshot(container)
	assert.False(t, v.Loading)
	require.ErrorIs(t, v.Err, boom)
	assert.Equal(t, 5, v.UsersCount)

	api.mu.Lock()
	api.pageErr = nil
	api.pages = []*gallery.Page{{List: []gallery.Post{post1}, Total: 1}}
	api.mu.Unlock()

	require.NoError(t, c.Mount(context.Background()))
	v = c.Snapshot(container)
	assert.NoError(t, v.Err)
	assert.Len(t, v.Posts, 1)
}

func TestOnScroll_LoadsNextPage(t *testing.T) {
	api := &fakeAPI{pages: []*gallery.Page{
		{List: []gallery.Post{post1, post2}, Total: 3},
		{List: []gallery.Post{post2, post3}, Total: 3},
	}}
	c := New(api, paging)
	require.NoError(t, c.Mount(context.Background()))

	issued, err := c.OnScroll(context.Background(), atEnd)
	require.NoError(t, err)
	assert.True(t, issued)

	v := c.Snapshot(container)
	assert.Equal(t, []gallery.Post{post1, post2, post3}, v.Posts)
	assert.False(t, v.HasMore)
	// round(2/2)+1
	assert.Equal(t, []int{1, 2}, api.requests)

	issued, err = c.OnScroll(context.Background(), atEnd)
	require.NoError(t, err)
	assert.False(t, issued)
}

func TestSnapshot_CardPositionAndActions(t *testing.T) {
	api := &fakeAPI{pages: []*gallery.Page{{List: []gallery.Post{post1}, Total: 1}}}
	c := New(api, paging)

	c.Click(post1, card.Rect{Left: 150, Top: 80, Width: 40})
	v := c.Snapshot(container)
	require.NotNil(t, v.Card)
	assert.Equal(t, post1, v.Card.Post)
	assert.Equal(t, card.Point{X: 15, Y: 0}, v.Card.Position)
	assert.False(t, v.Card.ShowActions)

	c.SetAuthenticated(true)
	v = c.Snapshot(container)
	assert.True(t, v.Authenticated)
	assert.True(t, v.Card.ShowActions)

	c.CloseCard()
	assert.Nil(t, c.Snapshot(container).Card)
}

func TestHover_OpensCardAfterDelay(t *testing.T) {
	api := &fakeAPI{}
	c := New(api, paging, card.WithHoverDelay(5*time.Millisecond))
	defer c.Close()

	c.Enter(post2, card.Rect{Left: 200, Top: 200, Width: 40})
	require.Eventually(t, func() bool {
		return c.Snapshot(container).Card != nil
	}, time.Second, 2*time.Millisecond)
	assert.Equal(t, post2, c.Snapshot(container).Card.Post)
}

func TestModeration_RequiresAuth(t *testing.T) {
	api := &fakeAPI{}
	c := New(api, paging)

	require.ErrorIs(t, c.DeletePost(context.Background(), "1"), ErrNotAuthenticated)
	_, err := c.BanAuthor(context.Background(), post1)
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, api.deleted)
	assert.Empty(t, api.banned)
}

func TestModeration_LeavesFeedUntouched(t *testing.T) {
	api := &fakeAPI{pages: []*gallery.Page{{List: []gallery.Post{post1, post2, post3}, Total: 3}}}
	c := New(api, paging)
	require.NoError(t, c.Mount(context.Background()))
	c.SetAuthenticated(true)

	require.NoError(t, c.DeletePost(context.Background(), "2"))
	res, err := c.BanAuthor(context.Background(), post3)
	require.NoError(t, err)
	assert.Equal(t, "u1", res.UserID)

	assert.Equal(t, []string{"2"}, api.deleted)
	assert.Equal(t, []string{"u1"}, api.banned)
	assert.Len(t, c.Snapshot(container).Posts, 3)
}

func TestModeration_ErrorsSurface(t *testing.T) {
	api := &fakeAPI{modErr: gallery.ErrUnauthorized}
	c := New(api, paging)
	c.SetAuthenticated(true)

	require.ErrorIs(t, c.DeletePost(context.Background(), "1"), gallery.ErrUnauthorized)
	_, err := c.BanAuthor(context.Background(), post1)
	require.ErrorIs(t, err, gallery.ErrUnauthorized)
}

func TestOnChange(t *testing.T) {
	api := &fakeAPI{pages: []*gallery.Page{{List: []gallery.Post{post1}, Total: 1}}}
	c := New(api, paging)
	var mu sync.Mutex
	changes := 0
	c.OnChange(func() {
		mu.Lock()
		changes++
		mu.Unlock()
	})

	require.NoError(t, c.Mount(context.Background()))
	c.Click(post1, card.Rect{})
	c.SetAuthenticated(true)
	c.SetAuthenticated(true)

	mu.Lock()
	defer mu.Unlock()
	// loading on, loading off, users count, click, auth flag once
	assert.Equal(t, 5, changes)
}

func TestClose(t *testing.T) {
	api := &fakeAPI{pages: []*gallery.Page{{List: []gallery.Post{post1}, Total: 5}}}
	c := New(api, paging)
	c.Close()

	_, err := c.OnScroll(context.Background(), atEnd)
	require.NoError(t, err)
	require.ErrorIs(t, c.Mount(context.Background()), feed.ErrClosed)

	c.Click(post1, card.Rect{})
	v := c.Snapshot(container)
	assert.Nil(t, v.Card)
	assert.Empty(t, v.Posts)
	assert.Zero(t, v.UsersCount)
	assert.Zero(t, api.counted, "no users count request after Close")
	assert.Empty(t, api.requests)
}
