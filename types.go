package gallery

import "time"

// Post is a single gallery tweet as served by the backend.
type Post struct {
	ID              string
	AuthorID        string
	AuthorHandle    string
	AuthorName      string
	ProfileImageURL string
	Text            string
	MediaURL        string
	CreatedAt       time.Time
}

// Page is one batch of posts returned by the tweets endpoint.
type Page struct {
	List  []Post
	Total int
}

// BanResult is the outcome of banning an author.
type BanResult struct {
	UserID             string
	RemovedTweetsCount int
}
