package gallery

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// rawPost mirrors the backend tweet document. created_at arrives either in
// Twitter's legacy layout or RFC 3339.
type rawPost struct {
	TweetID   string `json:"tweet_id_str"`
	CreatedAt string `json:"created_at"`
	FullText  string `json:"full_text"`
	Text      string `json:"text"`
	User      struct {
		ID              string `json:"id_str"`
		ScreenName      string `json:"screen_name"`
		Name            string `json:"name"`
		ProfileImageURL string `json:"profile_image_url_https"`
	} `json:"user"`
	UserID   string `json:"user_id_str"`
	Entities struct {
		Media []struct {
			MediaURL string `json:"media_url_https"`
		} `json:"media"`
	} `json:"entities"`
	MediaURL string `json:"media_url_https"`
}

// parseTweetsPage parses the tweets endpoint response.
func parseTweetsPage(body []byte) (*Page, error) {
	var raw struct {
		List  []rawPost `json:"list"`
		Total int       `json:"total"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal tweets page: %w", err)
	}

	page := &Page{List: make([]Post, 0, len(raw.List)), Total: raw.Total}
	for _, rp := range raw.List {
		if rp.TweetID == "" {
			slog.Debug("skipping tweet without id")
			continue
		}
		page.List = append(page.List, convertPost(rp))
	}
	return page, nil
}

func convertPost(rp rawPost) Post {
	p := Post{
		ID:              rp.TweetID,
		AuthorID:        rp.User.ID,
		AuthorHandle:    rp.User.ScreenName,
		AuthorName:      rp.User.Name,
		ProfileImageURL: rp.User.ProfileImageURL,
		Text:            rp.FullText,
		MediaURL:        rp.MediaURL,
		CreatedAt:       parseCreatedAt(rp.CreatedAt),
	}
	if p.AuthorID == "" {
		p.AuthorID = rp.UserID
	}
	if p.Text == "" {
		p.Text = rp.Text
	}
	if p.MediaURL == "" && len(rp.Entities.Media) > 0 {
		p.MediaURL = rp.Entities.Media[0].MediaURL
	}
	return p
}

// parseCreatedAt accepts Twitter's "Mon Jan 02 15:04:05 +0000 2006" layout and RFC 3339.
func parseCreatedAt(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RubyDate, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

// parseUsersCount parses the users-count response.
func parseUsersCount(body []byte) (int, error) {
	var raw struct {
		Count *int `json:"count"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, fmt.Errorf("unmarshal users count: %w", err)
	}
	if raw.Count == nil {
		return 0, errors.New("users count: missing count")
	}
	return *raw.Count, nil
}

// parseBanResult parses the ban response.
func parseBanResult(body []byte) (*BanResult, error) {
	var raw struct {
		Inserted struct {
			UserID string `json:"user_id_str"`
		} `json:"inserted"`
		RemovedTweetsCount int `json:"removedTweetsCount"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal ban result: %w", err)
	}
	return &BanResult{UserID: raw.Inserted.UserID, RemovedTweetsCount: raw.RemovedTweetsCount}, nil
}

// parseLoginResponse extracts the session token.
func parseLoginResponse(body []byte) (string, error) {
	var raw struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("unmarshal login response: %w", err)
	}
	token := strings.TrimSpace(raw.Token)
	if token == "" {
		token = strings.TrimSpace(raw.AccessToken)
	}
	if token == "" {
		return "", errors.New("login response has no token")
	}
	return token, nil
}
