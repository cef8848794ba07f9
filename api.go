package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// GetTweets fetches one page of the gallery feed.
func (c *Client) GetTweets(ctx context.Context, page, perPage int) (*Page, error) {
	ep, url, err := c.endpointURL("Tweets")
	if err != nil {
		return nil, err
	}
	body, _, err := c.do(ctx, request{
		endpoint: "Tweets",
		method:   ep.Method,
		url:      url + "?" + tweetsQuery(page, perPage),
		ok:       []int{200},
		retry:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("Tweets: %w", err)
	}
	return parseTweetsPage(body)
}

// GetUsersCount reads the participants counter. It is a one-shot read: any
// non-200 status is returned as an *APIError without retrying.
func (c *Client) GetUsersCount(ctx context.Context) (int, error) {
	ep, url, err := c.endpointURL("UsersCount")
	if err != nil {
		return 0, err
	}
	body, _, err := c.do(ctx, request{
		endpoint: "UsersCount",
		method:   ep.Method,
		url:      url,
		ok:       []int{200},
	})
	if err != nil {
		return 0, fmt.Errorf("UsersCount: %w", err)
	}
	return parseUsersCount(body)
}

// DeleteTweet removes a tweet server-side. The local feed is not touched.
func (c *Client) DeleteTweet(ctx context.Context, tweetID string) error {
	ep, url, err := c.endpointURL("DeleteTweet", tweetID)
	if err != nil {
		return err
	}
	if _, err := c.moderate(ctx, "DeleteTweet", ep, url, nil, 200); err != nil {
		return fmt.Errorf("DeleteTweet: %w", err)
	}
	slog.Info("deleted tweet", slog.String("tweet_id", tweetID))
	return nil
}

// BanUser bans an author by platform user id; the backend also removes the
// author's tweets and reports how many.
func (c *Client) BanUser(ctx context.Context, userID string) (*BanResult, error) {
	if userID == "" {
		return nil, errors.New("BanUser: empty user id")
	}
	ep, url, err := c.endpointURL("BanUser")
	if err != nil {
		return nil, err
	}
	payload, _ := json.Marshal(map[string]string{"user_id_str": userID})
	body, err := c.moderate(ctx, "BanUser", ep, url, payload, 201)
	if err != nil {
		return nil, fmt.Errorf("BanUser: %w", err)
	}
	res, err := parseBanResult(body)
	if err != nil {
		return nil, err
	}
	slog.Info("banned user",
		slog.String("user_id", res.UserID),
		slog.Int("removed_tweets", res.RemovedTweetsCount))
	return res, nil
}

// moderate runs an authenticated mutation once, re-logging in a single time
// if the backend rejects the session.
func (c *Client) moderate(ctx context.Context, endpoint string, ep Endpoint, url string, payload []byte, ok int) ([]byte, error) {
	m, token, err := c.moderatorToken(ctx)
	if err != nil {
		return nil, err
	}

	r := request{endpoint: endpoint, method: ep.Method, url: url, payload: payload, token: token, ok: []int{ok}}
	body, _, err := c.do(ctx, r)
	if err == nil || !errors.Is(err, ErrUnauthorized) {
		return body, err
	}

	slog.Warn("moderator session rejected, attempting relogin", slog.String("user", m.Username))
	if reErr := c.relogin(ctx, m); reErr != nil {
		return nil, reErr
	}
	r.token = m.Token()
	body, _, err = c.do(ctx, r)
	return body, err
}
