package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	twitterAPIBase = "https://api.twitter.com/2"

	// maxPostsPerAccount caps what a single store page shows.
	maxPostsPerAccount = 2
)

// Client talks to the social APIs. It honors the Fetcher contract: failures
// are logged and collapse to an empty post list, so a broken account or a
// rate limit never surfaces to callers.
type Client struct {
	bearerToken string
	httpClient  *http.Client
	logger      *zap.SugaredLogger
}

func NewClient(bearerToken string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	return &Client{
		bearerToken: bearerToken,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// FetchTweets returns the newest original tweets for an account, @-prefix
// optional. Retweets and replies are excluded.
func (c *Client) FetchTweets(ctx context.Context, account string) []Post {
	username := strings.TrimPrefix(account, "@")

	userID, err := c.lookupUserID(ctx, username)
	if err != nil {
		c.logger.Warnw("twitter user lookup failed", "account", username, "error", err)
		return []Post{}
	}

	tweets, err := c.userTimeline(ctx, userID)
	if err != nil {
		c.logger.Warnw("twitter timeline fetch failed", "account", username, "error", err)
		return []Post{}
	}

	if len(tweets) > maxPostsPerAccount {
		tweets = tweets[:maxPostsPerAccount]
	}

	posts := make([]Post, 0, len(tweets))
	for _, t := range tweets {
		posts = append(posts, Post{
			ID:        t.ID,
			Author:    "@" + username,
			Text:      t.Text,
			CreatedAt: t.CreatedAt,
			Likes:     t.PublicMetrics.LikeCount,
			Retweets:  t.PublicMetrics.RetweetCount,
		})
	}
	return posts
}

type tweet struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	CreatedAt     string `json:"created_at"`
	PublicMetrics struct {
		LikeCount    int `json:"like_count"`
		RetweetCount int `json:"retweet_count"`
	} `json:"public_metrics"`
}

func (c *Client) lookupUserID(ctx context.Context, username string) (string, error) {
	endpoint := fmt.Sprintf("%s/users/by/username/%s", twitterAPIBase, url.PathEscape(username))

	raw, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	var res struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", fmt.Errorf("user lookup decode: %w", err)
	}
	if res.Data.ID == "" {
		return "", fmt.Errorf("user @%s not found", username)
	}
	return res.Data.ID, nil
}

func (c *Client) userTimeline(ctx context.Context, userID string) ([]tweet, error) {
	params := url.Values{}
	params.Set("max_results", "5")
	params.Set("tweet.fields", "created_at,public_metrics")
	params.Set("exclude", "retweets,replies")

	endpoint := fmt.Sprintf("%s/users/%s/tweets?%s", twitterAPIBase, url.PathEscape(userID), params.Encode())

	raw, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var res struct {
		Data []tweet `json:"data"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("timeline decode: %w", err)
	}
	return res.Data, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http=%d body=%s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
