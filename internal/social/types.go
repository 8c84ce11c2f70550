package social

import "context"

// Post is one social-media post surfaced on a store page. Twitter posts fill
// Retweets; Instagram posts fill MediaURL.
type Post struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	MediaURL  string `json:"media_url,omitempty"`
	CreatedAt string `json:"created_at"`
	Likes     int    `json:"likes"`
	Retweets  int    `json:"retweets,omitempty"`
}

// Fetcher is the contract the rest of the system relies on: both calls
// return a bounded list of posts, and an empty list on any failure. They
// never return an error.
type Fetcher interface {
	FetchTweets(ctx context.Context, account string) []Post
	FetchInstagramPosts(ctx context.Context, account string) []Post
}
