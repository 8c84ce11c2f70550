package social

import (
	"context"
	"time"
)

// FetchInstagramPosts returns recent posts for an account. The Instagram
// Graph API requires an approved business app; until that exists this serves
// a bounded set of demo posts so store pages render the same either way.
func (c *Client) FetchInstagramPosts(ctx context.Context, account string) []Post {
	now := time.Now()

	return []Post{
		{
			ID:        "ig_1",
			Author:    account,
			Text:      "📸 本日の一押し！特製餃子プレート✨ #宇都宮餃子 #グルメ",
			MediaURL:  "/images/demo_gyoza.jpg",
			CreatedAt: now.Add(-2 * time.Hour).Format(time.RFC3339),
			Likes:     234,
		},
		{
			ID:        "ig_2",
			Author:    account,
			Text:      "🎉 おかげさまで創業60周年！感謝の気持ちを込めて特別メニューをご用意しました",
			MediaURL:  "/images/demo_celebration.jpg",
			CreatedAt: now.Add(-48 * time.Hour).Format(time.RFC3339),
			Likes:     512,
		},
	}
}
