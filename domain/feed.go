package domain

import "context"

// CategoryAll is the filter value that matches every category
const CategoryAll = "All"

// FeedPage is a derived window over the post collection, most recent first.
// It is rebuilt on every fetch and does not own the posts.
type FeedPage struct {
	Posts      []Post
	Offset     int  // index of the first post in Posts
	NextOffset int  // earliest index not yet loaded
	HasMore    bool // true iff the page came back full
}

// FeedItem is a post joined with its like count and the caller's membership
type FeedItem struct {
	Post
	LikeCount int64
	LikedByMe bool
}

// PostFilter narrows what is displayed from an already loaded window
type PostFilter struct {
	Query    string
	Category string
}

// FeedPager produces offset-paginated views over posts.
// Offsets are positional, so posts inserted between two fetches can shift
// rows across page boundaries (skipped or repeated).
type FeedPager interface {
	FetchPage(ctx context.Context, offset, pageSize int) (FeedPage, error)
}

// GetPost lets filters work over posts and feed items alike
func (p Post) GetPost() Post { return p }

// FeedEnricher joins posts with like counts and the caller's membership
type FeedEnricher interface {
	Enrich(ctx context.Context, p Principal, posts []Post) ([]FeedItem, error)
}
