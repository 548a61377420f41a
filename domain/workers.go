package domain

import "context"

// LikeCountSyncer rewrites cached like counts from the store in the background
type LikeCountSyncer interface {
	Start(ctx context.Context)

	// Send marks the post's cached count as possibly stale
	Send(postID string)
}
