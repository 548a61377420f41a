package domain

import (
	"context"
	"time"
)

// Like is the relation between a post and a user who liked it.
// At most one exists per (PostID, UserID).
type Like struct {
	PostID    string
	UserID    string
	CreatedAt time.Time
}

// LikeResult is the outcome of a toggle
type LikeResult int8

const (
	LikeRemoved LikeResult = iota
	LikeAdded
)

func (r LikeResult) String() string {
	switch r {
	case LikeAdded:
		return "ADDED"
	case LikeRemoved:
		return "REMOVED"
	default:
		return "UNKNOWN"
	}
}

// ParseLikeResult is the inverse of String
func ParseLikeResult(s string) (LikeResult, error) {
	switch s {
	case "ADDED":
		return LikeAdded, nil
	case "REMOVED":
		return LikeRemoved, nil
	default:
		return 0, ErrBadParamInput
	}
}

// LikeRepository is the authoritative like store.
type LikeRepository interface {
	// Insert is the atomic insert-or-detect-existing primitive.
	// inserted is false when the (post, user) pair already exists; that is not an error.
	// Returns ErrNotFound when the post does not exist.
	Insert(ctx context.Context, l Like) (inserted bool, err error)

	// Delete removes the pair and reports whether a row was removed
	Delete(ctx context.Context, l Like) (bool, error)

	Exists(ctx context.Context, l Like) (bool, error)
	Count(ctx context.Context, postID string) (int64, error)

	// CountByPosts returns counts for every given post, zero included
	CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error)

	// LikedPostIDs returns the subset of postIDs the user has liked
	LikedPostIDs(ctx context.Context, userID string, postIDs []string) ([]string, error)
}

// LikeCache holds like counts. It is never the source of truth.
type LikeCache interface {
	// GetLikeCount returns ErrCacheMiss when the count is not cached
	GetLikeCount(ctx context.Context, postID string) (int64, error)
	// MGetLikeCounts returns only the cached entries
	MGetLikeCounts(ctx context.Context, postIDs []string) (map[string]int64, error)
	SetLikeCount(ctx context.Context, postID string, likes int64) error
	MSetLikeCounts(ctx context.Context, counts map[string]int64) error
	// AdjustLikeCount applies delta to a cached count, if any, flooring at zero
	AdjustLikeCount(ctx context.Context, postID string, delta int64) error
	DeleteLikeCount(ctx context.Context, postID string) error
}

// LikeLedger maintains the set of like relations.
type LikeLedger interface {
	// IsLiked is false for an anonymous principal
	IsLiked(ctx context.Context, postID string, p Principal) (bool, error)
	Count(ctx context.Context, postID string) (int64, error)
	// Toggle removes the like if present, otherwise adds it.
	// Returns ErrUnauthenticated for an anonymous principal.
	Toggle(ctx context.Context, p Principal, postID string) (LikeResult, error)

	Counts(ctx context.Context, postIDs []string) (map[string]int64, error)
	LikedSet(ctx context.Context, p Principal, postIDs []string) (map[string]bool, error)
}
