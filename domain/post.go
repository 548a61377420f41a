package domain

import (
	"context"
	"strings"
	"time"
)

// Category is one of the fixed topics a post is filed under
type Category string

const (
	CategoryTravel Category = "Travel"
	CategoryWork   Category = "Work"
	CategoryHealth Category = "Health"
)

// Categories lists every accepted category in display order
var Categories = []Category{CategoryTravel, CategoryWork, CategoryHealth}

// Valid reports whether c is one of Categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Post is representing the Post data struct.
// Like count and the caller's membership are derived and live on FeedItem instead.
type Post struct {
	ID          string    // UUIDv7, assigned at creation
	OwnerID     string    // Principal that created the post
	Title       string    // Non-empty after trimming
	Description string    // Non-empty after trimming
	Category    Category  // Travel, Work or Health
	CreatedAt   time.Time // Assigned server-side
	UpdatedAt   time.Time // Last edit timestamp
}

// PostInput carries the user supplied fields of a new post
type PostInput struct {
	Title       string   `validate:"notblank,max=200"`
	Description string   `validate:"notblank,max=5000"`
	Category    Category `validate:"oneof=Travel Work Health"`
}

// PostPatch is a partial edit. Nil fields are left untouched.
type PostPatch struct {
	Title       *string   `validate:"omitnil,notblank,max=200"`
	Description *string   `validate:"omitnil,notblank,max=5000"`
	Category    *Category `validate:"omitnil,oneof=Travel Work Health"`
}

// Empty reports whether the patch changes nothing
func (p PostPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil
}

// Apply copies the set fields of patch onto the post, trimming text
func (p *Post) Apply(patch PostPatch) {
	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
}

// PostDBRepository defines the contract for post persistence in the relational store
type PostDBRepository interface {
	// FetchPage returns posts ordered by created_at DESC, id DESC,
	// skipping offset rows and returning at most limit rows.
	FetchPage(ctx context.Context, offset, limit int) ([]Post, error)

	// GetByID retrieves a single post by its ID.
	// Returns ErrNotFound if the post doesn't exist.
	GetByID(ctx context.Context, id string) (Post, error)

	// Store creates a new post. ID and timestamps must already be set.
	Store(ctx context.Context, p *Post) error

	// Update writes title, description, category and updated_at.
	// Returns ErrNotFound if the post doesn't exist.
	Update(ctx context.Context, p *Post) error

	// DeleteCascade removes the post with its likes and comments in one transaction.
	// Returns ErrNotFound if the post doesn't exist, in which case nothing is removed.
	DeleteCascade(ctx context.Context, id string) error

	// FetchIDs pages through post IDs in ascending order, starting after cursor
	FetchIDs(ctx context.Context, cursor string, limit int) ([]string, error)
}

// PostCache keeps the first feed page around between polls
type PostCache interface {
	// GetHeadPage returns the cached head page for the page size and whether it is logically expired.
	// Returns ErrCacheMiss when nothing is cached.
	GetHeadPage(ctx context.Context, limit int) ([]Post, bool, error)
	// HeadVersion returns the counter bumped by every invalidation.
	HeadVersion(ctx context.Context) (int64, error)
	// SetHeadPage stores the page only while the head version still equals version.
	// It reports false when an invalidation happened in between.
	SetHeadPage(ctx context.Context, limit int, posts []Post, ttl time.Duration, version int64) (bool, error)
	// InvalidateHeadPages drops the head page of every page size and bumps the head version
	InvalidateHeadPages(ctx context.Context) error
}

// PostRepository coordinates the store and the cache
type PostRepository interface {
	FetchPage(ctx context.Context, offset, limit int) ([]Post, error)
	GetByID(ctx context.Context, id string) (Post, error)
	Store(ctx context.Context, p *Post) error
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id string) error
	FetchIDs(ctx context.Context, cursor string, limit int) ([]string, error)
}

// PostUsecase is the owner-gated post lifecycle
type PostUsecase interface {
	Create(ctx context.Context, p Principal, in PostInput) (Post, error)
	Update(ctx context.Context, p Principal, id string, patch PostPatch) (Post, error)
	Delete(ctx context.Context, p Principal, id string) (bool, error)
	GetByID(ctx context.Context, id string) (Post, error)
}
