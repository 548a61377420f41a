package domain

import (
	"context"
	"time"
)

// Comment domain model. Immutable once created except for deletion.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentUsecase 业务逻辑接口
type CommentUsecase interface {
	// ListForPost returns every comment of the post, newest first
	ListForPost(ctx context.Context, postID string) ([]Comment, error)
	Add(ctx context.Context, p Principal, postID, content string) (Comment, error)
	// Remove deletes the comment if p authored it. Missing or foreign comments yield false.
	Remove(ctx context.Context, p Principal, commentID string) (bool, error)
}

// CommentRepository 数据存取接口
type CommentRepository interface {
	// Store returns ErrNotFound when the post does not exist
	Store(ctx context.Context, c *Comment) error
	FetchByPost(ctx context.Context, postID string) ([]Comment, error)
	// GetByID returns ErrNotFound if the comment doesn't exist
	GetByID(ctx context.Context, id string) (Comment, error)
	// DeleteByAuthor removes the comment only when authorID matches
	DeleteByAuthor(ctx context.Context, id, authorID string) (bool, error)
}
