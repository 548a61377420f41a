package response // 建议包名就叫 response

import (
	"time"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
)

// DateTimeFormat keeps sub-second precision so clients can round-trip timestamps
const DateTimeFormat = time.RFC3339Nano

type Post struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type FeedItem struct {
	Post
	LikesCount int64 `json:"likes_count"`
	LikedByMe  bool  `json:"liked_by_me"`
}

type PostPage struct {
	Posts      []Post `json:"posts"`
	Offset     int    `json:"offset"`
	NextOffset int    `json:"next_offset"`
	HasMore    bool   `json:"has_more"`
}

type FeedPage struct {
	Items      []FeedItem `json:"items"`
	Offset     int        `json:"offset"`
	NextOffset int        `json:"next_offset"`
	HasMore    bool       `json:"has_more"`
}

type Comment struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type LikeToggle struct {
	PostID string `json:"post_id"`
	Result string `json:"result"`
}

type LikeStatus struct {
	PostID string `json:"post_id"`
	Count  int64  `json:"count"`
	Liked  bool   `json:"liked"`
}

type LikeBatch struct {
	Counts map[string]int64 `json:"counts"`
	Liked  map[string]bool  `json:"liked"`
}

type Deleted struct {
	Deleted bool `json:"deleted"`
}

// NewPostFromDomain: Domain -> Response
func NewPostFromDomain(p *domain.Post) Post {
	return Post{
		ID:          p.ID,
		UserID:      p.OwnerID,
		Title:       p.Title,
		Description: p.Description,
		Category:    string(p.Category),
		CreatedAt:   p.CreatedAt.Format(DateTimeFormat),
		UpdatedAt:   p.UpdatedAt.Format(DateTimeFormat),
	}
}

func NewFeedItemFromDomain(item *domain.FeedItem) FeedItem {
	return FeedItem{
		Post:       NewPostFromDomain(&item.Post),
		LikesCount: item.LikeCount,
		LikedByMe:  item.LikedByMe,
	}
}

func NewPostPageFromDomain(page *domain.FeedPage) PostPage {
	posts := make([]Post, len(page.Posts))
	for i := range page.Posts {
		posts[i] = NewPostFromDomain(&page.Posts[i])
	}
	return PostPage{
		Posts:      posts,
		Offset:     page.Offset,
		NextOffset: page.NextOffset,
		HasMore:    page.HasMore,
	}
}

func NewCommentFromDomain(c *domain.Comment) Comment {
	return Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		UserID:    c.AuthorID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt.Format(DateTimeFormat),
	}
}

// ToDomain: Response -> Domain, used by the HTTP client
func (p *Post) ToDomain() (domain.Post, error) {
	createdAt, err := time.Parse(DateTimeFormat, p.CreatedAt)
	if err != nil {
		return domain.Post{}, err
	}
	updatedAt, err := time.Parse(DateTimeFormat, p.UpdatedAt)
	if err != nil {
		return domain.Post{}, err
	}
	return domain.Post{
		ID:          p.ID,
		OwnerID:     p.UserID,
		Title:       p.Title,
		Description: p.Description,
		Category:    domain.Category(p.Category),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func (c *Comment) ToDomain() (domain.Comment, error) {
	createdAt, err := time.Parse(DateTimeFormat, c.CreatedAt)
	if err != nil {
		return domain.Comment{}, err
	}
	return domain.Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.UserID,
		Content:   c.Content,
		CreatedAt: createdAt,
	}, nil
}
