package feed

import (
	"context"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/repository"
)

// Service pages over posts by position. It knows nothing about likes.
type Service struct {
	postRepo domain.PostRepository
}

var _ domain.FeedPager = (*Service)(nil)

func NewService(p domain.PostRepository) *Service {
	return &Service{postRepo: p}
}

// FetchPage returns rows [offset, offset+pageSize) ordered by created_at DESC, id DESC.
//
// HasMore is a heuristic: a full page means more may exist. When the total is
// an exact multiple of pageSize the last full page still reports HasMore and
// the following fetch comes back empty.
//
// Paging is offset based, so posts inserted between two fetches shift rows
// across page boundaries and a later page can repeat or skip a post.
func (s *Service) FetchPage(ctx context.Context, offset, pageSize int) (domain.FeedPage, error) {
	if offset < 0 {
		return domain.FeedPage{}, domain.ErrBadParamInput
	}
	repository.PageVerify(&pageSize)

	posts, err := s.postRepo.FetchPage(ctx, offset, pageSize)
	if err != nil {
		return domain.FeedPage{}, domain.StoreError(err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}

	return domain.FeedPage{
		Posts:      posts,
		Offset:     offset,
		NextOffset: offset + len(posts),
		HasMore:    len(posts) == pageSize,
	}, nil
}
