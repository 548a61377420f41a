package feed_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain/mocks"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/repository"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/usecase/feed"
)

// sliceRepo serves pages out of an in-memory list already in feed order
type sliceRepo struct {
	mocks.PostRepository
	posts []domain.Post
}

func (r *sliceRepo) FetchPage(_ context.Context, offset, limit int) ([]domain.Post, error) {
	if offset >= len(r.posts) {
		return []domain.Post{}, nil
	}
	end := min(offset+limit, len(r.posts))
	return r.posts[offset:end], nil
}

func makePosts(n int) []domain.Post {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	res := make([]domain.Post, n)
	for i := range res {
		res[i] = domain.Post{ID: fmt.Sprintf("p%03d", n-i), CreatedAt: base.Add(time.Duration(n-i) * time.Minute)}
	}
	return res
}

func TestFetchPagePartialLastPage(t *testing.T) {
	const size = 5
	svc := feed.NewService(&sliceRepo{posts: makePosts(2*size + 1)})
	ctx := context.Background()

	page, err := svc.FetchPage(ctx, 0, size)
	require.NoError(t, err)
	assert.Len(t, page.Posts, size)
	assert.True(t, page.HasMore)
	assert.Equal(t, size, page.NextOffset)

	page, err = svc.FetchPage(ctx, page.NextOffset, size)
	require.NoError(t, err)
	assert.Len(t, page.Posts, size)
	assert.True(t, page.HasMore)

	page, err = svc.FetchPage(ctx, page.NextOffset, size)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 1)
	assert.False(t, page.HasMore)
	assert.Equal(t, 2*size+1, page.NextOffset)
}

func TestFetchPageExactMultiple(t *testing.T) {
	const size = 5
	svc := feed.NewService(&sliceRepo{posts: makePosts(2 * size)})
	ctx := context.Background()

	page, err := svc.FetchPage(ctx, size, size)
	require.NoError(t, err)
	assert.True(t, page.HasMore)

	page, err = svc.FetchPage(ctx, page.NextOffset, size)
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.NotNil(t, page.Posts)
	assert.False(t, page.HasMore)
}

func TestFetchPageBounds(t *testing.T) {
	repo := new(mocks.PostRepository)
	svc := feed.NewService(repo)

	_, err := svc.FetchPage(context.Background(), -1, 5)
	assert.ErrorIs(t, err, domain.ErrBadParamInput)

	repo.On("FetchPage", mock.Anything, 0, repository.DefaultPageSize).Return([]domain.Post{}, nil).Once()
	repo.On("FetchPage", mock.Anything, 0, repository.PageMaxSize).Return([]domain.Post{}, nil).Once()
	_, err = svc.FetchPage(context.Background(), 0, 0)
	require.NoError(t, err)
	_, err = svc.FetchPage(context.Background(), 0, 10_000)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestFetchPageStoreFailure(t *testing.T) {
	repo := new(mocks.PostRepository)
	repo.On("FetchPage", mock.Anything, 0, 5).Return(nil, fmt.Errorf("dial tcp: refused")).Once()

	_, err := feed.NewService(repo).FetchPage(context.Background(), 0, 5)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
