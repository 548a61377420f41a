package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
)

type PostDBRepository struct {
	mock.Mock
}

func (m *PostDBRepository) FetchPage(ctx context.Context, offset, limit int) ([]domain.Post, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Post), args.Error(1)
}

func (m *PostDBRepository) GetByID(ctx context.Context, id string) (domain.Post, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Post), args.Error(1)
}

func (m *PostDBRepository) Store(ctx context.Context, p *domain.Post) error {
	return m.Called(ctx, p).Error(0)
}

func (m *PostDBRepository) Update(ctx context.Context, p *domain.Post) error {
	return m.Called(ctx, p).Error(0)
}

func (m *PostDBRepository) DeleteCascade(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PostDBRepository) FetchIDs(ctx context.Context, cursor string, limit int) ([]string, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type PostCache struct {
	mock.Mock
}

func (m *PostCache) GetHeadPage(ctx context.Context, limit int) ([]domain.Post, bool, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]domain.Post), args.Bool(1), args.Error(2)
}

func (m *PostCache) HeadVersion(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PostCache) SetHeadPage(ctx context.Context, limit int, posts []domain.Post, ttl time.Duration, version int64) (bool, error) {
	args := m.Called(ctx, limit, posts, ttl, version)
	return args.Bool(0), args.Error(1)
}

func (m *PostCache) InvalidateHeadPages(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type PostRepository struct {
	mock.Mock
}

func (m *PostRepository) FetchPage(ctx context.Context, offset, limit int) ([]domain.Post, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Post), args.Error(1)
}

func (m *PostRepository) GetByID(ctx context.Context, id string) (domain.Post, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Post), args.Error(1)
}

func (m *PostRepository) Store(ctx context.Context, p *domain.Post) error {
	return m.Called(ctx, p).Error(0)
}

func (m *PostRepository) Update(ctx context.Context, p *domain.Post) error {
	return m.Called(ctx, p).Error(0)
}

func (m *PostRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PostRepository) FetchIDs(ctx context.Context, cursor string, limit int) ([]string, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type PostUsecase struct {
	mock.Mock
}

func (m *PostUsecase) Create(ctx context.Context, p domain.Principal, in domain.PostInput) (domain.Post, error) {
	args := m.Called(ctx, p, in)
	return args.Get(0).(domain.Post), args.Error(1)
}

func (m *PostUsecase) Update(ctx context.Context, p domain.Principal, id string, patch domain.PostPatch) (domain.Post, error) {
	args := m.Called(ctx, p, id, patch)
	return args.Get(0).(domain.Post), args.Error(1)
}

func (m *PostUsecase) Delete(ctx context.Context, p domain.Principal, id string) (bool, error) {
	args := m.Called(ctx, p, id)
	return args.Bool(0), args.Error(1)
}

func (m *PostUsecase) GetByID(ctx context.Context, id string) (domain.Post, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Post), args.Error(1)
}

type FeedPager struct {
	mock.Mock
}

func (m *FeedPager) FetchPage(ctx context.Context, offset, pageSize int) (domain.FeedPage, error) {
	args := m.Called(ctx, offset, pageSize)
	return args.Get(0).(domain.FeedPage), args.Error(1)
}

type FeedEnricher struct {
	mock.Mock
}

func (m *FeedEnricher) Enrich(ctx context.Context, p domain.Principal, posts []domain.Post) ([]domain.FeedItem, error) {
	args := m.Called(ctx, p, posts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FeedItem), args.Error(1)
}
