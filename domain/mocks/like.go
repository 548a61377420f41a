package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
)

type LikeRepository struct {
	mock.Mock
}

func (m *LikeRepository) Insert(ctx context.Context, l domain.Like) (bool, error) {
	args := m.Called(ctx, l)
	return args.Bool(0), args.Error(1)
}

func (m *LikeRepository) Delete(ctx context.Context, l domain.Like) (bool, error) {
	args := m.Called(ctx, l)
	return args.Bool(0), args.Error(1)
}

func (m *LikeRepository) Exists(ctx context.Context, l domain.Like) (bool, error) {
	args := m.Called(ctx, l)
	return args.Bool(0), args.Error(1)
}

func (m *LikeRepository) Count(ctx context.Context, postID string) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LikeRepository) CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	args := m.Called(ctx, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *LikeRepository) LikedPostIDs(ctx context.Context, userID string, postIDs []string) ([]string, error) {
	args := m.Called(ctx, userID, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type LikeCache struct {
	mock.Mock
}

func (m *LikeCache) GetLikeCount(ctx context.Context, postID string) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LikeCache) MGetLikeCounts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	args := m.Called(ctx, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *LikeCache) SetLikeCount(ctx context.Context, postID string, likes int64) error {
	return m.Called(ctx, postID, likes).Error(0)
}

func (m *LikeCache) MSetLikeCounts(ctx context.Context, counts map[string]int64) error {
	return m.Called(ctx, counts).Error(0)
}

func (m *LikeCache) AdjustLikeCount(ctx context.Context, postID string, delta int64) error {
	return m.Called(ctx, postID, delta).Error(0)
}

func (m *LikeCache) DeleteLikeCount(ctx context.Context, postID string) error {
	return m.Called(ctx, postID).Error(0)
}

type LikeLedger struct {
	mock.Mock
}

func (m *LikeLedger) IsLiked(ctx context.Context, postID string, p domain.Principal) (bool, error) {
	args := m.Called(ctx, postID, p)
	return args.Bool(0), args.Error(1)
}

func (m *LikeLedger) Count(ctx context.Context, postID string) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LikeLedger) Toggle(ctx context.Context, p domain.Principal, postID string) (domain.LikeResult, error) {
	args := m.Called(ctx, p, postID)
	return args.Get(0).(domain.LikeResult), args.Error(1)
}

func (m *LikeLedger) Counts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	args := m.Called(ctx, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *LikeLedger) LikedSet(ctx context.Context, p domain.Principal, postIDs []string) (map[string]bool, error) {
	args := m.Called(ctx, p, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

type LikeCountSyncer struct {
	mock.Mock
}

func (m *LikeCountSyncer) Start(ctx context.Context) {
	m.Called(ctx)
}

func (m *LikeCountSyncer) Send(postID string) {
	m.Called(postID)
}
