package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
)

type CommentRepository struct {
	mock.Mock
}

func (m *CommentRepository) Store(ctx context.Context, c *domain.Comment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CommentRepository) FetchByPost(ctx context.Context, postID string) ([]domain.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *CommentRepository) GetByID(ctx context.Context, id string) (domain.Comment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Comment), args.Error(1)
}

func (m *CommentRepository) DeleteByAuthor(ctx context.Context, id, authorID string) (bool, error) {
	args := m.Called(ctx, id, authorID)
	return args.Bool(0), args.Error(1)
}

type CommentUsecase struct {
	mock.Mock
}

func (m *CommentUsecase) ListForPost(ctx context.Context, postID string) ([]domain.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *CommentUsecase) Add(ctx context.Context, p domain.Principal, postID, content string) (domain.Comment, error) {
	args := m.Called(ctx, p, postID, content)
	return args.Get(0).(domain.Comment), args.Error(1)
}

func (m *CommentUsecase) Remove(ctx context.Context, p domain.Principal, commentID string) (bool, error) {
	args := m.Called(ctx, p, commentID)
	return args.Bool(0), args.Error(1)
}

type BloomRepository struct {
	mock.Mock
}

func (m *BloomRepository) Add(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *BloomRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *BloomRepository) BulkAdd(ctx context.Context, ids []string) error {
	return m.Called(ctx, ids).Error(0)
}
