package comment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/validation"
)

type service struct {
	commentRepo domain.CommentRepository
	bloomRepo   domain.BloomRepository

	now   func() time.Time
	newID func() (uuid.UUID, error)
}

// knownPost treats the bloom filter as a hint. The store has the last word:
// its foreign key rejects comments on posts that do not exist.
func (s *service) knownPost(ctx context.Context, id string) bool {
	exists, err := s.bloomRepo.Exists(ctx, id)
	if err != nil {
		logrus.Warnf("bloom filter lookup failed for post %s: %v", id, err)
		return true
	}
	if !exists {
		logrus.Debugf("bloom filter misses post %s, checking the store", id)
	}
	return exists
}

func (s *service) remember(ctx context.Context, id string) {
	if err := s.bloomRepo.Add(ctx, id); err != nil {
		logrus.Warnf("failed to add post %s back to bloom filter: %v", id, err)
	}
}

func (s *service) Add(ctx context.Context, p domain.Principal, postID, content string) (domain.Comment, error) {
	if !p.Present() {
		return domain.Comment{}, domain.ErrUnauthenticated
	}
	if err := validation.Var("content", content, "notblank,max=2000"); err != nil {
		return domain.Comment{}, err
	}
	known := s.knownPost(ctx, postID)

	id, err := s.newID()
	if err != nil {
		return domain.Comment{}, err
	}
	c := domain.Comment{
		ID:        id.String(),
		PostID:    postID,
		AuthorID:  p.ID,
		Content:   strings.TrimSpace(content),
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.commentRepo.Store(ctx, &c); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logrus.Errorf("failed to store comment on post %s: %v", postID, err)
		}
		return domain.Comment{}, domain.StoreError(err)
	}
	if !known {
		s.remember(ctx, postID)
	}
	return c, nil
}

// Remove is silent-safe: a missing comment or one written by someone else
// yields false, never an error.
func (s *service) Remove(ctx context.Context, p domain.Principal, commentID string) (bool, error) {
	if !p.Present() {
		return false, domain.ErrUnauthenticated
	}
	current, err := s.commentRepo.GetByID(ctx, commentID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, domain.StoreError(err)
	}
	if !domain.CanMutate(p, current.AuthorID) {
		return false, nil
	}

	// the author condition is repeated in the delete itself
	ok, err := s.commentRepo.DeleteByAuthor(ctx, commentID, p.ID)
	if err != nil {
		logrus.Errorf("failed to delete comment %s: %v", commentID, err)
		return false, domain.StoreError(err)
	}
	return ok, nil
}

func (s *service) ListForPost(ctx context.Context, postID string) ([]domain.Comment, error) {
	known := s.knownPost(ctx, postID)
	res, err := s.commentRepo.FetchByPost(ctx, postID)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	if !known && len(res) > 0 {
		s.remember(ctx, postID)
	}
	if res == nil {
		res = []domain.Comment{}
	}
	return res, nil
}

var _ domain.CommentUsecase = (*service)(nil)

func NewService(commentRepo domain.CommentRepository, bloomRepo domain.BloomRepository) *service {
	return &service{
		commentRepo: commentRepo,
		bloomRepo:   bloomRepo,
		now:         time.Now,
		newID:       uuid.NewV7,
	}
}
