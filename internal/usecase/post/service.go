package post

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/validation"
)

const bloomInitBatch = 1000

type Service struct {
	postRepo  domain.PostRepository
	bloomRepo domain.BloomRepository
	likeCache domain.LikeCache

	now   func() time.Time
	newID func() (uuid.UUID, error)
}

var _ domain.PostUsecase = (*Service)(nil)

// NewService will create a new post service object
func NewService(p domain.PostRepository, b domain.BloomRepository, lc domain.LikeCache) *Service {
	return &Service{
		postRepo:  p,
		bloomRepo: b,
		likeCache: lc,
		now:       time.Now,
		newID:     uuid.NewV7,
	}
}

// Create stores a new post owned by p. ID and timestamps are assigned here,
// UUIDv7 keeps the id tiebreak in the same order as creation.
func (s *Service) Create(ctx context.Context, p domain.Principal, in domain.PostInput) (domain.Post, error) {
	if !p.Present() {
		return domain.Post{}, domain.ErrUnauthenticated
	}
	if err := validation.Struct(in); err != nil {
		return domain.Post{}, err
	}

	id, err := s.newID()
	if err != nil {
		return domain.Post{}, err
	}
	now := s.timestamp()
	post := domain.Post{
		ID:        id.String(),
		OwnerID:   p.ID,
		Category:  in.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	post.Apply(domain.PostPatch{Title: &in.Title, Description: &in.Description})

	if err := s.postRepo.Store(ctx, &post); err != nil {
		logrus.Errorf("failed to store post: %v", err)
		return domain.Post{}, domain.StoreError(err)
	}

	if err := s.bloomRepo.Add(ctx, post.ID); err != nil {
		logrus.Warnf("failed to add post %s to bloom filter: %v", post.ID, err)
	}
	return post, nil
}

// Update applies a partial edit. Only the owner may edit; a denied request
// never reaches the store.
func (s *Service) Update(ctx context.Context, p domain.Principal, id string, patch domain.PostPatch) (domain.Post, error) {
	if !p.Present() {
		return domain.Post{}, domain.ErrUnauthenticated
	}
	if err := validation.Struct(patch); err != nil {
		return domain.Post{}, err
	}

	current, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return domain.Post{}, domain.StoreError(err)
	}
	if !domain.CanMutate(p, current.OwnerID) {
		return domain.Post{}, domain.ErrForbidden
	}
	if patch.Empty() {
		return current, nil
	}

	updated := current
	updated.Apply(patch)
	updated.UpdatedAt = s.timestamp()
	if err := s.postRepo.Update(ctx, &updated); err != nil {
		logrus.Errorf("failed to update post %s: %v", id, err)
		return domain.Post{}, domain.StoreError(err)
	}
	return updated, nil
}

// Delete removes the post with its likes and comments.
// A post that does not exist reports false without error.
func (s *Service) Delete(ctx context.Context, p domain.Principal, id string) (bool, error) {
	if !p.Present() {
		return false, domain.ErrUnauthenticated
	}

	current, err := s.postRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, domain.StoreError(err)
	}
	if !domain.CanMutate(p, current.OwnerID) {
		return false, domain.ErrForbidden
	}

	err = s.postRepo.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		logrus.Errorf("failed to delete post %s: %v", id, err)
		return false, domain.StoreError(err)
	}

	if err := s.likeCache.DeleteLikeCount(ctx, id); err != nil {
		logrus.Warnf("failed to drop cached like count of post %s: %v", id, err)
	}
	return true, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Post, error) {
	res, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return domain.Post{}, domain.StoreError(err)
	}
	return res, nil
}

// InitBloomFilter loads every existing post ID into the bloom filter
func (s *Service) InitBloomFilter(ctx context.Context) error {
	cursor := ""
	total := 0
	for {
		ids, err := s.postRepo.FetchIDs(ctx, cursor, bloomInitBatch)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			break
		}
		if err := s.bloomRepo.BulkAdd(ctx, ids); err != nil {
			return err
		}
		total += len(ids)
		cursor = ids[len(ids)-1]
		if len(ids) < bloomInitBatch {
			break
		}
	}
	logrus.Infof("bloom filter initialised with %d posts", total)
	return nil
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
