package like

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
)

// Service is the like ledger. The store's unique (post_id, user_id) key is the
// only thing keeping one like per pair under concurrency; nothing here locks.
type Service struct {
	likeRepo  domain.LikeRepository
	likeCache domain.LikeCache
	bloomRepo domain.BloomRepository
	syncer    domain.LikeCountSyncer

	now func() time.Time
}

var _ domain.LikeLedger = (*Service)(nil)

func NewService(lr domain.LikeRepository, lc domain.LikeCache, b domain.BloomRepository, s domain.LikeCountSyncer) *Service {
	return &Service{
		likeRepo:  lr,
		likeCache: lc,
		bloomRepo: b,
		syncer:    s,
		now:       time.Now,
	}
}

// Toggle removes the caller's like if present, otherwise adds it.
//
// The delete is tried first because it is a single atomic statement. When it
// removes nothing the insert runs; losing an insert race against another
// session of the same user shows up as a duplicate key, which means the pair
// is liked now, so the outcome is still LikeAdded.
//
// A bloom filter miss is only a hint: the insert's foreign key decides whether
// the post exists, and a post the store confirms is put back into the filter.
func (s *Service) Toggle(ctx context.Context, p domain.Principal, postID string) (domain.LikeResult, error) {
	if !p.Present() {
		return domain.LikeRemoved, domain.ErrUnauthenticated
	}
	known := s.knownPost(ctx, postID)

	like := domain.Like{PostID: postID, UserID: p.ID, CreatedAt: s.now().UTC()}

	removed, err := s.likeRepo.Delete(ctx, like)
	if err != nil {
		logrus.Errorf("failed to remove like %s/%s: %v", postID, p.ID, err)
		return domain.LikeRemoved, domain.StoreError(err)
	}
	if removed {
		if !known {
			s.remember(ctx, postID)
		}
		s.changed(ctx, postID, -1)
		return domain.LikeRemoved, nil
	}

	err = s.insert(ctx, like)
	if !known && (err == nil || errors.Is(err, domain.ErrConflictRecovered)) {
		s.remember(ctx, postID)
	}
	switch {
	case err == nil:
		s.changed(ctx, postID, 1)
		return domain.LikeAdded, nil
	case errors.Is(err, domain.ErrConflictRecovered):
		logrus.Debugf("like %s/%s already present, converged to added", postID, p.ID)
		return domain.LikeAdded, nil
	default:
		return domain.LikeRemoved, err
	}
}

// insert turns a detected existing pair into ErrConflictRecovered
func (s *Service) insert(ctx context.Context, like domain.Like) error {
	inserted, err := s.likeRepo.Insert(ctx, like)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logrus.Errorf("failed to insert like %s/%s: %v", like.PostID, like.UserID, err)
		}
		return domain.StoreError(err)
	}
	if !inserted {
		return domain.ErrConflictRecovered
	}
	return nil
}

func (s *Service) IsLiked(ctx context.Context, postID string, p domain.Principal) (bool, error) {
	if !p.Present() {
		return false, nil
	}
	ok, err := s.likeRepo.Exists(ctx, domain.Like{PostID: postID, UserID: p.ID})
	if err != nil {
		return false, domain.StoreError(err)
	}
	return ok, nil
}

func (s *Service) Count(ctx context.Context, postID string) (int64, error) {
	likes, err := s.likeCache.GetLikeCount(ctx, postID)
	if err == nil {
		return likes, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		logrus.Warnf("failed to GetLikeCount from redis: %v", err)
	}

	likes, err = s.likeRepo.Count(ctx, postID)
	if err != nil {
		return 0, domain.StoreError(err)
	}
	if err := s.likeCache.SetLikeCount(ctx, postID, likes); err != nil {
		logrus.Warnf("failed to SetLikeCount to redis: %v", err)
	}
	return likes, nil
}

// Counts returns a count for every requested post, reading through the cache
func (s *Service) Counts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	ids := unique(postIDs)
	res := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return res, nil
	}

	cached, err := s.likeCache.MGetLikeCounts(ctx, ids)
	if err != nil {
		logrus.Warnf("failed to MGetLikeCounts from redis: %v", err)
		cached = nil
	}

	missed := make([]string, 0, len(ids))
	for _, id := range ids {
		if likes, ok := cached[id]; ok {
			res[id] = likes
		} else {
			missed = append(missed, id)
		}
	}
	if len(missed) == 0 {
		return res, nil
	}

	fresh, err := s.likeRepo.CountByPosts(ctx, missed)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	for id, likes := range fresh {
		res[id] = likes
	}
	if err := s.likeCache.MSetLikeCounts(ctx, fresh); err != nil {
		logrus.Warnf("failed to MSetLikeCounts to redis: %v", err)
	}
	return res, nil
}

// LikedSet reports membership for every requested post. Anonymous callers like nothing.
func (s *Service) LikedSet(ctx context.Context, p domain.Principal, postIDs []string) (map[string]bool, error) {
	ids := unique(postIDs)
	res := make(map[string]bool, len(ids))
	for _, id := range ids {
		res[id] = false
	}
	if !p.Present() || len(ids) == 0 {
		return res, nil
	}

	liked, err := s.likeRepo.LikedPostIDs(ctx, p.ID, ids)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	for _, id := range liked {
		res[id] = true
	}
	return res, nil
}

// knownPost asks the bloom filter. A lookup error counts as known.
func (s *Service) knownPost(ctx context.Context, postID string) bool {
	exists, err := s.bloomRepo.Exists(ctx, postID)
	if err != nil {
		logrus.Warnf("bloom filter lookup failed for post %s: %v", postID, err)
		return true
	}
	if !exists {
		logrus.Debugf("bloom filter misses post %s, checking the store", postID)
	}
	return exists
}

func (s *Service) remember(ctx context.Context, postID string) {
	if err := s.bloomRepo.Add(ctx, postID); err != nil {
		logrus.Warnf("failed to add post %s back to bloom filter: %v", postID, err)
	}
}

// changed keeps the cached count close and asks the syncer to make it exact
func (s *Service) changed(ctx context.Context, postID string, delta int64) {
	if err := s.likeCache.AdjustLikeCount(ctx, postID, delta); err != nil {
		logrus.Warnf("failed to AdjustLikeCount in redis: %v", err)
	}
	s.syncer.Send(postID)
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	res := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	return res
}
