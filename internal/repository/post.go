package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
)

// HeadPageTTL is the logical lifetime of the cached first page
const HeadPageTTL = 30 * time.Second

// postRepository 协调层，协调缓存和数据库
type postRepository struct {
	db           domain.PostDBRepository
	cache        domain.PostCache
	rebuildGroup singleflight.Group
}

var _ domain.PostRepository = (*postRepository)(nil)

// NewPostRepository 创建协调层repository
func NewPostRepository(db domain.PostDBRepository, cache domain.PostCache) *postRepository {
	return &postRepository{
		db:    db,
		cache: cache,
	}
}

// FetchPage serves offset 0 from the head-page cache and everything else from the store.
// An expired head page is still returned while a single rebuild runs in the background.
func (r *postRepository) FetchPage(ctx context.Context, offset, limit int) ([]domain.Post, error) {
	if offset != 0 {
		return r.db.FetchPage(ctx, offset, limit)
	}

	posts, expired, err := r.cache.GetHeadPage(ctx, limit)
	if err == nil {
		if expired {
			go r.rebuildHeadPage(context.Background(), limit)
		}
		return posts, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		logrus.Warnf("failed to read head page from cache: %v", err)
	}

	res, err, _ := r.rebuildGroup.Do(headKey(limit), func() (any, error) {
		return r.loadHeadPage(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	return res.([]domain.Post), nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (domain.Post, error) {
	return r.db.GetByID(ctx, id)
}

// Store 创建文章
func (r *postRepository) Store(ctx context.Context, p *domain.Post) error {
	if err := r.db.Store(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Update 更新文章
func (r *postRepository) Update(ctx context.Context, p *domain.Post) error {
	if err := r.db.Update(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Delete removes the post and everything hanging off it
func (r *postRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.DeleteCascade(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *postRepository) FetchIDs(ctx context.Context, cursor string, limit int) ([]string, error) {
	return r.db.FetchIDs(ctx, cursor, limit)
}

// loadHeadPage reads the version before the store, so a page read before a
// concurrent mutation is never written back after its invalidation.
func (r *postRepository) loadHeadPage(ctx context.Context, limit int) ([]domain.Post, error) {
	version, verErr := r.cache.HeadVersion(ctx)
	if verErr != nil {
		logrus.Warnf("failed to read head page version: %v", verErr)
	}

	posts, err := r.db.FetchPage(ctx, 0, limit)
	if err != nil {
		return nil, err
	}
	if verErr != nil {
		return posts, nil
	}

	stored, err := r.cache.SetHeadPage(ctx, limit, posts, HeadPageTTL, version)
	if err != nil {
		logrus.Warnf("failed to set head page cache: %v", err)
	} else if !stored {
		logrus.Debugf("head page of size %d changed while loading, not cached", limit)
	}
	return posts, nil
}

// rebuildHeadPage 异步重建首页缓存
func (r *postRepository) rebuildHeadPage(ctx context.Context, limit int) {
	_, err, _ := r.rebuildGroup.Do(headKey(limit), func() (any, error) {
		return r.loadHeadPage(ctx, limit)
	})
	if err != nil {
		logrus.Errorf("rebuildHeadPage failed: %v", err)
	}
}

// invalidate drops cached head pages so the mutation is visible on the next poll
func (r *postRepository) invalidate(ctx context.Context) {
	if err := r.cache.InvalidateHeadPages(ctx); err != nil {
		logrus.Warnf("failed to invalidate head pages: %v", err)
	}
}

func headKey(limit int) string {
	return "head:" + strconv.Itoa(limit)
}
