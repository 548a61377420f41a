package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
)

const (
	KeyLikeCount = "post:likes:%s"

	likeCountTTL = 30 * time.Minute
)

// adjustScript only touches counts that are already cached, so a miss keeps
// falling through to the store instead of starting from a wrong base.
var adjustScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -1 -- 未缓存
	end

	local v = redis.call('INCRBY', KEYS[1], ARGV[1])
	if v < 0 then
		redis.call('SET', KEYS[1], 0)
		v = 0
	end
	redis.call('EXPIRE', KEYS[1], ARGV[2])
	return v
`)

type likeCache struct {
	client *redis.Client
}

var _ domain.LikeCache = (*likeCache)(nil)

func NewLikeCache(client *redis.Client) *likeCache {
	return &likeCache{client}
}

func likeCountKey(postID string) string {
	return fmt.Sprintf(KeyLikeCount, postID)
}

func (c *likeCache) GetLikeCount(ctx context.Context, postID string) (int64, error) {
	res, err := c.client.Get(ctx, likeCountKey(postID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, domain.ErrCacheMiss
	}
	if err != nil {
		return 0, err
	}
	return max(res, 0), nil
}

func (c *likeCache) MGetLikeCounts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	res := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return res, nil
	}

	keys := make([]string, len(postIDs))
	for i, id := range postIDs {
		keys[i] = likeCountKey(id)
	}

	result, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, val := range result {
		if val == nil {
			continue
		}

		valStr, ok := val.(string)
		if !ok {
			logrus.Errorf("invalid type in redis for like count, id: %s, val: %v", postIDs[i], val)
			continue
		}

		likes, err := strconv.ParseInt(valStr, 10, 64)
		if err != nil {
			logrus.Errorf("failed to strconv.ParseInt in redis, id: %s, err: %v", postIDs[i], err)
			continue
		}
		res[postIDs[i]] = max(likes, 0)
	}
	return res, nil
}

func (c *likeCache) SetLikeCount(ctx context.Context, postID string, likes int64) error {
	return c.client.Set(ctx, likeCountKey(postID), likes, likeCountTTL).Err()
}

func (c *likeCache) MSetLikeCounts(ctx context.Context, counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for id, likes := range counts {
		pipe.Set(ctx, likeCountKey(id), likes, likeCountTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *likeCache) AdjustLikeCount(ctx context.Context, postID string, delta int64) error {
	keys := []string{likeCountKey(postID)}
	ttl := int64(likeCountTTL / time.Second)
	return adjustScript.Run(ctx, c.client, keys, delta, ttl).Err()
}

func (c *likeCache) DeleteLikeCount(ctx context.Context, postID string) error {
	return c.client.Del(ctx, likeCountKey(postID)).Err()
}
