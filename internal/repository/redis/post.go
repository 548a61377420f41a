package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/repository/cache"
)

const (
	// KeyFeedHead is a hash of page size -> head page with logical expiry
	KeyFeedHead = "post:feed:head"
	// KeyFeedHeadVersion is bumped on every invalidation
	KeyFeedHeadVersion = "post:feed:head:version"

	// physical TTL stays well above the logical one so stale pages can still be served while rebuilding
	feedHeadPhysicalTTL = 10 * time.Minute
)

// setHeadScript writes a page only if no invalidation ran since the caller read the version.
// KEYS[1] version key, KEYS[2] page hash; ARGV: version, field, payload, physical ttl seconds
var setHeadScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[2], ARGV[2], ARGV[3])
redis.call('EXPIRE', KEYS[2], ARGV[4])
return 1
`)

type postCache struct {
	client *redis.Client
}

var _ domain.PostCache = (*postCache)(nil)

func NewPostCache(client *redis.Client) *postCache {
	return &postCache{client}
}

func (c *postCache) GetHeadPage(ctx context.Context, limit int) ([]domain.Post, bool, error) {
	data, err := c.client.HGet(ctx, KeyFeedHead, strconv.Itoa(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, false, err
	}

	var page cache.DataWithLogicalExpire[[]domain.Post]
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, false, err
	}
	return page.Data, page.IsLogicalExpired(), nil
}

func (c *postCache) HeadVersion(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, KeyFeedHeadVersion).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *postCache) SetHeadPage(ctx context.Context, limit int, posts []domain.Post, ttl time.Duration, version int64) (bool, error) {
	data, err := json.Marshal(cache.NewDataWithLogicalExpire(posts, ttl))
	if err != nil {
		return false, err
	}

	keys := []string{KeyFeedHeadVersion, KeyFeedHead}
	stored, err := setHeadScript.Run(ctx, c.client, keys,
		strconv.FormatInt(version, 10), strconv.Itoa(limit), data, int64(feedHeadPhysicalTTL/time.Second)).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

func (c *postCache) InvalidateHeadPages(ctx context.Context) error {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, KeyFeedHeadVersion)
	pipe.Del(ctx, KeyFeedHead)
	_, err := pipe.Exec(ctx)
	return err
}
