package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/repository/cache"
)

func TestGetLikeCount(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewLikeCache(db)
	ctx := context.Background()

	mock.ExpectGet("post:likes:p1").SetVal("12")
	mock.ExpectGet("post:likes:p2").RedisNil()

	n, err := c.GetLikeCount(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	_, err = c.GetLikeCount(ctx, "p2")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMGetLikeCountsReturnsHitsOnly(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectMGet("post:likes:a", "post:likes:b", "post:likes:c").SetVal([]any{"3", nil, "oops"})

	got, err := NewLikeCache(db).MGetLikeCounts(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"a": 3}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetAndDeleteLikeCount(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewLikeCache(db)
	ctx := context.Background()

	mock.ExpectSet("post:likes:p1", int64(5), likeCountTTL).SetVal("OK")
	mock.ExpectSet("post:likes:p2", int64(0), likeCountTTL).SetVal("OK")
	mock.ExpectDel("post:likes:p1").SetVal(1)

	require.NoError(t, c.SetLikeCount(ctx, "p1", 5))
	require.NoError(t, c.MSetLikeCounts(ctx, map[string]int64{"p2": 0}))
	require.NoError(t, c.DeleteLikeCount(ctx, "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustLikeCountRunsScript(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ttl := int64(likeCountTTL / time.Second)
	mock.ExpectEvalSha(adjustScript.Hash(), []string{"post:likes:p1"}, int64(-1), ttl).SetVal(int64(2))

	require.NoError(t, NewLikeCache(db).AdjustLikeCount(context.Background(), "p1", -1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHeadPage(t *testing.T) {
	posts := []domain.Post{{ID: "p1", Title: "t", Category: domain.CategoryWork}}

	fresh, err := json.Marshal(cache.NewDataWithLogicalExpire(posts, time.Minute))
	require.NoError(t, err)
	stale, err := json.Marshal(cache.NewDataWithLogicalExpire(posts, -time.Minute))
	require.NoError(t, err)

	db, mock := redismock.NewClientMock()
	mock.ExpectHGet(KeyFeedHead, "10").SetVal(string(fresh))
	mock.ExpectHGet(KeyFeedHead, "10").SetVal(string(stale))
	mock.ExpectHGet(KeyFeedHead, "20").RedisNil()

	c := NewPostCache(db)
	ctx := context.Background()

	got, expired, err := c.GetHeadPage(ctx, 10)
	require.NoError(t, err)
	assert.False(t, expired)
	assert.Equal(t, "p1", got[0].ID)

	_, expired, err = c.GetHeadPage(ctx, 10)
	require.NoError(t, err)
	assert.True(t, expired)

	_, _, err = c.GetHeadPage(ctx, 20)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHeadVersion(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectGet(KeyFeedHeadVersion).SetVal("3")
	mock.ExpectGet(KeyFeedHeadVersion).RedisNil()

	c := NewPostCache(db)
	v, err := c.HeadVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = c.HeadVersion(context.Background())
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetHeadPageChecksVersion(t *testing.T) {
	posts := []domain.Post{{ID: "p1"}}
	ttl := int64(feedHeadPhysicalTTL / time.Second)
	keys := []string{KeyFeedHeadVersion, KeyFeedHead}

	// the payload carries timestamps, so only the leading arguments are compared
	leading := func(expected, actual []any) error {
		if len(actual) != len(expected) {
			return fmt.Errorf("got %d args, want %d", len(actual), len(expected))
		}
		for i := 0; i < 6; i++ {
			if !assert.ObjectsAreEqual(expected[i], actual[i]) {
				return fmt.Errorf("arg %d: got %v, want %v", i, actual[i], expected[i])
			}
		}
		return nil
	}

	db, mock := redismock.NewClientMock()
	mock.CustomMatch(leading).ExpectEvalSha(setHeadScript.Hash(), keys, "2", "10", []byte("{}"), ttl).SetVal(int64(1))
	mock.CustomMatch(leading).ExpectEvalSha(setHeadScript.Hash(), keys, "1", "10", []byte("{}"), ttl).SetVal(int64(0))

	c := NewPostCache(db)
	stored, err := c.SetHeadPage(context.Background(), 10, posts, time.Minute, 2)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = c.SetHeadPage(context.Background(), 10, posts, time.Minute, 1)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateHeadPages(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectTxPipeline()
	mock.ExpectIncr(KeyFeedHeadVersion).SetVal(4)
	mock.ExpectDel(KeyFeedHead).SetVal(1)
	mock.ExpectTxPipelineExec()

	require.NoError(t, NewPostCache(db).InvalidateHeadPages(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBloomOffsetsStayInRange(t *testing.T) {
	r := NewRedisBloomRepo(nil, 1024)
	for _, id := range []string{"", "a", "0195a0b2-7c3e-7000-8000-000000000000"} {
		offs := r.offsets(id)
		assert.NotEmpty(t, offs)
		for _, o := range offs {
			assert.Less(t, o, uint64(1024))
		}
	}
}

func TestBloomExists(t *testing.T) {
	db, mock := redismock.NewClientMock()
	r := NewRedisBloomRepo(db, 1<<20)

	offs := r.offsets("p1")
	for i, o := range offs {
		bit := int64(1)
		if i == len(offs)-1 {
			bit = 0
		}
		mock.ExpectGetBit(KeyPostBloom, int64(o)).SetVal(bit)
	}
	for _, o := range offs {
		mock.ExpectGetBit(KeyPostBloom, int64(o)).SetVal(1)
	}

	ok, err := r.Exists(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.Exists(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
