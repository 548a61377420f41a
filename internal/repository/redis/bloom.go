package redis

import (
	"context"
	"hash/crc32"
	"hash/fnv"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/redis/go-redis/v9"
)

const (
	KeyPostBloom = "bloom:post:ids"

	// number of bit positions per ID
	bloomHashes = 3
)

// redisBloomRepo is a bitmap bloom filter of post IDs.
// Deleted posts are never removed, so Exists can only err on the side of "maybe".
type redisBloomRepo struct {
	client  *redis.Client
	bitSize uint64
}

var _ domain.BloomRepository = (*redisBloomRepo)(nil)

func NewRedisBloomRepo(client *redis.Client, bitSize uint64) *redisBloomRepo {
	if bitSize == 0 {
		bitSize = 1
	}
	return &redisBloomRepo{
		client:  client,
		bitSize: bitSize,
	}
}

func (r *redisBloomRepo) Add(ctx context.Context, id string) error {
	return r.BulkAdd(ctx, []string{id})
}

func (r *redisBloomRepo) BulkAdd(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	pipe := r.client.Pipeline()
	for _, id := range ids {
		for _, offset := range r.offsets(id) {
			pipe.SetBit(ctx, KeyPostBloom, int64(offset), 1)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisBloomRepo) Exists(ctx context.Context, id string) (bool, error) {
	pipe := r.client.Pipeline()
	cmds := make([]*redis.IntCmd, 0, bloomHashes)
	for _, offset := range r.offsets(id) {
		cmds = append(cmds, pipe.GetBit(ctx, KeyPostBloom, int64(offset)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	for _, cmd := range cmds {
		if cmd.Val() == 0 {
			return false, nil
		}
	}
	return true, nil
}

// offsets derives bloomHashes positions from two base hashes (h1 + i*h2)
func (r *redisBloomRepo) offsets(id string) []uint64 {
	data := []byte(id)
	h1 := uint64(crc32.ChecksumIEEE(data))

	h := fnv.New64a()
	_, _ = h.Write(data)
	h2 := h.Sum64() | 1

	res := make([]uint64, bloomHashes)
	for i := range res {
		res[i] = (h1 + uint64(i)*h2) % r.bitSize
	}
	return res
}
