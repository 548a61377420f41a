package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
)

const (
	defaultSyncInterval = time.Second
	syncBatchSize       = 100
	syncQueueSize       = 1024
	shutdownFlushBudget = 3 * time.Second
)

// syncLikesWorker recounts likes of recently toggled posts and rewrites the
// cached counts, so drift left by concurrent INCR/DECR on the cache converges.
type syncLikesWorker struct {
	likeRepo  domain.LikeRepository
	likeCache domain.LikeCache
	interval  time.Duration
	ch        chan string
	done      chan struct{}
}

var _ domain.LikeCountSyncer = (*syncLikesWorker)(nil)

func NewSyncLikesWorker(lr domain.LikeRepository, lc domain.LikeCache, interval time.Duration) *syncLikesWorker {
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	return &syncLikesWorker{
		likeRepo:  lr,
		likeCache: lc,
		interval:  interval,
		ch:        make(chan string, syncQueueSize),
		done:      make(chan struct{}),
	}
}

// Send marks the post's cached count as stale. It never blocks the caller.
func (s *syncLikesWorker) Send(postID string) {
	select {
	case s.ch <- postID:
	default:
		logrus.Info("SyncLikesWorker's channel is full, task dropped")
	}
}

// Start runs until ctx is cancelled, then flushes what is queued and returns
func (s *syncLikesWorker) Start(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	batch := make(map[string]struct{}, syncBatchSize)
	for {
		select {
		case id := <-s.ch:
			batch[id] = struct{}{}
			if len(batch) >= syncBatchSize {
				s.flush(ctx, batch)
				batch = make(map[string]struct{}, syncBatchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flush(ctx, batch)
				batch = make(map[string]struct{}, syncBatchSize)
			}
		case <-ctx.Done():
			logrus.Info("shutting down SyncLikesWorker, flushing remaining tasks...")
			s.drain(batch)
			return
		}
	}
}

// Done is closed once Start has returned
func (s *syncLikesWorker) Done() <-chan struct{} {
	return s.done
}

func (s *syncLikesWorker) drain(batch map[string]struct{}) {
	for {
		select {
		case id := <-s.ch:
			batch[id] = struct{}{}
		default:
			if len(batch) == 0 {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), shutdownFlushBudget)
			defer cancel()
			s.flush(ctx, batch)
			return
		}
	}
}

func (s *syncLikesWorker) flush(ctx context.Context, batch map[string]struct{}) {
	ids := make([]string, 0, len(batch))
	for id := range batch {
		ids = append(ids, id)
	}

	counts, err := s.likeRepo.CountByPosts(ctx, ids)
	if err != nil {
		logrus.Errorf("failed to recount likes of %d posts: %v", len(ids), err)
		return
	}
	if err := s.likeCache.MSetLikeCounts(ctx, counts); err != nil {
		logrus.Warnf("failed to write %d like counts to redis: %v", len(counts), err)
	}
}
