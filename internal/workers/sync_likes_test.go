package workers

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain/mocks"
)

func sameIDs(want ...string) any {
	return mock.MatchedBy(func(ids []string) bool {
		got := append([]string(nil), ids...)
		sort.Strings(got)
		sort.Strings(want)
		return assert.ObjectsAreEqual(want, got)
	})
}

func TestSyncLikesWorkerFlushesOnTick(t *testing.T) {
	repo := new(mocks.LikeRepository)
	cache := new(mocks.LikeCache)
	w := NewSyncLikesWorker(repo, cache, 10*time.Millisecond)

	flushed := make(chan struct{})
	repo.On("CountByPosts", mock.Anything, sameIDs("a", "b")).Return(map[string]int64{"a": 1, "b": 0}, nil).Once()
	cache.On("MSetLikeCounts", mock.Anything, map[string]int64{"a": 1, "b": 0}).
		Run(func(mock.Arguments) { close(flushed) }).
		Return(nil).Once()

	w.Send("a")
	w.Send("b")
	w.Send("a")

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)

	select {
	case <-flushed:
	case <-time.After(time.Second):
		t.Fatal("worker did not flush")
	}
	cancel()
	<-w.Done()
	repo.AssertExpectations(t)
}

func TestSyncLikesWorkerDrainsOnShutdown(t *testing.T) {
	repo := new(mocks.LikeRepository)
	cache := new(mocks.LikeCache)
	w := NewSyncLikesWorker(repo, cache, time.Hour)

	repo.On("CountByPosts", mock.Anything, sameIDs("x", "y")).Return(map[string]int64{"x": 4, "y": 2}, nil).Once()
	cache.On("MSetLikeCounts", mock.Anything, map[string]int64{"x": 4, "y": 2}).Return(nil).Once()

	w.Send("x")
	w.Send("y")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)

	select {
	case <-w.Done():
	default:
		t.Fatal("Done should be closed after Start returns")
	}
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSyncLikesWorkerStoreFailureSkipsCache(t *testing.T) {
	repo := new(mocks.LikeRepository)
	cache := new(mocks.LikeCache)
	w := NewSyncLikesWorker(repo, cache, time.Hour)

	repo.On("CountByPosts", mock.Anything, []string{"x"}).Return(nil, assert.AnError).Once()
	w.flush(context.Background(), map[string]struct{}{"x": {}})
	cache.AssertNotCalled(t, "MSetLikeCounts", mock.Anything, mock.Anything)
}

func TestSendNeverBlocks(t *testing.T) {
	w := NewSyncLikesWorker(new(mocks.LikeRepository), new(mocks.LikeCache), time.Hour)
	done := make(chan struct{})
	go func() {
		for i := 0; i < syncQueueSize+10; i++ {
			w.Send("p")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full queue")
	}
}
