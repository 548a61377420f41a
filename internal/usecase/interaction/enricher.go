package interaction

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
)

// Enricher joins posts with like counts and the caller's membership.
// Counts and membership are independent reads that run concurrently and are
// joined by post ID, so the pager never needs to know about likes.
type Enricher struct {
	ledger domain.LikeLedger
}

var _ domain.FeedEnricher = (*Enricher)(nil)

func NewEnricher(l domain.LikeLedger) *Enricher {
	return &Enricher{ledger: l}
}

func (e *Enricher) Enrich(ctx context.Context, p domain.Principal, posts []domain.Post) ([]domain.FeedItem, error) {
	items := make([]domain.FeedItem, len(posts))
	if len(posts) == 0 {
		return items, nil
	}

	ids := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	var (
		counts map[string]int64
		liked  map[string]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts, err = e.ledger.Counts(gctx, ids)
		return
	})
	g.Go(func() (err error) {
		liked, err = e.ledger.LikedSet(gctx, p, ids)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range posts {
		items[i] = domain.FeedItem{
			Post:      posts[i],
			LikeCount: max(counts[posts[i].ID], 0),
			LikedByMe: liked[posts[i].ID],
		}
	}
	return items, nil
}
