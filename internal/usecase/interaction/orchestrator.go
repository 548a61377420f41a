package interaction

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/repository"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/usecase/feed"
)

const DefaultOpTimeout = 10 * time.Second

// ToggleState is the per-post like state of a view
type ToggleState int8

const (
	StateIdle ToggleState = iota
	StatePending
	// StateFailed means the last toggle failed and the view was reverted
	StateFailed
)

func (s ToggleState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StatePending:
		return "PENDING"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// PostView is what the presentation layer renders for one post
type PostView struct {
	domain.FeedItem
	State ToggleState
}

// ToggleOutcome reports what ToggleLike did to the view.
// Applied is false when the toggle was dropped because one was already pending.
type ToggleOutcome struct {
	Applied bool
	View    PostView
}

type entry struct {
	item  domain.FeedItem
	state ToggleState
}

type likeSnapshot struct {
	liked bool
	count int64
}

// Orchestrator is one session's view of the feed.
//
// Like toggles are applied to the view before the ledger confirms them and
// restored from a snapshot if the ledger fails. Only one toggle per post may
// be in flight; the mutex guards the view and is never held across a call to
// a collaborator.
type Orchestrator struct {
	pager    domain.FeedPager
	ledger   domain.LikeLedger
	posts    domain.PostUsecase
	comments domain.CommentUsecase
	enricher *Enricher

	pageSize  int
	opTimeout time.Duration

	mu         sync.Mutex
	principal  domain.Principal
	order      []*entry
	byID       map[string]*entry
	nextOffset int
	hasMore    bool
	generation uint64
	// loads counts Load calls; only the latest one may replace the view
	loads uint64
}

type Option func(*Orchestrator)

func WithPageSize(n int) Option {
	return func(o *Orchestrator) {
		repository.PageVerify(&n)
		o.pageSize = n
	}
}

// WithOpTimeout bounds every collaborator call; running out counts as a failure
func WithOpTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.opTimeout = d
		}
	}
}

func NewOrchestrator(pager domain.FeedPager, ledger domain.LikeLedger, posts domain.PostUsecase, comments domain.CommentUsecase, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		pager:     pager,
		ledger:    ledger,
		posts:     posts,
		comments:  comments,
		enricher:  NewEnricher(ledger),
		pageSize:  repository.DefaultPageSize,
		opTimeout: DefaultOpTimeout,
		byID:      make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load rebuilds the view from the first page for p.
// Toggles still in flight from the previous view will not write into the new one.
// When loads overlap, the one started last wins regardless of completion order.
func (o *Orchestrator) Load(ctx context.Context, p domain.Principal) error {
	o.mu.Lock()
	o.loads++
	token := o.loads
	o.mu.Unlock()

	items, page, err := o.fetch(ctx, p, 0)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if token != o.loads {
		logrus.Debugf("dropping feed load for %q, a newer load started", p.ID)
		return nil
	}
	o.generation++
	o.principal = p
	o.order = o.order[:0]
	o.byID = make(map[string]*entry, len(items))
	o.appendLocked(items)
	o.nextOffset = page.NextOffset
	o.hasMore = page.HasMore
	return nil
}

// LoadMore appends the next page. Posts already in the view are skipped,
// which hides the repeats offset paging produces after concurrent inserts.
func (o *Orchestrator) LoadMore(ctx context.Context) error {
	o.mu.Lock()
	if !o.hasMore {
		o.mu.Unlock()
		return nil
	}
	p, offset, gen := o.principal, o.nextOffset, o.generation
	o.mu.Unlock()

	items, page, err := o.fetch(ctx, p, offset)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return nil
	}
	o.appendLocked(items)
	o.nextOffset = page.NextOffset
	o.hasMore = page.HasMore
	return nil
}

func (o *Orchestrator) fetch(ctx context.Context, p domain.Principal, offset int) ([]domain.FeedItem, domain.FeedPage, error) {
	ctx, cancel := context.WithTimeout(ctx, o.opTimeout)
	defer cancel()

	page, err := o.pager.FetchPage(ctx, offset, o.pageSize)
	if err != nil {
		return nil, domain.FeedPage{}, domain.StoreError(err)
	}
	items, err := o.enricher.Enrich(ctx, p, page.Posts)
	if err != nil {
		return nil, domain.FeedPage{}, domain.StoreError(err)
	}
	return items, page, nil
}

func (o *Orchestrator) appendLocked(items []domain.FeedItem) {
	for _, item := range items {
		if _, dup := o.byID[item.ID]; dup {
			continue
		}
		e := &entry{item: item}
		o.order = append(o.order, e)
		o.byID[item.ID] = e
	}
}

// Items returns the loaded window in feed order
func (o *Orchestrator) Items() []PostView {
	o.mu.Lock()
	defer o.mu.Unlock()
	res := make([]PostView, len(o.order))
	for i, e := range o.order {
		res[i] = e.view()
	}
	return res
}

// Visible applies the filter over the loaded window only
func (o *Orchestrator) Visible(f domain.PostFilter) []PostView {
	return feed.Apply(o.Items(), f)
}

func (o *Orchestrator) Item(postID string) (PostView, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.byID[postID]
	if !ok {
		return PostView{}, false
	}
	return e.view(), true
}

func (o *Orchestrator) HasMore() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hasMore
}

// Principal is the principal the current view was loaded for
func (o *Orchestrator) Principal() domain.Principal {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.principal
}

// ToggleLike flips the like optimistically, then asks the ledger.
//
// An anonymous principal gets ErrUnauthenticated and the ledger is never
// called. While a toggle for the post is pending further toggles are dropped.
// On failure the exact pre-toggle values are restored rather than flipped
// back, and the error is returned.
func (o *Orchestrator) ToggleLike(ctx context.Context, p domain.Principal, postID string) (ToggleOutcome, error) {
	if !p.Present() {
		return ToggleOutcome{}, domain.ErrUnauthenticated
	}

	o.mu.Lock()
	e, ok := o.byID[postID]
	if !ok {
		o.mu.Unlock()
		return ToggleOutcome{}, domain.ErrNotFound
	}
	if e.state == StatePending {
		view := e.view()
		o.mu.Unlock()
		return ToggleOutcome{Applied: false, View: view}, nil
	}

	prev := likeSnapshot{liked: e.item.LikedByMe, count: e.item.LikeCount}
	gen := o.generation
	e.item.LikedByMe = !prev.liked
	if prev.liked {
		e.item.LikeCount = max(prev.count-1, 0)
	} else {
		e.item.LikeCount = prev.count + 1
	}
	e.state = StatePending
	o.mu.Unlock()

	tctx, cancel := context.WithTimeout(ctx, o.opTimeout)
	res, err := o.ledger.Toggle(tctx, p, postID)
	cancel()

	o.mu.Lock()
	if gen != o.generation || o.byID[postID] != e {
		// the view was reloaded underneath; its values came from the store already
		o.mu.Unlock()
		return ToggleOutcome{Applied: true}, domain.StoreError(err)
	}

	if err != nil {
		e.item.LikedByMe = prev.liked
		e.item.LikeCount = prev.count
		e.state = StateFailed
		view := e.view()
		o.mu.Unlock()
		logrus.Warnf("like toggle on post %s failed, view reverted: %v", postID, err)
		return ToggleOutcome{Applied: true, View: view}, domain.StoreError(err)
	}

	e.state = StateIdle
	diverged := (res == domain.LikeAdded) != e.item.LikedByMe
	if diverged {
		// another session of the same user moved the pair first
		e.item.LikedByMe = res == domain.LikeAdded
	}
	view := e.view()
	o.mu.Unlock()

	if diverged {
		view = o.refreshCount(ctx, gen, e, view)
	}
	return ToggleOutcome{Applied: true, View: view}, nil
}

// refreshCount re-reads the count of a post whose toggle outcome disagreed with the view
func (o *Orchestrator) refreshCount(ctx context.Context, gen uint64, e *entry, fallback PostView) PostView {
	ctx, cancel := context.WithTimeout(ctx, o.opTimeout)
	defer cancel()

	likes, err := o.ledger.Count(ctx, fallback.ID)
	if err != nil {
		logrus.Warnf("failed to refresh like count of post %s: %v", fallback.ID, err)
		return fallback
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation || e.state == StatePending {
		return fallback
	}
	e.item.LikeCount = max(likes, 0)
	return e.view()
}

func (o *Orchestrator) ListComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, o.opTimeout)
	defer cancel()
	res, err := o.comments.ListForPost(ctx, postID)
	return res, domain.StoreError(err)
}

func (o *Orchestrator) AddComment(ctx context.Context, p domain.Principal, postID, content string) (domain.Comment, error) {
	if !p.Present() {
		return domain.Comment{}, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, o.opTimeout)
	defer cancel()
	res, err := o.comments.Add(ctx, p, postID, content)
	return res, domain.StoreError(err)
}

// DeleteComment is silent-safe like the thread store: a foreign or missing comment yields false
func (o *Orchestrator) DeleteComment(ctx context.Context, p domain.Principal, commentID string) (bool, error) {
	if !p.Present() {
		return false, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, o.opTimeout)
	defer cancel()
	ok, err := o.comments.Remove(ctx, p, commentID)
	return ok, domain.StoreError(err)
}

// CreatePost publishes a post and puts it at the head of the view.
// The next offset moves with it so the following page does not repeat a row.
func (o *Orchestrator) CreatePost(ctx context.Context, p domain.Principal, in domain.PostInput) (domain.Post, error) {
	if !p.Present() {
		return domain.Post{}, domain.ErrUnauthenticated
	}
	cctx, cancel := context.WithTimeout(ctx, o.opTimeout)
	defer cancel()

	post, err := o.posts.Create(cctx, p, in)
	if err != nil {
		return domain.Post{}, domain.StoreError(err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, dup := o.byID[post.ID]; !dup {
		e := &entry{item: domain.FeedItem{Post: post}}
		o.order = append([]*entry{e}, o.order...)
		o.byID[post.ID] = e
		o.nextOffset++
	}
	return post, nil
}

// UpdatePost checks ownership against the loaded copy before calling out,
// the server checks again.
func (o *Orchestrator) UpdatePost(ctx context.Context, p domain.Principal, postID string, patch domain.PostPatch) (domain.Post, error) {
	if err := o.gate(p, postID); err != nil {
		return domain.Post{}, err
	}
	cctx, cancel := context.WithTimeout(ctx, o.opTimeout)
	defer cancel()

	post, err := o.posts.Update(cctx, p, postID, patch)
	if err != nil {
		return domain.Post{}, domain.StoreError(err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.byID[postID]; ok {
		e.item.Post = post
	}
	return post, nil
}

func (o *Orchestrator) DeletePost(ctx context.Context, p domain.Principal, postID string) (bool, error) {
	if err := o.gate(p, postID); err != nil {
		return false, err
	}
	cctx, cancel := context.WithTimeout(ctx, o.opTimeout)
	defer cancel()

	ok, err := o.posts.Delete(cctx, p, postID)
	if err != nil {
		return false, domain.StoreError(err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if e, loaded := o.byID[postID]; loaded {
		delete(o.byID, postID)
		for i := range o.order {
			if o.order[i] == e {
				o.order = append(o.order[:i], o.order[i+1:]...)
				break
			}
		}
		if o.nextOffset > 0 {
			o.nextOffset--
		}
	}
	return ok, nil
}

func (o *Orchestrator) gate(p domain.Principal, postID string) error {
	if !p.Present() {
		return domain.ErrUnauthenticated
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.byID[postID]; ok && !domain.CanMutate(p, e.item.OwnerID) {
		return domain.ErrForbidden
	}
	return nil
}

// Watch reloads the view on every principal change until ctx ends or the
// channel closes. Reload failures are logged and the old view is kept.
func (o *Orchestrator) Watch(ctx context.Context, changes <-chan domain.Principal) {
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-changes:
			if !ok {
				return
			}
			if err := o.Load(ctx, p); err != nil && !errors.Is(err, context.Canceled) {
				logrus.Errorf("failed to reload feed after session change: %v", err)
			}
		}
	}
}

func (e *entry) view() PostView {
	return PostView{FeedItem: e.item, State: e.state}
}
