package client_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain/mocks"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/client"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/rest"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/usecase/interaction"
)

var secret = []byte("client-test-secret")

type backend struct {
	posts    *mocks.PostUsecase
	pager    *mocks.FeedPager
	ledger   *mocks.LikeLedger
	comments *mocks.CommentUsecase
	client   *client.Client
	url      string
}

// newBackend serves the real router over mocked usecases
func newBackend(t *testing.T) *backend {
	gin.SetMode(gin.TestMode)
	b := &backend{
		posts:    new(mocks.PostUsecase),
		pager:    new(mocks.FeedPager),
		ledger:   new(mocks.LikeLedger),
		comments: new(mocks.CommentUsecase),
	}
	engine := gin.New()
	require.NoError(t, rest.RegisterRoutes(engine, rest.Handlers{
		Posts:    rest.NewPostHandler(b.posts, b.pager, interaction.NewEnricher(b.ledger)),
		Likes:    rest.NewLikeHandler(b.ledger),
		Comments: rest.NewCommentHandler(b.comments),
	}, secret))

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	b.url = srv.URL
	b.client = client.New(srv.URL, client.HS256Token(secret, time.Minute))
	return b
}

func ts(s string) time.Time {
	v, _ := time.Parse(time.RFC3339Nano, s)
	return v
}

func TestFetchPage(t *testing.T) {
	b := newBackend(t)
	created := ts("2025-02-03T04:05:06.123456Z")
	post := domain.Post{ID: "p1", OwnerID: "u1", Title: faker.Word(), Description: faker.Sentence(),
		Category: domain.CategoryHealth, CreatedAt: created, UpdatedAt: created}
	b.pager.On("FetchPage", mock.Anything, 10, 5).
		Return(domain.FeedPage{Posts: []domain.Post{post}, Offset: 10, NextOffset: 11}, nil).Once()

	page, err := b.client.FetchPage(context.Background(), 10, 5)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, post.Title, page.Posts[0].Title)
	assert.True(t, page.Posts[0].CreatedAt.Equal(created))
	assert.Equal(t, 11, page.NextOffset)
	assert.False(t, page.HasMore)
}

func TestToggleCarriesPrincipal(t *testing.T) {
	b := newBackend(t)
	b.ledger.On("Toggle", mock.Anything, domain.NewPrincipal("bob"), "p1").Return(domain.LikeRemoved, nil).Once()

	res, err := b.client.Toggle(context.Background(), domain.NewPrincipal("bob"), "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.LikeRemoved, res)

	_, err = b.client.Toggle(context.Background(), domain.Anonymous(), "p1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	b.ledger.AssertNumberOfCalls(t, "Toggle", 1)
}

func TestStatusCodesMapBackToDomainErrors(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	bob := domain.NewPrincipal("bob")

	b.ledger.On("Toggle", mock.Anything, bob, "p1").Return(domain.LikeRemoved, domain.ErrStoreUnavailable).Once()
	_, err := b.client.Toggle(ctx, bob, "p1")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	title := "x"
	b.posts.On("Update", mock.Anything, bob, "p2", mock.Anything).Return(domain.Post{}, domain.ErrForbidden).Once()
	_, err = b.client.Update(ctx, bob, "p2", domain.PostPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	b.posts.On("GetByID", mock.Anything, "ghost").Return(domain.Post{}, domain.ErrNotFound).Once()
	_, err = b.client.GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = b.client.Add(ctx, bob, "p1", "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBadTokenIsUnauthenticated(t *testing.T) {
	b := newBackend(t)
	other := client.New(b.url, client.HS256Token([]byte("wrong"), time.Minute))

	_, err := other.Remove(context.Background(), domain.NewPrincipal("bob"), "c1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	b.comments.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(gin.New())
	url := srv.URL
	srv.Close()

	_, err := client.New(url, nil).FetchPage(context.Background(), 0, 10)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestLikeBatchReads(t *testing.T) {
	b := newBackend(t)
	bob := domain.NewPrincipal("bob")
	b.ledger.On("Counts", mock.Anything, []string{"a", "b"}).Return(map[string]int64{"a": 3, "b": 0}, nil)
	b.ledger.On("LikedSet", mock.Anything, mock.Anything, []string{"a", "b"}).Return(map[string]bool{"a": false, "b": true}, nil)

	counts, err := b.client.Counts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"a": 3, "b": 0}, counts)

	liked, err := b.client.LikedSet(context.Background(), bob, []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, liked["b"])

	anon, err := b.client.LikedSet(context.Background(), domain.Anonymous(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": false}, anon)
}

func TestOrchestratorOverHTTPRollsBack(t *testing.T) {
	b := newBackend(t)
	bob := domain.NewPrincipal("bob")
	created := ts("2025-02-03T04:05:06Z")
	post := domain.Post{ID: "p1", OwnerID: "u1", Title: "t", Description: "d",
		Category: domain.CategoryWork, CreatedAt: created, UpdatedAt: created}

	b.pager.On("FetchPage", mock.Anything, 0, 5).Return(domain.FeedPage{Posts: []domain.Post{post}, NextOffset: 1}, nil).Once()
	// the client side enricher issues one batch read for counts and one for membership
	b.ledger.On("Counts", mock.Anything, []string{"p1"}).Return(map[string]int64{"p1": 3}, nil)
	b.ledger.On("LikedSet", mock.Anything, mock.Anything, []string{"p1"}).Return(map[string]bool{"p1": false}, nil)
	b.ledger.On("Toggle", mock.Anything, bob, "p1").Return(domain.LikeRemoved, domain.ErrStoreUnavailable).Once()

	o := interaction.NewOrchestrator(b.client, b.client, b.client, b.client, interaction.WithPageSize(5))
	require.NoError(t, o.Load(context.Background(), bob))

	_, err := o.ToggleLike(context.Background(), bob, "p1")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	v, ok := o.Item("p1")
	require.True(t, ok)
	assert.False(t, v.LikedByMe)
	assert.Equal(t, int64(3), v.LikeCount)
	assert.Equal(t, interaction.StateFailed, v.State)
}
