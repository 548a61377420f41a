package rest_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain/mocks"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/rest"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/rest/response"
)

var secret = []byte("test-secret")

type server struct {
	posts    *mocks.PostUsecase
	pager    *mocks.FeedPager
	enricher *mocks.FeedEnricher
	ledger   *mocks.LikeLedger
	comments *mocks.CommentUsecase
	engine   *gin.Engine
}

func newServer(t *testing.T) *server {
	gin.SetMode(gin.TestMode)
	s := &server{
		posts:    new(mocks.PostUsecase),
		pager:    new(mocks.FeedPager),
		enricher: new(mocks.FeedEnricher),
		ledger:   new(mocks.LikeLedger),
		comments: new(mocks.CommentUsecase),
		engine:   gin.New(),
	}
	err := rest.RegisterRoutes(s.engine, rest.Handlers{
		Posts:    rest.NewPostHandler(s.posts, s.pager, s.enricher),
		Likes:    rest.NewLikeHandler(s.ledger),
		Comments: rest.NewCommentHandler(s.comments),
	}, secret)
	require.NoError(t, err)
	return s
}

func token(t *testing.T, sub string, ttl time.Duration) string {
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return signed
}

func (s *server) do(method, path, bearer, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func TestFetchFeedAnonymous(t *testing.T) {
	s := newServer(t)
	now := time.Now().UTC()
	posts := []domain.Post{{ID: "p1", OwnerID: "u1", Title: "t", Category: domain.CategoryWork, CreatedAt: now, UpdatedAt: now}}
	s.pager.On("FetchPage", mock.Anything, 0, 5).
		Return(domain.FeedPage{Posts: posts, NextOffset: 1}, nil).Once()
	s.enricher.On("Enrich", mock.Anything, domain.Anonymous(), posts).
		Return([]domain.FeedItem{{Post: posts[0], LikeCount: 2}}, nil).Once()

	rec := s.do(http.MethodGet, "/feed?limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page response.FeedPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "p1", page.Items[0].ID)
	assert.Equal(t, int64(2), page.Items[0].LikesCount)
	assert.False(t, page.HasMore)
	assert.Equal(t, 1, page.NextOffset)
}

func TestFetchPageBadOffset(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodGet, "/posts?offset=-1", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	s.pager.AssertNotCalled(t, "FetchPage", mock.Anything, mock.Anything, mock.Anything)
}

func TestMutationsNeedAuth(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodPost, "/posts", "", `{"title":"t","description":"d","category":"Work"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/posts/p1/like", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodDelete, "/comments/c1", token(t, "bob", -time.Minute), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	s.posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	s.ledger.AssertNotCalled(t, "Toggle", mock.Anything, mock.Anything, mock.Anything)
	s.comments.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
}

func TestStorePost(t *testing.T) {
	s := newServer(t)
	bob := domain.NewPrincipal("bob")
	in := domain.PostInput{Title: "t", Description: "d", Category: domain.CategoryTravel}
	now := time.Now().UTC()
	s.posts.On("Create", mock.Anything, bob, in).
		Return(domain.Post{ID: "p9", OwnerID: "bob", Title: "t", Description: "d", Category: domain.CategoryTravel, CreatedAt: now, UpdatedAt: now}, nil).Once()

	rec := s.do(http.MethodPost, "/posts", token(t, "bob", time.Minute), `{"title":"t","description":"d","category":"Travel"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got response.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "p9", got.ID)
	assert.Equal(t, "bob", got.UserID)
}

func TestStorePostValidation(t *testing.T) {
	s := newServer(t)
	s.posts.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.Post{}, domain.ErrValidation).Once()

	rec := s.do(http.MethodPost, "/posts", token(t, "bob", time.Minute), `{"title":" ","description":"d","category":"Travel"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePostForbidden(t *testing.T) {
	s := newServer(t)
	s.posts.On("Update", mock.Anything, domain.NewPrincipal("eve"), "p1", mock.Anything).
		Return(domain.Post{}, domain.ErrForbidden).Once()

	rec := s.do(http.MethodPatch, "/posts/p1", token(t, "eve", time.Minute), `{"title":"mine now"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeletePostMissing(t *testing.T) {
	s := newServer(t)
	s.posts.On("Delete", mock.Anything, domain.NewPrincipal("bob"), "p1").Return(false, nil).Once()

	rec := s.do(http.MethodDelete, "/posts/p1", token(t, "bob", time.Minute), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":false}`, rec.Body.String())
}

func TestToggleLike(t *testing.T) {
	s := newServer(t)
	s.ledger.On("Toggle", mock.Anything, domain.NewPrincipal("bob"), "p1").Return(domain.LikeAdded, nil).Once()

	rec := s.do(http.MethodPost, "/posts/p1/like", token(t, "bob", time.Minute), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"post_id":"p1","result":"ADDED"}`, rec.Body.String())
}

func TestToggleLikeStoreUnavailable(t *testing.T) {
	s := newServer(t)
	s.ledger.On("Toggle", mock.Anything, mock.Anything, "p1").Return(domain.LikeRemoved, domain.ErrStoreUnavailable).Once()

	rec := s.do(http.MethodPost, "/posts/p1/like", token(t, "bob", time.Minute), "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLikeBatch(t *testing.T) {
	s := newServer(t)
	bob := domain.NewPrincipal("bob")
	s.ledger.On("Counts", mock.Anything, []string{"a", "b"}).Return(map[string]int64{"a": 1, "b": 0}, nil).Once()
	s.ledger.On("LikedSet", mock.Anything, bob, []string{"a", "b"}).Return(map[string]bool{"a": true, "b": false}, nil).Once()

	rec := s.do(http.MethodGet, "/likes?post_ids=a,%20b,", token(t, "bob", time.Minute), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"counts":{"a":1,"b":0},"liked":{"a":true,"b":false}}`, rec.Body.String())
}

func TestCreateCommentBlank(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodPost, "/posts/p1/comments", token(t, "bob", time.Minute), `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	s.comments.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCommentsFlow(t *testing.T) {
	s := newServer(t)
	bob := domain.NewPrincipal("bob")
	now := time.Now().UTC()
	c := domain.Comment{ID: "c1", PostID: "p1", AuthorID: "bob", Content: "hi", CreatedAt: now}
	s.comments.On("Add", mock.Anything, bob, "p1", "hi").Return(c, nil).Once()
	s.comments.On("ListForPost", mock.Anything, "p1").Return([]domain.Comment{c}, nil).Once()
	s.comments.On("Remove", mock.Anything, domain.NewPrincipal("eve"), "c1").Return(false, nil).Once()

	rec := s.do(http.MethodPost, "/posts/p1/comments", token(t, "bob", time.Minute), `{"content":"hi"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, "/posts/p1/comments", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Comments []response.Comment `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Comments, 1)
	assert.Equal(t, "bob", list.Comments[0].UserID)

	rec = s.do(http.MethodDelete, "/comments/c1", token(t, "eve", time.Minute), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":false}`, rec.Body.String())
}

func TestGetByIDNotFound(t *testing.T) {
	s := newServer(t)
	s.posts.On("GetByID", mock.Anything, "ghost").Return(domain.Post{}, domain.ErrNotFound).Once()

	rec := s.do(http.MethodGet, "/posts/ghost", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
