// Package client talks to the feed REST API. It implements the same domain
// interfaces as the local services so an interaction.Orchestrator can run
// against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/rest/request"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/rest/response"
)

const defaultHTTPTimeout = 15 * time.Second

// TokenFunc returns the bearer token for an authenticated principal
type TokenFunc func(p domain.Principal) (string, error)

// HS256Token signs short lived tokens with a shared secret, the way the
// identity provider does in development setups.
func HS256Token(secret []byte, ttl time.Duration) TokenFunc {
	return func(p domain.Principal) (string, error) {
		now := time.Now()
		claims := jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		}
		return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	}
}

// Client does not retry. A failed call is reported once and the caller decides.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenFunc
}

var (
	_ domain.FeedPager      = (*Client)(nil)
	_ domain.LikeLedger     = (*Client)(nil)
	_ domain.PostUsecase    = (*Client)(nil)
	_ domain.CommentUsecase = (*Client)(nil)
)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func New(baseURL string, token TokenFunc, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FetchPage(ctx context.Context, offset, pageSize int) (domain.FeedPage, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(pageSize))

	var res response.PostPage
	if err := c.do(ctx, http.MethodGet, "/posts?"+q.Encode(), domain.Anonymous(), nil, &res); err != nil {
		return domain.FeedPage{}, err
	}

	posts := make([]domain.Post, len(res.Posts))
	for i := range res.Posts {
		p, err := res.Posts[i].ToDomain()
		if err != nil {
			return domain.FeedPage{}, fmt.Errorf("decode post: %w", err)
		}
		posts[i] = p
	}
	return domain.FeedPage{
		Posts:      posts,
		Offset:     res.Offset,
		NextOffset: res.NextOffset,
		HasMore:    res.HasMore,
	}, nil
}

func (c *Client) IsLiked(ctx context.Context, postID string, p domain.Principal) (bool, error) {
	if !p.Present() {
		return false, nil
	}
	status, err := c.likeStatus(ctx, postID, p)
	return status.Liked, err
}

func (c *Client) Count(ctx context.Context, postID string) (int64, error) {
	status, err := c.likeStatus(ctx, postID, domain.Anonymous())
	return status.Count, err
}

func (c *Client) likeStatus(ctx context.Context, postID string, p domain.Principal) (response.LikeStatus, error) {
	var res response.LikeStatus
	err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(postID)+"/likes", p, nil, &res)
	return res, err
}

func (c *Client) Toggle(ctx context.Context, p domain.Principal, postID string) (domain.LikeResult, error) {
	if !p.Present() {
		return domain.LikeRemoved, domain.ErrUnauthenticated
	}
	var res response.LikeToggle
	if err := c.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/like", p, nil, &res); err != nil {
		return domain.LikeRemoved, err
	}
	result, err := domain.ParseLikeResult(res.Result)
	if err != nil {
		return domain.LikeRemoved, fmt.Errorf("%w: unexpected toggle result %q", domain.ErrStoreUnavailable, res.Result)
	}
	return result, nil
}

func (c *Client) Counts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	batch, err := c.likeBatch(ctx, domain.Anonymous(), postIDs)
	if err != nil {
		return nil, err
	}
	if batch.Counts == nil {
		batch.Counts = map[string]int64{}
	}
	return batch.Counts, nil
}

func (c *Client) LikedSet(ctx context.Context, p domain.Principal, postIDs []string) (map[string]bool, error) {
	if !p.Present() {
		res := make(map[string]bool, len(postIDs))
		for _, id := range postIDs {
			res[id] = false
		}
		return res, nil
	}
	batch, err := c.likeBatch(ctx, p, postIDs)
	if err != nil {
		return nil, err
	}
	if batch.Liked == nil {
		batch.Liked = map[string]bool{}
	}
	return batch.Liked, nil
}

func (c *Client) likeBatch(ctx context.Context, p domain.Principal, postIDs []string) (response.LikeBatch, error) {
	if len(postIDs) == 0 {
		return response.LikeBatch{Counts: map[string]int64{}, Liked: map[string]bool{}}, nil
	}
	q := url.Values{}
	q.Set("post_ids", strings.Join(postIDs, ","))

	var res response.LikeBatch
	err := c.do(ctx, http.MethodGet, "/likes?"+q.Encode(), p, nil, &res)
	return res, err
}

func (c *Client) Create(ctx context.Context, p domain.Principal, in domain.PostInput) (domain.Post, error) {
	body := request.Post{Title: in.Title, Description: in.Description, Category: string(in.Category)}
	var res response.Post
	if err := c.do(ctx, http.MethodPost, "/posts", p, body, &res); err != nil {
		return domain.Post{}, err
	}
	return res.ToDomain()
}

func (c *Client) Update(ctx context.Context, p domain.Principal, id string, patch domain.PostPatch) (domain.Post, error) {
	body := request.PostPatch{Title: patch.Title, Description: patch.Description}
	if patch.Category != nil {
		category := string(*patch.Category)
		body.Category = &category
	}
	var res response.Post
	if err := c.do(ctx, http.MethodPatch, "/posts/"+url.PathEscape(id), p, body, &res); err != nil {
		return domain.Post{}, err
	}
	return res.ToDomain()
}

func (c *Client) Delete(ctx context.Context, p domain.Principal, id string) (bool, error) {
	var res response.Deleted
	err := c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), p, nil, &res)
	return res.Deleted, err
}

func (c *Client) GetByID(ctx context.Context, id string) (domain.Post, error) {
	var res response.FeedItem
	if err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), domain.Anonymous(), nil, &res); err != nil {
		return domain.Post{}, err
	}
	return res.Post.ToDomain()
}

func (c *Client) ListForPost(ctx context.Context, postID string) ([]domain.Comment, error) {
	var res struct {
		Comments []response.Comment `json:"comments"`
	}
	if err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(postID)+"/comments", domain.Anonymous(), nil, &res); err != nil {
		return nil, err
	}

	comments := make([]domain.Comment, len(res.Comments))
	for i := range res.Comments {
		cm, err := res.Comments[i].ToDomain()
		if err != nil {
			return nil, fmt.Errorf("decode comment: %w", err)
		}
		comments[i] = cm
	}
	return comments, nil
}

func (c *Client) Add(ctx context.Context, p domain.Principal, postID, content string) (domain.Comment, error) {
	var res response.Comment
	err := c.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/comments", p, request.Comment{Content: content}, &res)
	if err != nil {
		return domain.Comment{}, err
	}
	return res.ToDomain()
}

func (c *Client) Remove(ctx context.Context, p domain.Principal, commentID string) (bool, error) {
	var res response.Deleted
	err := c.do(ctx, http.MethodDelete, "/comments/"+url.PathEscape(commentID), p, nil, &res)
	return res.Deleted, err
}

// do sends one request. Transport failures and 5xx responses come back as
// ErrStoreUnavailable, 4xx responses as the matching domain error.
func (c *Client) do(ctx context.Context, method, path string, p domain.Principal, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.Present() {
		if c.token == nil {
			return domain.ErrUnauthenticated
		}
		token, err := c.token(p)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)
	msg := body.Message
	if msg == "" {
		msg = resp.Status
	}

	var kind error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		kind = domain.ErrUnauthenticated
	case resp.StatusCode == http.StatusForbidden:
		kind = domain.ErrForbidden
	case resp.StatusCode == http.StatusBadRequest:
		kind = domain.ErrValidation
	case resp.StatusCode == http.StatusNotFound:
		kind = domain.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		kind = domain.ErrConflict
	case resp.StatusCode >= http.StatusInternalServerError:
		kind = domain.ErrStoreUnavailable
	default:
		kind = domain.ErrInternalServerError
	}
	return fmt.Errorf("%w: %s", kind, msg)
}
