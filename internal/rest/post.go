package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/rest/middleware"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/rest/request"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/rest/response"
)

// PostHandler represent the httphandler for posts and the feed
type PostHandler struct {
	Service  domain.PostUsecase
	Pager    domain.FeedPager
	Enricher domain.FeedEnricher
}

func NewPostHandler(svc domain.PostUsecase, pager domain.FeedPager, enricher domain.FeedEnricher) *PostHandler {
	return &PostHandler{
		Service:  svc,
		Pager:    pager,
		Enricher: enricher,
	}
}

// pageParams reads offset and limit. A missing limit leaves the default to the pager.
func pageParams(c *gin.Context) (offset, limit int, err error) {
	if s := c.Query("offset"); s != "" {
		offset, err = strconv.Atoi(s)
		if err != nil || offset < 0 {
			return 0, 0, domain.ErrBadParamInput
		}
	}
	if s := c.Query("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil {
			return 0, 0, domain.ErrBadParamInput
		}
	}
	return offset, limit, nil
}

// FetchPage returns a raw page of posts without like data
func (h *PostHandler) FetchPage(c *gin.Context) {
	offset, limit, err := pageParams(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	page, err := h.Pager.FetchPage(c.Request.Context(), offset, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewPostPageFromDomain(&page))
}

// FetchFeed returns a page of posts joined with like counts and the caller's likes
func (h *PostHandler) FetchFeed(c *gin.Context) {
	offset, limit, err := pageParams(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	ctx := c.Request.Context()

	page, err := h.Pager.FetchPage(ctx, offset, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	items, err := h.Enricher.Enrich(ctx, middleware.PrincipalFrom(c), page.Posts)
	if err != nil {
		abortWithError(c, domain.StoreError(err))
		return
	}

	res := response.FeedPage{
		Items:      make([]response.FeedItem, len(items)),
		Offset:     page.Offset,
		NextOffset: page.NextOffset,
		HasMore:    page.HasMore,
	}
	for i := range items {
		res.Items[i] = response.NewFeedItemFromDomain(&items[i])
	}
	c.JSON(http.StatusOK, res)
}

// GetByID will get the enriched post by given id
func (h *PostHandler) GetByID(c *gin.Context) {
	ctx := c.Request.Context()
	post, err := h.Service.GetByID(ctx, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	items, err := h.Enricher.Enrich(ctx, middleware.PrincipalFrom(c), []domain.Post{post})
	if err != nil {
		abortWithError(c, domain.StoreError(err))
		return
	}
	c.JSON(http.StatusOK, response.NewFeedItemFromDomain(&items[0]))
}

// Store will store the post by given request body
func (h *PostHandler) Store(c *gin.Context) {
	var req request.Post
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	post, err := h.Service.Create(c.Request.Context(), middleware.PrincipalFrom(c), req.ToDomain())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.NewPostFromDomain(&post))
}

// Update applies the fields present in the request body
func (h *PostHandler) Update(c *gin.Context) {
	var req request.PostPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	post, err := h.Service.Update(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), req.ToDomain())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewPostFromDomain(&post))
}

// Delete will delete the post with its likes and comments
func (h *PostHandler) Delete(c *gin.Context) {
	ok, err := h.Service.Delete(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Deleted{Deleted: ok})
}
