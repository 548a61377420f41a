package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/repository"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/rest/middleware"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/rest/response"
)

// maxBatchIDs bounds GET /likes to a few pages worth of posts
const maxBatchIDs = repository.PageMaxSize * 4

type LikeHandler struct {
	Ledger domain.LikeLedger
}

func NewLikeHandler(l domain.LikeLedger) *LikeHandler {
	return &LikeHandler{Ledger: l}
}

// Toggle likes the post if the caller hasn't, otherwise removes the like
func (h *LikeHandler) Toggle(c *gin.Context) {
	postID := c.Param("id")
	res, err := h.Ledger.Toggle(c.Request.Context(), middleware.PrincipalFrom(c), postID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.LikeToggle{PostID: postID, Result: res.String()})
}

// Status returns the count and the caller's membership for one post
func (h *LikeHandler) Status(c *gin.Context) {
	postID := c.Param("id")
	ctx := c.Request.Context()

	count, err := h.Ledger.Count(ctx, postID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	liked, err := h.Ledger.IsLiked(ctx, postID, middleware.PrincipalFrom(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.LikeStatus{PostID: postID, Count: count, Liked: liked})
}

// Batch returns counts and membership for the comma separated post_ids
func (h *LikeHandler) Batch(c *gin.Context) {
	ids := splitIDs(c.Query("post_ids"))
	if len(ids) > maxBatchIDs {
		abortWithError(c, domain.ErrBadParamInput)
		return
	}
	ctx := c.Request.Context()

	counts, err := h.Ledger.Counts(ctx, ids)
	if err != nil {
		abortWithError(c, err)
		return
	}
	liked, err := h.Ledger.LikedSet(ctx, middleware.PrincipalFrom(c), ids)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.LikeBatch{Counts: counts, Liked: liked})
}

func splitIDs(raw string) []string {
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
