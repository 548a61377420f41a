package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/rest/middleware"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/rest/request"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/rest/response"
)

type commentHandler struct {
	Service domain.CommentUsecase
}

func NewCommentHandler(svc domain.CommentUsecase) *commentHandler {
	return &commentHandler{
		Service: svc,
	}
}

func (h *commentHandler) CreateComment(c *gin.Context) {
	var req request.Comment
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	comment, err := h.Service.Add(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.NewCommentFromDomain(&comment))
}

// DeleteComment reports false when the comment is gone or belongs to someone else
func (h *commentHandler) DeleteComment(c *gin.Context) {
	ok, err := h.Service.Remove(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Deleted{Deleted: ok})
}

func (h *commentHandler) FetchCommentsByPost(c *gin.Context) {
	comments, err := h.Service.ListForPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	res := make([]response.Comment, len(comments))
	for i := range comments {
		res[i] = response.NewCommentFromDomain(&comments[i])
	}
	c.JSON(http.StatusOK, gin.H{"comments": res})
}
