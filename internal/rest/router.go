package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/rest/middleware"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/validation"
)

// Handlers groups what RegisterRoutes mounts
type Handlers struct {
	Posts    *PostHandler
	Likes    *LikeHandler
	Comments *commentHandler
}

// RegisterRoutes mounts the API on r. Reads accept anonymous callers,
// mutations need a bearer token.
func RegisterRoutes(r gin.IRouter, h Handlers, jwtSecret []byte) error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			return err
		}
	}

	r.Use(middleware.ResolvePrincipal(jwtSecret))

	r.GET("/feed", h.Posts.FetchFeed)
	r.GET("/posts", h.Posts.FetchPage)
	r.GET("/posts/:id", h.Posts.GetByID)
	r.GET("/posts/:id/likes", h.Likes.Status)
	r.GET("/likes", h.Likes.Batch)
	r.GET("/posts/:id/comments", h.Comments.FetchCommentsByPost)

	authorized := r.Group("/")
	authorized.Use(middleware.RequireAuth())
	{
		authorized.POST("/posts", h.Posts.Store)
		authorized.PATCH("/posts/:id", h.Posts.Update)
		authorized.DELETE("/posts/:id", h.Posts.Delete)
		authorized.POST("/posts/:id/like", h.Likes.Toggle)
		authorized.POST("/posts/:id/comments", h.Comments.CreateComment)
		authorized.DELETE("/comments/:id", h.Comments.DeleteComment)
	}
	return nil
}
