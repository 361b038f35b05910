package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogging(), requestDeadline(requestTimeout))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	auth := api.Group("/auth", s.rateLimit(clientIPKey))
	{
		auth.POST("/signup", s.signup)
		auth.POST("/login", s.login)
	}

	authed := api.Group("", s.bearerAuth(), s.rateLimit(actorKey))
	{
		authed.GET("/posts", s.listPosts)
		authed.POST("/posts", bodyLimit(s.maxUploadBytes+uploadOverheadBytes), s.createPost)
		authed.POST("/posts/:id/like", s.toggleLike)
		authed.POST("/posts/:id/comments", s.addComment)
		authed.DELETE("/posts/:id", s.deletePost)

		authed.GET("/me", s.me)
		authed.PATCH("/me", s.updateMe)
		authed.GET("/me/posts", s.myPosts)
	}

	return r
}
