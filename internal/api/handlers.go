package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/feed"
	"github.com/orgball2608/artfeed-bot/internal/identity"
	apperrors "github.com/orgball2608/artfeed-bot/pkg/errors"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type commentRequest struct {
	Content string `json:"content"`
}

type profileUpdateRequest struct {
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
	Website   *string `json:"website"`
}

func (s *Server) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, apperrors.InvalidInput("invalid request body"))
		return
	}

	profile, err := s.accounts.Signup(c.Request.Context(), identity.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		FullName: req.FullName,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	s.respondWithToken(c, http.StatusCreated, profile)
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, apperrors.InvalidInput("invalid request body"))
		return
	}

	profile, err := s.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	s.respondWithToken(c, http.StatusOK, profile)
}

func (s *Server) respondWithToken(c *gin.Context, status int, profile *domain.Profile) {
	token, err := s.tokens.Sign(profile.Actor())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(status, authResponse{Token: token, Profile: newProfileResponse(profile)})
}

func (s *Server) me(c *gin.Context) {
	profile, err := s.accounts.Profile(c.Request.Context(), currentActor(c).ID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(profile))
}

func (s *Server) updateMe(c *gin.Context) {
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, apperrors.InvalidInput("invalid request body"))
		return
	}

	profile, err := s.accounts.UpdateProfile(c.Request.Context(), currentActor(c).ID, identity.ProfileUpdate{
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
		Website:   req.Website,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(profile))
}

// listPosts serves the feed, narrowed by ?kind= and ?q= when given.
func (s *Server) listPosts(c *gin.Context) {
	var filter feed.ExploreFilter
	if kind := c.Query("kind"); kind != "" {
		t, err := domain.ParseTransformation(kind)
		if err != nil {
			s.abortWithError(c, apperrors.InvalidInput(err.Error()))
			return
		}
		filter.Transformation = t
	}
	filter.Search = c.Query("q")

	store := currentSession(c).Feed
	if err := store.Refresh(c.Request.Context()); err != nil {
		s.abortWithError(c, err)
		return
	}

	posts, err := store.Explore(c.Request.Context(), filter)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": newPostsResponse(posts)})
}

func (s *Server) myPosts(c *gin.Context) {
	posts, err := currentSession(c).Feed.ByAuthor(c.Request.Context(), currentActor(c).ID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": newPostsResponse(posts)})
}

func (s *Server) createPost(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		s.abortWithError(c, apperrors.InvalidInput("image file is required"))
		return
	}

	f, err := header.Open()
	if err != nil {
		s.abortWithError(c, apperrors.InvalidInput("image file cannot be read"))
		return
	}
	defer f.Close()

	// One byte over the limit is enough for the store to reject it.
	data, err := io.ReadAll(io.LimitReader(f, s.maxUploadBytes+1))
	if err != nil {
		s.abortWithError(c, apperrors.InvalidInput("image file cannot be read"))
		return
	}

	p, err := currentSession(c).Feed.CreatePost(c.Request.Context(), feed.CreatePostInput{
		Image:          data,
		Caption:        c.PostForm("caption"),
		Transformation: domain.Transformation(c.PostForm("kind")),
		Prompt:         c.PostForm("prompt"),
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPostResponse(p))
}

func (s *Server) toggleLike(c *gin.Context) {
	p, err := currentSession(c).Feed.ToggleLike(c.Request.Context(), c.Param("id"), currentActor(c).ID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostResponse(p))
}

func (s *Server) addComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, apperrors.InvalidInput("invalid request body"))
		return
	}

	comment, err := currentSession(c).Feed.AddComment(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCommentResponse(comment))
}

func (s *Server) deletePost(c *gin.Context) {
	if err := currentSession(c).Feed.DeletePost(c.Request.Context(), c.Param("id"), currentActor(c).ID); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
