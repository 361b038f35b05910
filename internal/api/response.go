package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/artfeed-bot/internal/domain"
	apperrors "github.com/orgball2608/artfeed-bot/pkg/errors"
)

type errorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorInfo `json:"error"`
}

type commentResponse struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type postResponse struct {
	ID               string            `json:"id"`
	AuthorID         string            `json:"author_id"`
	AuthorName       string            `json:"author_name"`
	ImageURL         string            `json:"image_url"`
	OriginalImageURL string            `json:"original_image_url"`
	Caption          string            `json:"caption"`
	Transformation   string            `json:"transformation"`
	Prompt           string            `json:"prompt,omitempty"`
	LikeCount        int               `json:"like_count"`
	LikedByMe        bool              `json:"liked_by_me"`
	Comments         []commentResponse `json:"comments"`
	CreatedAt        time.Time         `json:"created_at"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	Bio       string    `json:"bio"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	Token   string          `json:"token"`
	Profile profileResponse `json:"profile"`
}

func newCommentResponse(c domain.Comment) commentResponse {
	return commentResponse{
		ID:         c.ID,
		PostID:     c.PostID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorDisplayName,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
	}
}

func newPostResponse(p domain.Post) postResponse {
	comments := make([]commentResponse, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, newCommentResponse(c))
	}
	return postResponse{
		ID:               p.ID,
		AuthorID:         p.AuthorID,
		AuthorName:       p.AuthorDisplayName,
		ImageURL:         p.ImageURL,
		OriginalImageURL: p.OriginalImageURL,
		Caption:          p.Caption,
		Transformation:   string(p.Transformation),
		Prompt:           p.Prompt,
		LikeCount:        p.LikeCount,
		LikedByMe:        p.LikedByMe,
		Comments:         comments,
		CreatedAt:        p.CreatedAt,
	}
}

func newPostsResponse(posts []domain.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, newPostResponse(p))
	}
	return out
}

func newProfileResponse(p *domain.Profile) profileResponse {
	return profileResponse{
		ID:        p.ID,
		Email:     p.Email,
		Username:  p.Username,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		Bio:       p.Bio,
		Website:   p.Website,
		CreatedAt: p.CreatedAt,
	}
}

func statusFor(err error) int {
	switch {
	case apperrors.IsUnauthorized(err):
		return http.StatusUnauthorized
	case apperrors.IsForbidden(err):
		return http.StatusForbidden
	case apperrors.IsInvalidInput(err):
		return http.StatusBadRequest
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsDependencyFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes err as JSON. Collaborator details never reach the client.
func (s *Server) abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	info := errorInfo{Code: apperrors.GetCode(err), Message: apperrors.GetMessage(err)}

	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		if info.Code == "" {
			info.Code = "INTERNAL"
		}
		info.Message = http.StatusText(status)
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: info})
}
