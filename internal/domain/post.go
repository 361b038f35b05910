package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Transformation string

const (
	TransformationOriginal Transformation = "original"
	TransformationGhibli   Transformation = "ghibli"
	TransformationLowLight Transformation = "lowlight"
	TransformationVintage  Transformation = "vintage"
	TransformationCartoon  Transformation = "cartoon"
)

// Transformations lists every supported kind in display order.
var Transformations = []Transformation{
	TransformationOriginal,
	TransformationGhibli,
	TransformationLowLight,
	TransformationVintage,
	TransformationCartoon,
}

var ErrUnknownTransformation = errors.New("unknown transformation")

// ParseTransformation accepts a kind name case-insensitively, with or without a leading '#'.
// An empty string means original.
func ParseTransformation(s string) (Transformation, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	s = strings.ReplaceAll(s, "-", "")
	if s == "" {
		return TransformationOriginal, nil
	}
	for _, t := range Transformations {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTransformation, s)
}

// AcceptsPrompt reports whether a free-text prompt is meaningful for this kind.
func (t Transformation) AcceptsPrompt() bool {
	return t != TransformationOriginal && t != TransformationLowLight
}

type PostState int

const (
	PostUploading PostState = iota
	PostVisible
	PostDeleted
)

func (s PostState) String() string {
	switch s {
	case PostUploading:
		return "uploading"
	case PostVisible:
		return "visible"
	case PostDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("PostState(%d)", int(s))
	}
}

var ErrInvalidTransition = errors.New("invalid post state transition")

type Post struct {
	ID                string
	AuthorID          string
	AuthorDisplayName string
	ImageURL          string
	OriginalImageURL  string
	ImagePath         string
	OriginalImagePath string
	Caption           string
	Transformation    Transformation
	Prompt            string
	LikeCount         int
	LikedByMe         bool
	Comments          []Comment
	CreatedAt         time.Time
	State             PostState
}

// Transition moves the post along Uploading -> Visible -> Deleted.
func (p *Post) Transition(to PostState) error {
	if to != p.State+1 || to > PostDeleted {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.State, to)
	}
	p.State = to
	return nil
}

// Clone returns a copy that shares no slices with p.
func (p Post) Clone() Post {
	if p.Comments != nil {
		comments := make([]Comment, len(p.Comments))
		copy(comments, p.Comments)
		p.Comments = comments
	}
	return p
}

type Comment struct {
	ID                string
	PostID            string
	AuthorID          string
	AuthorDisplayName string
	Content           string
	CreatedAt         time.Time
}
