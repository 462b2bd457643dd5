package handlers

import (
	"bytes"
	"io"

	"coral-threads/coral"

	"github.com/jinzhu/copier"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type storyRequest struct {
	StoryID string `json:"storyId" query:"storyId"`
}

type postCommentRequest struct {
	StoryID     string       `json:"storyId" query:"storyId"`
	CommentID   string       `json:"commentId" query:"commentId"`
	CommentText string       `json:"commentText"`
	PostedBy    coral.Author `json:"postedBy"`
	PostedDate  string       `json:"postedDate"`
}

type likeRequest struct {
	UserID       string `json:"userId" query:"userId"`
	StoryID      string `json:"storyId" query:"storyId"`
	CommentID    string `json:"commentId" query:"commentId"`
	UserHasLiked bool   `json:"userHasLiked" query:"userHasLiked"`
}

type reactionRequest struct {
	UserID   string `json:"userId" query:"userId"`
	StoryID  string `json:"storyId" query:"storyId"`
	Reaction string `json:"reaction" query:"reaction"`
}

// The legacy requests carry the snake_case names used by older clients. Field
// names match the canonical requests so they can be copied across.

type legacyStoryRequest struct {
	StoryID string `json:"story_id" query:"story_id"`
}

type legacyPostCommentRequest struct {
	StoryID     string       `json:"story_id" query:"story_id"`
	CommentID   string       `json:"comment_id" query:"comment_id"`
	CommentText string       `json:"comment_text"`
	PostedBy    coral.Author `json:"posted_by"`
	PostedDate  string       `json:"posted_date"`
}

type legacyLikeRequest struct {
	UserID       string `json:"user_id" query:"user_id"`
	StoryID      string `json:"story_id" query:"story_id"`
	CommentID    string `json:"comment_id" query:"comment_id"`
	UserHasLiked bool   `json:"user_has_liked" query:"user_has_liked"`
}

type legacyReactionRequest struct {
	UserID   string `json:"user_id" query:"user_id"`
	StoryID  string `json:"story_id" query:"story_id"`
	Reaction string `json:"reaction" query:"reaction"`
}

// bind decodes the request into req. The legacy form is decoded first and
// copied over, then the canonical form is decoded on top so that canonical
// names win when a client sends both.
func bind(c echo.Context, req, legacy interface{}) error {
	var body []byte
	if c.Request().Body != nil {
		var err error
		body, err = io.ReadAll(c.Request().Body)
		if err != nil {
			return errors.Wrap(err, "could not read the request body")
		}
	}

	decode := func(v interface{}) error {
		c.Request().Body = io.NopCloser(bytes.NewReader(body))
		return c.Bind(v)
	}

	if err := decode(legacy); err != nil {
		return errors.Wrap(err, "could not bind legacy parameters")
	}

	if err := copier.Copy(req, legacy); err != nil {
		return errors.Wrap(err, "could not copy legacy parameters")
	}

	if err := decode(req); err != nil {
		return errors.Wrap(err, "could not bind parameters")
	}

	return nil
}

// pathParam overrides dst with the named route parameter when the route has it.
func pathParam(c echo.Context, name string, dst *string) {
	if value := c.Param(name); value != "" {
		*dst = value
	}
}
