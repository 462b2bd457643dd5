package handlers

import (
	"context"
	"net/http"

	"coral-threads/comments"
	"coral-threads/coral"
	"coral-threads/internal"
	"coral-threads/store"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// loadForest returns the story's comments, treating a missing or empty
// document as a story without comments.
func (h *Handler) loadForest(ctx context.Context, storyID string) (coral.Forest, error) {
	forest := coral.Forest{}
	if err := store.LoadJSON(ctx, h.store, store.CommentsKey(storyID), &forest); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrEmpty) {
			return coral.Forest{}, nil
		}

		return nil, err
	}

	if forest == nil {
		forest = coral.Forest{}
	}

	return forest, nil
}

// GetComments responds with every comment on the story.
func (h *Handler) GetComments(c echo.Context) error {
	var req storyRequest
	if err := bind(c, &req, &legacyStoryRequest{}); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid request.")
	}
	pathParam(c, "storyId", &req.StoryID)

	ctx := c.Request().Context()
	logger := internal.Logger(ctx).WithField("storyID", req.StoryID)

	if req.StoryID == "" {
		logger.Warn("story ID is missing")
		return failure(c, http.StatusBadRequest, "Story ID is missing.")
	}

	if msg := invalidIDMessage(req.StoryID, ""); msg != "" {
		logger.Warn("identifier can not be used in a document key")
		return failure(c, http.StatusBadRequest, msg)
	}

	forest, err := h.loadForest(ctx, req.StoryID)
	if err != nil {
		logger.WithError(err).Error("could not load comments")
		return internalError(c)
	}

	return success(c, "Data retrieved successfully.", forest)
}

// PostComment creates the comment, or edits it when it already exists, and
// responds with every comment on the story.
func (h *Handler) PostComment(c echo.Context) error {
	var req postCommentRequest
	if err := bind(c, &req, &legacyPostCommentRequest{}); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid request.")
	}
	pathParam(c, "storyId", &req.StoryID)

	ctx := c.Request().Context()
	logger := internal.Logger(ctx).WithFields(logrus.Fields{
		"storyID":   req.StoryID,
		"commentID": req.CommentID,
	})

	if req.StoryID == "" || req.CommentID == "" {
		logger.Warn("story ID or comment ID is missing")
		return failure(c, http.StatusBadRequest, "Story ID or comment ID is missing.")
	}

	if msg := invalidIDMessage(req.StoryID, req.PostedBy.ID); msg != "" {
		logger.Warn("identifier can not be used in a document key")
		return failure(c, http.StatusBadRequest, msg)
	}

	forest, err := h.loadForest(ctx, req.StoryID)
	if err != nil {
		logger.WithError(err).Error("could not load comments")
		return internalError(c)
	}

	forest, placement := comments.Upsert(forest, &coral.Comment{
		CommentID:   req.CommentID,
		CommentText: req.CommentText,
		PostedBy:    req.PostedBy,
		PostedDate:  req.PostedDate,
	})

	if placement == comments.Orphaned {
		logger.WithField("parentID", comments.ParentID(req.CommentID)).Warn("parent comment not found, comment added at the top level")
	}

	if err := store.SaveJSON(ctx, h.store, store.CommentsKey(req.StoryID), forest); err != nil {
		logger.WithError(err).Error("could not save comments")
		return internalError(c)
	}

	logger.WithField("placement", placement.String()).Info("comment saved")

	return success(c, "Comment saved successfully.", forest)
}

// LikeComment adds or removes the user's like on a comment and responds with
// every comment on the story.
func (h *Handler) LikeComment(c echo.Context) error {
	var req likeRequest
	if err := bind(c, &req, &legacyLikeRequest{}); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid request.")
	}
	pathParam(c, "storyId", &req.StoryID)
	pathParam(c, "commentId", &req.CommentID)

	ctx := c.Request().Context()
	logger := internal.Logger(ctx).WithFields(logrus.Fields{
		"storyID":   req.StoryID,
		"commentID": req.CommentID,
		"userID":    req.UserID,
	})

	if req.UserID == "" || req.StoryID == "" || req.CommentID == "" {
		logger.Warn("user ID, story ID, or comment ID is missing")
		return failure(c, http.StatusBadRequest, "User ID, story ID, or comment ID is missing.")
	}

	if msg := invalidIDMessage(req.StoryID, req.UserID); msg != "" {
		logger.Warn("identifier can not be used in a document key")
		return failure(c, http.StatusBadRequest, msg)
	}

	key := store.CommentsKey(req.StoryID)

	var forest coral.Forest
	if err := store.LoadJSON(ctx, h.store, key, &forest); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			logger.WithField("key", key).Warn("file not found")
			return failure(c, http.StatusNotFound, "File not found.")
		case errors.Is(err, store.ErrEmpty):
			logger.WithField("key", key).Warn("file is empty")
			return failure(c, http.StatusNotFound, "File is empty.")
		default:
			logger.WithError(err).Error("could not load comments")
			return internalError(c)
		}
	}

	forest, changed := comments.SetLike(forest, req.CommentID, req.UserID, req.UserHasLiked)
	if !changed {
		logger.WithField("userHasLiked", req.UserHasLiked).Debug("like unchanged, not writing comments")
		return success(c, "Data updated successfully.", forest)
	}

	if err := store.SaveJSON(ctx, h.store, key, forest); err != nil {
		logger.WithError(err).Error("could not save comments")
		return internalError(c)
	}

	return success(c, "Data updated successfully.", forest)
}
