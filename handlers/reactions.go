package handlers

import (
	"net/http"

	"coral-threads/coral"
	"coral-threads/internal"
	"coral-threads/reactions"
	"coral-threads/store"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ReactionData is the data returned when querying a user's reaction.
type ReactionData struct {
	ReactionName string `json:"reaction_name"`
}

// GetReaction responds with the name of the user's reaction on the story, or
// an empty name when the user hasn't reacted.
func (h *Handler) GetReaction(c echo.Context) error {
	var req reactionRequest
	if err := bind(c, &req, &legacyReactionRequest{}); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid request.")
	}
	pathParam(c, "storyId", &req.StoryID)
	pathParam(c, "userId", &req.UserID)

	ctx := c.Request().Context()
	logger := internal.Logger(ctx).WithFields(logrus.Fields{
		"storyID": req.StoryID,
		"userID":  req.UserID,
	})

	if req.UserID == "" || req.StoryID == "" {
		logger.Warn("user ID or story ID not provided")
		return failure(c, http.StatusBadRequest, "User ID or Story ID not provided")
	}

	if msg := invalidIDMessage(req.StoryID, req.UserID); msg != "" {
		logger.Warn("identifier can not be used in a document key")
		return failure(c, http.StatusBadRequest, msg)
	}

	var registry coral.Registry
	if err := store.LoadJSON(ctx, h.store, store.ReactionsKey, &registry); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrEmpty) {
			return success(c, "No reaction yet", ReactionData{})
		}

		logger.WithError(err).Error("could not load reactions")
		return internalError(c)
	}

	name, _ := reactions.QueryReaction(registry, req.StoryID, req.UserID)

	return success(c, "Data retrieved successfully", ReactionData{ReactionName: name})
}

// SetReaction records the user's reaction on the story, replacing any
// reaction they picked before.
func (h *Handler) SetReaction(c echo.Context) error {
	var req reactionRequest
	if err := bind(c, &req, &legacyReactionRequest{}); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid request.")
	}
	pathParam(c, "storyId", &req.StoryID)

	ctx := c.Request().Context()
	logger := internal.Logger(ctx).WithFields(logrus.Fields{
		"storyID":  req.StoryID,
		"userID":   req.UserID,
		"reaction": req.Reaction,
	})

	if req.UserID == "" || req.StoryID == "" {
		logger.Warn("user ID or story ID not provided")
		return failure(c, http.StatusBadRequest, "User ID or Story ID not provided")
	}

	if msg := invalidIDMessage(req.StoryID, req.UserID); msg != "" {
		logger.Warn("identifier can not be used in a document key")
		return failure(c, http.StatusBadRequest, msg)
	}
	if req.Reaction == "" {
		logger.Warn("reaction not provided")
		return failure(c, http.StatusBadRequest, "Reaction not provided")
	}

	created := false

	var registry coral.Registry
	if err := store.LoadJSON(ctx, h.store, store.ReactionsKey, &registry); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			created = true
		case errors.Is(err, store.ErrEmpty):
			logger.Warn("reactions file is empty, starting a new one")
		default:
			logger.WithError(err).Error("could not load reactions")
			return internalError(c)
		}
	}

	registry = reactions.SetReaction(registry, req.StoryID, req.UserID, req.Reaction)

	if err := store.SaveJSON(ctx, h.store, store.ReactionsKey, registry); err != nil {
		logger.WithError(err).Error("could not save reactions")
		return internalError(c)
	}

	if created {
		return success(c, "File created and reaction added successfully.", nil)
	}

	return success(c, "Reaction added successfully.", nil)
}
