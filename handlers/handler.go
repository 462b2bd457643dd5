package handlers

import (
	"net/http"

	"coral-threads/store"

	"github.com/labstack/echo/v4"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Response is the envelope every handler responds with.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Handler serves the comment and reaction operations from a document store.
type Handler struct {
	store store.Store
}

// New returns a handler reading and writing documents in s.
func New(s store.Store) *Handler {
	return &Handler{store: s}
}

// Register adds the routes to the echo instance. The /actions group keeps the
// flat parameter style of the original actions, where every identifier is
// passed in the query or the body.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	e.GET("/stories/:storyId/comments", h.GetComments)
	e.POST("/stories/:storyId/comments", h.PostComment)
	e.POST("/stories/:storyId/comments/:commentId/like", h.LikeComment)
	e.GET("/stories/:storyId/reactions/:userId", h.GetReaction)
	e.POST("/stories/:storyId/reactions", h.SetReaction)

	actions := e.Group("/actions")
	actions.GET("/getComments", h.GetComments)
	actions.POST("/postComment", h.PostComment)
	actions.POST("/likeForComment", h.LikeComment)
	actions.GET("/getReactions", h.GetReaction)
	actions.POST("/postReaction", h.SetReaction)
}

// Health reports that the server is up.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, Response{Status: statusSuccess, Message: "ok"})
}

func success(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Status:  statusSuccess,
		Message: message,
		Data:    data,
	})
}

func failure(c echo.Context, code int, message string) error {
	return c.JSON(code, Response{
		Status:  statusFailure,
		Message: message,
	})
}

// invalidIDMessage returns the message for the first id that can't be used in
// a document key, or nothing when both are usable. An empty userID is skipped.
func invalidIDMessage(storyID, userID string) string {
	if !store.ValidID(storyID) {
		return "Invalid story ID."
	}
	if userID != "" && !store.ValidID(userID) {
		return "Invalid user ID."
	}

	return ""
}

func internalError(c echo.Context) error {
	return failure(c, http.StatusInternalServerError, "Internal Server Error")
}
