package handlers

import (
	"time"

	"coral-threads/internal"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestLogger attaches a logger carrying the request's id to the request
// context and logs every request once it has been handled.
func RequestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()

			req := c.Request()
			entry := logger.WithFields(logrus.Fields{
				"requestID": uuid.NewString(),
				"method":    req.Method,
				"path":      c.Path(),
			})
			c.SetRequest(req.WithContext(internal.WithLogger(req.Context(), entry)))

			if err := next(c); err != nil {
				c.Error(err)
			}

			entry.WithFields(logrus.Fields{
				"status": c.Response().Status,
				"took":   time.Since(started).String(),
			}).Info("handled request")

			return nil
		}
	}
}
