package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"agency-site-backend/internal/delivery/http/response"
	"agency-site-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				log.Error("Request failed",
					"path", c.FullPath(),
					"status", appErr.Code,
					"error", appErr.Err,
					"request_id", c.GetString("RequestID"),
				)
			}
			response.Error(c, appErr.Code, appErr.Message, appErr.Details)
			return
		}

		// Unknown errors never leak their text to the client.
		log.Error("Internal Server Error", "error", err, "request_id", c.GetString("RequestID"))
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", "")
	}
}
