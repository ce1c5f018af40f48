package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ErrorHandler renders errors handed over with c.Error by handlers that did
// not write a response. The cause is logged; the client only sees a generic message.
func ErrorHandler(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		log.Error().
			Err(c.Errors.Last().Err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("unhandled error")

		if c.Writer.Written() {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
