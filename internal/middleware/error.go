package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/travel-console/pkg/httputil"
)

// ErrorHandler answers with the last error a handler attached via c.Error
// when the handler did not write a response itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		httputil.RespondWithError(c, c.Errors.Last().Err)
	}
}
