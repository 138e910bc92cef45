package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/travel-console/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code        int    `json:"code"`
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithStatus sends a success response with a custom status code
func RespondWithStatus(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"
	recoverable := false

	if appErr, ok := errors.As(err); ok {
		statusCode = appErr.StatusCode()
		message = appErr.Message
		recoverable = appErr.Recoverable()
	}

	if statusCode >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString("request_id")).
			Msg("Request failed")
	}

	c.AbortWithStatusJSON(statusCode, Response{
		Status:  "error",
		Message: message,
		Error: &Error{
			Code:        statusCode,
			Message:     message,
			Recoverable: recoverable,
		},
	})
}

// RespondWithStatusError sends an error response that has no AppError behind
// it, e.g. rate limiting.
func RespondWithStatusError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, Response{
		Status:  "error",
		Message: message,
		Error: &Error{
			Code:        statusCode,
			Message:     message,
			Recoverable: statusCode == http.StatusTooManyRequests,
		},
	})
}
