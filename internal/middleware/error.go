package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "vestora/internal/errors"
	"vestora/internal/logger"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code and the client message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// resolve maps any error onto the taxonomy. Errors outside it become
// INTERNAL_ERROR so their text never reaches the client.
func resolve(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// RespondError writes the error body and aborts the chain. Server-side
// failures (5xx) are logged with their cause; client errors are not, the
// request log already records the status.
func RespondError(c *gin.Context, err error) {
	appErr := resolve(err)

	if appErr.StatusCode >= 500 {
		fields := []interface{}{
			"code", appErr.Code,
			"status", appErr.StatusCode,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", RequestID(c),
		}
		if appErr.Internal != nil {
			fields = append(fields, "cause", appErr.Internal.Error())
		}
		if userID := c.GetString(ContextUserID); userID != "" {
			fields = append(fields, "user_id", userID)
		}
		logger.Named("http").Errorw("request failed", fields...)
	}

	c.AbortWithStatusJSON(appErr.StatusCode, ErrorBody{
		Error: ErrorDetail{Code: appErr.Code, Message: appErr.Message},
	})
}

// ErrorHandler renders the last error a handler attached with c.Error,
// unless the handler already wrote a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		RespondError(c, c.Errors.Last().Err)
	}
}
