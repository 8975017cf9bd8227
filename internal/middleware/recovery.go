package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/charlesng35/coffeeshop/pkg/errors"
	"github.com/charlesng35/coffeeshop/pkg/logger"
	"github.com/charlesng35/coffeeshop/pkg/response"
)

// Recovery converts panics into a 500 response and logs the error.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithModule("http").Error("panic",
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", RequestIDFromContext(c)),
					zap.Any("error", r),
					zap.Stack("stack"),
				)
				response.Abort(c, appErrors.ErrInternalServer.WithInternal(fmt.Errorf("panic: %v", r)))
			}
		}()
		c.Next()
	}
}

// NotFoundHandler renders the error envelope for unknown routes.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, appErrors.ErrNotFound)
}

// MethodNotAllowedHandler renders the error envelope for known paths hit with the wrong method.
func MethodNotAllowedHandler(c *gin.Context) {
	response.Error(c, appErrors.ErrMethodNotAllowed)
}
