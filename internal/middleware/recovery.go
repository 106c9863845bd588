package middleware

import (
	stdErrors "errors"
	"net"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/aidemo/pkg/errors"
	"github.com/charlesng35/aidemo/pkg/logger"
	"github.com/charlesng35/aidemo/pkg/response"
)

// Recovery turns a handler panic into the generic 500 body. The panic value and stack
// go to the log only. A panic caused by the client hanging up is logged without a stack
// and nothing is written back.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			log := logger.WithModule("http").With(
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", RequestID(c)),
			)
			if err, ok := rec.(error); ok && clientGone(err) {
				log.Warn("client disconnected", zap.Error(err))
				c.Abort()
				return
			}

			log.Error("handler panic", zap.Any("panic", rec), zap.Stack("stack"))
			response.Abort(c, errors.ErrInternalServer)
		}()
		c.Next()
	}
}

func clientGone(err error) bool {
	if stdErrors.Is(err, syscall.EPIPE) || stdErrors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var opErr *net.OpError
	return stdErrors.As(err, &opErr) && opErr.Op == "write"
}

// NotFoundHandler answers unknown routes with the JSON error body.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, errors.ErrNotFound.WithMessage("route "+c.Request.URL.Path+" not found"))
}
