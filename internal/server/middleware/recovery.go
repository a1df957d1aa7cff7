package middleware

import (
	"errors"
	"net"
	"net/http"
	"os"
	"strings"

	infraerrors "github.com/accessentitlement/platform/internal/pkg/errors"
	"github.com/gin-gonic/gin"
)

// Recovery converts panics into the platform's standard JSON error envelope
// (infraerrors.Status), the same shape every handler's error boundary uses.
//
// It preserves Gin's broken-pipe handling by not attempting to write a
// response when the client connection is already gone.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(gin.DefaultErrorWriter, func(c *gin.Context, recovered any) {
		recoveredErr, _ := recovered.(error)

		if isBrokenPipe(recoveredErr) {
			if recoveredErr != nil {
				_ = c.Error(recoveredErr)
			}
			c.Abort()
			return
		}

		if c.Writer.Written() {
			c.Abort()
			return
		}

		c.JSON(http.StatusInternalServerError, infraerrors.Status{
			Code:    http.StatusInternalServerError,
			Message: infraerrors.UnknownMessage,
		})
		c.Abort()
	})
}

func isBrokenPipe(err error) bool {
	if err == nil {
		return false
	}

	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}

	var syscallErr *os.SyscallError
	if !errors.As(opErr.Err, &syscallErr) {
		return false
	}

	msg := strings.ToLower(syscallErr.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}

// WriteError maps err through errors.ToHTTP and writes the matching status
// and JSON body. Every handler's error path funnels through this.
func WriteError(c *gin.Context, err error) {
	code, body := infraerrors.ToHTTP(err)
	c.AbortWithStatusJSON(code, body)
}
