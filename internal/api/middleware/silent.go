package middleware

import (
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SilentLogger logs requests but ignores "broken pipe" errors caused
// by clients navigating away mid-download of a post image.
func SilentLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path = path + "?" + q
		}

		c.Next()

		for _, e := range c.Errors {
			if ne, ok := e.Err.(*net.OpError); ok {
				if se, ok := ne.Err.(*os.SyscallError); ok {
					errMsg := strings.ToLower(se.Error())
					if strings.Contains(errMsg, "broken pipe") ||
						strings.Contains(errMsg, "connection reset by peer") {
						return
					}
				}
			}
		}

		slog.Info("request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"latency", time.Since(start),
		)
	}
}
