package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func Logger(l *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := l.WithFields(logrus.Fields{
			"Method":  c.Request.Method,
			"Path":    c.Request.URL.Path,
			"Status":  c.Writer.Status(),
			"Latency": time.Since(start).String(),
		})
		for _, ginErr := range c.Errors {
			if ginErr.IsType(gin.ErrorTypePrivate) {
				entry = entry.WithError(ginErr.Err)
			}
		}
		entry.Info("request handled")
	}
}
