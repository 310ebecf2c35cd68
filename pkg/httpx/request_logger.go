package httpx

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/autoagent/internal/ports"
	"github.com/Gunvolt24/autoagent/pkg/ctxmeta"
)

// DefaultSkipPaths — маршруты, которые не логируются.
var DefaultSkipPaths = []string{"/metrics", "/ping"}

// RequestLogger — одна строка лога на HTTP-запрос. skip заменяет DefaultSkipPaths.
func RequestLogger(log ports.Logger, skip ...string) gin.HandlerFunc {
	if len(skip) == 0 {
		skip = DefaultSkipPaths
	}
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if _, ok := skipped[path]; ok {
			return
		}

		sp, _ := ctxmeta.SpanIDFromContext(c.Request.Context())

		// request_id и trace_id дописывает логгер из контекста
		log.Infof(
			c.Request.Context(),
			"request method=%s path=%s status=%d ip=%s duration=%s size=%d span=%s",
			c.Request.Method,
			path,
			c.Writer.Status(),
			c.ClientIP(),
			time.Since(start),
			c.Writer.Size(),
			sp,
		)
	}
}
