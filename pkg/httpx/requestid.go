package httpx

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Gunvolt24/autoagent/pkg/ctxmeta"
)

// HeaderRequestID — заголовок идентификатора запроса.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLen = 128

// RequestIDMiddleware — берёт X-Request-ID клиента (если он печатный и не длиннее 128 байт)
// или выдаёт новый UUID. request_id и IP клиента попадают в контекст запроса,
// request_id возвращается в ответе.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if !acceptableRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Header(HeaderRequestID, rid)

		ctx := ctxmeta.WithClientIP(ctxmeta.WithRequestID(c.Request.Context(), rid), c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func acceptableRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}
