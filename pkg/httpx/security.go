package httpx

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ChatGPTFrameCSP — политика, разрешающая встраивать виджеты в ChatGPT.
const ChatGPTFrameCSP = "default-src 'self'; img-src * data: blob:; " +
	"script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; " +
	"frame-ancestors https://chat.openai.com https://chatgpt.com"

// SecurityHeaders — Content-Security-Policy на каждый ответ. X-Frame-Options
// снимается: встраиванием управляет frame-ancestors.
func SecurityHeaders(csp string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Content-Security-Policy", csp)
		h.Del("X-Frame-Options")
		c.Next()
	}
}

// CORS — заголовки для кросс-доменных вызовов.
func CORS(methods, headers string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)
		c.Next()
	}
}

// NoCache — запрет кэширования ответа.
func NoCache(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
}

// BearerToken — токен из Authorization: Bearer <token>; "" если его нет.
func BearerToken(r *http.Request) string {
	const prefix = "bearer "
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// UserAgentAllowed — UA содержит одну из подстрок списка. Пустой список — разрешено всё.
func UserAgentAllowed(ua string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a = strings.TrimSpace(a); a != "" && strings.Contains(ua, a) {
			return true
		}
	}
	return false
}
