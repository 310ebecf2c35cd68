package httpx

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPLimiter — ограничитель запросов по IP: token bucket на адрес,
// limit запросов за window с пополнением равными долями.
type IPLimiter struct {
	limit   int
	window  time.Duration
	every   rate.Limit
	clients map[string]*ipClient
	now     func() time.Time

	lastPrune time.Time
	mu        sync.Mutex
}

type ipClient struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewIPLimiter — limit <= 0 или window <= 0 отключают ограничение.
func NewIPLimiter(limit int, window time.Duration) *IPLimiter {
	l := &IPLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*ipClient),
		now:     time.Now,
	}
	if limit > 0 && window > 0 {
		l.every = rate.Every(window / time.Duration(limit))
	}
	return l
}

// Allow — можно ли пропустить запрос с адреса ip. Возвращает остаток
// токенов и момент, когда корзина снова будет полной.
func (l *IPLimiter) Allow(ip string) (allowed bool, remaining int, reset time.Time) {
	now := l.now()
	if l.every == 0 {
		return true, l.limit, now
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(now)

	cl, ok := l.clients[ip]
	if !ok {
		cl = &ipClient{lim: rate.NewLimiter(l.every, l.limit)}
		l.clients[ip] = cl
	}
	cl.lastSeen = now

	allowed = cl.lim.AllowN(now, 1)
	tokens := cl.lim.TokensAt(now)
	if tokens < 0 {
		tokens = 0
	}
	missing := float64(l.limit) - tokens
	reset = now.Add(time.Duration(missing * float64(l.window) / float64(l.limit)))
	return allowed, int(tokens), reset
}

// Limit — размер корзины (запросов за окно).
func (l *IPLimiter) Limit() int { return l.limit }

// Len — число отслеживаемых адресов.
func (l *IPLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// pruneLocked — раз в окно выбрасывает адреса, не приходившие дольше окна:
// их корзины к этому моменту уже полные.
func (l *IPLimiter) pruneLocked(now time.Time) {
	if now.Sub(l.lastPrune) < l.window {
		return
	}
	l.lastPrune = now
	for ip, cl := range l.clients {
		if now.Sub(cl.lastSeen) >= l.window {
			delete(l.clients, ip)
		}
	}
}

// RateLimit — middleware ограничения по c.ClientIP(). Выставляет
// X-RateLimit-* и при превышении вызывает onLimit вместо обработчика.
func RateLimit(l *IPLimiter, onLimit gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, reset := l.Allow(c.ClientIP())
		SetRateLimitHeaders(c, l.Limit(), remaining, reset)

		if !allowed {
			onLimit(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetRateLimitHeaders — стандартные заголовки X-RateLimit-*.
func SetRateLimitHeaders(c *gin.Context, limit, remaining int, reset time.Time) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
}
