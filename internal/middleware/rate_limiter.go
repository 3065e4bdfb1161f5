package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"pdv/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window limiter per client IP ────────────────────────────────────────

type window struct {
	count int
	end   time.Time
}

// Limiter counts requests per client IP inside fixed windows.
type Limiter struct {
	limit  int
	window time.Duration
	msg    string

	mu        sync.Mutex
	clients   map[string]*window
	lastPurge time.Time
	now       func() time.Time
}

const purgeInterval = 5 * time.Minute

func newLimiter(limit int, w time.Duration, msg string) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  w,
		msg:     msg,
		clients: make(map[string]*window),
		now:     time.Now,
	}
}

// allow registers one hit for ip and reports whether it fits in the window,
// plus the time left until the window resets.
func (l *Limiter) allow(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPurge) > purgeInterval {
		l.purge(now)
	}

	w, ok := l.clients[ip]
	if !ok || now.After(w.end) {
		w = &window{end: now.Add(l.window)}
		l.clients[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.end.Sub(now)
}

// purge drops expired windows so IPs that never return do not accumulate.
func (l *Limiter) purge(now time.Time) {
	purged := 0
	for ip, w := range l.clients {
		if now.After(w.end) {
			delete(l.clients, ip)
			purged++
		}
	}
	l.lastPurge = now
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(l.clients)).Msg("rate limiter purged")
	}
}

func (l *Limiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, left := l.allow(c.ClientIP())
		if !ok {
			retry := int(left.Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimiter(20, time.Minute, "Muitas tentativas de login. Tente novamente em 1 minuto.").Handler()
}

// RateLimiter returns a general-purpose limiter of limit requests per window per IP.
func RateLimiter(limit int, w time.Duration) gin.HandlerFunc {
	return newLimiter(limit, w, "Muitas requisições. Tente novamente em instantes.").Handler()
}
