package web

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Zachkp/portfolio/internal/store"
)

const (
	visitorCookie = "visitor_id"
	visitorKey    = "visitor"
)

func randomToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		panic("failed to generate token: " + err.Error())
	}
	return hex.EncodeToString(bytes)
}

type hasher struct {
	salt string
}

// hashIP is consistent per address for the life of the process.
func (h *hasher) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + h.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// visitorIDMiddleware gives every browser an opaque id so its theme
// choice can be remembered. The id carries no personal data.
func (h *Handler) visitorIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(visitorCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(visitorCookie, id, 3600*24*365, "/", "", false, true)
		}
		c.Set(visitorKey, id)
		c.Next()
	}
}

func visitorID(c *gin.Context) string {
	return c.GetString(visitorKey)
}

var untrackedPrefixes = []string{
	"/static/", "/admin", "/favicon", "/privacy",
	"/fragments/", "/console", "/theme", "/contact-form",
}

// visitorTrackingMiddleware records page views with hashed addresses.
// Do Not Track is honored.
func (h *Handler) visitorTrackingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}
		for _, prefix := range untrackedPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		visit := store.Visit{
			HashedIP:  h.hasher.hashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
			Timestamp: h.Now(),
		}
		h.background(func(ctx context.Context) {
			if err := h.Store.RecordVisit(ctx, visit); err != nil {
				h.Logger.Warn("error recording visitor", zap.Error(err))
			}
		})
		c.Next()
	}
}

// clientLimiter hands each client its own token bucket.
type clientLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(perMinute float64) *clientLimiter {
	burst := int(perMinute)
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{
		limit:   rate.Limit(perMinute / 60),
		burst:   burst,
		clients: make(map[string]*limiterEntry),
	}
}

func (l *clientLimiter) allow(client string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.clients[client]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// prune forgets clients idle for an hour; their buckets are full again by then.
func (l *clientLimiter) prune(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, e := range l.clients {
		if now.Sub(e.lastSeen) > time.Hour {
			delete(l.clients, k)
		}
	}
}

func (h *Handler) rateLimit(l *clientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(h.hasher.hashIP(c.ClientIP()), h.Now()) {
			c.Header("Retry-After", "60")
			c.HTML(http.StatusTooManyRequests, "contact-error.html", gin.H{
				"error": "You're sending messages a little too quickly. Please wait a minute and try again.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
