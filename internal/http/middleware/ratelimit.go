package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"golang.org/x/time/rate"
)

// keyFunc selects the identity keying a rate-limit bucket.
type keyFunc func(*gin.Context) string

// KeyByUserOrIP keys buckets by the caller's user id when the request names
// one, falling back to the client IP. The id comes from the context, the
// user_id query parameter or the user_id field of a JSON body, in that
// order. Each /chat call costs one model invocation, so limiting per user
// bounds upstream spend.
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		id := callerID(c)
		if id == "" {
			if id = bodyUserID(c); id != "" {
				c.Set(userIDKey, id)
			}
		}
		if id != "" {
			return "user:" + id
		}
		return "ip:" + c.ClientIP()
	}
}

// SetUserID records the caller identity for access logs and rate-limit keys.
func SetUserID(c *gin.Context, id int64) {
	c.Set(userIDKey, strconv.FormatInt(id, 10))
}

// maxPeekBytes bounds the body read while resolving the caller.
const maxPeekBytes = 64 << 10

// bodyUserID reads user_id from a JSON body and rewinds the body for the
// handler. Oversized or malformed bodies yield "".
func bodyUserID(c *gin.Context) string {
	r := c.Request
	if r == nil || r.Body == nil || r.Body == http.NoBody || c.ContentType() != binding.MIMEJSON {
		return ""
	}
	buf, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes+1))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(buf), r.Body), r.Body}
	if err != nil || len(buf) > maxPeekBytes {
		return ""
	}
	var ref struct {
		UserID json.Number `json:"user_id"`
	}
	if json.Unmarshal(buf, &ref) != nil {
		return ""
	}
	if n, err := ref.UserID.Int64(); err != nil || n == 0 {
		return ""
	}
	return ref.UserID.String()
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local, per-key token bucket limiter. Idle buckets
// are evicted opportunistically during lookups. Safe for concurrent use.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	keyFn    keyFunc
	mu       sync.Mutex
	visitors map[string]*visitor

	ttl     time.Duration
	gcEvery uint64
	lookups uint64
	now     func() time.Time
}

// NewRateLimiter builds a limiter of rps tokens per second and the given
// burst (coerced to at least 1).
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
		gcEvery:  5000,
		now:      time.Now,
	}
}

// getVisitor returns the limiter for key. Eviction runs before the lookup so
// a stale bucket is dropped even when it is the one requested.
func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= rl.gcEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// Handler enforces the limit, answering 429 with the standard envelope and
// Retry-After: 1 when a bucket is empty.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.getVisitor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": RequestIDFrom(c),
			"code":       "too_many_requests",
			"message":    "rate limit exceeded",
		})
	}
}
