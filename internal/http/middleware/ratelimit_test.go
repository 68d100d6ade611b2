package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	key := KeyByUserOrIP()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/history", nil)
	c.Request.RemoteAddr = "203.0.113.7:1234"
	if got := key(c); got != "ip:203.0.113.7" {
		t.Fatalf("ip key = %q", got)
	}

	// Query values are cached per context, so use a fresh one.
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/history?user_id=42", nil)
	if got := key(c); got != "user:42" {
		t.Fatalf("query key = %q", got)
	}

	c.Set(userIDKey, "99")
	if got := key(c); got != "user:99" {
		t.Fatalf("context key should win, got %q", got)
	}
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 0, KeyByUserOrIP())
	if rl.burst != 1 {
		t.Fatalf("burst = %d, want 1", rl.burst)
	}
	now := time.Unix(0, 0)
	rl.now = func() time.Time { return now }
	rl.gcEvery = 2

	a := rl.getVisitor("user:1")
	if rl.getVisitor("user:1") != a {
		t.Fatalf("bucket must be reused")
	}
	now = now.Add(rl.ttl)
	if rl.getVisitor("user:2"); len(rl.visitors) != 2 {
		t.Fatalf("no gc expected yet, visitors = %d", len(rl.visitors))
	}
	rl.getVisitor("user:2")
	if _, ok := rl.visitors["user:1"]; ok {
		t.Fatalf("idle bucket should be evicted")
	}
}

func TestRateLimiter_PerUser429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), NewRateLimiter(0, 1, KeyByUserOrIP()).Handler())
	r.GET("/api/chats", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(user string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chats?user_id="+user, nil))
		return w
	}
	if w := do("1"); w.Code != http.StatusOK {
		t.Fatalf("first = %d", w.Code)
	}
	w := do("1")
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "1" {
		t.Fatalf("second = %d, retry=%q", w.Code, w.Header().Get("Retry-After"))
	}
	if w := do("2"); w.Code != http.StatusOK {
		t.Fatalf("other users keep their own bucket, got %d", w.Code)
	}
}

func TestKeyByUserOrIP_JSONBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	key := KeyByUserOrIP()

	body := `{"user_id":42,"prompt":"hi"}`
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json; charset=utf-8")
	if got := key(c); got != "user:42" {
		t.Fatalf("body key = %q", got)
	}
	rest, _ := io.ReadAll(c.Request.Body)
	if string(rest) != body {
		t.Fatalf("body not rewound: %q", rest)
	}
	if v, _ := c.Get(userIDKey); v != "42" {
		t.Fatalf("caller id not recorded: %v", v)
	}

	for _, in := range []string{`{"prompt":"hi"}`, `{"user_id":"x"}`, `{not json`} {
		c, _ = gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(in))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Request.RemoteAddr = "203.0.113.7:1234"
		if got := key(c); got != "ip:203.0.113.7" {
			t.Fatalf("%s: key = %q", in, got)
		}
	}
}

func TestSetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/models", nil)
	SetUserID(c, 7)
	if got := KeyByUserOrIP()(c); got != "user:7" {
		t.Fatalf("key = %q", got)
	}
}
