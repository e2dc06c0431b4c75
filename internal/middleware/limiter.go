package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/response"

	"golang.org/x/time/rate"
)

const cleanupInterval = time.Minute

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter allows max requests per window for each client, refilling
// continuously. Buckets idle for a whole window are dropped.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	window  time.Duration
	message string

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

// NewRateLimiter builds a limiter and starts its cleanup loop, which stops
// when ctx is done. A non-positive max disables limiting.
func NewRateLimiter(ctx context.Context, max int, window time.Duration, message string) *RateLimiter {
	l := &RateLimiter{
		burst:    max,
		window:   window,
		message:  message,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
	if max > 0 && window > 0 {
		l.limit = rate.Limit(float64(max) / window.Seconds())
		go l.cleanupLoop(ctx)
	}
	return l
}

func (l *RateLimiter) enabled() bool {
	return l.burst > 0 && l.window > 0
}

// getVisitor retrieves or creates the limiter for key.
func (l *RateLimiter) getVisitor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(l.limit, l.burst)
		l.visitors[key] = &visitor{limiter, l.now()}
		return limiter
	}

	v.lastSeen = l.now()
	return v.limiter
}

func (l *RateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *RateLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.window {
			delete(l.visitors, key)
		}
	}
}

func (l *RateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Middleware rejects requests over quota with a 429 envelope.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	if !l.enabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := l.getVisitor(clientKey(r))
		now := l.now()
		allowed := limiter.AllowN(now, 1)

		remaining := int(math.Max(0, math.Floor(limiter.TokensAt(now))))
		w.Header().Set("RateLimit-Limit", strconv.Itoa(l.burst))
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			retry := time.Duration(float64(time.Second) / float64(l.limit))
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			response.Fail(w, http.StatusTooManyRequests, l.message, []string{"Rate limit exceeded"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientKey prefers the authenticated user and falls back to the client IP.
func clientKey(r *http.Request) string {
	if id, ok := auth.IdentityFrom(r.Context()); ok {
		return "user:" + id.UserID.String()
	}
	return "ip:" + clientIP(r)
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
