package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "schoolbook/pkg/errors"
	"schoolbook/pkg/logger"
)

// KeyExtractor names the caller a request is counted against. An empty key
// is not limited.
type KeyExtractor func(r *http.Request) string

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter allows each caller requests per window, refilled evenly,
// with a burst of the full allowance.
type UserRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*userLimiter
	limit    rate.Limit
	burst    int
	window   time.Duration
	extract  KeyExtractor
	log      *logger.Logger
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewUserRateLimiter(requests int, window time.Duration, extract KeyExtractor, log *logger.Logger) *UserRateLimiter {
	if extract == nil {
		extract = SessionUserID
	}
	rl := &UserRateLimiter{
		limiters: make(map[string]*userLimiter),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		window:   window,
		extract:  extract,
		log:      log,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

func (rl *UserRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.stopCh:
			return
		}
	}
}

// evictIdle drops callers that have been quiet for a full window; their
// bucket would be full again anyway.
func (rl *UserRateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, l := range rl.limiters {
		if l.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

func (rl *UserRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow reports whether key may make another request now.
func (rl *UserRateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	now := rl.now()

	rl.mu.Lock()
	l, ok := rl.limiters[key]
	if !ok {
		l = &userLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = l
	}
	l.lastSeen = now
	rl.mu.Unlock()

	return l.limiter.AllowN(now, 1)
}

// RateLimit rejects callers over their allowance with 429. It must run after
// Session when keyed on the session user.
func RateLimit(limiter *UserRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.extract(r)
			if limiter.Allow(key) {
				next.ServeHTTP(w, r)
				return
			}

			limiter.log.Warn("Rate limit exceeded",
				"request_id", RequestIDFromContext(r.Context()),
				"user_id", key,
				"path", r.URL.Path,
			)
			w.Header().Set("Retry-After", retryAfter(limiter.window, limiter.burst))
			_ = apperrors.WriteError(w, apperrors.RateLimited("Too many requests, please slow down"))
		})
	}
}

// SessionUserID keys requests on the user resolved by Session.
func SessionUserID(r *http.Request) string {
	if session, ok := SessionFromContext(r.Context()); ok {
		return session.User.ID
	}
	return ""
}

func retryAfter(window time.Duration, burst int) string {
	seconds := int((window/time.Duration(burst) + time.Second - 1) / time.Second)
	return strconv.Itoa(max(seconds, 1))
}
