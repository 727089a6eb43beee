package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

type rateLimiter interface {
	Allow() bool
}

// retryAfterer is implemented by limiters that can estimate when the next
// request would be admitted.
type retryAfterer interface {
	RetryAfter() time.Duration
}

type limiterAdapter struct {
	limiter *rate.Limiter
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) *limiterAdapter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &limiterAdapter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

func (l *limiterAdapter) Allow() bool {
	if l == nil || l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}

// RetryAfter reports how long until one token is available again.
func (l *limiterAdapter) RetryAfter() time.Duration {
	if l == nil || l.limiter == nil {
		return 0
	}
	r := l.limiter.Reserve()
	defer r.Cancel()
	if !r.OK() {
		return 0
	}
	return r.Delay()
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}
		if ra, ok := limiter.(retryAfterer); ok {
			seconds := int(math.Ceil(ra.RetryAfter().Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
		}
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}
