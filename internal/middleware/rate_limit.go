package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"travel-desk/bookingcart/internal/common"
	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/models/dtos"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if v, exists := rl.visitors[ip]; exists {
		v.lastSeen = now
		return v.limiter
	}

	// Opportunistic sweep of idle clients.
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(rl.visitors, key)
		}
	}

	limiter := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[ip] = &visitor{limiter: limiter, lastSeen: now}
	return limiter
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.getLimiter(common.ClientIP(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			common.RespondJSON(w, http.StatusTooManyRequests, dtos.ErrorResponse{
				Error: constants.MsgTooManyRequests,
				Code:  constants.ErrCodeRateLimited,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
