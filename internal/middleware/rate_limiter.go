package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fakhrymubarak/weather-dashboard/internal/config"
	"github.com/fakhrymubarak/weather-dashboard/internal/model"
	"golang.org/x/time/rate"
)

// ParamFunc extracts the value a second, narrower bucket is keyed on.
type ParamFunc func(r *http.Request) string

// QueryParam keys the narrow bucket on a query parameter.
func QueryParam(key string) ParamFunc {
	return func(r *http.Request) string {
		return r.URL.Query().Get(key)
	}
}

// visitor holds the rate limiter and last seen time for one bucket.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-IP global limit and a per-IP-per-param limit.
// Rates are in requests per minute.
type RateLimiter struct {
	cfg config.RateLimitConfig

	muGlobal       sync.Mutex
	globalVisitors map[string]*visitor // key: ip
	muParam        sync.Mutex
	paramVisitors  map[string]map[string]*visitor // key: ip -> paramValue
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	if cfg.CleanupTimeout <= 0 {
		cfg.CleanupTimeout = 3 * time.Minute
	}
	return &RateLimiter{
		cfg:            cfg,
		globalVisitors: make(map[string]*visitor),
		paramVisitors:  make(map[string]map[string]*visitor),
	}
}

func perMinute(n float64) rate.Limit {
	return rate.Limit(n / 60.0)
}

// getGlobalLimiter returns the limiter for ip, creating one if it does not exist.
func (rl *RateLimiter) getGlobalLimiter(ip string) *rate.Limiter {
	rl.muGlobal.Lock()
	defer rl.muGlobal.Unlock()
	v, exists := rl.globalVisitors[ip]
	if !exists {
		limiter := rate.NewLimiter(perMinute(rl.cfg.GlobalRate), rl.cfg.GlobalBurst)
		rl.globalVisitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// getParamLimiter returns the limiter for ip and param, creating one if it does not exist.
func (rl *RateLimiter) getParamLimiter(ip, param string) *rate.Limiter {
	rl.muParam.Lock()
	defer rl.muParam.Unlock()
	if _, ok := rl.paramVisitors[ip]; !ok {
		rl.paramVisitors[ip] = make(map[string]*visitor)
	}
	v, exists := rl.paramVisitors[ip][param]
	if !exists {
		limiter := rate.NewLimiter(perMinute(rl.cfg.ParamRate), rl.cfg.ParamBurst)
		rl.paramVisitors[ip][param] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// cleanup removes buckets not seen for longer than the cleanup timeout.
func (rl *RateLimiter) cleanup(now time.Time) {
	rl.muGlobal.Lock()
	for ip, v := range rl.globalVisitors {
		if now.Sub(v.lastSeen) > rl.cfg.CleanupTimeout {
			delete(rl.globalVisitors, ip)
		}
	}
	rl.muGlobal.Unlock()

	rl.muParam.Lock()
	for ip, paramMap := range rl.paramVisitors {
		for param, v := range paramMap {
			if now.Sub(v.lastSeen) > rl.cfg.CleanupTimeout {
				delete(paramMap, param)
			}
		}
		if len(paramMap) == 0 {
			delete(rl.paramVisitors, ip)
		}
	}
	rl.muParam.Unlock()
}

// StartCleanup sweeps stale visitors every minute until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				rl.cleanup(now)
			}
		}
	}()
}

// Reset clears all visitor state. Used primarily for testing.
func (rl *RateLimiter) Reset() {
	rl.muGlobal.Lock()
	clear(rl.globalVisitors)
	rl.muGlobal.Unlock()
	rl.muParam.Lock()
	clear(rl.paramVisitors)
	rl.muParam.Unlock()
}

// getIP extracts the client's IP address from the HTTP request, considering X-Forwarded-For headers.
func getIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr // fallback
	}
	return ip
}

func writeLimited(w http.ResponseWriter, errMsg, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	errCopy := errMsg
	_ = json.NewEncoder(w).Encode(model.Response{Error: &errCopy, Message: message})
}

// Middleware returns an HTTP middleware that enforces both limits, answering
// 429 with a JSON error envelope when either is exceeded. A nil param applies
// the global limit only.
func (rl *RateLimiter) Middleware(param ParamFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getIP(r)
			if !rl.getGlobalLimiter(ip).Allow() {
				writeLimited(w,
					fmt.Sprintf("Rate limit exceeded: max %g requests per minute per user/IP", rl.cfg.GlobalRate),
					"Too Many Requests (global limit)")
				return
			}
			if param == nil {
				next.ServeHTTP(w, r)
				return
			}
			value := strings.ToLower(strings.TrimSpace(param(r)))
			if value == "" {
				// If param is missing, treat as a single bucket
				value = "__none__"
			}
			if !rl.getParamLimiter(ip, value).Allow() {
				writeLimited(w,
					fmt.Sprintf("Rate limit exceeded: max %g requests per minute per unique param per user/IP", rl.cfg.ParamRate),
					"Too Many Requests (per-param limit)")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
