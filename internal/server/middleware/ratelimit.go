package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/iudanet/playsync/internal/server/handlers"
	"github.com/iudanet/playsync/pkg/api"
)

// RateLimiter ограничивает частоту записей: token bucket на актора (или IP).
// requests записей за window, всплеск до requests подряд.
type RateLimiter struct {
	limiters map[string]*keyLimiter
	logger   *slog.Logger
	stopC    chan struct{}
	now      func() time.Time
	limit    rate.Limit
	burst    int
	interval time.Duration
	idle     time.Duration
	mu       sync.Mutex
	stopOnce sync.Once
}

type keyLimiter struct {
	lastSeen time.Time
	limiter  *rate.Limiter
}

// NewRateLimiter создает limiter и запускает вытеснение неактивных ключей
func NewRateLimiter(requests int, window time.Duration, logger *slog.Logger) *RateLimiter {
	interval := window / time.Duration(requests)
	rl := &RateLimiter{
		limiters: make(map[string]*keyLimiter),
		logger:   logger,
		stopC:    make(chan struct{}),
		now:      time.Now,
		limit:    rate.Every(interval),
		burst:    requests,
		interval: interval,
		idle:     2 * window,
	}

	go rl.evictLoop()

	return rl
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(rl.idle)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.stopC:
			return
		}
	}
}

// evictIdle забывает ключи без запросов дольше idle: их bucket уже полон
func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	evicted := 0
	for key, l := range rl.limiters {
		if now.Sub(l.lastSeen) > rl.idle {
			delete(rl.limiters, key)
			evicted++
		}
	}

	if evicted > 0 {
		rl.logger.Debug("Idle rate limit keys evicted", "count", evicted, "active", len(rl.limiters))
	}
}

// Stop останавливает фоновое вытеснение
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopC) })
}

// Allow забирает токен для key
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	l, ok := rl.limiters[key]
	if !ok {
		l = &keyLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = l
	}
	l.lastSeen = now
	rl.mu.Unlock()

	return l.limiter.AllowN(now, 1)
}

// RetryAfter - через сколько секунд появится следующий токен
func (rl *RateLimiter) RetryAfter() int {
	return int(math.Max(1, math.Ceil(rl.interval.Seconds())))
}

// RateLimitMiddleware ограничивает изменяющие запросы (создание, сохранение, resolve).
// Чтение и канал сессий не ограничиваются.
func RateLimitMiddleware(limiter *RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isWrite(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			key := rateLimitKey(r)
			if limiter.Allow(key) {
				next.ServeHTTP(w, r)
				return
			}

			logger.Warn("Write rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path)

			w.Header().Set("Retry-After", strconv.Itoa(limiter.RetryAfter()))
			writeError(w, r, http.StatusTooManyRequests, api.CodeRateLimited, "too many writes, retry later")
		})
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func rateLimitKey(r *http.Request) string {
	if actor, ok := handlers.GetActor(r.Context()); ok {
		return "actor:" + actor
	}
	return "ip:" + clientIP(r)
}

// clientIP берет первый адрес из X-Forwarded-For, затем X-Real-IP, затем RemoteAddr
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
