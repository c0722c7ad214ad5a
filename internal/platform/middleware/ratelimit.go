package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/internal/platform/auth"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
	}
}

// bucket is a token bucket. level refills continuously at rate tokens per
// second up to burst.
type bucket struct {
	mu    sync.Mutex
	level float64
	burst float64
	rate  float64
	last  time.Time
}

// take refills by elapsed time and spends one token. When the bucket is dry
// it reports how many whole seconds until the next token.
func (b *bucket) take() (bool, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.level += now.Sub(b.last).Seconds() * b.rate
	if b.level > b.burst {
		b.level = b.burst
	}
	b.last = now

	if b.level >= 1 {
		b.level--
		return true, 0
	}
	if b.rate <= 0 {
		return false, 1
	}
	return false, int((1-b.level)/b.rate) + 1
}

// RateLimit throttles per principal, so one busy facility or insurer cannot
// starve the rest of the registries. Unauthenticated requests share a per-IP
// budget instead.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
	)
	get := func(key string) *bucket {
		mu.Lock()
		defer mu.Unlock()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				level: float64(cfg.BurstSize),
				burst: float64(cfg.BurstSize),
				rate:  cfg.RequestsPerSecond,
				last:  time.Now(),
			}
			buckets[key] = b
		}
		return b
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := auth.PrincipalFromContext(c.Request().Context())
			if key == "" {
				key = c.RealIP()
			}

			ok, retry := get(key).take()
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
