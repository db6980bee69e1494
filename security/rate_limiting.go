package security

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis     *redis.Client
	maxPerMin int64
}

func NewRateLimiter(redisClient *redis.Client, maxPerMin int) *RateLimiter {
	if maxPerMin <= 0 {
		maxPerMin = 60
	}
	return &RateLimiter{redis: redisClient, maxPerMin: int64(maxPerMin)}
}

// ScanRateLimit caps how often one device can hit the scan endpoints.
// A misconfigured scanner in a feedback loop can fire several times per
// second; the backend should not pay for that.
func (r *RateLimiter) ScanRateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			key := fmt.Sprintf("ratelimit:scan:%s", ip)

			count, err := r.redis.Incr(context.Background(), key).Result()
			if err == nil {
				if count == 1 {
					r.redis.Expire(context.Background(), key, time.Minute)
				}
				if count > r.maxPerMin {
					return c.JSON(429, map[string]string{
						"error": "Rate limit exceeded. Please try again later.",
					})
				}
			}

			return next(c)
		}
	}
}

// AntiBotMiddleware rejects obvious scripted clients; the scan API is
// only ever called by the operator app.
func (r *RateLimiter) AntiBotMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userAgent := c.Request().Header.Get("User-Agent")
			if r.isSuspiciousUserAgent(userAgent) {
				return c.JSON(403, map[string]string{
					"error": "Access denied",
				})
			}

			return next(c)
		}
	}
}

func (r *RateLimiter) isSuspiciousUserAgent(ua string) bool {
	suspicious := []string{"bot", "crawler", "spider", "scraper"}
	for _, pattern := range suspicious {
		if strings.Contains(strings.ToLower(ua), pattern) {
			return true
		}
	}
	return false
}
