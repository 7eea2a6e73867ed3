// ratelimit.go implements a per-IP rate limiter for the public auth
// endpoints. Counters live in Redis (fixed window, INCR + EXPIRE) so the
// limit holds across restarts and across replicas sharing the same Redis.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimit returns middleware that limits requests per IP to maxRequests
// within the given window duration. Returns 429 when exceeded.
//
// If Redis is unreachable the limiter fails open: availability of login
// beats strict enforcement, and the failure is logged for operators.
func RateLimit(rdb *redis.Client, maxRequests int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			// One counter per route+IP per window slot.
			slot := time.Now().Unix() / int64(window.Seconds())
			key := fmt.Sprintf("ratelimit:%s:%s:%d", c.Path(), c.RealIP(), slot)

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				slog.Warn("rate limiter unavailable, allowing request",
					slog.String("key", key),
					slog.Any("error", err),
				)
				return next(c)
			}

			// First hit in this window owns setting the expiry. The extra
			// window of slack covers clock skew between slot math and Redis.
			if count == 1 {
				rdb.Expire(ctx, key, window*2)
			}

			if count > int64(maxRequests) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error":   "Too Many Requests",
					"message": "Rate limit exceeded. Please try again later.",
				})
			}

			return next(c)
		}
	}
}
