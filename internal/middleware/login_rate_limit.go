package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"time"

	"bank-dashboard/internal/errors"
	"bank-dashboard/internal/handlers"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const loginRateLimitPrefix = "rl:login:"

// LoginRateLimit caps login attempts per username (or client IP when the body
// carries none) at maxPerMin using a fixed one-minute window in redis. A nil
// client or a redis failure lets the request through.
func LoginRateLimit(cache *redis.Client, maxPerMin int, logger *slog.Logger) echo.MiddlewareFunc {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cache == nil {
				return next(c)
			}

			key := loginRateLimitPrefix + loginSubject(c)
			ctx := c.Request().Context()

			cnt, err := cache.Incr(ctx, key).Result()
			if err != nil {
				logger.Warn("login rate limit unavailable", "error", err)
				return next(c)
			}
			if cnt == 1 {
				cache.Expire(ctx, key, time.Minute)
			}

			if cnt > int64(maxPerMin) {
				return handlers.SendError(c, errors.SystemRateLimitExceeded,
					errors.WithDetails("Too many login attempts, try again later"))
			}

			return next(c)
		}
	}
}

// loginSubject peeks at the JSON body for a username without consuming it.
func loginSubject(c echo.Context) string {
	req := c.Request()
	if req.Body != nil {
		body, err := io.ReadAll(io.LimitReader(req.Body, 1<<16))
		req.Body = io.NopCloser(bytes.NewReader(body))
		if err == nil {
			var payload struct {
				Username string `json:"username"`
			}
			if json.Unmarshal(body, &payload) == nil {
				if username := strings.ToLower(strings.TrimSpace(payload.Username)); username != "" {
					return "user:" + username
				}
			}
		}
	}
	return "ip:" + c.RealIP()
}
