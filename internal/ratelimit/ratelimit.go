// Package ratelimit throttles abuse-prone endpoints such as sign-in and checkout.
package ratelimit

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/httpx"
)

type Config struct {
	Enabled bool
	Max     int
	Window  time.Duration
}

// New returns a sliding window limiter keyed by user id, or client IP for
// anonymous requests. A disabled limiter passes every request through.
func New(cfg Config) fiber.Handler {
	if !cfg.Enabled {
		return httpx.Pass
	}
	if cfg.Max <= 0 {
		cfg.Max = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = 10 * time.Second
	}
	return limiter.New(limiter.Config{
		Max:               cfg.Max,
		Expiration:        cfg.Window,
		KeyGenerator:      key,
		LimiterMiddleware: limiter.SlidingWindow{},
		LimitReached: func(c *fiber.Ctx) error {
			return httpx.Fail(c, httpx.ErrTooManyRequests)
		},
	})
}

func key(c *fiber.Ctx) string {
	if id, err := auth.UserIDFromCtx(c); err == nil {
		return "user:" + strconv.FormatUint(uint64(id), 10)
	}
	return "ip:" + c.IP()
}
