package httpx

import "github.com/gofiber/fiber/v2"

// Guards is the middleware set handlers attach per route. Routes share the
// /api/v1 prefix, so guards are added per route instead of per group.
type Guards struct {
	Auth         fiber.Handler
	OptionalAuth fiber.Handler
	Admin        fiber.Handler
	RateLimit    fiber.Handler
}

// Pass is a no-op middleware.
func Pass(c *fiber.Ctx) error { return c.Next() }

// Normalize replaces nil guards with Pass.
func (g Guards) Normalize() Guards {
	for _, h := range []*fiber.Handler{&g.Auth, &g.OptionalAuth, &g.Admin, &g.RateLimit} {
		if *h == nil {
			*h = Pass
		}
	}
	return g
}
