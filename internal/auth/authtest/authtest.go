// Package authtest fakes authenticated requests for handler tests.
package authtest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/httpx"
)

const (
	HeaderUserID = "X-User-ID"
	HeaderEmail  = "X-User-Email"
	HeaderRole   = "X-User-Role"
)

// Inject puts a parsed token into Locals("user") built from the X-User-* headers.
func Inject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if v := c.Get(HeaderUserID); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{
					"user_id": float64(id),
					"email":   c.Get(HeaderEmail),
					"role":    c.Get(HeaderRole),
				}
				c.Locals("user", &jwt.Token{Claims: claims, Valid: true})
			}
		}
		return c.Next()
	}
}

// Guards mirrors the production guard set on top of Inject.
func Guards() httpx.Guards {
	return httpx.Guards{
		Auth: func(c *fiber.Ctx) error {
			if _, err := auth.UserIDFromCtx(c); err != nil {
				return httpx.Fail(c, err)
			}
			return c.Next()
		},
		OptionalAuth: httpx.Pass,
		Admin:        auth.RequireAdmin(),
		RateLimit:    httpx.Pass,
	}
}

// NewApp returns a fiber app with the shared error handler and Inject installed.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler})
	app.Use(Inject())
	return app
}
