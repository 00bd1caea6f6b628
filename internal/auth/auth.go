package auth

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/storefront-backend/internal/httpx"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"

	contextKey = "user"
)

// Issuer signs session tokens for signed-in users.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

func (i *Issuer) Issue(userID uint, email, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    role,
		"exp":     time.Now().Add(i.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
		ContextKey: contextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return httpx.Fail(c, httpx.ErrUnauthorized)
		},
	})
}

// OptionalAuth parses a bearer token when one is sent. Missing, malformed or
// expired tokens never reject; the request continues as a guest.
func OptionalAuth(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
		ContextKey: contextKey,
		Filter: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderAuthorization) == ""
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Next()
		},
	})
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := UserIDFromCtx(c); err != nil {
			return httpx.Fail(c, httpx.ErrUnauthorized)
		}
		if !IsAdmin(c) {
			return httpx.Fail(c, httpx.ErrForbidden)
		}
		return c.Next()
	}
}

func claimsFromCtx(c *fiber.Ctx) (jwt.MapClaims, bool) {
	tok, ok := c.Locals(contextKey).(*jwt.Token)
	if !ok || tok == nil {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	return claims, ok
}

// UserIDFromCtx returns the user id claim of the authenticated request.
func UserIDFromCtx(c *fiber.Ctx) (uint, error) {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return 0, httpx.ErrUnauthorized
	}
	var id int64
	switch v := claims["user_id"].(type) {
	case float64:
		id = int64(v)
	case int:
		id = int64(v)
	case int64:
		id = v
	case uint:
		id = int64(v)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, httpx.ErrUnauthorized
		}
		id = n
	}
	if id <= 0 {
		return 0, httpx.ErrUnauthorized
	}
	return uint(id), nil
}

func EmailFromCtx(c *fiber.Ctx) string {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return ""
	}
	email, _ := claims["email"].(string)
	return strings.ToLower(email)
}

func IsAdmin(c *fiber.Ctx) bool {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return false
	}
	role, _ := claims["role"].(string)
	return role == RoleAdmin
}

// IsAdminEmail reports whether email is on the configured admin list.
func IsAdminEmail(email string, admins []string) bool {
	for _, a := range admins {
		if strings.EqualFold(strings.TrimSpace(a), email) {
			return true
		}
	}
	return false
}
