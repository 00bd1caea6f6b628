package httpx

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func OK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": data})
}

func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

// Page is the list envelope used by paginated endpoints.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Paging reads page/limit query params. page starts at 1, limit is clamped to 1..100.
func Paging(c *fiber.Ctx) (page, limit int) {
	page, limit = 1, defaultLimit
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil {
		switch {
		case l < 1:
			limit = 1
		case l > maxLimit:
			limit = maxLimit
		default:
			limit = l
		}
	}
	return page, limit
}

// ParamID parses a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}
	return uint(id), nil
}
